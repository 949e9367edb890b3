package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yonetake/cafe-pos/internal/billing"
	"github.com/yonetake/cafe-pos/internal/model"
	"github.com/yonetake/cafe-pos/internal/queue"
)

// Publisher emits domain events after a settlement commits.
// Failures are logged by the caller and never fail the settlement.
type Publisher interface {
	PaymentCompleted(ctx context.Context, ev queue.PaymentCompletedEvent) error
}

// SettlementService closes bills: it validates tender sufficiency,
// consults the card terminal, then commits the payment rows, loyalty
// ledger entries, order closure and seat/table/game release in one
// transaction.  Validation failures abort with zero side effects;
// inside the transaction only the game-history write is best-effort.
type SettlementService struct {
	store      Store
	authorizer TenderAuthorizer
	policy     billing.PointsPolicy
	publisher  Publisher
	now        func() time.Time
	newRef     func() string
}

// NewSettlementService wires the settlement engine.  publisher may
// be nil when no broker is configured.
func NewSettlementService(store Store, authorizer TenderAuthorizer, policy billing.PointsPolicy, publisher Publisher) *SettlementService {
	return &SettlementService{
		store:      store,
		authorizer: authorizer,
		policy:     policy,
		publisher:  publisher,
		now:        time.Now,
		newRef:     uuid.NewString,
	}
}

// WithClock replaces the time source.  Used by tests.
func (s *SettlementService) WithClock(now func() time.Time) *SettlementService {
	s.now = now
	return s
}

// SettleResult reports what one settlement did.
type SettleResult struct {
	OrderIDs       []uint64
	TotalMinor     int64
	TenderedMinor  int64
	ChangeMinor    int64
	PointsRedeemed int64
	PointsEarned   int64
	Attempts       []model.PaymentAttempt
}

// Settle pays an order, or the whole payment group when the order is
// the group's primary payer.  The total is always recomputed from
// the current items; client-supplied totals are never trusted.
func (s *SettlementService) Settle(ctx context.Context, orderID uint64, tenders []model.Tender, actorID uint64) (*SettleResult, error) {
	pointsAmount, err := validateTenders(tenders)
	if err != nil {
		return nil, err
	}

	// Validation pass: read-only, zero side effects on failure.
	if err := s.store.InTx(ctx, func(tx Tx) error {
		_, _, _, err := s.check(ctx, tx, orderID, tenders, pointsAmount)
		return err
	}); err != nil {
		return nil, err
	}

	// Card authorization happens outside the settlement transaction;
	// the reference makes repeated authorization calls idempotent.
	refs := make([]string, len(tenders))
	for i, t := range tenders {
		if t.AmountMinor <= 0 {
			continue
		}
		refs[i] = s.newRef()
		if t.Method != model.TenderCard {
			continue
		}
		auth, err := s.authorizer.Authorize(ctx, t.AmountMinor, refs[i])
		if err != nil {
			return nil, fmt.Errorf("card authorization: %w", err)
		}
		if auth.Status != AuthApproved {
			return nil, fmt.Errorf("%w: card authorization %s", ErrTenderDeclined, auth.Status)
		}
	}

	var res SettleResult
	var ev queue.PaymentCompletedEvent
	err = s.store.InTx(ctx, func(tx Tx) error {
		// Re-validate inside the committing transaction: a retry of
		// an already paid order stops here, and items added since
		// the first pass are caught by the recomputed total.
		order, scope, items, err := s.check(ctx, tx, orderID, tenders, pointsAmount)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		total, _, err := groupTotal(ctx, tx, scope)
		if err != nil {
			return err
		}
		tendered := billing.SumTenders(tenders)

		for i, t := range tenders {
			if t.AmountMinor <= 0 {
				continue
			}
			att := model.PaymentAttempt{
				OrderID:     orderID,
				Method:      t.Method,
				AmountMinor: t.AmountMinor,
				Status:      "captured",
				Reference:   refs[i],
				RecordedAt:  now,
			}
			if err := tx.InsertPaymentAttempt(ctx, &att); err != nil {
				return err
			}
			res.Attempts = append(res.Attempts, att)
		}

		if pointsAmount > 0 {
			needed := billing.PointsRequired(pointsAmount)
			entry := model.PointsEntry{
				CustomerID: *order.CustomerID,
				OrderID:    orderID,
				Kind:       model.PointsRedeemed,
				Points:     needed,
				Reason:     "bill settlement",
				RecordedAt: now,
			}
			if err := tx.InsertPointsEntry(ctx, entry); err != nil {
				return err
			}
			res.PointsRedeemed = needed
		}

		for _, o := range scope {
			var paidBy *uint64
			if o.ID != orderID {
				paidBy = &orderID
			}
			if err := tx.MarkOrderPaid(ctx, o.ID, now, actorID, paidBy); err != nil {
				return err
			}
			res.OrderIDs = append(res.OrderIDs, o.ID)
		}

		if order.CustomerID != nil {
			customer, err := tx.CustomerByID(ctx, *order.CustomerID)
			if err != nil {
				return err
			}
			base := billing.EarnBase(items, billing.CashCardPortion(tenders))
			if earned := s.policy.EarnedFor(base, customer.Tier); earned > 0 {
				entry := model.PointsEntry{
					CustomerID: *order.CustomerID,
					OrderID:    orderID,
					Kind:       model.PointsEarned,
					Points:     earned,
					Reason:     "bill settlement",
					RecordedAt: now,
				}
				if err := tx.InsertPointsEntry(ctx, entry); err != nil {
					return err
				}
				res.PointsEarned = earned
			}
		}

		if err := s.releaseSeating(ctx, tx, scope, now); err != nil {
			return err
		}

		// Game history is best-effort: a failure here must not void
		// the payment that already happened above.
		if order.CustomerID != nil {
			for _, it := range items {
				if it.Game == nil {
					continue
				}
				h := model.GameHistory{
					CustomerID:    *order.CustomerID,
					GameSessionID: it.Game.GameSessionID,
					OrderID:       it.OrderID,
					RecordedAt:    now,
				}
				if err := tx.InsertGameHistory(ctx, h); err != nil {
					log.Printf("settlement: game history for session %d order %d: %v", it.Game.GameSessionID, it.OrderID, err)
				}
			}
		}

		res.TotalMinor = total
		res.TenderedMinor = tendered
		res.ChangeMinor = tendered - total

		detail, _ := json.Marshal(map[string]any{
			"order_ids":       res.OrderIDs,
			"total_minor":     total,
			"references":      refs,
			"points_redeemed": res.PointsRedeemed,
			"points_earned":   res.PointsEarned,
		})
		audit := model.AuditEvent{
			Kind:        model.AuditPaymentCompleted,
			ActorUserID: actorID,
			OrderID:     &orderID,
			Detail:      string(detail),
			RecordedAt:  now,
		}
		if err := tx.InsertAuditEvent(ctx, audit); err != nil {
			return err
		}

		ev = queue.PaymentCompletedEvent{
			OrderID:        orderID,
			OrderIDs:       res.OrderIDs,
			TotalMinor:     total,
			TenderedMinor:  tendered,
			PointsRedeemed: res.PointsRedeemed,
			PointsEarned:   res.PointsEarned,
			ClosedByUserID: actorID,
			ClosedAt:       now.Format(time.RFC3339),
		}
		for i, t := range tenders {
			if t.AmountMinor <= 0 {
				continue
			}
			ev.Tenders = append(ev.Tenders, queue.TenderRecord{
				Method:      t.Method,
				AmountMinor: t.AmountMinor,
				Reference:   refs[i],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PaymentCompleted(ctx, ev); err != nil {
			log.Printf("settlement: publish payment.completed for order %d: %v", orderID, err)
		}
	}
	return &res, nil
}

// check validates one settlement attempt without mutating anything:
// order state, primary-payer role, tender sufficiency against the
// recomputed total and the points balance.  It returns the order,
// the settlement scope and the combined item list.
func (s *SettlementService) check(ctx context.Context, tx Tx, orderID uint64, tenders []model.Tender, pointsAmount int64) (*model.Order, []model.Order, []model.OrderItem, error) {
	order, err := tx.OrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	if order.Status != model.OrderAwaitingPayment {
		return nil, nil, nil, fmt.Errorf("%w: order %d is %s, not awaiting payment", ErrInvalidState, orderID, order.Status)
	}
	scope, err := settlementScope(ctx, tx, order)
	if err != nil {
		return nil, nil, nil, err
	}
	total, items, err := groupTotal(ctx, tx, scope)
	if err != nil {
		return nil, nil, nil, err
	}
	if tendered := billing.SumTenders(tenders); tendered < total {
		return nil, nil, nil, &InsufficientPaymentError{TotalMinor: total, TenderedMinor: tendered}
	}
	if pointsAmount > 0 {
		if order.CustomerID == nil {
			return nil, nil, nil, fmt.Errorf("%w: points tender on order %d", ErrCustomerRequired, orderID)
		}
		if pointsAmount > total {
			return nil, nil, nil, fmt.Errorf("%w: points tender exceeds the order total", ErrInvalidState)
		}
		needed := billing.PointsRequired(pointsAmount)
		balance, err := tx.PointsBalance(ctx, *order.CustomerID)
		if err != nil {
			return nil, nil, nil, err
		}
		if balance < needed {
			return nil, nil, nil, &InsufficientPointsError{Required: needed, Balance: balance}
		}
	}
	return order, scope, items, nil
}

// releaseSeating ends every session of the settled orders, frees
// their seats and flips fully vacated tables to available, returning
// their games to the shelf.
func (s *SettlementService) releaseSeating(ctx context.Context, tx Tx, scope []model.Order, now time.Time) error {
	tables := make(map[uint64]bool)
	for _, o := range scope {
		sessions, err := tx.SessionsByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		for i := range sessions {
			sess := sessions[i]
			if sess.EndedAt == nil {
				ended := now
				sess.EndedAt = &ended
				if err := tx.UpdateSession(ctx, &sess); err != nil {
					return err
				}
			}
			seat, err := tx.SeatByID(ctx, sess.SeatID)
			if err != nil {
				return err
			}
			if seat.Status == model.SeatOccupied {
				// An untimed tab frees its seat at stop, so a new
				// guest may be sitting there by now.  The seat opens
				// only when no later session still claims it.
				if _, err := tx.CurrentSessionBySeat(ctx, seat.ID); errors.Is(err, ErrNotFound) {
					if err := tx.UpdateSeatStatus(ctx, seat.ID, model.SeatOpen); err != nil {
						return err
					}
				} else if err != nil {
					return err
				}
			}
			tables[seat.TableID] = true
		}
	}
	for tableID := range tables {
		occupied, err := tx.CountOccupiedSeats(ctx, tableID)
		if err != nil {
			return err
		}
		if occupied > 0 {
			continue
		}
		if err := tx.UpdateTableStatus(ctx, tableID, model.TableAvailable); err != nil {
			return err
		}
		games, err := tx.ActiveGameSessionsByTable(ctx, tableID)
		if err != nil {
			return err
		}
		for _, gs := range games {
			if err := tx.EndGameSession(ctx, gs.ID, now); err != nil {
				return err
			}
			if err := tx.UpdateGameStatus(ctx, gs.GameID, model.GameAvailable); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateTenders rejects unknown methods and negative amounts and
// returns the points portion of the payment.
func validateTenders(tenders []model.Tender) (int64, error) {
	if len(tenders) == 0 {
		return 0, fmt.Errorf("%w: no tenders presented", ErrInvalidState)
	}
	var points int64
	for _, t := range tenders {
		switch t.Method {
		case model.TenderCash, model.TenderCard:
		case model.TenderPoints:
			points += t.AmountMinor
		default:
			return 0, fmt.Errorf("%w: unknown tender method %q", ErrInvalidState, t.Method)
		}
		if t.AmountMinor < 0 {
			return 0, fmt.Errorf("%w: negative tender amount", ErrInvalidState)
		}
	}
	return points, nil
}
