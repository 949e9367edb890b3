package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yonetake/cafe-pos/internal/billing"
	"github.com/yonetake/cafe-pos/internal/model"
)

// DefaultTaxRatePercent is the consumption tax rate included in all
// displayed prices.
const DefaultTaxRatePercent = 10

// SessionService owns the seat session lifecycle: start, stop, edit,
// transfer and the table game bookkeeping that rides along with
// seating.  Stopping a timer computes the seat-time charge but never
// releases the seat; only settlement does that.
type SessionService struct {
	store          Store
	taxRatePercent int
	now            func() time.Time
}

// NewSessionService builds a SessionService with the default tax
// rate and wall clock.
func NewSessionService(store Store) *SessionService {
	return &SessionService{store: store, taxRatePercent: DefaultTaxRatePercent, now: time.Now}
}

// WithClock replaces the time source.  Used by tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// WithTaxRate overrides the tax rate included in seat-time charges.
func (s *SessionService) WithTaxRate(percent int) *SessionService {
	if percent > 0 {
		s.taxRatePercent = percent
	}
	return s
}

// StartParams identifies the seat being taken and what to bill it
// against.  A zero OrderID opens a fresh order for the visit.
// Timed=false creates a walk-up tab with no time billing.
type StartParams struct {
	SeatID     uint64
	OrderID    uint64
	CustomerID *uint64
	Timed      bool
	ActorID    uint64
}

// Start occupies a seat with a new session.  It fails with
// ErrConflict when the seat is occupied or an unterminated session
// exists; the check runs inside the same transaction that inserts
// the row so concurrent starts cannot both win.  Active table games
// are copied onto the order as zero-price informational lines.
func (s *SessionService) Start(ctx context.Context, p StartParams) (*model.SeatSession, error) {
	var sess *model.SeatSession
	err := s.store.InTx(ctx, func(tx Tx) error {
		seat, err := tx.SeatByID(ctx, p.SeatID)
		if err != nil {
			return err
		}
		if seat.Status == model.SeatClosed {
			return fmt.Errorf("%w: seat %d is closed", ErrInvalidState, seat.ID)
		}
		if seat.Status == model.SeatOccupied {
			return fmt.Errorf("%w: seat %d is already occupied", ErrConflict, seat.ID)
		}
		if _, err := tx.UnterminatedSessionBySeat(ctx, p.SeatID); err == nil {
			return fmt.Errorf("%w: seat %d already has an active session", ErrConflict, p.SeatID)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		orderID := p.OrderID
		if orderID == 0 {
			order := &model.Order{CustomerID: p.CustomerID, Status: model.OrderOpen}
			if err := tx.CreateOrder(ctx, order); err != nil {
				return err
			}
			orderID = order.ID
		} else {
			order, err := tx.OrderByID(ctx, orderID)
			if err != nil {
				return err
			}
			if order.Status != model.OrderOpen {
				return fmt.Errorf("%w: order %d is %s", ErrInvalidState, order.ID, order.Status)
			}
		}

		now := s.now().UTC()
		sess = &model.SeatSession{SeatID: p.SeatID, OrderID: orderID, CustomerID: p.CustomerID}
		if p.Timed {
			started := now
			sess.StartedAt = &started
		}
		if err := tx.CreateSession(ctx, sess); err != nil {
			return err
		}
		if err := tx.UpdateSeatStatus(ctx, seat.ID, model.SeatOccupied); err != nil {
			return err
		}
		if err := tx.UpdateTableStatus(ctx, seat.TableID, model.TableSeated); err != nil {
			return err
		}

		// Carry what is being played over to the order.  A reused
		// order may already hold the table's game lines.
		games, err := tx.ActiveGameSessionsByTable(ctx, seat.TableID)
		if err != nil {
			return err
		}
		have := make(map[uint64]bool)
		if len(games) > 0 {
			existing, err := tx.ItemsByOrder(ctx, orderID)
			if err != nil {
				return err
			}
			for _, it := range existing {
				if it.Game != nil {
					have[it.Game.GameSessionID] = true
				}
			}
		}
		for _, gs := range games {
			if have[gs.ID] {
				continue
			}
			game, err := tx.GameByID(ctx, gs.GameID)
			if err != nil {
				return err
			}
			item := &model.OrderItem{
				OrderID: orderID,
				Kind:    model.ItemGame,
				Name:    game.Name,
				Qty:     1,
				Game:    &model.GameMeta{GameSessionID: gs.ID, GameID: gs.GameID},
			}
			if err := tx.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// StopResult reports what a stop computed.  Item is nil for untimed
// tabs, which carry no seat-time charge.
type StopResult struct {
	Session      *model.SeatSession
	Item         *model.OrderItem
	ChargeMinor  int64
	CoveredHours float64
	OverageHours float64
}

// Stop terminates the seat's unterminated session.  Timed sessions
// are billed through the membership resolver or the tiered schedule
// and the order moves to awaiting_payment while the seat stays
// occupied.  Untimed tabs end immediately, free the seat and flip an
// emptied table to dirty.
func (s *SessionService) Stop(ctx context.Context, seatID, actorID uint64) (*StopResult, error) {
	var res StopResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		seat, err := tx.SeatByID(ctx, seatID)
		if err != nil {
			return err
		}
		sess, err := tx.UnterminatedSessionBySeat(ctx, seatID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: no running session on seat %d", ErrNotFound, seatID)
			}
			return err
		}
		now := s.now().UTC()

		if sess.StartedAt == nil {
			// Walk-up tab: nothing to bill, release the seat now.
			sess.EndedAt = &now
			if err := tx.UpdateSession(ctx, sess); err != nil {
				return err
			}
			if err := tx.UpdateOrderStatus(ctx, sess.OrderID, model.OrderAwaitingPayment); err != nil {
				return err
			}
			if err := tx.UpdateSeatStatus(ctx, seatID, model.SeatOpen); err != nil {
				return err
			}
			occupied, err := tx.CountOccupiedSeats(ctx, seat.TableID)
			if err != nil {
				return err
			}
			if occupied == 0 {
				if err := tx.UpdateTableStatus(ctx, seat.TableID, model.TableDirty); err != nil {
					return err
				}
			}
			res.Session = sess
			return nil
		}

		minutes := int(now.Sub(*sess.StartedAt) / time.Minute)
		sess.EndedAt = &now
		sess.BilledMinutes = minutes
		item, err := s.applyCharge(ctx, tx, sess, minutes, now, nil)
		if err != nil {
			return err
		}
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, sess.OrderID, model.OrderAwaitingPayment); err != nil {
			return err
		}
		res.Session = sess
		res.Item = item
		res.ChargeMinor = item.TotalMinor
		if item.SeatTime != nil {
			res.CoveredHours = item.SeatTime.CoveredHours
			res.OverageHours = item.SeatTime.OverageHours
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Edit corrects the recorded times of a stopped, timer-based session
// and recomputes its billing exactly as Stop does, updating the
// existing seat-time item in place.  Membership hours already
// consumed by the session are given back before the recompute so an
// edit never double-charges the plan.  The before/after times and
// the acting user are written to the audit log.
func (s *SessionService) Edit(ctx context.Context, sessionID uint64, newStart, newEnd time.Time, actorID uint64) (*model.SeatSession, error) {
	var out *model.SeatSession
	err := s.store.InTx(ctx, func(tx Tx) error {
		sess, err := tx.SessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.StartedAt == nil {
			return fmt.Errorf("%w: session %d was never timer-based", ErrInvalidState, sessionID)
		}
		if sess.EndedAt == nil {
			return fmt.Errorf("%w: session %d is still running, stop it first", ErrInvalidState, sessionID)
		}
		order, err := tx.OrderByID(ctx, sess.OrderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderPaid || order.Status == model.OrderCanceled {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidState, order.ID, order.Status)
		}
		newStart, newEnd = newStart.UTC(), newEnd.UTC()
		if !newEnd.After(newStart) {
			return fmt.Errorf("%w: ended_at must be after started_at", ErrInvalidState)
		}

		prev, err := tx.LatestUsageBySession(ctx, sessionID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		beforeStart, beforeEnd := *sess.StartedAt, *sess.EndedAt

		minutes := int(newEnd.Sub(newStart) / time.Minute)
		sess.StartedAt = &newStart
		sess.EndedAt = &newEnd
		sess.BilledMinutes = minutes
		if _, err := s.applyCharge(ctx, tx, sess, minutes, newEnd, prev); err != nil {
			return err
		}
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, sess.OrderID, model.OrderAwaitingPayment); err != nil {
			return err
		}

		detail, _ := json.Marshal(map[string]any{
			"before_started_at": beforeStart,
			"before_ended_at":   beforeEnd,
			"after_started_at":  newStart,
			"after_ended_at":    newEnd,
			"billed_minutes":    minutes,
		})
		ev := model.AuditEvent{
			Kind:        model.AuditSessionEdited,
			ActorUserID: actorID,
			OrderID:     &sess.OrderID,
			SessionID:   &sess.ID,
			Detail:      string(detail),
			RecordedAt:  s.now().UTC(),
		}
		if err := tx.InsertAuditEvent(ctx, ev); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transfer relocates the session currently occupying sourceSeatID,
// running or stopped, onto targetSeatID.  Billing is untouched.
func (s *SessionService) Transfer(ctx context.Context, sourceSeatID, targetSeatID, actorID uint64) (*model.SeatSession, error) {
	if sourceSeatID == targetSeatID {
		return nil, fmt.Errorf("%w: source and target seat are the same", ErrInvalidState)
	}
	var out *model.SeatSession
	err := s.store.InTx(ctx, func(tx Tx) error {
		src, err := tx.SeatByID(ctx, sourceSeatID)
		if err != nil {
			return err
		}
		tgt, err := tx.SeatByID(ctx, targetSeatID)
		if err != nil {
			return err
		}
		if src.Status != model.SeatOccupied {
			return fmt.Errorf("%w: no session occupies seat %d", ErrNotFound, sourceSeatID)
		}
		if tgt.Status == model.SeatClosed {
			return fmt.Errorf("%w: seat %d is closed", ErrInvalidState, targetSeatID)
		}
		if tgt.Status == model.SeatOccupied {
			return fmt.Errorf("%w: seat %d is already occupied", ErrConflict, targetSeatID)
		}
		if _, err := tx.UnterminatedSessionBySeat(ctx, targetSeatID); err == nil {
			return fmt.Errorf("%w: seat %d already has an active session", ErrConflict, targetSeatID)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		sess, err := tx.CurrentSessionBySeat(ctx, sourceSeatID)
		if err != nil {
			return err
		}

		sess.SeatID = targetSeatID
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		if err := tx.UpdateSeatStatus(ctx, sourceSeatID, model.SeatOpen); err != nil {
			return err
		}
		occupied, err := tx.CountOccupiedSeats(ctx, src.TableID)
		if err != nil {
			return err
		}
		if occupied == 0 {
			if err := tx.UpdateTableStatus(ctx, src.TableID, model.TableAvailable); err != nil {
				return err
			}
		}
		if err := tx.UpdateSeatStatus(ctx, targetSeatID, model.SeatOccupied); err != nil {
			return err
		}
		if err := tx.UpdateTableStatus(ctx, tgt.TableID, model.TableSeated); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StartTableGame checks a game out of the shelf onto a table and
// stamps the informational zero-price line onto every order
// currently seated there.
func (s *SessionService) StartTableGame(ctx context.Context, tableID, gameID uint64) (*model.GameSession, error) {
	var out *model.GameSession
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.TableByID(ctx, tableID); err != nil {
			return err
		}
		game, err := tx.GameByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game.Status != model.GameAvailable {
			return fmt.Errorf("%w: game %d is %s", ErrConflict, gameID, game.Status)
		}
		gs := &model.GameSession{GameID: gameID, TableID: tableID, StartedAt: s.now().UTC()}
		if err := tx.CreateGameSession(ctx, gs); err != nil {
			return err
		}
		if err := tx.UpdateGameStatus(ctx, gameID, model.GameInUse); err != nil {
			return err
		}

		seats, err := tx.SeatsByTable(ctx, tableID)
		if err != nil {
			return err
		}
		stamped := make(map[uint64]bool)
		for _, seat := range seats {
			if seat.Status != model.SeatOccupied {
				continue
			}
			sess, err := tx.CurrentSessionBySeat(ctx, seat.ID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return err
			}
			if stamped[sess.OrderID] {
				continue
			}
			stamped[sess.OrderID] = true
			item := &model.OrderItem{
				OrderID: sess.OrderID,
				Kind:    model.ItemGame,
				Name:    game.Name,
				Qty:     1,
				Game:    &model.GameMeta{GameSessionID: gs.ID, GameID: gameID},
			}
			if err := tx.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		out = gs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyCharge prices a timed session and creates or updates its
// single seat_time order item.  prev, when non-nil, is the latest
// usage ledger row of the session; its covered hours are handed back
// to the plan before the split so recomputes stay additive.
// Zero-charge outcomes still keep a descriptive item on the order.
func (s *SessionService) applyCharge(ctx context.Context, tx Tx, sess *model.SeatSession, minutes int, at time.Time, prev *model.MembershipUsage) (*model.OrderItem, error) {
	item := model.OrderItem{OrderID: sess.OrderID, Kind: model.ItemSeatTime, Qty: 1, Name: "Seat time"}
	meta := model.SeatTimeMeta{SessionID: sess.ID, Minutes: minutes}

	var membership *model.CustomerMembership
	if sess.CustomerID != nil {
		m, err := tx.ActiveMembership(ctx, *sess.CustomerID, at)
		if err == nil {
			membership = m
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	var total int64
	switch {
	case membership != nil:
		remaining := membership.HoursRemaining()
		refund := 0.0
		if prev != nil {
			if prev.MembershipID == membership.ID {
				remaining += prev.CoveredHours
				refund = prev.CoveredHours
			} else {
				// The active plan changed since the original stop;
				// hand the hours back to the one that covered it.
				if err := tx.AddMembershipHours(ctx, prev.MembershipID, -prev.CoveredHours); err != nil {
					return nil, err
				}
			}
		}
		off := billing.ResolveOffset(minutes, remaining, membership.OverageRateMinorHour)
		total = off.ChargeMinor
		item.Name = "Seat time (member)"
		meta.CoveredHours = off.CoveredHours
		meta.OverageHours = off.OverageHours
		meta.MembershipID = &membership.ID
		if delta := off.CoveredHours - refund; delta != 0 {
			if err := tx.AddMembershipHours(ctx, membership.ID, delta); err != nil {
				return nil, err
			}
		}
		usage := model.MembershipUsage{
			MembershipID: membership.ID,
			SessionID:    sess.ID,
			CoveredHours: off.CoveredHours,
			OverageHours: off.OverageHours,
			ChargeMinor:  off.ChargeMinor,
			RecordedAt:   at,
		}
		if err := tx.InsertMembershipUsage(ctx, usage); err != nil {
			return nil, err
		}
	default:
		if prev != nil {
			// The recompute dropped out of the membership path; give
			// the previously consumed hours back to the plan.
			if err := tx.AddMembershipHours(ctx, prev.MembershipID, -prev.CoveredHours); err != nil {
				return nil, err
			}
		}
		q := billing.Charge(minutes)
		total = int64(q.TotalMajor) * 100
		meta.Tier = q.Tier
	}

	item.UnitPriceMinor = total
	item.TotalMinor = total
	item.TaxMinor = billing.IncludedTax(total, s.taxRatePercent)
	item.SeatTime = &meta

	if sess.BilledItemID != nil {
		item.ID = *sess.BilledItemID
		if err := tx.UpdateItem(ctx, &item); err != nil {
			return nil, err
		}
	} else {
		if err := tx.CreateItem(ctx, &item); err != nil {
			return nil, err
		}
		sess.BilledItemID = &item.ID
	}
	return &item, nil
}
