package service

import (
	"context"
	"time"

	"github.com/yonetake/cafe-pos/internal/model"
)

// Store is the unit-of-work boundary of the engine.  InTx opens one
// transaction, passes it to fn and commits on nil return; any error
// rolls the whole transaction back.  The MySQL implementation lives
// in internal/repository; tests substitute an in-memory fake.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx exposes the data operations available inside a transaction.
// Lookup methods return ErrNotFound (wrapped) when no row matches.
// SeatByID locks the seat row so the single-active-session check
// and the session insert happen under the same lock.
type Tx interface {
	// Seats and tables.
	SeatByID(ctx context.Context, id uint64) (*model.Seat, error)
	UpdateSeatStatus(ctx context.Context, seatID uint64, status string) error
	TableByID(ctx context.Context, id uint64) (*model.Table, error)
	UpdateTableStatus(ctx context.Context, tableID uint64, status string) error
	CountOccupiedSeats(ctx context.Context, tableID uint64) (int, error)
	SeatsByTable(ctx context.Context, tableID uint64) ([]model.Seat, error)

	// Seat sessions.
	UnterminatedSessionBySeat(ctx context.Context, seatID uint64) (*model.SeatSession, error)
	CurrentSessionBySeat(ctx context.Context, seatID uint64) (*model.SeatSession, error)
	SessionByID(ctx context.Context, id uint64) (*model.SeatSession, error)
	CreateSession(ctx context.Context, s *model.SeatSession) error
	UpdateSession(ctx context.Context, s *model.SeatSession) error
	SessionsByOrder(ctx context.Context, orderID uint64) ([]model.SeatSession, error)

	// Orders and items.
	OrderByID(ctx context.Context, id uint64) (*model.Order, error)
	CreateOrder(ctx context.Context, o *model.Order) error
	UpdateOrderStatus(ctx context.Context, orderID uint64, status string) error
	MarkOrderPaid(ctx context.Context, orderID uint64, closedAt time.Time, closedBy uint64, paidByOrderID *uint64) error
	SetPaymentGroup(ctx context.Context, orderID uint64, groupID string, primary bool) error
	ClearPaymentGroup(ctx context.Context, orderID uint64) error
	OrdersByPaymentGroup(ctx context.Context, groupID string) ([]model.Order, error)
	ItemsByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error)
	CreateItem(ctx context.Context, it *model.OrderItem) error
	UpdateItem(ctx context.Context, it *model.OrderItem) error

	// Customers, memberships, loyalty.
	CustomerByID(ctx context.Context, id uint64) (*model.Customer, error)
	ActiveMembership(ctx context.Context, customerID uint64, at time.Time) (*model.CustomerMembership, error)
	AddMembershipHours(ctx context.Context, membershipID uint64, deltaHours float64) error
	InsertMembershipUsage(ctx context.Context, u model.MembershipUsage) error
	LatestUsageBySession(ctx context.Context, sessionID uint64) (*model.MembershipUsage, error)
	PointsBalance(ctx context.Context, customerID uint64) (int64, error)
	InsertPointsEntry(ctx context.Context, e model.PointsEntry) error

	// Payments.
	InsertPaymentAttempt(ctx context.Context, a *model.PaymentAttempt) error

	// Games.
	GameByID(ctx context.Context, id uint64) (*model.Game, error)
	UpdateGameStatus(ctx context.Context, gameID uint64, status string) error
	ActiveGameSessionsByTable(ctx context.Context, tableID uint64) ([]model.GameSession, error)
	CreateGameSession(ctx context.Context, gs *model.GameSession) error
	EndGameSession(ctx context.Context, gameSessionID uint64, at time.Time) error
	// InsertGameHistory is idempotent per (customer, session, order);
	// duplicates are silently ignored.
	InsertGameHistory(ctx context.Context, h model.GameHistory) error

	// Audit.
	InsertAuditEvent(ctx context.Context, ev model.AuditEvent) error
}

// Authorization statuses reported by the card terminal collaborator.
const (
	AuthApproved = "approved"
	AuthPending  = "pending"
	AuthDeclined = "declined"
)

// Authorization is the terminal's answer for one card tender.
type Authorization struct {
	Status   string
	TenderID string
}

// TenderAuthorizer fronts the card network.  Authorize is
// synchronous-or-pollable and idempotent per reference: calling it
// again with the same reference must return the current status of
// the same authorization rather than charge twice.
type TenderAuthorizer interface {
	Authorize(ctx context.Context, amountMinor int64, reference string) (Authorization, error)
}
