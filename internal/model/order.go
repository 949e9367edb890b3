package model

import "time"

// Order status values.
const (
	OrderOpen            = "open"
	OrderAwaitingPayment = "awaiting_payment"
	OrderPaid            = "paid"
	OrderCanceled        = "canceled"
)

// OrderItem kinds.  Seat-time items are written exclusively by the
// session engine; game items are zero-price informational lines.
const (
	ItemFnB           = "fnb"
	ItemRetail        = "retail"
	ItemSeatTime      = "seat_time"
	ItemRentalFee     = "rental_fee"
	ItemRentalDeposit = "rental_deposit"
	ItemMembership    = "membership"
	ItemGame          = "game"
)

// Order is the payable unit of a visit.  Bill consolidation links
// several orders through a shared PaymentGroupID with exactly one
// primary payer; items never move between orders.
//
// Fields:
//  ID             – primary key identifier.
//  CustomerID     – optional customer attached to the tab.
//  Status         – open, awaiting_payment, paid or canceled.
//  PaymentGroupID – uuid shared by all orders of a merged bill.
//  IsPrimaryPayer – true on exactly one order per payment group.
//  PaidByOrderID  – back-reference stamped on secondaries when the
//                   primary settles the group.
//  ClosedAt       – settlement timestamp.
//  ClosedByUserID – staff user who performed the settlement.
type Order struct {
	ID             uint64     // orders.id
	CustomerID     *uint64    // orders.customer_id (nullable)
	Status         string     // orders.status
	PaymentGroupID *string    // orders.payment_group_id (nullable uuid)
	IsPrimaryPayer bool       // orders.is_primary_payer
	PaidByOrderID  *uint64    // orders.paid_by_order_id (nullable)
	ClosedAt       *time.Time // orders.closed_at (nullable)
	ClosedByUserID *uint64    // orders.closed_by_user_id (nullable)
	CreatedAt      time.Time  // orders.created_at
	UpdatedAt      time.Time  // orders.updated_at
}

// OrderItem is a single line on an order.  All currency amounts are
// integer minor units; TaxMinor is the tax portion already included
// in TotalMinor.
type OrderItem struct {
	ID             uint64    // order_items.id
	OrderID        uint64    // order_items.order_id
	Kind           string    // order_items.kind
	Name           string    // order_items.name
	Qty            int       // order_items.qty
	UnitPriceMinor int64     // order_items.unit_price_minor
	TaxMinor       int64     // order_items.tax_minor
	TotalMinor     int64     // order_items.total_minor
	SeatTime       *SeatTimeMeta // order_items.meta when kind is seat_time
	Game           *GameMeta     // order_items.meta when kind is game
	CreatedAt      time.Time // order_items.created_at
}

// SeatTimeMeta carries the billing provenance of a seat_time item.
// One payload shape exists per item kind instead of an untyped bag.
type SeatTimeMeta struct {
	SessionID    uint64  `json:"session_id"`
	Minutes      int     `json:"minutes"`
	Tier         string  `json:"tier"`
	CoveredHours float64 `json:"covered_hours,omitempty"`
	OverageHours float64 `json:"overage_hours,omitempty"`
	MembershipID *uint64 `json:"membership_id,omitempty"`
}

// GameMeta marks the informational zero-price line copied onto an
// order while a table game is in progress.
type GameMeta struct {
	GameSessionID uint64 `json:"game_session_id"`
	GameID        uint64 `json:"game_id"`
}

// PointsEligible reports whether the item total counts toward the
// base amount that earns loyalty points.  Membership purchases never
// earn points.
func (i *OrderItem) PointsEligible() bool { return i.Kind != ItemMembership }
