package model

import "time"

// Payment tender methods.
const (
	TenderCash   = "cash"
	TenderCard   = "card"
	TenderPoints = "points"
)

// Points ledger entry kinds.
const (
	PointsEarned   = "EARNED"
	PointsRedeemed = "REDEEMED"
)

// Tender is one {method, amount} pair presented at settlement.
// Amounts are integer minor units.
type Tender struct {
	Method      string `json:"method"`
	AmountMinor int64  `json:"amount_minor"`
}

// PaymentAttempt records one captured tender of a settlement.  The
// reference is a uuid reused for card authorization so the terminal
// collaborator can be polled idempotently.
type PaymentAttempt struct {
	ID          uint64    // payment_attempts.id
	OrderID     uint64    // payment_attempts.order_id
	Method      string    // payment_attempts.method
	AmountMinor int64     // payment_attempts.amount_minor
	Status      string    // payment_attempts.status
	Reference   string    // payment_attempts.reference
	RecordedAt  time.Time // payment_attempts.recorded_at
}

// PointsEntry is an immutable loyalty ledger row.  The customer's
// balance is the sum of EARNED minus REDEEMED points.
type PointsEntry struct {
	ID         uint64    // points_ledger.id
	CustomerID uint64    // points_ledger.customer_id
	OrderID    uint64    // points_ledger.order_id
	Kind       string    // points_ledger.kind (EARNED, REDEEMED)
	Points     int64     // points_ledger.points
	Reason     string    // points_ledger.reason
	RecordedAt time.Time // points_ledger.recorded_at
}
