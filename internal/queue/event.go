// Package queue defines message payloads exchanged over the message broker.
package queue

// TenderRecord describes one tender that contributed to a settlement.
type TenderRecord struct {
	Method      string `json:"method"`
	AmountMinor int64  `json:"amount_minor"`
	Reference   string `json:"reference,omitempty"`
}

// PaymentCompletedEvent is published when an order (or a merged payment
// group) is settled. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type PaymentCompletedEvent struct {
	OrderID        uint64         `json:"order_id"`
	OrderIDs       []uint64       `json:"order_ids"`
	TotalMinor     int64          `json:"total_minor"`
	TenderedMinor  int64          `json:"tendered_minor"`
	PointsRedeemed int64          `json:"points_redeemed"`
	PointsEarned   int64          `json:"points_earned"`
	ClosedByUserID uint64         `json:"closed_by_user_id"`
	ClosedAt       string         `json:"closed_at"`
	Tenders        []TenderRecord `json:"tenders"`
}
