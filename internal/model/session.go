package model

import "time"

// Timer states of a seat session.  The nullable timestamps on the
// row are collapsed into an explicit tagged state so that callers
// never reason about nil pairs directly.
const (
	TimerUntimed = "untimed" // no timer was ever started (walk-up tab)
	TimerRunning = "running" // started_at set, ended_at null
	TimerStopped = "stopped" // both timestamps set, awaiting payment
)

// SeatSession is one occupancy episode of one seat by zero or one
// customer, attached to exactly one order.  At most one session per
// seat may have EndedAt == nil at any time; the repository enforces
// this inside the transaction that creates the row.
//
// Fields:
//  ID                – primary key identifier.
//  SeatID            – seat being occupied.
//  OrderID           – order that collects the charges of this visit.
//  CustomerID        – optional customer reference.
//  StartedAt         – timer start; nil means an untimed walk-up tab.
//  EndedAt           – set when the timer stops or the session is
//                      force-closed at settlement.  Never cleared.
//  BilledMinutes     – whole minutes billed, written at stop time.
//  BilledItemID      – seat_time order item created for the charge.
//  MergedToSessionID – set by historical merge flows; retained for
//                      receipt reconstruction, unused by the
//                      payment-group strategy.
type SeatSession struct {
	ID                uint64     // seat_sessions.id
	SeatID            uint64     // seat_sessions.seat_id
	OrderID           uint64     // seat_sessions.order_id
	CustomerID        *uint64    // seat_sessions.customer_id (nullable)
	StartedAt         *time.Time // seat_sessions.started_at (nullable)
	EndedAt           *time.Time // seat_sessions.ended_at (nullable)
	BilledMinutes     int        // seat_sessions.billed_minutes
	BilledItemID      *uint64    // seat_sessions.billed_item_id (nullable)
	MergedToSessionID *uint64    // seat_sessions.merged_to_session_id (nullable)
	CreatedAt         time.Time  // seat_sessions.created_at
	UpdatedAt         time.Time  // seat_sessions.updated_at
}

// TimerState reports the tagged timer state derived from the
// nullable timestamps.
func (s *SeatSession) TimerState() string {
	if s.StartedAt == nil {
		return TimerUntimed
	}
	if s.EndedAt == nil {
		return TimerRunning
	}
	return TimerStopped
}

// Unterminated reports whether the session still has EndedAt unset.
// A stopped timer is terminated in this sense even though its seat
// remains occupied until settlement releases it.
func (s *SeatSession) Unterminated() bool { return s.EndedAt == nil }
