package model

import "time"

// Audit event kinds written by the engine.
const (
	AuditSessionEdited    = "session.edited"
	AuditPaymentCompleted = "payment.completed"
	AuditBillsMerged      = "bills.merged"
	AuditBillsUnmerged    = "bills.unmerged"
)

// AuditEvent captures who performed a mutating operation and what
// changed.  Detail holds a kind-specific JSON payload (before/after
// times for edits, tender references for settlements).
type AuditEvent struct {
	ID          uint64    // audit_events.id
	Kind        string    // audit_events.kind
	ActorUserID uint64    // audit_events.actor_user_id
	OrderID     *uint64   // audit_events.order_id (nullable)
	SessionID   *uint64   // audit_events.session_id (nullable)
	Detail      string    // audit_events.detail (JSON)
	RecordedAt  time.Time // audit_events.recorded_at
}
