package repository

import (
	"context"

	"github.com/yonetake/cafe-pos/internal/model"
)

func (t *sqlTx) InsertAuditEvent(ctx context.Context, ev model.AuditEvent) error {
	const q = `INSERT INTO audit_events (kind, actor_user_id, order_id, session_id, detail, recorded_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q,
		ev.Kind, ev.ActorUserID, ev.OrderID, ev.SessionID, ev.Detail, ev.RecordedAt)
	return err
}
