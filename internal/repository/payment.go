package repository

import (
	"context"

	"github.com/yonetake/cafe-pos/internal/model"
)

func (t *sqlTx) InsertPaymentAttempt(ctx context.Context, a *model.PaymentAttempt) error {
	const q = `INSERT INTO payment_attempts (order_id, method, amount_minor, status, reference, recorded_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		a.OrderID, a.Method, a.AmountMinor, a.Status, a.Reference, a.RecordedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}
