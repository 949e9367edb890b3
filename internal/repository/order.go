package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yonetake/cafe-pos/internal/model"
	"github.com/yonetake/cafe-pos/internal/service"
)

const orderColumns = `id, customer_id, status, payment_group_id, is_primary_payer,
	paid_by_order_id, closed_at, closed_by_user_id, created_at, updated_at`

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	var customerID, paidBy, closedBy sql.NullInt64
	var groupID sql.NullString
	var closedAt sql.NullTime
	err := row.Scan(&o.ID, &customerID, &o.Status, &groupID, &o.IsPrimaryPayer,
		&paidBy, &closedAt, &closedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		v := uint64(customerID.Int64)
		o.CustomerID = &v
	}
	if groupID.Valid {
		v := groupID.String
		o.PaymentGroupID = &v
	}
	if paidBy.Valid {
		v := uint64(paidBy.Int64)
		o.PaidByOrderID = &v
	}
	if closedAt.Valid {
		v := closedAt.Time
		o.ClosedAt = &v
	}
	if closedBy.Valid {
		v := uint64(closedBy.Int64)
		o.ClosedByUserID = &v
	}
	return &o, nil
}

func (t *sqlTx) OrderByID(ctx context.Context, id uint64) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? FOR UPDATE`
	o, err := scanOrder(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", service.ErrNotFound, id)
	}
	return o, err
}

func (t *sqlTx) CreateOrder(ctx context.Context, o *model.Order) error {
	const q = `INSERT INTO orders (customer_id, status) VALUES (?, ?)`
	res, err := t.tx.ExecContext(ctx, q, o.CustomerID, o.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateOrderStatus(ctx context.Context, orderID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`, status, orderID)
	return err
}

func (t *sqlTx) MarkOrderPaid(ctx context.Context, orderID uint64, closedAt time.Time, closedBy uint64, paidByOrderID *uint64) error {
	const q = `UPDATE orders
	           SET status = ?, closed_at = ?, closed_by_user_id = ?, paid_by_order_id = ?, updated_at = NOW()
	           WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, model.OrderPaid, closedAt, closedBy, paidByOrderID, orderID)
	return err
}

func (t *sqlTx) SetPaymentGroup(ctx context.Context, orderID uint64, groupID string, primary bool) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET payment_group_id = ?, is_primary_payer = ?, updated_at = NOW() WHERE id = ?`,
		groupID, primary, orderID)
	return err
}

func (t *sqlTx) ClearPaymentGroup(ctx context.Context, orderID uint64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET payment_group_id = NULL, is_primary_payer = FALSE, updated_at = NOW() WHERE id = ?`,
		orderID)
	return err
}

func (t *sqlTx) OrdersByPaymentGroup(ctx context.Context, groupID string) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE payment_group_id = ? ORDER BY id FOR UPDATE`
	rows, err := t.tx.QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// itemMeta is the JSON shape stored in order_items.meta. Exactly one
// of the branches is set, matching the item kind.
type itemMeta struct {
	SeatTime *model.SeatTimeMeta `json:"seat_time,omitempty"`
	Game     *model.GameMeta     `json:"game,omitempty"`
}

func marshalMeta(it *model.OrderItem) (any, error) {
	if it.SeatTime == nil && it.Game == nil {
		return nil, nil
	}
	b, err := json.Marshal(itemMeta{SeatTime: it.SeatTime, Game: it.Game})
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanItem(row rowScanner) (*model.OrderItem, error) {
	var it model.OrderItem
	var meta sql.NullString
	err := row.Scan(&it.ID, &it.OrderID, &it.Kind, &it.Name, &it.Qty,
		&it.UnitPriceMinor, &it.TaxMinor, &it.TotalMinor, &meta, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if meta.Valid && meta.String != "" {
		var m itemMeta
		if err := json.Unmarshal([]byte(meta.String), &m); err != nil {
			return nil, fmt.Errorf("item %d meta: %w", it.ID, err)
		}
		it.SeatTime = m.SeatTime
		it.Game = m.Game
	}
	return &it, nil
}

const itemColumns = `id, order_id, kind, name, qty, unit_price_minor, tax_minor, total_minor, meta, created_at`

func (t *sqlTx) ItemsByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	q := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (t *sqlTx) CreateItem(ctx context.Context, it *model.OrderItem) error {
	meta, err := marshalMeta(it)
	if err != nil {
		return err
	}
	const q = `INSERT INTO order_items
	           (order_id, kind, name, qty, unit_price_minor, tax_minor, total_minor, meta)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		it.OrderID, it.Kind, it.Name, it.Qty, it.UnitPriceMinor, it.TaxMinor, it.TotalMinor, meta)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateItem(ctx context.Context, it *model.OrderItem) error {
	meta, err := marshalMeta(it)
	if err != nil {
		return err
	}
	const q = `UPDATE order_items
	           SET kind = ?, name = ?, qty = ?, unit_price_minor = ?, tax_minor = ?, total_minor = ?, meta = ?
	           WHERE id = ?`
	_, err = t.tx.ExecContext(ctx, q,
		it.Kind, it.Name, it.Qty, it.UnitPriceMinor, it.TaxMinor, it.TotalMinor, meta, it.ID)
	return err
}
