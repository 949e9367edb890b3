package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yonetake/cafe-pos/internal/model"
	"github.com/yonetake/cafe-pos/internal/service"
)

// SeatByID loads one seat FOR UPDATE so the occupancy check and the
// session insert happen under the same row lock.
func (t *sqlTx) SeatByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, table_id, label, status, created_at, updated_at
	           FROM seats WHERE id = ? FOR UPDATE`
	var s model.Seat
	err := t.tx.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.TableID, &s.Label, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: seat %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *sqlTx) UpdateSeatStatus(ctx context.Context, seatID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE seats SET status = ?, updated_at = NOW() WHERE id = ?`, status, seatID)
	return err
}

func (t *sqlTx) TableByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, name, status, created_at, updated_at FROM tables WHERE id = ?`
	var tb model.Table
	err := t.tx.QueryRowContext(ctx, q, id).
		Scan(&tb.ID, &tb.Name, &tb.Status, &tb.CreatedAt, &tb.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: table %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &tb, nil
}

func (t *sqlTx) UpdateTableStatus(ctx context.Context, tableID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE tables SET status = ?, updated_at = NOW() WHERE id = ?`, status, tableID)
	return err
}

func (t *sqlTx) CountOccupiedSeats(ctx context.Context, tableID uint64) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seats WHERE table_id = ? AND status = ?`,
		tableID, model.SeatOccupied).Scan(&n)
	return n, err
}

func (t *sqlTx) SeatsByTable(ctx context.Context, tableID uint64) ([]model.Seat, error) {
	const q = `SELECT id, table_id, label, status, created_at, updated_at
	           FROM seats WHERE table_id = ? ORDER BY label`
	rows, err := t.tx.QueryContext(ctx, q, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.TableID, &s.Label, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
