package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yonetake/cafe-pos/internal/model"
	"github.com/yonetake/cafe-pos/internal/service"
)

const sessionColumns = `id, seat_id, order_id, customer_id, started_at, ended_at,
	billed_minutes, billed_item_id, merged_to_session_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.SeatSession, error) {
	var s model.SeatSession
	var customerID, billedItemID, mergedTo sql.NullInt64
	var startedAt, endedAt sql.NullTime
	err := row.Scan(&s.ID, &s.SeatID, &s.OrderID, &customerID, &startedAt, &endedAt,
		&s.BilledMinutes, &billedItemID, &mergedTo, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		v := uint64(customerID.Int64)
		s.CustomerID = &v
	}
	if billedItemID.Valid {
		v := uint64(billedItemID.Int64)
		s.BilledItemID = &v
	}
	if mergedTo.Valid {
		v := uint64(mergedTo.Int64)
		s.MergedToSessionID = &v
	}
	if startedAt.Valid {
		v := startedAt.Time
		s.StartedAt = &v
	}
	if endedAt.Valid {
		v := endedAt.Time
		s.EndedAt = &v
	}
	return &s, nil
}

// UnterminatedSessionBySeat returns the session on the seat whose
// ended_at is still null, i.e. an untimed tab or a running timer.
func (t *sqlTx) UnterminatedSessionBySeat(ctx context.Context, seatID uint64) (*model.SeatSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM seat_sessions
	      WHERE seat_id = ? AND ended_at IS NULL LIMIT 1`
	s, err := scanSession(t.tx.QueryRowContext(ctx, q, seatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active session on seat %d", service.ErrNotFound, seatID)
	}
	return s, err
}

// CurrentSessionBySeat returns the session the seat's occupancy is
// attributed to: a session with no end yet, or a stopped timer whose
// order is still awaiting payment.
func (t *sqlTx) CurrentSessionBySeat(ctx context.Context, seatID uint64) (*model.SeatSession, error) {
	q := `SELECT s.id, s.seat_id, s.order_id, s.customer_id, s.started_at, s.ended_at,
	             s.billed_minutes, s.billed_item_id, s.merged_to_session_id, s.created_at, s.updated_at
	      FROM seat_sessions s
	      JOIN orders o ON o.id = s.order_id
	      WHERE s.seat_id = ?
	        AND (s.ended_at IS NULL
	             OR (s.billed_item_id IS NOT NULL AND o.status = ?))
	      ORDER BY s.id DESC LIMIT 1`
	s, err := scanSession(t.tx.QueryRowContext(ctx, q, seatID, model.OrderAwaitingPayment))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no current session on seat %d", service.ErrNotFound, seatID)
	}
	return s, err
}

func (t *sqlTx) SessionByID(ctx context.Context, id uint64) (*model.SeatSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM seat_sessions WHERE id = ?`
	s, err := scanSession(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %d", service.ErrNotFound, id)
	}
	return s, err
}

func (t *sqlTx) CreateSession(ctx context.Context, s *model.SeatSession) error {
	const q = `INSERT INTO seat_sessions
	           (seat_id, order_id, customer_id, started_at, ended_at, billed_minutes, billed_item_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		s.SeatID, s.OrderID, s.CustomerID, s.StartedAt, s.EndedAt, s.BilledMinutes, s.BilledItemID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateSession(ctx context.Context, s *model.SeatSession) error {
	const q = `UPDATE seat_sessions
	           SET seat_id = ?, customer_id = ?, started_at = ?, ended_at = ?,
	               billed_minutes = ?, billed_item_id = ?, merged_to_session_id = ?,
	               updated_at = NOW()
	           WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q,
		s.SeatID, s.CustomerID, s.StartedAt, s.EndedAt,
		s.BilledMinutes, s.BilledItemID, s.MergedToSessionID, s.ID)
	return err
}

func (t *sqlTx) SessionsByOrder(ctx context.Context, orderID uint64) ([]model.SeatSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM seat_sessions WHERE order_id = ? ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SeatSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
