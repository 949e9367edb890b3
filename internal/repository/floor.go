package repository

import (
	"context"

	"github.com/yonetake/cafe-pos/internal/model"
)

// SeatView is one seat on the floor plan together with the session
// its occupancy is attributed to, if any.
type SeatView struct {
	Seat    model.Seat         `json:"seat"`
	Session *model.SeatSession `json:"session,omitempty"`
}

// TableView is one table with all of its seats.
type TableView struct {
	Table model.Table `json:"table"`
	Seats []SeatView  `json:"seats"`
}

// FloorView reads the whole floor in three queries: every table,
// every seat and the sessions still tied to a seat (running, untimed
// or stopped but unpaid). Display only, no locks taken.
func (s *Store) FloorView(ctx context.Context) ([]TableView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM tables ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TableView
	index := map[uint64]int{}
	for rows.Next() {
		var tb model.Table
		if err := rows.Scan(&tb.ID, &tb.Name, &tb.Status, &tb.CreatedAt, &tb.UpdatedAt); err != nil {
			return nil, err
		}
		index[tb.ID] = len(out)
		out = append(out, TableView{Table: tb})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	current, err := s.currentSessionsBySeat(ctx)
	if err != nil {
		return nil, err
	}

	seatRows, err := s.db.QueryContext(ctx,
		`SELECT id, table_id, label, status, created_at, updated_at FROM seats ORDER BY table_id, label`)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()

	for seatRows.Next() {
		var seat model.Seat
		if err := seatRows.Scan(&seat.ID, &seat.TableID, &seat.Label, &seat.Status, &seat.CreatedAt, &seat.UpdatedAt); err != nil {
			return nil, err
		}
		i, ok := index[seat.TableID]
		if !ok {
			continue
		}
		out[i].Seats = append(out[i].Seats, SeatView{Seat: seat, Session: current[seat.ID]})
	}
	return out, seatRows.Err()
}

// currentSessionsBySeat maps seat id to its newest session that is
// either unterminated or billed-but-unpaid.
func (s *Store) currentSessionsBySeat(ctx context.Context) (map[uint64]*model.SeatSession, error) {
	const q = `SELECT s.id, s.seat_id, s.order_id, s.customer_id, s.started_at, s.ended_at,
	                  s.billed_minutes, s.billed_item_id, s.merged_to_session_id, s.created_at, s.updated_at
	           FROM seat_sessions s
	           JOIN orders o ON o.id = s.order_id
	           WHERE s.ended_at IS NULL
	              OR (s.billed_item_id IS NOT NULL AND o.status = ?)
	           ORDER BY s.id`
	rows, err := s.db.QueryContext(ctx, q, model.OrderAwaitingPayment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uint64]*model.SeatSession{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		if have, ok := out[sess.SeatID]; !ok || sess.ID > have.ID {
			out[sess.SeatID] = sess
		}
	}
	return out, rows.Err()
}
