package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yonetake/cafe-pos/internal/model"
	"github.com/yonetake/cafe-pos/internal/service"
)

func (t *sqlTx) GameByID(ctx context.Context, id uint64) (*model.Game, error) {
	const q = `SELECT id, name, status, created_at, updated_at FROM games WHERE id = ? FOR UPDATE`
	var g model.Game
	err := t.tx.QueryRowContext(ctx, q, id).
		Scan(&g.ID, &g.Name, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (t *sqlTx) UpdateGameStatus(ctx context.Context, gameID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE games SET status = ?, updated_at = NOW() WHERE id = ?`, status, gameID)
	return err
}

func (t *sqlTx) ActiveGameSessionsByTable(ctx context.Context, tableID uint64) ([]model.GameSession, error) {
	const q = `SELECT id, game_id, table_id, started_at, ended_at
	           FROM game_sessions WHERE table_id = ? AND ended_at IS NULL ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, q, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameSession
	for rows.Next() {
		var gs model.GameSession
		var endedAt sql.NullTime
		if err := rows.Scan(&gs.ID, &gs.GameID, &gs.TableID, &gs.StartedAt, &endedAt); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			v := endedAt.Time
			gs.EndedAt = &v
		}
		out = append(out, gs)
	}
	return out, rows.Err()
}

func (t *sqlTx) CreateGameSession(ctx context.Context, gs *model.GameSession) error {
	const q = `INSERT INTO game_sessions (game_id, table_id, started_at) VALUES (?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, gs.GameID, gs.TableID, gs.StartedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	gs.ID = uint64(id)
	return nil
}

func (t *sqlTx) EndGameSession(ctx context.Context, gameSessionID uint64, at time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE game_sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`, at, gameSessionID)
	return err
}

// InsertGameHistory relies on the unique key over
// (customer_id, game_session_id, order_id); INSERT IGNORE makes a
// settlement retry a no-op here.
func (t *sqlTx) InsertGameHistory(ctx context.Context, h model.GameHistory) error {
	const q = `INSERT IGNORE INTO customer_game_history
	           (customer_id, game_session_id, order_id, recorded_at)
	           VALUES (?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q, h.CustomerID, h.GameSessionID, h.OrderID, h.RecordedAt)
	return err
}
