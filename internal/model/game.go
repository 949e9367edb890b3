package model

import "time"

// Game status values.
const (
	GameAvailable = "available"
	GameInUse     = "in_use"
)

// Game is a board game from the shelf.  A game is in_use while a
// table game session references it and is freed when settlement
// vacates the table.
type Game struct {
	ID        uint64    // games.id
	Name      string    // games.name
	Status    string    // games.status
	CreatedAt time.Time // games.created_at
	UpdatedAt time.Time // games.updated_at
}

// GameSession records one game being played at one table.  Active
// sessions are copied as zero-price lines onto orders of newly
// seated guests so the floor view keeps showing what is played.
type GameSession struct {
	ID        uint64     // game_sessions.id
	GameID    uint64     // game_sessions.game_id
	TableID   uint64     // game_sessions.table_id
	StartedAt time.Time  // game_sessions.started_at
	EndedAt   *time.Time // game_sessions.ended_at (nullable)
}

// GameHistory links a customer to a game session settled on an
// order.  Rows are unique per (customer, session, order) so a
// retried settlement never double-records.
type GameHistory struct {
	ID            uint64    // customer_game_history.id
	CustomerID    uint64    // customer_game_history.customer_id
	GameSessionID uint64    // customer_game_history.game_session_id
	OrderID       uint64    // customer_game_history.order_id
	RecordedAt    time.Time // customer_game_history.recorded_at
}
