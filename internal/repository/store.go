// Package repository implements the persistence layer over MySQL.
// The Store hands the engine a transactional view (service.Tx); the
// non-transactional read helpers used by display endpoints live next
// to the entity they read.
package repository

import (
	"context"
	"database/sql"

	"github.com/yonetake/cafe-pos/internal/service"
)

// Store wraps the database handle and owns transaction boundaries.
type Store struct {
	db *sql.DB
}

// NewStore constructs a Store with the given DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only repositories.
func (s *Store) DB() *sql.DB { return s.db }

// InTx runs fn inside one transaction. A nil return commits; any
// error rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(service.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlTx implements service.Tx on top of one *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

var _ service.Tx = (*sqlTx)(nil)
