// Package service implements the seat-time billing engine: seat
// session lifecycle, bill consolidation and settlement.  Services
// run every multi-entity mutation inside one Store transaction so
// partial application can never be observed, and surface failures
// through the typed taxonomy below.
package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all engine operations.  Callers match
// with errors.Is; handlers translate them into HTTP statuses.
var (
	// ErrNotFound signals an absent seat, session, order, payment
	// group or membership.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a seat that already has an active session
	// or an occupied transfer target.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState signals an operation against the wrong state:
	// editing an untimed session, merging a paid order, settling a
	// non-primary group member.
	ErrInvalidState = errors.New("invalid state")
	// ErrCustomerRequired signals a points tender on an order with
	// no customer attached.
	ErrCustomerRequired = errors.New("customer required")
	// ErrTenderDeclined signals a card authorization that did not
	// come back approved.
	ErrTenderDeclined = errors.New("tender declined")
)

// InsufficientPaymentError reports tenders that do not cover the
// recomputed order total.  Both amounts are minor units so callers
// can display the exact shortfall.
type InsufficientPaymentError struct {
	TotalMinor    int64
	TenderedMinor int64
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: tendered %d of %d", e.TenderedMinor, e.TotalMinor)
}

// InsufficientPointsError reports a points tender exceeding the
// customer's ledger balance.
type InsufficientPointsError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d, balance %d", e.Required, e.Balance)
}
