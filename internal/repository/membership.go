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

func (t *sqlTx) CustomerByID(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT id, name, tier, created_at FROM customers WHERE id = ?`
	var c model.Customer
	err := t.tx.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Tier, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", service.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ActiveMembership locks the customer's plan row covering the given
// instant so concurrent stops consume hours serially.
func (t *sqlTx) ActiveMembership(ctx context.Context, customerID uint64, at time.Time) (*model.CustomerMembership, error) {
	const q = `SELECT id, customer_id, plan_name, hours_included, hours_used,
	                  overage_rate_minor, start_date, end_date, created_at, updated_at
	           FROM customer_memberships
	           WHERE customer_id = ? AND start_date <= ? AND end_date >= ?
	           ORDER BY end_date DESC LIMIT 1
	           FOR UPDATE`
	var m model.CustomerMembership
	err := t.tx.QueryRowContext(ctx, q, customerID, at, at).
		Scan(&m.ID, &m.CustomerID, &m.PlanName, &m.HoursIncluded, &m.HoursUsed,
			&m.OverageRateMinorHour, &m.StartDate, &m.EndDate, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active membership for customer %d", service.ErrNotFound, customerID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *sqlTx) AddMembershipHours(ctx context.Context, membershipID uint64, deltaHours float64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE customer_memberships SET hours_used = hours_used + ?, updated_at = NOW() WHERE id = ?`,
		deltaHours, membershipID)
	return err
}

func (t *sqlTx) InsertMembershipUsage(ctx context.Context, u model.MembershipUsage) error {
	const q = `INSERT INTO membership_usage
	           (membership_id, session_id, covered_hours, overage_hours, charge_minor, recorded_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q,
		u.MembershipID, u.SessionID, u.CoveredHours, u.OverageHours, u.ChargeMinor, u.RecordedAt)
	return err
}

func (t *sqlTx) LatestUsageBySession(ctx context.Context, sessionID uint64) (*model.MembershipUsage, error) {
	const q = `SELECT id, membership_id, session_id, covered_hours, overage_hours, charge_minor, recorded_at
	           FROM membership_usage WHERE session_id = ? ORDER BY id DESC LIMIT 1`
	var u model.MembershipUsage
	err := t.tx.QueryRowContext(ctx, q, sessionID).
		Scan(&u.ID, &u.MembershipID, &u.SessionID, &u.CoveredHours, &u.OverageHours, &u.ChargeMinor, &u.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no usage for session %d", service.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PointsBalance folds the ledger into the current balance. The
// ledger rows are immutable, there is no cached balance to drift.
func (t *sqlTx) PointsBalance(ctx context.Context, customerID uint64) (int64, error) {
	const q = `SELECT COALESCE(SUM(CASE kind WHEN ? THEN points WHEN ? THEN -points ELSE 0 END), 0)
	           FROM points_ledger WHERE customer_id = ?`
	var bal int64
	err := t.tx.QueryRowContext(ctx, q, model.PointsEarned, model.PointsRedeemed, customerID).Scan(&bal)
	return bal, err
}

func (t *sqlTx) InsertPointsEntry(ctx context.Context, e model.PointsEntry) error {
	const q = `INSERT INTO points_ledger (customer_id, order_id, kind, points, reason, recorded_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q,
		e.CustomerID, e.OrderID, e.Kind, e.Points, e.Reason, e.RecordedAt)
	return err
}
