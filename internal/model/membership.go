package model

import "time"

// CustomerMembership tracks a customer's plan entitlement.  Hours
// are consumed additively by the stop-timer transition only; the
// membership is ACTIVE while EndDate has not passed.
type CustomerMembership struct {
	ID                   uint64    // customer_memberships.id
	CustomerID           uint64    // customer_memberships.customer_id
	PlanName             string    // customer_memberships.plan_name
	HoursIncluded        float64   // customer_memberships.hours_included
	HoursUsed            float64   // customer_memberships.hours_used
	OverageRateMinorHour int64     // customer_memberships.overage_rate_minor (per hour)
	StartDate            time.Time // customer_memberships.start_date
	EndDate              time.Time // customer_memberships.end_date
	CreatedAt            time.Time // customer_memberships.created_at
	UpdatedAt            time.Time // customer_memberships.updated_at
}

// ActiveAt reports whether the membership covers the given instant.
func (m *CustomerMembership) ActiveAt(t time.Time) bool {
	return !t.Before(m.StartDate) && !t.After(m.EndDate)
}

// HoursRemaining returns the entitlement left on the plan, never
// negative.
func (m *CustomerMembership) HoursRemaining() float64 {
	if rem := m.HoursIncluded - m.HoursUsed; rem > 0 {
		return rem
	}
	return 0
}

// MembershipUsage is an immutable ledger row recording, per stop or
// edit event, how the elapsed time of a session split into covered
// and overage hours and what the overage charge was.
type MembershipUsage struct {
	ID           uint64    // membership_usage.id
	MembershipID uint64    // membership_usage.membership_id
	SessionID    uint64    // membership_usage.session_id
	CoveredHours float64   // membership_usage.covered_hours
	OverageHours float64   // membership_usage.overage_hours
	ChargeMinor  int64     // membership_usage.charge_minor
	RecordedAt   time.Time // membership_usage.recorded_at
}

// Customer is the minimal profile referenced by sessions, orders and
// the loyalty ledger.  The points balance is reconstructed from
// points_ledger rows, never stored here.
type Customer struct {
	ID        uint64    // customers.id
	Name      string    // customers.name
	Tier      string    // customers.tier
	CreatedAt time.Time // customers.created_at
}
