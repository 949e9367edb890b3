// Package metrics registers the Prometheus instruments exposed on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsStarted counts seat sessions opened, labeled by timer mode.
	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafepos_sessions_started_total",
		Help: "Seat sessions started, by timer mode.",
	}, []string{"mode"})

	// SessionsStopped counts timers stopped.
	SessionsStopped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafepos_sessions_stopped_total",
		Help: "Seat sessions stopped.",
	})

	// Settlements counts completed settlements by outcome.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafepos_settlements_total",
		Help: "Settlement attempts, by outcome.",
	}, []string{"outcome"})

	// SettledAmountMinor accumulates the settled totals in minor units.
	SettledAmountMinor = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafepos_settled_amount_minor_total",
		Help: "Sum of settled order totals in minor currency units.",
	})

	// BillMerges counts merge and unmerge operations.
	BillMerges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafepos_bill_merges_total",
		Help: "Bill merge and unmerge operations.",
	}, []string{"op"})
)
