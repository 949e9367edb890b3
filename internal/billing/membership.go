package billing

import "math"

// DefaultOverageRateMinorPerHour is the flat discounted member rate
// applied once the plan's included hours are exhausted.  Members
// never pay the non-member tiered schedule.
const DefaultOverageRateMinorPerHour int64 = 30000

// roundStepMinor keeps member charges on round price points: the
// final total is rounded once to the nearest 10 minor units.
const roundStepMinor = 10

// Offset is the result of splitting a member's elapsed time into
// plan-covered hours and overage charged at the discounted rate.
// The caller persists the split to the membership usage ledger.
type Offset struct {
	CoveredHours float64
	OverageHours float64
	ChargeMinor  int64
}

// ResolveOffset splits elapsed minutes against the hours remaining
// on a membership plan.  Overage is charged at ratePerHour minor
// units per hour; rounding happens once on the final total, not per
// component.  A non-positive rate falls back to the default member
// rate.
func ResolveOffset(minutes int, hoursRemaining float64, ratePerHour int64) Offset {
	if minutes <= 0 {
		return Offset{}
	}
	if ratePerHour <= 0 {
		ratePerHour = DefaultOverageRateMinorPerHour
	}
	elapsed := float64(minutes) / 60.0
	covered := math.Min(elapsed, math.Max(0, hoursRemaining))
	overage := elapsed - covered
	return Offset{
		CoveredHours: covered,
		OverageHours: overage,
		ChargeMinor:  roundToStep(overage * float64(ratePerHour)),
	}
}

// roundToStep rounds to the nearest multiple of roundStepMinor.
func roundToStep(v float64) int64 {
	return int64(math.Round(v/roundStepMinor)) * roundStepMinor
}
