// Package billing holds the pure money arithmetic of the POS: the
// tiered seat-time rate schedule, the membership offset split and
// the tender/points calculations used by settlement.  Everything in
// this package is side-effect free; amounts are computed in major
// units by the rate schedule (callers multiply by 100) and in
// integer minor units everywhere else.
package billing

// Rate schedule, tax-inclusive major units.
const (
	firstHourMajor    = 500  // one full hour billed on entry
	halfHourMajor     = 250  // per started half-hour inside the second hour
	twoHoursMajor     = 1000 // fixed charge for the first two hours
	extraBlockMajor   = 200  // per started half-hour beyond two hours
	capMajor          = 2200 // flat ceiling from five hours on
	twoHoursMinutes   = 120
	capMinutes        = 300
	halfBlockMinutes  = 30
	firstHourMinutes  = 60
)

// Tier labels reported in the quote breakdown.
const (
	TierNone     = "none"
	TierHourly   = "hourly"
	TierExtended = "extended"
	TierCapped   = "capped"
)

// Quote is the breakdown of a seat-time charge.  BaseMajor covers
// the flat head of the applied tier, Blocks times the tier's block
// price makes up ExtraMajor, and TotalMajor is their sum.
type Quote struct {
	TotalMajor int
	BaseMajor  int
	ExtraMajor int
	Blocks     int
	Tier       string
}

// Charge converts elapsed minutes into a tax-inclusive charge in
// major units under the tiered schedule:
//
//	m <= 0          free
//	0 < m <= 120    one full hour (500), then 250 per started
//	                half-hour inside the second hour
//	120 < m < 300   1000 for the first two hours plus 200 per
//	                started half-hour beyond them
//	m >= 300        flat 2200 regardless of how far over
//
// Exactly 120 minutes bills 1000 with no extra block.  The cap is a
// ceiling, not a per-hour rate beyond five hours; the extended tier
// meets it exactly at the five-hour mark.
func Charge(minutes int) Quote {
	switch {
	case minutes <= 0:
		return Quote{Tier: TierNone}
	case minutes >= capMinutes:
		return Quote{TotalMajor: capMajor, BaseMajor: capMajor, Tier: TierCapped}
	case minutes <= twoHoursMinutes:
		blocks := ceilBlocks(minutes - firstHourMinutes)
		extra := blocks * halfHourMajor
		return Quote{
			TotalMajor: firstHourMajor + extra,
			BaseMajor:  firstHourMajor,
			ExtraMajor: extra,
			Blocks:     blocks,
			Tier:       TierHourly,
		}
	default:
		blocks := ceilBlocks(minutes - twoHoursMinutes)
		extra := blocks * extraBlockMajor
		return Quote{
			TotalMajor: twoHoursMajor + extra,
			BaseMajor:  twoHoursMajor,
			ExtraMajor: extra,
			Blocks:     blocks,
			Tier:       TierExtended,
		}
	}
}

// ChargeMinor is Charge scaled to integer minor units.
func ChargeMinor(minutes int) int64 {
	return int64(Charge(minutes).TotalMajor) * 100
}

// ceilBlocks rounds minutes up to started half-hour blocks.  Zero or
// negative input yields zero blocks.
func ceilBlocks(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + halfBlockMinutes - 1) / halfBlockMinutes
}

// IncludedTax extracts the tax portion already contained in a
// tax-inclusive total, at the given percent rate.
func IncludedTax(totalMinor int64, ratePercent int) int64 {
	if totalMinor <= 0 || ratePercent <= 0 {
		return 0
	}
	return totalMinor - totalMinor*100/int64(100+ratePercent)
}
