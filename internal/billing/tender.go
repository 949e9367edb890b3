package billing

import "github.com/yonetake/cafe-pos/internal/model"

// minorPerPoint converts between minor currency units and whole
// loyalty points: one point covers 100 minor units.
const minorPerPoint = 100

// SumTenders returns the total of all presented tenders.
func SumTenders(tenders []model.Tender) int64 {
	var sum int64
	for _, t := range tenders {
		sum += t.AmountMinor
	}
	return sum
}

// CashCardPortion returns the part of the payment settled with cash
// or card.  Points-paid amounts never earn points, so only this
// portion feeds the earn calculation.
func CashCardPortion(tenders []model.Tender) int64 {
	var sum int64
	for _, t := range tenders {
		if t.Method == model.TenderCash || t.Method == model.TenderCard {
			sum += t.AmountMinor
		}
	}
	return sum
}

// PointsRequired converts a points tender amount in minor units to
// the whole points that must be redeemed.
func PointsRequired(amountMinor int64) int64 {
	return amountMinor / minorPerPoint
}

// EarnBase computes the amount that is eligible to earn points: the
// lesser of the cash/card portion of the payment and the total of
// point-eligible items.  Membership purchases are excluded on the
// item side.
func EarnBase(items []model.OrderItem, cashCardMinor int64) int64 {
	var eligible int64
	for _, it := range items {
		if it.PointsEligible() {
			eligible += it.TotalMinor
		}
	}
	if cashCardMinor < eligible {
		return cashCardMinor
	}
	return eligible
}

// PointsPolicy decides how many points a paid amount earns.  The
// policy may vary by customer tier.
type PointsPolicy interface {
	EarnedFor(amountMinor int64, tier string) int64
}

// PercentPolicy earns a flat percentage of the eligible amount,
// expressed in whole points.
type PercentPolicy struct {
	RatePercent int64
}

// EarnedFor returns amount * rate% converted to whole points.
func (p PercentPolicy) EarnedFor(amountMinor int64, _ string) int64 {
	if amountMinor <= 0 || p.RatePercent <= 0 {
		return 0
	}
	return amountMinor * p.RatePercent / 100 / minorPerPoint
}
