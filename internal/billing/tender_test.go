package billing

import (
	"testing"

	"github.com/yonetake/cafe-pos/internal/model"
)

func TestTenderPortions(t *testing.T) {
	tenders := []model.Tender{
		{Method: model.TenderCash, AmountMinor: 3000},
		{Method: model.TenderCard, AmountMinor: 2000},
		{Method: model.TenderPoints, AmountMinor: 1000},
	}
	if got := SumTenders(tenders); got != 6000 {
		t.Fatalf("sum = %d, want 6000", got)
	}
	if got := CashCardPortion(tenders); got != 5000 {
		t.Fatalf("cash/card portion = %d, want 5000", got)
	}
	if got := PointsRequired(1000); got != 10 {
		t.Fatalf("points required = %d, want 10", got)
	}
}

func TestEarnBaseExcludesMembershipItems(t *testing.T) {
	items := []model.OrderItem{
		{Kind: model.ItemFnB, TotalMinor: 1000},
		{Kind: model.ItemMembership, TotalMinor: 5000},
	}
	// Paid entirely by card: only the eligible 1000 earns.
	if got := EarnBase(items, 6000); got != 1000 {
		t.Fatalf("earn base = %d, want 1000", got)
	}
	// Points covered most of the bill: the cash portion caps the base.
	if got := EarnBase(items, 400); got != 400 {
		t.Fatalf("earn base = %d, want 400", got)
	}
}

func TestPercentPolicy(t *testing.T) {
	p := PercentPolicy{RatePercent: 5}
	if got := p.EarnedFor(20000, ""); got != 10 {
		t.Fatalf("earned = %d, want 10", got)
	}
	if got := p.EarnedFor(0, ""); got != 0 {
		t.Fatalf("earned on zero = %d, want 0", got)
	}
	if got := (PercentPolicy{}).EarnedFor(20000, ""); got != 0 {
		t.Fatalf("earned with zero rate = %d, want 0", got)
	}
}
