package billing

import "testing"

func TestResolveOffset(t *testing.T) {
	cases := []struct {
		name        string
		minutes     int
		remaining   float64
		rate        int64
		wantCovered float64
		wantOverage float64
		wantCharge  int64
	}{
		{"zero minutes", 0, 10, 30000, 0, 0, 0},
		{"fully covered", 90, 2, 30000, 1.5, 0, 0},
		{"exact entitlement", 120, 2, 30000, 2, 0, 0},
		{"no entitlement left", 60, 0, 30000, 0, 1, 30000},
		{"split hour", 150, 1, 30000, 1, 1.5, 45000},
		{"negative remaining treated as zero", 60, -3, 30000, 0, 1, 30000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveOffset(tc.minutes, tc.remaining, tc.rate)
			if got.CoveredHours != tc.wantCovered {
				t.Fatalf("covered = %v, want %v", got.CoveredHours, tc.wantCovered)
			}
			if got.OverageHours != tc.wantOverage {
				t.Fatalf("overage = %v, want %v", got.OverageHours, tc.wantOverage)
			}
			if got.ChargeMinor != tc.wantCharge {
				t.Fatalf("charge = %d, want %d", got.ChargeMinor, tc.wantCharge)
			}
		})
	}
}

func TestResolveOffsetRoundsOnceToNearestTen(t *testing.T) {
	// 1 full overage hour at an odd rate rounds on the total.
	got := ResolveOffset(60, 0, 12345)
	if got.ChargeMinor != 12350 {
		t.Fatalf("expected 12350 after rounding, got %d", got.ChargeMinor)
	}
	// 25 minutes at the default rate: 25/60 * 30000 = 12500 exactly.
	got = ResolveOffset(25, 0, 0)
	if got.ChargeMinor != 12500 {
		t.Fatalf("expected 12500 with default rate, got %d", got.ChargeMinor)
	}
	if got.ChargeMinor%10 != 0 {
		t.Fatalf("charge not on a 10-unit step: %d", got.ChargeMinor)
	}
}
