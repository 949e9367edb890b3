package billing

import "testing"

func TestChargeSchedule(t *testing.T) {
	cases := []struct {
		name    string
		minutes int
		want    int
		tier    string
	}{
		{"negative", -5, 0, TierNone},
		{"zero", 0, 0, TierNone},
		{"one minute", 1, 500, TierHourly},
		{"full hour", 60, 500, TierHourly},
		{"into second hour", 61, 750, TierHourly},
		{"ninety", 90, 750, TierHourly},
		{"ninety one", 91, 1000, TierHourly},
		{"two hours exactly", 120, 1000, TierHourly},
		{"one over two hours", 121, 1200, TierExtended},
		{"two and a half hours", 150, 1200, TierExtended},
		{"four hours", 240, 1800, TierExtended},
		{"four and a half", 270, 2000, TierExtended},
		{"last extended minute", 299, 2200, TierExtended},
		{"cap boundary", 300, 2200, TierCapped},
		{"far over cap", 600, 2200, TierCapped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Charge(tc.minutes)
			if q.TotalMajor != tc.want {
				t.Fatalf("Charge(%d) = %d, want %d", tc.minutes, q.TotalMajor, tc.want)
			}
			if q.Tier != tc.tier {
				t.Fatalf("Charge(%d) tier = %s, want %s", tc.minutes, q.Tier, tc.tier)
			}
			if q.BaseMajor+q.ExtraMajor != q.TotalMajor {
				t.Fatalf("breakdown does not add up: %+v", q)
			}
		})
	}
}

func TestChargeMonotonicAndCapped(t *testing.T) {
	prev := 0
	for m := 0; m <= 360; m++ {
		got := Charge(m).TotalMajor
		if got < prev {
			t.Fatalf("charge decreased at %d minutes: %d -> %d", m, prev, got)
		}
		if got > capMajor {
			t.Fatalf("charge exceeded cap at %d minutes: %d", m, got)
		}
		if m >= capMinutes && got != capMajor {
			t.Fatalf("expected flat cap at %d minutes, got %d", m, got)
		}
		prev = got
	}
}

func TestChargeMinor(t *testing.T) {
	if got := ChargeMinor(60); got != 50000 {
		t.Fatalf("expected 50000 minor units for one hour, got %d", got)
	}
}

func TestIncludedTax(t *testing.T) {
	cases := []struct {
		total int64
		rate  int
		want  int64
	}{
		{1100, 10, 100},
		{50000, 10, 4546},
		{0, 10, 0},
		{1000, 0, 0},
	}
	for _, tc := range cases {
		if got := IncludedTax(tc.total, tc.rate); got != tc.want {
			t.Fatalf("IncludedTax(%d, %d) = %d, want %d", tc.total, tc.rate, got, tc.want)
		}
	}
}
