package entity

import (
	"testing"
	"time"
)

func TestGracePeriodWindow(t *testing.T) {
	periodEnd := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	sub := Subscription{CurrentPeriodEnd: periodEnd}
	const graceDays = 7

	cases := []struct {
		name    string
		now     time.Time
		inGrace bool
		expired bool
	}{
		{"before period end", periodEnd.Add(-time.Hour), false, false},
		{"just after period end", periodEnd.Add(time.Hour), true, false},
		{"last day of grace", periodEnd.AddDate(0, 0, 6), true, false},
		{"grace lapsed", periodEnd.AddDate(0, 0, 7), false, true},
		{"long expired", periodEnd.AddDate(0, 1, 0), false, true},
	}

	for _, c := range cases {
		if got := sub.InGracePeriod(c.now, graceDays); got != c.inGrace {
			t.Errorf("%s: InGracePeriod = %v, want %v", c.name, got, c.inGrace)
		}
		if got := sub.Expired(c.now, graceDays); got != c.expired {
			t.Errorf("%s: Expired = %v, want %v", c.name, got, c.expired)
		}
	}
}
