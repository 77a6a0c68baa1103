package streak

import (
	"testing"
	"time"

	"github.com/strideapp/stride/internal/model"
)

func TestWindowCounts(t *testing.T) {
	// March 2026: the 1st is a Sunday; now is Wednesday the 25th.
	now := time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC)
	events := []time.Time{
		time.Date(2026, 3, 25, 8, 0, 0, 0, time.UTC),  // today
		time.Date(2026, 3, 23, 9, 0, 0, 0, time.UTC),  // this week
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),  // this month
		time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),   // this year
		time.Date(2025, 12, 30, 9, 0, 0, 0, time.UTC), // last year
	}

	c := WindowCounts(events, now)
	if c.Today != 1 {
		t.Errorf("Today = %d, want 1", c.Today)
	}
	if c.ThisWeek != 2 {
		t.Errorf("ThisWeek = %d, want 2", c.ThisWeek)
	}
	if c.ThisMonth != 3 {
		t.Errorf("ThisMonth = %d, want 3", c.ThisMonth)
	}
	if c.ThisYear != 4 {
		t.Errorf("ThisYear = %d, want 4", c.ThisYear)
	}
}

func TestWindowCountsIndependentOfStreak(t *testing.T) {
	// Two completions in the current week bucket count as 2 regardless
	// of what the streak calculation says about them.
	now := time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC)
	events := []time.Time{
		time.Date(2026, 3, 22, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 24, 9, 0, 0, 0, time.UTC),
	}

	c := WindowCounts(events, now)
	if c.ThisWeek != 2 {
		t.Errorf("ThisWeek = %d, want 2", c.ThisWeek)
	}
	if got := Calculate(events, model.FrequencyWeekly, now); got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}

func TestWindowCountsEmpty(t *testing.T) {
	c := WindowCounts(nil, time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC))
	if c != (Counts{}) {
		t.Errorf("counts = %+v, want zero", c)
	}
}

func TestProgressDailyMidWeek(t *testing.T) {
	// Wednesday: 3 elapsed days, 2 completions this week.
	now := time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC)
	counts := Counts{ThisWeek: 2}

	got := Progress(counts, model.FrequencyDaily, 1, now)
	want := 2.0 / 3.0 * 100
	if got != want {
		t.Errorf("progress = %f, want %f", got, want)
	}
}

func TestProgressDailySundayIsFullWeek(t *testing.T) {
	// Sunday maps to ordinal 7, the completed-week case.
	now := time.Date(2026, 3, 29, 14, 0, 0, 0, time.UTC) // Sunday
	counts := Counts{ThisWeek: 7}

	if got := Progress(counts, model.FrequencyDaily, 1, now); got != 100 {
		t.Errorf("progress = %f, want 100", got)
	}
}

func TestProgressCapsAtHundred(t *testing.T) {
	now := time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC)
	counts := Counts{ThisWeek: 12}

	if got := Progress(counts, model.FrequencyDaily, 1, now); got != 100 {
		t.Errorf("progress = %f, want 100", got)
	}
}

func TestProgressWeeklyHabit(t *testing.T) {
	// March 25 is in the 4th elapsed week of the month; target 3 caps
	// the denominator at 3.
	now := time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC)
	counts := Counts{ThisMonth: 2}

	got := Progress(counts, model.FrequencyWeekly, 3, now)
	want := 2.0 / 3.0 * 100
	if got != want {
		t.Errorf("progress = %f, want %f", got, want)
	}
}

func TestProgressMonthlyHabit(t *testing.T) {
	// March: 3 elapsed months, target 12.
	now := time.Date(2026, 3, 25, 14, 0, 0, 0, time.UTC)
	counts := Counts{ThisYear: 3}

	if got := Progress(counts, model.FrequencyMonthly, 12, now); got != 100 {
		t.Errorf("progress = %f, want 100", got)
	}
}

func TestWeeksElapsedThisMonth(t *testing.T) {
	cases := []struct {
		day  int
		want int
	}{
		{1, 1}, {7, 1}, {8, 2}, {14, 2}, {15, 3}, {22, 4}, {29, 5},
	}
	for _, tc := range cases {
		now := time.Date(2026, 3, tc.day, 12, 0, 0, 0, time.UTC)
		if got := weeksElapsedThisMonth(now); got != tc.want {
			t.Errorf("weeksElapsedThisMonth(day %d) = %d, want %d", tc.day, got, tc.want)
		}
	}
}

func TestWindowCountsStoredUTCLocalNow(t *testing.T) {
	// Completions persist as UTC; the window anchor arrives in the
	// caller's zone. The same instant must bucket into the same day.
	nzdt := time.FixedZone("NZDT", 13*3600)
	now := time.Date(2026, 3, 25, 10, 0, 0, 0, nzdt)

	events := []time.Time{
		now.UTC(),                                       // logged "now", stored as 2026-03-24 21:00 UTC
		time.Date(2026, 3, 24, 11, 30, 0, 0, time.UTC),  // local 2026-03-25 00:30
		time.Date(2026, 3, 23, 20, 0, 0, 0, time.UTC),   // local 2026-03-24, not today
	}

	c := WindowCounts(events, now)
	if c.Today != 2 {
		t.Errorf("today = %d, want 2", c.Today)
	}
	if c.ThisWeek != 3 {
		t.Errorf("this week = %d, want 3", c.ThisWeek)
	}
}
