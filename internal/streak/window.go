package streak

import (
	"time"

	"github.com/strideapp/stride/internal/model"
)

// Counts holds how many completions fall into each calendar window
// anchored at a reference time.
type Counts struct {
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
	ThisYear  int `json:"this_year"`
}

// WindowCounts buckets events into the calendar windows containing now.
// The week window is Sunday-anchored.
func WindowCounts(events []time.Time, now time.Time) Counts {
	var c Counts
	events = inLocation(events, now.Location())
	ws := weekStart(now)
	weekEnd := ws.AddDate(0, 0, 7)

	for _, ev := range events {
		if sameDay(ev, now) {
			c.Today++
		}
		if !ev.Before(ws) && ev.Before(weekEnd) {
			c.ThisWeek++
		}
		if ev.Year() == now.Year() && ev.Month() == now.Month() {
			c.ThisMonth++
		}
		if ev.Year() == now.Year() {
			c.ThisYear++
		}
	}
	return c
}

// Progress returns a display percentage in [0, 100] for the habit's
// natural progress window. The denominator reflects how much of the
// period has elapsed so far, not the full period, so early-period
// percentages are not artificially low.
func Progress(counts Counts, freq model.Frequency, targetCount int, now time.Time) float64 {
	if targetCount < 1 {
		targetCount = 1
	}

	var done, expected int
	switch freq {
	case model.FrequencyWeekly:
		done = counts.ThisMonth
		expected = min(weeksElapsedThisMonth(now), targetCount)
	case model.FrequencyMonthly:
		done = counts.ThisYear
		expected = min(int(now.Month()), targetCount)
	default:
		done = counts.ThisWeek
		expected = dayOfWeekOrdinal(now)
	}

	if expected < 1 {
		expected = 1
	}
	pct := float64(done) / float64(expected) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// dayOfWeekOrdinal maps the weekday to elapsed days 1..7, with Sunday
// treated as the completed-week case (7).
func dayOfWeekOrdinal(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func weeksElapsedThisMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}
