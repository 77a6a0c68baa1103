// Package streak holds the pure temporal logic of the engine: streak
// calculation, calendar window aggregation, and milestone detection.
// Nothing here reads the wall clock; now is always an explicit input.
package streak

import (
	"sort"
	"time"

	"github.com/strideapp/stride/internal/model"
)

// dailyTolerance is the maximum gap between consecutive daily
// completions before the chain breaks. 1.5 days absorbs different
// times-of-day across midnight; one fully missed day still breaks it.
const dailyTolerance = 36 * time.Hour

// Calculate returns the current streak length for the given completion
// timestamps under the habit's frequency, relative to now.
func Calculate(events []time.Time, freq model.Frequency, now time.Time) int {
	if len(events) == 0 {
		return 0
	}
	events = inLocation(events, now.Location())

	switch freq {
	case model.FrequencyWeekly:
		return bucketStreak(events, now, weekStart, func(t time.Time) time.Time {
			return t.AddDate(0, 0, -7)
		})
	case model.FrequencyMonthly:
		return bucketStreak(events, now, monthStart, func(t time.Time) time.Time {
			return t.AddDate(0, -1, 0)
		})
	default:
		return dailyStreak(events, now)
	}
}

func dailyStreak(events []time.Time, now time.Time) int {
	sorted := make([]time.Time, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	if now.Sub(sorted[0]) > dailyTolerance {
		return 0
	}

	count := 1
	prev := sorted[0]
	for _, ev := range sorted[1:] {
		if sameDay(ev, prev) {
			// Duplicate entry for an already-counted day: the chain
			// continues but the streak does not grow.
			prev = ev
			continue
		}
		if prev.Sub(ev) > dailyTolerance {
			break
		}
		count++
		prev = ev
	}
	return count
}

// bucketStreak walks calendar buckets backward from the bucket
// containing now, counting consecutive non-empty ones.
func bucketStreak(events []time.Time, now time.Time, bucket func(time.Time) time.Time, prev func(time.Time) time.Time) int {
	occupied := make(map[time.Time]struct{}, len(events))
	for _, ev := range events {
		occupied[bucket(ev)] = struct{}{}
	}

	count := 0
	for cur := bucket(now); ; cur = prev(cur) {
		if _, ok := occupied[cur]; !ok {
			break
		}
		count++
	}
	return count
}

// inLocation rebases timestamps into loc. Stored completion times are
// UTC; calendar bucketing has to happen in the caller's zone or a
// completion logged late in the local evening lands on the wrong day.
func inLocation(events []time.Time, loc *time.Location) []time.Time {
	out := make([]time.Time, len(events))
	for i, ev := range events {
		out[i] = ev.In(loc)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart returns midnight of the Sunday beginning the week containing t.
func weekStart(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
