package streak

import "fmt"

// Achievement is emitted when a streak lands exactly on a milestone
// threshold. It is transient: produced and consumed within one
// completion-handling flow, never persisted as its own entity.
type Achievement struct {
	Threshold   int    `json:"threshold"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type milestone struct {
	threshold int
	title     string
}

var milestones = []milestone{
	{7, "Week Warrior"},
	{30, "Month Master"},
	{100, "Century Champion"},
}

// DetectMilestones compares a streak transition against the fixed
// thresholds. A threshold fires only on exact equality with the new
// streak, not on crossing: a streak that jumps from 5 to 10 in one
// recompute (a backfilled import) skips the 7 threshold entirely.
// Combined with the monotonic streak update this keeps each
// (habit, threshold) pair to at most one achievement.
func DetectMilestones(previous, current int) []Achievement {
	if current <= previous {
		return nil
	}

	var out []Achievement
	for _, m := range milestones {
		if current == m.threshold {
			out = append(out, Achievement{
				Threshold:   m.threshold,
				Title:       m.title,
				Description: fmt.Sprintf("You reached a streak of %d!", m.threshold),
			})
		}
	}
	return out
}
