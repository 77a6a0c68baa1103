package reminder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/strideapp/stride/internal/email"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/notify"
)

// weeklyReports sends each user a summary of the week that just ended.
// Reports go out on Sundays only and are deduplicated per user per
// week, so extra sweeps on a Sunday stay quiet.
func (s *Sweeper) weeklyReports(ctx context.Context, now time.Time, sent, skipped *atomic.Int64) {
	if now.Weekday() != time.Sunday {
		return
	}

	users, err := s.userStore.List()
	if err != nil {
		s.logger.Error("weekly report users", "error", err)
		return
	}

	// The Sunday sweep reports on the week that ended yesterday.
	weekEnd := startOfDay(now)
	weekStart := weekEnd.AddDate(0, 0, -7)
	period := weekStart.Format(periodLayout)

	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		ok, err := s.sendWeeklyReport(u, weekStart, weekEnd, period)
		if err != nil {
			s.logger.Error("weekly report", "user_id", u.ID, "error", err)
			skipped.Add(1)
			continue
		}
		if ok {
			sent.Add(1)
		} else {
			skipped.Add(1)
		}
	}
}

func (s *Sweeper) sendWeeklyReport(u model.User, weekStart, weekEnd time.Time, period string) (bool, error) {
	pref, err := s.notifications.GetPreference(u.ID)
	if err != nil {
		return false, err
	}
	if !pref.EmailEnabled || !pref.WeeklyReport {
		return false, nil
	}

	refID := fmt.Sprintf("user-%d", u.ID)
	reminded, err := s.notifications.WasReminded(model.CategoryWeeklyReport, refID, period)
	if err != nil {
		return false, err
	}
	if reminded {
		return false, nil
	}

	habitsDone, err := s.habits.CountCompletionsBetweenForOwner(u.ID, weekStart, weekEnd)
	if err != nil {
		return false, err
	}
	goalsDone, err := s.goals.CountCompletedBetweenForOwner(u.ID, weekStart, weekEnd)
	if err != nil {
		return false, err
	}

	_, err = s.dispatcher.Dispatch(notify.Request{
		OwnerID:  u.ID,
		Title:    "Your week in review",
		Message:  fmt.Sprintf("Last week: %d habit completions, %d goals finished.", habitsDone, goalsDone),
		Category: model.CategoryWeeklyReport,
		Email: email.Data{
			WeekStart:            weekStart.Format(periodLayout),
			WeekEnd:              weekEnd.AddDate(0, 0, -1).Format(periodLayout),
			GoalsCompleted:       goalsDone,
			HabitsCompleted:      habitsDone,
			EncouragementMessage: encouragement(habitsDone),
		},
	})
	if err != nil {
		return false, err
	}

	if err := s.notifications.RecordReminded(model.CategoryWeeklyReport, refID, period); err != nil {
		s.logger.Error("record weekly report", "user_id", u.ID, "error", err)
	}
	return true, nil
}

func encouragement(habitsDone int) string {
	switch {
	case habitsDone == 0:
		return "A fresh week is a fresh start. Pick one habit and log it today."
	case habitsDone < 5:
		return "Good groundwork. Try to keep every chain unbroken this week."
	default:
		return "Strong week. Keep the momentum."
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
