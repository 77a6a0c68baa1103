// Package reminder decides who needs a nudge. One sweep walks active
// habits and goals, checks preferences and today's activity, and hands
// NotificationRequests to the dispatcher.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strideapp/stride/internal/email"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/notify"
	"github.com/strideapp/stride/internal/store"
	"github.com/strideapp/stride/internal/streak"
)

const (
	// sweepParallelism bounds how many habit/goal decisions run at
	// once. Each decision is independent of every other.
	sweepParallelism = 8

	// goalReminderWindowDays: goals within this many days of their
	// deadline (inclusive, and not past) get a reminder.
	goalReminderWindowDays = 3

	recentWindow = 100

	periodLayout = "2006-01-02"
)

// Stats summarizes one sweep.
type Stats struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

type Sweeper struct {
	habits        *store.HabitStore
	goals         *store.GoalStore
	userStore     *store.UserStore
	notifications *store.NotificationStore
	dispatcher    *notify.Dispatcher
	logger        *slog.Logger
}

func NewSweeper(hs *store.HabitStore, gs *store.GoalStore, us *store.UserStore, ns *store.NotificationStore, d *notify.Dispatcher, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		habits:        hs,
		goals:         gs,
		userStore:     us,
		notifications: ns,
		dispatcher:    d,
		logger:        logger,
	}
}

// Sweep runs one reminder pass anchored at now. Repeated sweeps within
// the same period are deduplicated through the reminder log, so running
// it twice in a day cannot double-remind anyone.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Stats, error) {
	var sent, skipped atomic.Int64

	habits, err := s.habits.ListActive(model.FrequencyDaily)
	if err != nil {
		return Stats{}, fmt.Errorf("list active habits: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)

	for _, habit := range habits {
		h := habit
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ok, err := s.remindHabit(h, now)
			if err != nil {
				s.logger.Error("habit reminder", "habit_id", h.ID, "error", err)
				skipped.Add(1)
				return nil
			}
			if ok {
				sent.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}

	goals, err := s.goals.ListActiveWithDeadline()
	if err != nil {
		return Stats{}, fmt.Errorf("list goals: %w", err)
	}
	for _, goal := range goals {
		gl := goal
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ok, err := s.remindGoal(gl, now)
			if err != nil {
				s.logger.Error("goal reminder", "goal_id", gl.ID, "error", err)
				skipped.Add(1)
				return nil
			}
			if ok {
				sent.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	s.weeklyReports(ctx, now, &sent, &skipped)

	// Dedup rows older than the longest period (a week) plus slack are
	// never consulted again.
	if err := s.notifications.CleanupReminderLog(now.AddDate(0, 0, -30)); err != nil {
		s.logger.Warn("cleanup reminder log", "error", err)
	}

	stats := Stats{Sent: int(sent.Load()), Skipped: int(skipped.Load())}
	s.logger.Info("reminder sweep complete", "sent", stats.Sent, "skipped", stats.Skipped)
	return stats, nil
}

// remindHabit reports whether a reminder went out for the habit.
func (s *Sweeper) remindHabit(h model.Habit, now time.Time) (bool, error) {
	pref, err := s.notifications.GetPreference(h.OwnerID)
	if err != nil {
		return false, err
	}
	if !pref.EmailEnabled || !pref.HabitReminders {
		return false, nil
	}

	events, err := s.habits.ListRecentCompletions(h.ID, recentWindow)
	if err != nil {
		return false, err
	}
	counts := streak.WindowCounts(timestamps(events), now)
	if counts.Today > 0 {
		return false, nil
	}

	refID := fmt.Sprintf("habit-%d", h.ID)
	period := now.Format(periodLayout)
	reminded, err := s.notifications.WasReminded(model.CategoryHabitReminder, refID, period)
	if err != nil {
		return false, err
	}
	if reminded {
		return false, nil
	}

	_, err = s.dispatcher.Dispatch(notify.Request{
		OwnerID:  h.OwnerID,
		Title:    "Don't break the chain!",
		Message:  fmt.Sprintf("You haven't logged %q today. Current streak: %d.", h.Name, h.CurrentStreak),
		Category: model.CategoryHabitReminder,
		Email: email.Data{
			HabitName:     h.Name,
			CurrentStreak: h.CurrentStreak,
		},
	})
	if err != nil {
		return false, err
	}

	if err := s.notifications.RecordReminded(model.CategoryHabitReminder, refID, period); err != nil {
		s.logger.Error("record habit reminder", "habit_id", h.ID, "error", err)
	}
	return true, nil
}

// remindGoal reports whether a reminder went out for the goal.
func (s *Sweeper) remindGoal(g model.Goal, now time.Time) (bool, error) {
	if g.TargetDate == nil {
		return false, nil
	}

	days := daysUntil(now, *g.TargetDate)
	if days < 0 || days > goalReminderWindowDays {
		return false, nil
	}

	pref, err := s.notifications.GetPreference(g.OwnerID)
	if err != nil {
		return false, err
	}
	if !pref.EmailEnabled || !pref.GoalReminders {
		return false, nil
	}

	refID := fmt.Sprintf("goal-%d", g.ID)
	period := now.Format(periodLayout)
	reminded, err := s.notifications.WasReminded(model.CategoryGoalReminder, refID, period)
	if err != nil {
		return false, err
	}
	if reminded {
		return false, nil
	}

	var message string
	switch days {
	case 0:
		message = fmt.Sprintf("%q is due today.", g.Title)
	case 1:
		message = fmt.Sprintf("%q is due tomorrow.", g.Title)
	default:
		message = fmt.Sprintf("%q is due in %d days.", g.Title, days)
	}

	_, err = s.dispatcher.Dispatch(notify.Request{
		OwnerID:  g.OwnerID,
		Title:    "Goal deadline approaching",
		Message:  message,
		Category: model.CategoryGoalReminder,
		Email: email.Data{
			GoalTitle:         g.Title,
			GoalDescription:   g.Description,
			DaysUntilDeadline: days,
		},
	})
	if err != nil {
		return false, err
	}

	if err := s.notifications.RecordReminded(model.CategoryGoalReminder, refID, period); err != nil {
		s.logger.Error("record goal reminder", "goal_id", g.ID, "error", err)
	}
	return true, nil
}

// daysUntil counts whole calendar days from now's date to the target's
// date. Negative means the deadline has passed.
func daysUntil(now, target time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(targetDay.Sub(nowDay) / (24 * time.Hour))
}

func timestamps(events []model.CompletionEvent) []time.Time {
	out := make([]time.Time, len(events))
	for i, ev := range events {
		out[i] = ev.CompletedAt
	}
	return out
}
