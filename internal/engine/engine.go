// Package engine ties the completion log, streak calculation, and
// milestone detection together behind the operations the rest of the
// app calls.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/strideapp/stride/internal/email"
	apperr "github.com/strideapp/stride/internal/errors"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/notify"
	"github.com/strideapp/stride/internal/store"
	"github.com/strideapp/stride/internal/streak"
	"github.com/strideapp/stride/internal/websocket"
)

// recentWindow caps how many events a recompute reads. Logging a
// completion sits on the interactive path, so the cost must stay
// bounded no matter how old the habit is.
const recentWindow = 100

// CompletionResult is what a caller gets back from logging a completion.
type CompletionResult struct {
	CurrentStreak int                  `json:"current_streak"`
	BestStreak    int                  `json:"best_streak"`
	Achievements  []streak.Achievement `json:"achievements"`
}

// Stats combines window counts with the display progress percentage.
type Stats struct {
	streak.Counts
	Progress float64 `json:"progress"`
}

type Engine struct {
	habits     *store.HabitStore
	dispatcher *notify.Dispatcher
	hub        *websocket.Hub
	logger     *slog.Logger

	// One lock per habit serializes append+recompute so two rapid
	// completions cannot each recompute from a snapshot missing the
	// other's insert.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(habits *store.HabitStore, dispatcher *notify.Dispatcher, hub *websocket.Hub, logger *slog.Logger) *Engine {
	return &Engine{
		habits:     habits,
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger,
		locks:      make(map[int64]*sync.Mutex),
	}
}

func (e *Engine) habitLock(id int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// LogCompletion appends a completion event for the habit and runs the
// recompute flow: streak, best-streak high-water mark, milestones,
// achievement notifications. now is injected so the flow is
// deterministic and testable.
func (e *Engine) LogCompletion(habitID int64, now time.Time, note string) (*CompletionResult, error) {
	l := e.habitLock(habitID)
	l.Lock()
	defer l.Unlock()

	// The habit row must be read under the lock: current_streak is the
	// milestone baseline, and a stale read lets two concurrent logs of
	// the same completion both cross a threshold.
	habit, err := e.habits.GetByID(habitID)
	if err != nil {
		return nil, apperr.Persistence(err, "load habit %d", habitID)
	}
	if habit == nil {
		return nil, apperr.NotFound("habit %d", habitID)
	}
	if !habit.IsActive {
		return nil, apperr.Validation("habit %d is not active", habitID)
	}

	if _, err := e.habits.CreateCompletion(habitID, now, note); err != nil {
		// A failed append must not trigger a recompute.
		return nil, apperr.Persistence(err, "append completion for habit %d", habitID)
	}

	updated, achievements, err := e.recompute(habit, now)
	if err != nil {
		return nil, err
	}

	for _, a := range achievements {
		if _, err := e.dispatcher.Dispatch(notify.Request{
			OwnerID:  habit.OwnerID,
			Title:    a.Title,
			Message:  a.Description,
			Category: model.CategoryAchievement,
			Email: email.Data{
				AchievementTitle: a.Title,
				Description:      a.Description,
			},
		}); err != nil {
			// Achievement delivery failing should not fail the log
			// itself; the streak update has already committed.
			e.logger.Error("dispatch achievement", "habit_id", habitID, "threshold", a.Threshold, "error", err)
		}
	}

	if e.hub != nil {
		e.hub.Send(websocket.NewMessage("streak", "updated", habitID, habit.OwnerID, map[string]any{
			"current_streak": updated.CurrentStreak,
			"best_streak":    updated.BestStreak,
		}))
	}

	return &CompletionResult{
		CurrentStreak: updated.CurrentStreak,
		BestStreak:    updated.BestStreak,
		Achievements:  achievements,
	}, nil
}

// recompute re-reads the recent completion window, recalculates the
// streak, and materializes it. Callers hold the habit lock.
func (e *Engine) recompute(habit *model.Habit, now time.Time) (*model.Habit, []streak.Achievement, error) {
	events, err := e.habits.ListRecentCompletions(habit.ID, recentWindow)
	if err != nil {
		return nil, nil, apperr.Persistence(err, "list completions for habit %d", habit.ID)
	}

	current := streak.Calculate(timestamps(events), habit.Frequency, now)
	if err := e.habits.UpdateStreaks(habit.ID, current); err != nil {
		return nil, nil, apperr.Persistence(err, "update streaks for habit %d", habit.ID)
	}

	updated, err := e.habits.GetByID(habit.ID)
	if err != nil || updated == nil {
		return nil, nil, apperr.Persistence(err, "reload habit %d", habit.ID)
	}

	achievements := streak.DetectMilestones(habit.CurrentStreak, current)
	return updated, achievements, nil
}

// GetStreak returns the materialized current streak for a habit.
func (e *Engine) GetStreak(habitID int64) (int, error) {
	habit, err := e.habits.GetByID(habitID)
	if err != nil {
		return 0, apperr.Persistence(err, "load habit %d", habitID)
	}
	if habit == nil {
		return 0, apperr.NotFound("habit %d", habitID)
	}
	return habit.CurrentStreak, nil
}

// GetWindowStats returns calendar window counts and the progress
// percentage for a habit, anchored at now.
func (e *Engine) GetWindowStats(habitID int64, now time.Time) (*Stats, error) {
	habit, err := e.habits.GetByID(habitID)
	if err != nil {
		return nil, apperr.Persistence(err, "load habit %d", habitID)
	}
	if habit == nil {
		return nil, apperr.NotFound("habit %d", habitID)
	}

	events, err := e.habits.ListRecentCompletions(habitID, recentWindow)
	if err != nil {
		return nil, apperr.Persistence(err, "list completions for habit %d", habitID)
	}

	counts := streak.WindowCounts(timestamps(events), now)
	return &Stats{
		Counts:   counts,
		Progress: streak.Progress(counts, habit.Frequency, habit.TargetCount, now),
	}, nil
}

func timestamps(events []model.CompletionEvent) []time.Time {
	out := make([]time.Time, len(events))
	for i, ev := range events {
		out[i] = ev.CompletedAt
	}
	return out
}
