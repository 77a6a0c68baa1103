package reminder

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/strideapp/stride/internal/database"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/notify"
	"github.com/strideapp/stride/internal/store"
)

type sweepFixture struct {
	sweeper       *Sweeper
	habits        *store.HabitStore
	goals         *store.GoalStore
	users         *store.UserStore
	notifications *store.NotificationStore
	owner         int64
}

func setupSweep(t *testing.T) *sweepFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	user, err := us.Create("frank@example.com", "Frank")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	hs := store.NewHabitStore(db)
	gs := store.NewGoalStore(db)
	ns := store.NewNotificationStore(db)
	dispatcher := notify.NewDispatcher(ns, us, nil, nil, slog.Default())
	sweeper := NewSweeper(hs, gs, us, ns, dispatcher, slog.Default())

	return &sweepFixture{
		sweeper:       sweeper,
		habits:        hs,
		goals:         gs,
		users:         us,
		notifications: ns,
		owner:         user.ID,
	}
}

// Wednesday March 25 2026 — not a Sunday, so weekly reports stay out of
// the way in most tests.
var sweepNow = time.Date(2026, 3, 25, 18, 0, 0, 0, time.UTC)

func TestSweepRemindsIdleDailyHabit(t *testing.T) {
	f := setupSweep(t)

	h, err := f.habits.Create(f.owner, "Morning run", model.FrequencyDaily, 1)
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	stats, err := f.sweeper.Sweep(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stats.Sent != 1 {
		t.Errorf("sent = %d, want 1", stats.Sent)
	}

	list, err := f.notifications.ListByOwner(f.owner, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("notifications = %d, want 1", len(list))
	}
	if list[0].Category != model.CategoryHabitReminder {
		t.Errorf("category = %q, want %q", list[0].Category, model.CategoryHabitReminder)
	}

	_ = h
}

func TestSweepSkipsCompletedToday(t *testing.T) {
	f := setupSweep(t)

	h, _ := f.habits.Create(f.owner, "Morning run", model.FrequencyDaily, 1)
	if _, err := f.habits.CreateCompletion(h.ID, sweepNow.Add(-2*time.Hour), ""); err != nil {
		t.Fatalf("create completion: %v", err)
	}

	stats, err := f.sweeper.Sweep(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stats.Sent != 0 {
		t.Errorf("sent = %d, want 0", stats.Sent)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.Skipped)
	}
}

func TestSweepSkipsWhenPreferencesOff(t *testing.T) {
	f := setupSweep(t)

	f.habits.Create(f.owner, "Morning run", model.FrequencyDaily, 1)
	if err := f.notifications.SetPreference(model.NotificationPreference{
		UserID:        f.owner,
		EmailEnabled:  true,
		GoalReminders: true,
		Achievements:  true,
		WeeklyReport:  true,
		// HabitReminders off
	}); err != nil {
		t.Fatalf("set preference: %v", err)
	}

	stats, err := f.sweeper.Sweep(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stats.Sent != 0 {
		t.Errorf("sent = %d, want 0", stats.Sent)
	}
}

func TestSweepDeduplicatesSameDay(t *testing.T) {
	f := setupSweep(t)

	f.habits.Create(f.owner, "Morning run", model.FrequencyDaily, 1)

	first, err := f.sweeper.Sweep(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.Sent != 1 {
		t.Fatalf("first sweep sent = %d, want 1", first.Sent)
	}

	second, err := f.sweeper.Sweep(context.Background(), sweepNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Sent != 0 {
		t.Errorf("second sweep sent = %d, want 0", second.Sent)
	}

	// Next day is a fresh period.
	third, err := f.sweeper.Sweep(context.Background(), sweepNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("third sweep: %v", err)
	}
	if third.Sent != 1 {
		t.Errorf("next-day sweep sent = %d, want 1", third.Sent)
	}
}

func TestSweepIgnoresWeeklyHabits(t *testing.T) {
	f := setupSweep(t)

	f.habits.Create(f.owner, "Long swim", model.FrequencyWeekly, 2)

	stats, err := f.sweeper.Sweep(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stats.Sent != 0 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want nothing considered", stats)
	}
}

func TestSweepGoalDeadlineWindow(t *testing.T) {
	f := setupSweep(t)

	cases := []struct {
		daysOut  int
		wantSent bool
	}{
		{0, true}, {1, true}, {3, true}, {4, false}, {-1, false},
	}
	for _, tc := range cases {
		deadline := sweepNow.AddDate(0, 0, tc.daysOut)
		g, err := f.goals.Create(f.owner, "Goal", "", &deadline)
		if err != nil {
			t.Fatalf("create goal: %v", err)
		}

		stats, err := f.sweeper.Sweep(context.Background(), sweepNow)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		gotSent := stats.Sent > 0
		if gotSent != tc.wantSent {
			t.Errorf("daysOut %d: sent = %v, want %v", tc.daysOut, gotSent, tc.wantSent)
		}

		// Complete the goal so it drops out of the next iteration.
		if _, err := f.goals.SetCompleted(g.ID, sweepNow); err != nil {
			t.Fatalf("complete goal: %v", err)
		}
	}
}

func TestSweepWeeklyReportOnSunday(t *testing.T) {
	f := setupSweep(t)

	h, _ := f.habits.Create(f.owner, "Read", model.FrequencyDaily, 1)

	sunday := time.Date(2026, 3, 29, 18, 0, 0, 0, time.UTC)
	// Completions during the week being reported (Mar 22–28).
	f.habits.CreateCompletion(h.ID, time.Date(2026, 3, 24, 9, 0, 0, 0, time.UTC), "")
	f.habits.CreateCompletion(h.ID, time.Date(2026, 3, 26, 9, 0, 0, 0, time.UTC), "")
	// A completion on the Sunday itself keeps the habit reminder quiet.
	f.habits.CreateCompletion(h.ID, sunday.Add(-time.Hour), "")

	stats, err := f.sweeper.Sweep(context.Background(), sunday)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stats.Sent != 1 {
		t.Fatalf("sent = %d, want 1 weekly report", stats.Sent)
	}

	list, _ := f.notifications.ListByOwner(f.owner, 10)
	if len(list) != 1 || list[0].Category != model.CategoryWeeklyReport {
		t.Fatalf("notifications = %v, want one weekly report", list)
	}

	// Re-running the Sunday sweep does not send a second report.
	again, err := f.sweeper.Sweep(context.Background(), sunday.Add(time.Hour))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again.Sent != 0 {
		t.Errorf("second sunday sweep sent = %d, want 0", again.Sent)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 25, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		target time.Time
		want   int
	}{
		{time.Date(2026, 3, 25, 1, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, 3, 26, 0, 30, 0, 0, time.UTC), 1},
		{time.Date(2026, 3, 28, 12, 0, 0, 0, time.UTC), 3},
		{time.Date(2026, 3, 24, 12, 0, 0, 0, time.UTC), -1},
	}
	for _, tc := range cases {
		if got := daysUntil(now, tc.target); got != tc.want {
			t.Errorf("daysUntil(%v) = %d, want %d", tc.target, got, tc.want)
		}
	}
}
