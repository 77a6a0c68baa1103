package store

import (
	"testing"
	"time"

	"github.com/strideapp/stride/internal/database"
	"github.com/strideapp/stride/internal/model"
)

func setupHabitTestDB(t *testing.T) (*HabitStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := NewUserStore(db).Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewHabitStore(db), user.ID
}

func TestHabitCreateAndGet(t *testing.T) {
	hs, owner := setupHabitTestDB(t)

	h, err := hs.Create(owner, "Morning run", model.FrequencyDaily, 1)
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if h.Name != "Morning run" {
		t.Errorf("name = %q, want %q", h.Name, "Morning run")
	}
	if h.Frequency != model.FrequencyDaily {
		t.Errorf("frequency = %q, want %q", h.Frequency, model.FrequencyDaily)
	}
	if !h.IsActive {
		t.Error("new habit should be active")
	}
	if h.CurrentStreak != 0 || h.BestStreak != 0 {
		t.Errorf("streaks = %d/%d, want 0/0", h.CurrentStreak, h.BestStreak)
	}

	got, err := hs.GetByID(h.ID)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if got.Name != h.Name {
		t.Errorf("got name = %q, want %q", got.Name, h.Name)
	}
}

func TestHabitGetByIDNotFound(t *testing.T) {
	hs, _ := setupHabitTestDB(t)

	got, err := hs.GetByID(9999)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent habit")
	}
}

func TestHabitListActiveFiltersDeactivated(t *testing.T) {
	hs, owner := setupHabitTestDB(t)

	a, _ := hs.Create(owner, "Read", model.FrequencyDaily, 1)
	b, _ := hs.Create(owner, "Swim", model.FrequencyWeekly, 2)
	if err := hs.SetActive(b.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := hs.ListActive("")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("active = %v, want only habit %d", active, a.ID)
	}

	daily, err := hs.ListActive(model.FrequencyDaily)
	if err != nil {
		t.Fatalf("list active daily: %v", err)
	}
	if len(daily) != 1 {
		t.Errorf("daily = %d habits, want 1", len(daily))
	}
}

func TestUpdateStreaksBestIsMonotonic(t *testing.T) {
	hs, owner := setupHabitTestDB(t)

	h, err := hs.Create(owner, "Meditate", model.FrequencyDaily, 1)
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	// best_streak must never decrease across any sequence of recomputes.
	sequence := []struct {
		current  int
		wantBest int
	}{
		{3, 3}, {5, 5}, {0, 5}, {2, 5}, {8, 8}, {1, 8},
	}
	for _, step := range sequence {
		if err := hs.UpdateStreaks(h.ID, step.current); err != nil {
			t.Fatalf("update streaks: %v", err)
		}
		got, err := hs.GetByID(h.ID)
		if err != nil {
			t.Fatalf("get habit: %v", err)
		}
		if got.CurrentStreak != step.current {
			t.Errorf("current = %d, want %d", got.CurrentStreak, step.current)
		}
		if got.BestStreak != step.wantBest {
			t.Errorf("best = %d, want %d", got.BestStreak, step.wantBest)
		}
	}
}

func TestCompletionsAppendAndRecentWindow(t *testing.T) {
	hs, owner := setupHabitTestDB(t)

	h, err := hs.Create(owner, "Journal", model.FrequencyDaily, 1)
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := hs.CreateCompletion(h.ID, base.AddDate(0, 0, i), ""); err != nil {
			t.Fatalf("create completion %d: %v", i, err)
		}
	}

	recent, err := hs.ListRecentCompletions(h.ID, 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent = %d completions, want 3", len(recent))
	}
	// Newest first.
	if !recent[0].CompletedAt.After(recent[1].CompletedAt) {
		t.Errorf("expected descending order, got %v then %v", recent[0].CompletedAt, recent[1].CompletedAt)
	}
}

func TestCountCompletionsBetweenForOwner(t *testing.T) {
	hs, owner := setupHabitTestDB(t)

	h, _ := hs.Create(owner, "Stretch", model.FrequencyDaily, 1)
	hs.CreateCompletion(h.ID, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), "")
	hs.CreateCompletion(h.ID, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), "")
	hs.CreateCompletion(h.ID, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), "")

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	count, err := hs.CountCompletionsBetweenForOwner(owner, start, end)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
