package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/model"
)

type HabitStore struct {
	db *sql.DB
}

func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

func scanHabit(scanner interface{ Scan(...any) error }) (*model.Habit, error) {
	var h model.Habit
	var isActive int
	err := scanner.Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.Frequency, &h.TargetCount,
		&h.CurrentStreak, &h.BestStreak, &isActive,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.IsActive = isActive != 0
	return &h, nil
}

const habitCols = `id, owner_id, name, frequency, target_count, current_streak, best_streak, is_active, created_at, updated_at`

func (s *HabitStore) Create(ownerID int64, name string, frequency model.Frequency, targetCount int) (*model.Habit, error) {
	result, err := s.db.Exec(
		`INSERT INTO habits (owner_id, name, frequency, target_count) VALUES (?, ?, ?, ?)`,
		ownerID, name, string(frequency), targetCount,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HabitStore) GetByID(id int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

func (s *HabitStore) List() ([]model.Habit, error) {
	rows, err := s.db.Query(`SELECT ` + habitCols + ` FROM habits ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()
	return scanHabits(rows)
}

// ListActive returns active habits, optionally filtered by frequency.
// Pass an empty frequency for all active habits.
func (s *HabitStore) ListActive(frequency model.Frequency) ([]model.Habit, error) {
	query := `SELECT ` + habitCols + ` FROM habits WHERE is_active = 1`
	args := []any{}
	if frequency != "" {
		query += ` AND frequency = ?`
		args = append(args, string(frequency))
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active habits: %w", err)
	}
	defer rows.Close()
	return scanHabits(rows)
}

func (s *HabitStore) Update(id int64, name string, frequency model.Frequency, targetCount int) (*model.Habit, error) {
	_, err := s.db.Exec(
		`UPDATE habits SET name = ?, frequency = ?, target_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, string(frequency), targetCount, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return s.GetByID(id)
}

// SetActive soft-activates or soft-deactivates a habit. Habits are not
// hard-deleted in the normal flow.
func (s *HabitStore) SetActive(id int64, active bool) error {
	var activeInt int
	if active {
		activeInt = 1
	}
	_, err := s.db.Exec(
		`UPDATE habits SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		activeInt, id,
	)
	if err != nil {
		return fmt.Errorf("set habit active: %w", err)
	}
	return nil
}

// UpdateStreaks materializes a recompute result. best_streak is written
// as a high-water mark: it never decreases, whatever current is.
func (s *HabitStore) UpdateStreaks(id int64, current int) error {
	_, err := s.db.Exec(
		`UPDATE habits SET current_streak = ?, best_streak = MAX(best_streak, ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		current, current, id,
	)
	if err != nil {
		return fmt.Errorf("update habit streaks: %w", err)
	}
	return nil
}

func scanHabits(rows *sql.Rows) ([]model.Habit, error) {
	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

// --- Completion methods ---

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.CompletionEvent, error) {
	var c model.CompletionEvent
	err := scanner.Scan(&c.ID, &c.HabitID, &c.CompletedAt, &c.Note)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const completionCols = `id, habit_id, completed_at, note`

func (s *HabitStore) CreateCompletion(habitID int64, completedAt time.Time, note string) (*model.CompletionEvent, error) {
	result, err := s.db.Exec(
		`INSERT INTO completion_events (habit_id, completed_at, note) VALUES (?, ?, ?)`,
		habitID, completedAt.UTC(), note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completionCols+` FROM completion_events WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// ListRecentCompletions returns the newest completions for a habit,
// capped at limit. The recompute path reads a fixed recent window
// rather than the full log so it stays bounded-cost.
func (s *HabitStore) ListRecentCompletions(habitID int64, limit int) ([]model.CompletionEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completion_events WHERE habit_id = ? ORDER BY completed_at DESC LIMIT ?`,
		habitID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent completions: %w", err)
	}
	defer rows.Close()

	var completions []model.CompletionEvent
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

func (s *HabitStore) CountCompletionsBetween(start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completion_events WHERE completed_at >= ? AND completed_at < ?`,
		start.UTC(), end.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}

func (s *HabitStore) CountCompletionsBetweenForOwner(ownerID int64, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completion_events ce
		 JOIN habits h ON h.id = ce.habit_id
		 WHERE h.owner_id = ? AND ce.completed_at >= ? AND ce.completed_at < ?`,
		ownerID, start.UTC(), end.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions for owner: %w", err)
	}
	return count, nil
}
