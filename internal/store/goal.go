package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/model"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.Goal, error) {
	var g model.Goal
	var targetDate sql.NullTime
	var completedAt sql.NullTime
	var isCompleted int

	err := scanner.Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description,
		&targetDate, &isCompleted, &completedAt, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.IsCompleted = isCompleted != 0
	if targetDate.Valid {
		g.TargetDate = &targetDate.Time
	}
	if completedAt.Valid {
		g.CompletedAt = &completedAt.Time
	}
	return &g, nil
}

const goalCols = `id, owner_id, title, description, target_date, is_completed, completed_at, created_at`

func (s *GoalStore) Create(ownerID int64, title, description string, targetDate *time.Time) (*model.Goal, error) {
	var td sql.NullTime
	if targetDate != nil {
		td = sql.NullTime{Time: targetDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO goals (owner_id, title, description, target_date) VALUES (?, ?, ?, ?)`,
		ownerID, title, description, td,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) GetByID(id int64) (*model.Goal, error) {
	row := s.db.QueryRow(`SELECT `+goalCols+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) List() ([]model.Goal, error) {
	rows, err := s.db.Query(`SELECT ` + goalCols + ` FROM goals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	return scanGoals(rows)
}

// ListActiveWithDeadline returns incomplete goals that have a target
// date set. The reminder sweep decides per goal whether the deadline is
// close enough to warrant a nudge.
func (s *GoalStore) ListActiveWithDeadline() ([]model.Goal, error) {
	rows, err := s.db.Query(
		`SELECT ` + goalCols + ` FROM goals WHERE is_completed = 0 AND target_date IS NOT NULL ORDER BY target_date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals with deadline: %w", err)
	}
	defer rows.Close()
	return scanGoals(rows)
}

func (s *GoalStore) CountCompletedBetweenForOwner(ownerID int64, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM goals WHERE owner_id = ? AND is_completed = 1 AND completed_at >= ? AND completed_at < ?`,
		ownerID, start.UTC(), end.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed goals: %w", err)
	}
	return count, nil
}

func (s *GoalStore) SetCompleted(id int64, completedAt time.Time) (*model.Goal, error) {
	_, err := s.db.Exec(
		`UPDATE goals SET is_completed = 1, completed_at = ? WHERE id = ?`,
		completedAt.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete goal: %w", err)
	}
	return s.GetByID(id)
}

func scanGoals(rows *sql.Rows) ([]model.Goal, error) {
	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}
