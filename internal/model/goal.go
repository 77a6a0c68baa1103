package model

import "time"

// Goal is the minimal slice of the goal entity this engine needs: the
// reminder sweep reads the target date, the weekly report counts
// completions. Everything else about goals lives elsewhere.
type Goal struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
