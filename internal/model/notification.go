package model

import "time"

// Notification category constants
const (
	CategoryGoalReminder  = "goal_reminder"
	CategoryHabitReminder = "habit_reminder"
	CategoryAchievement   = "achievement"
	CategoryWeeklyReport  = "weekly_report"
	CategorySystem        = "system"
)

type Notification struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPreference holds a user's channel and category toggles.
// The engine only reads these; the settings UI writes them.
type NotificationPreference struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	EmailEnabled   bool      `json:"email_enabled"`
	PushEnabled    bool      `json:"push_enabled"`
	GoalReminders  bool      `json:"goal_reminders"`
	HabitReminders bool      `json:"habit_reminders"`
	Achievements   bool      `json:"achievements"`
	WeeklyReport   bool      `json:"weekly_report"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CategoryEnabled reports whether the toggle for the given notification
// category is on. Unknown categories (including system) are always on.
func (p NotificationPreference) CategoryEnabled(category string) bool {
	switch category {
	case CategoryGoalReminder:
		return p.GoalReminders
	case CategoryHabitReminder:
		return p.HabitReminders
	case CategoryAchievement:
		return p.Achievements
	case CategoryWeeklyReport:
		return p.WeeklyReport
	}
	return true
}
