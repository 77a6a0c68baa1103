package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationCols = `id, owner_id, title, message, category, is_read, created_at`

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var isRead int
	err := scanner.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Message, &n.Category, &isRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0
	return &n, nil
}

func (s *NotificationStore) Insert(ownerID int64, title, message, category string) (*model.Notification, error) {
	result, err := s.db.Exec(
		`INSERT INTO notifications (owner_id, title, message, category) VALUES (?, ?, ?, ?)`,
		ownerID, title, message, category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) ListByOwner(ownerID int64, limit int) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications WHERE owner_id = ? ORDER BY created_at DESC LIMIT ?`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) CountUnread(ownerID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE owner_id = ? AND is_read = 0`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(id, ownerID int64) error {
	_, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND owner_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ownerID int64) error {
	_, err := s.db.Exec(`UPDATE notifications SET is_read = 1 WHERE owner_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// --- Preference methods ---

// GetPreference returns the user's notification preference row. When no
// row exists every toggle defaults to enabled.
func (s *NotificationStore) GetPreference(userID int64) (*model.NotificationPreference, error) {
	var p model.NotificationPreference
	var email, push, goals, habits, achievements, weekly int
	err := s.db.QueryRow(
		`SELECT id, user_id, email_enabled, push_enabled, goal_reminders, habit_reminders, achievements, weekly_report, created_at, updated_at
		 FROM notification_preferences WHERE user_id = ?`, userID,
	).Scan(&p.ID, &p.UserID, &email, &push, &goals, &habits, &achievements, &weekly, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return &model.NotificationPreference{
			UserID:         userID,
			EmailEnabled:   true,
			PushEnabled:    true,
			GoalReminders:  true,
			HabitReminders: true,
			Achievements:   true,
			WeeklyReport:   true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification preference: %w", err)
	}

	p.EmailEnabled = email != 0
	p.PushEnabled = push != 0
	p.GoalReminders = goals != 0
	p.HabitReminders = habits != 0
	p.Achievements = achievements != 0
	p.WeeklyReport = weekly != 0
	return &p, nil
}

// SetPreference upserts the user's preference row.
func (s *NotificationStore) SetPreference(p model.NotificationPreference) error {
	_, err := s.db.Exec(
		`INSERT INTO notification_preferences (user_id, email_enabled, push_enabled, goal_reminders, habit_reminders, achievements, weekly_report)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   email_enabled = excluded.email_enabled,
		   push_enabled = excluded.push_enabled,
		   goal_reminders = excluded.goal_reminders,
		   habit_reminders = excluded.habit_reminders,
		   achievements = excluded.achievements,
		   weekly_report = excluded.weekly_report,
		   updated_at = CURRENT_TIMESTAMP`,
		p.UserID, boolInt(p.EmailEnabled), boolInt(p.PushEnabled), boolInt(p.GoalReminders),
		boolInt(p.HabitReminders), boolInt(p.Achievements), boolInt(p.WeeklyReport),
	)
	if err != nil {
		return fmt.Errorf("set notification preference: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- Reminder dedup log ---

// RecordReminded records that a reminder was sent for a reference in a
// period (for dedup across repeated sweeps).
func (s *NotificationStore) RecordReminded(category, refID, period string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO reminder_log (category, reference_id, period) VALUES (?, ?, ?)`,
		category, refID, period,
	)
	if err != nil {
		return fmt.Errorf("record reminded: %w", err)
	}
	return nil
}

// WasReminded checks whether a reminder was already sent for a
// reference in the given period.
func (s *NotificationStore) WasReminded(category, refID, period string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM reminder_log WHERE category = ? AND reference_id = ? AND period = ?`,
		category, refID, period,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check reminded: %w", err)
	}
	return count > 0, nil
}

// CleanupReminderLog deletes dedup rows older than the given time.
func (s *NotificationStore) CleanupReminderLog(before time.Time) error {
	_, err := s.db.Exec(`DELETE FROM reminder_log WHERE sent_at < ?`, before.UTC())
	if err != nil {
		return fmt.Errorf("cleanup reminder log: %w", err)
	}
	return nil
}
