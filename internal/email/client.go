package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Template keys the client knows how to render.
const (
	TemplateGoalReminder  = "goal_reminder"
	TemplateHabitReminder = "habit_reminder"
	TemplateAchievement   = "achievement"
	TemplateWeeklyReport  = "weekly_report"
	TemplateWelcome       = "welcome"
)

// Data carries the fields the templates interpolate. Each template key
// reads its own subset; unused fields are ignored.
type Data struct {
	GoalTitle            string
	GoalDescription      string
	DaysUntilDeadline    int
	HabitName            string
	CurrentStreak        int
	AchievementTitle     string
	Description          string
	WeekStart            string
	WeekEnd              string
	GoalsCompleted       int
	HabitsCompleted      int
	PracticeMinutes      int
	EncouragementMessage string
	UserName             string
}

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark API endpoint (used by tests).
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

// NewClient creates an email client. baseURL is the public URL of the
// app, used to build dashboard links in every template.
func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		apiURL:      "https://api.postmarkapp.com/email",
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send renders the named template with data and delivers it to the
// recipient. Unknown template keys are an error.
func (c *Client) Send(to, templateKey string, data Data) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	subject, text, html, err := c.render(templateKey, data)
	if err != nil {
		return err
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       to,
		Subject:  subject,
		HtmlBody: html,
		TextBody: text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) render(templateKey string, d Data) (subject, text, html string, err error) {
	dashboard := c.baseURL + "/dashboard"

	switch templateKey {
	case TemplateGoalReminder:
		subject = fmt.Sprintf("Goal deadline approaching: %s", d.GoalTitle)
		when := fmt.Sprintf("in %d days", d.DaysUntilDeadline)
		if d.DaysUntilDeadline == 0 {
			when = "today"
		} else if d.DaysUntilDeadline == 1 {
			when = "tomorrow"
		}
		text = fmt.Sprintf("Your goal %q is due %s.\n\n%s\n\nSee your progress: %s",
			d.GoalTitle, when, d.GoalDescription, dashboard)
		html = fmt.Sprintf(`<p>Your goal <strong>%s</strong> is due %s.</p><p>%s</p><p><a href="%s">See your progress</a></p>`,
			d.GoalTitle, when, d.GoalDescription, dashboard)

	case TemplateHabitReminder:
		subject = fmt.Sprintf("Don't break the chain: %s", d.HabitName)
		text = fmt.Sprintf("You haven't logged %q today. Current streak: %d.\n\nLog it now: %s",
			d.HabitName, d.CurrentStreak, dashboard)
		html = fmt.Sprintf(`<p>You haven't logged <strong>%s</strong> today. Current streak: %d.</p><p><a href="%s">Log it now</a></p>`,
			d.HabitName, d.CurrentStreak, dashboard)

	case TemplateAchievement:
		subject = fmt.Sprintf("Achievement unlocked: %s", d.AchievementTitle)
		text = fmt.Sprintf("%s\n\n%s\n\nKeep it going: %s", d.AchievementTitle, d.Description, dashboard)
		html = fmt.Sprintf(`<p><strong>%s</strong></p><p>%s</p><p><a href="%s">Keep it going</a></p>`,
			d.AchievementTitle, d.Description, dashboard)

	case TemplateWeeklyReport:
		subject = fmt.Sprintf("Your week in review: %s – %s", d.WeekStart, d.WeekEnd)
		text = fmt.Sprintf("Week of %s to %s\n\nGoals completed: %d\nHabits completed: %d\nPractice minutes: %d\n\n%s\n\nFull report: %s",
			d.WeekStart, d.WeekEnd, d.GoalsCompleted, d.HabitsCompleted, d.PracticeMinutes, d.EncouragementMessage, dashboard)
		html = fmt.Sprintf(`<p>Week of %s to %s</p><ul><li>Goals completed: %d</li><li>Habits completed: %d</li><li>Practice minutes: %d</li></ul><p>%s</p><p><a href="%s">Full report</a></p>`,
			d.WeekStart, d.WeekEnd, d.GoalsCompleted, d.HabitsCompleted, d.PracticeMinutes, d.EncouragementMessage, dashboard)

	case TemplateWelcome:
		subject = "Welcome to Stride"
		text = fmt.Sprintf("Hi %s,\n\nWelcome to Stride! Set up your first habit and start a streak.\n\n%s", d.UserName, dashboard)
		html = fmt.Sprintf(`<p>Hi %s,</p><p>Welcome to Stride! Set up your first habit and start a streak.</p><p><a href="%s">Get started</a></p>`,
			d.UserName, dashboard)

	default:
		return "", "", "", fmt.Errorf("unknown email template %q", templateKey)
	}

	return subject, text, html, nil
}
