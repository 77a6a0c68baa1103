package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, received *postmarkEmail, gotToken *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
}

func TestSendHabitReminder(t *testing.T) {
	var received postmarkEmail
	var gotToken string
	server := newTestServer(t, &received, &gotToken)
	defer server.Close()

	client := NewClient("test-token", "noreply@stride.test", "https://stride.test", WithAPIURL(server.URL))

	err := client.Send("alice@example.com", TemplateHabitReminder, Data{
		HabitName:     "Morning run",
		CurrentStreak: 5,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "noreply@stride.test" {
		t.Errorf("From = %q, want %q", received.From, "noreply@stride.test")
	}
	if !strings.Contains(received.Subject, "Morning run") {
		t.Errorf("subject %q should mention the habit", received.Subject)
	}
	if !strings.Contains(received.TextBody, "streak: 5") {
		t.Errorf("body %q should mention the streak", received.TextBody)
	}
	if !strings.Contains(received.TextBody, "https://stride.test/dashboard") {
		t.Errorf("body %q should carry the dashboard link", received.TextBody)
	}
}

func TestSendGoalReminderDueToday(t *testing.T) {
	var received postmarkEmail
	var gotToken string
	server := newTestServer(t, &received, &gotToken)
	defer server.Close()

	client := NewClient("test-token", "noreply@stride.test", "https://stride.test", WithAPIURL(server.URL))

	err := client.Send("bob@example.com", TemplateGoalReminder, Data{
		GoalTitle:         "Finish course",
		DaysUntilDeadline: 0,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(received.TextBody, "due today") {
		t.Errorf("body %q should say due today", received.TextBody)
	}
}

func TestSendWeeklyReport(t *testing.T) {
	var received postmarkEmail
	var gotToken string
	server := newTestServer(t, &received, &gotToken)
	defer server.Close()

	client := NewClient("test-token", "noreply@stride.test", "https://stride.test", WithAPIURL(server.URL))

	err := client.Send("carol@example.com", TemplateWeeklyReport, Data{
		WeekStart:            "2026-03-22",
		WeekEnd:              "2026-03-28",
		GoalsCompleted:       1,
		HabitsCompleted:      12,
		EncouragementMessage: "Strong week. Keep the momentum.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(received.TextBody, "Habits completed: 12") {
		t.Errorf("body %q should include habit count", received.TextBody)
	}
}

func TestSendUnknownTemplate(t *testing.T) {
	client := NewClient("test-token", "noreply@stride.test", "https://stride.test")

	err := client.Send("alice@example.com", "mystery", Data{})
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestSendUnconfigured(t *testing.T) {
	client := NewClient("", "noreply@stride.test", "https://stride.test")

	err := client.Send("alice@example.com", TemplateWelcome, Data{UserName: "Alice"})
	if err == nil {
		t.Fatal("expected error when unconfigured")
	}
}

func TestSendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@stride.test", "https://stride.test", WithAPIURL(server.URL))

	err := client.Send("alice@example.com", TemplateWelcome, Data{UserName: "Alice"})
	if err == nil {
		t.Fatal("expected error on API failure")
	}
}
