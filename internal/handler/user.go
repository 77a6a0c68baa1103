package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/strideapp/stride/internal/email"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/notify"
	"github.com/strideapp/stride/internal/store"
)

type UserHandler struct {
	users         *store.UserStore
	notifications *store.NotificationStore
	dispatcher    *notify.Dispatcher
}

func NewUserHandler(us *store.UserStore, ns *store.NotificationStore, d *notify.Dispatcher) *UserHandler {
	return &UserHandler{users: us, notifications: ns, dispatcher: d}
}

type userRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	user, err := h.users.Create(req.Email, req.Name)
	if err != nil {
		log.Printf("failed to create user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}

	// New accounts start with every notification category on.
	if err := h.notifications.SetPreference(model.NotificationPreference{
		UserID:         user.ID,
		EmailEnabled:   true,
		PushEnabled:    true,
		HabitReminders: true,
		GoalReminders:  true,
		Achievements:   true,
		WeeklyReport:   true,
	}); err != nil {
		log.Printf("failed to seed preferences for user %d: %v", user.ID, err)
	}

	if _, err := h.dispatcher.Dispatch(notify.Request{
		OwnerID:  user.ID,
		Title:    "Welcome to Stride",
		Message:  "Your account is ready. Create a habit to start your first streak.",
		Category: model.CategorySystem,
		Template: email.TemplateWelcome,
		Email:    email.Data{UserName: user.Name},
	}); err != nil {
		log.Printf("failed to send welcome to user %d: %v", user.ID, err)
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
