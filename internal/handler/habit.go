package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/strideapp/stride/internal/engine"
	apperr "github.com/strideapp/stride/internal/errors"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/store"
)

type HabitHandler struct {
	habits *store.HabitStore
	engine *engine.Engine
}

func NewHabitHandler(hs *store.HabitStore, e *engine.Engine) *HabitHandler {
	return &HabitHandler{habits: hs, engine: e}
}

type habitRequest struct {
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Frequency   string `json:"frequency"`
	TargetCount int    `json:"target_count"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	freq, err := model.ParseFrequency(req.Frequency)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.TargetCount < 1 {
		req.TargetCount = 1
	}

	habit, err := h.habits.Create(req.OwnerID, req.Name, freq, req.TargetCount)
	if err != nil {
		log.Printf("failed to create habit: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create habit"})
		return
	}

	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.habits.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list habits"})
		return
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	habit, err := h.habits.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

type completeRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
	Note        string     `json:"note"`
}

func (h *HabitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req completeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
	}
	at := time.Now()
	if req.CompletedAt != nil {
		at = *req.CompletedAt
	}

	result, err := h.engine.LogCompletion(id, at, req.Note)
	if err != nil {
		writeAppError(w, err, "failed to log completion")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HabitHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	habit, err := h.habits.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	if err := h.habits.SetActive(id, false); err != nil {
		log.Printf("failed to deactivate habit %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to deactivate habit"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *HabitHandler) Streak(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	current, err := h.engine.GetStreak(id)
	if err != nil {
		writeAppError(w, err, "failed to get streak")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit_id": id, "current_streak": current})
}

func (h *HabitHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	stats, err := h.engine.GetWindowStats(id, time.Now())
	if err != nil {
		writeAppError(w, err, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeAppError maps categorized errors onto HTTP statuses. Anything
// uncategorized is a 500 with the fallback message.
func writeAppError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Printf("%s: %v", fallback, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}
