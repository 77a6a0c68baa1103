package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/strideapp/stride/internal/reminder"
)

// AdminHandler exposes operational endpoints.
type AdminHandler struct {
	sweeper *reminder.Sweeper
}

func NewAdminHandler(s *reminder.Sweeper) *AdminHandler {
	return &AdminHandler{sweeper: s}
}

// Sweep triggers a reminder pass immediately. The reminder log makes
// this safe to call any number of times per day.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sweeper.Sweep(r.Context(), time.Now())
	if err != nil {
		log.Printf("manual sweep failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sweep failed"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
