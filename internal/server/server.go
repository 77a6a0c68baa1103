// Package server wires the stores, engine, dispatcher, and sweeper
// together and exposes them over HTTP.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/strideapp/stride/internal/email"
	"github.com/strideapp/stride/internal/engine"
	"github.com/strideapp/stride/internal/handler"
	"github.com/strideapp/stride/internal/middleware"
	"github.com/strideapp/stride/internal/notify"
	"github.com/strideapp/stride/internal/reminder"
	"github.com/strideapp/stride/internal/store"
	ws "github.com/strideapp/stride/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	dispatcher    *notify.Dispatcher
	sweeper       *reminder.Sweeper
	habitH        *handler.HabitHandler
	goalH         *handler.GoalHandler
	notificationH *handler.NotificationHandler
	userH         *handler.UserHandler
	adminH        *handler.AdminHandler
	logger        *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	habitStore := store.NewHabitStore(db)
	goalStore := store.NewGoalStore(db)
	userStore := store.NewUserStore(db)
	notificationStore := store.NewNotificationStore(db)

	var mailer notify.Mailer
	if emailClient != nil && emailClient.Configured() {
		mailer = emailClient
	}
	dispatcher := notify.NewDispatcher(notificationStore, userStore, hub, mailer, logger.With("component", "notify"))

	eng := engine.New(habitStore, dispatcher, hub, logger.With("component", "engine"))
	sweeper := reminder.NewSweeper(habitStore, goalStore, userStore, notificationStore, dispatcher, logger.With("component", "reminder"))

	return &Server{
		db:            db,
		hub:           hub,
		dispatcher:    dispatcher,
		sweeper:       sweeper,
		habitH:        handler.NewHabitHandler(habitStore, eng),
		goalH:         handler.NewGoalHandler(goalStore),
		notificationH: handler.NewNotificationHandler(notificationStore),
		userH:         handler.NewUserHandler(userStore, notificationStore, dispatcher),
		adminH:        handler.NewAdminHandler(sweeper),
		logger:        logger,
	}
}

// Dispatcher returns the notification dispatcher so shutdown can flush
// in-flight email sends.
func (s *Server) Dispatcher() *notify.Dispatcher {
	return s.dispatcher
}

// Sweeper returns the reminder sweeper for the scheduler.
func (s *Server) Sweeper() *reminder.Sweeper {
	return s.sweeper
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users", s.userH.List)

	mux.HandleFunc("POST /api/habits", s.habitH.Create)
	mux.HandleFunc("GET /api/habits", s.habitH.List)
	mux.HandleFunc("GET /api/habits/{id}", s.habitH.Get)
	mux.HandleFunc("POST /api/habits/{id}/complete", s.habitH.Complete)
	mux.HandleFunc("POST /api/habits/{id}/deactivate", s.habitH.Deactivate)
	mux.HandleFunc("GET /api/habits/{id}/streak", s.habitH.Streak)
	mux.HandleFunc("GET /api/habits/{id}/stats", s.habitH.Stats)

	mux.HandleFunc("POST /api/goals", s.goalH.Create)
	mux.HandleFunc("GET /api/goals", s.goalH.List)
	mux.HandleFunc("POST /api/goals/{id}/complete", s.goalH.Complete)

	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)

	mux.HandleFunc("GET /api/preferences/{id}", s.notificationH.GetPreferences)
	mux.HandleFunc("PUT /api/preferences/{id}", s.notificationH.PutPreferences)

	mux.HandleFunc("POST /api/admin/sweep", s.adminH.Sweep)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
