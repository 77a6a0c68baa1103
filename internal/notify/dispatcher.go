// Package notify delivers notifications across the in-app and email
// channels. The in-app write is the source of truth; email is best
// effort and never affects the outcome of a dispatch.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/strideapp/stride/internal/email"
	apperr "github.com/strideapp/stride/internal/errors"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/store"
	"github.com/strideapp/stride/internal/websocket"
)

// Mailer sends a templated email. *email.Client satisfies this; tests
// substitute failing or recording fakes.
type Mailer interface {
	Send(to, templateKey string, data email.Data) error
}

// Request describes one notification to deliver.
type Request struct {
	OwnerID  int64
	Title    string
	Message  string
	Category string
	// Template overrides the email template key; defaults to Category.
	Template string
	// Email carries the data payload for the email template.
	Email email.Data
}

// Dispatcher persists in-app notifications, pushes them to connected
// WebSocket clients, and forwards them to the email channel when the
// owner's preferences allow it.
type Dispatcher struct {
	notifications *store.NotificationStore
	users         *store.UserStore
	hub           *websocket.Hub
	mailer        Mailer
	limiter       *rate.Limiter
	logger        *slog.Logger
	wg            sync.WaitGroup
}

func NewDispatcher(ns *store.NotificationStore, us *store.UserStore, hub *websocket.Hub, mailer Mailer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifications: ns,
		users:         us,
		hub:           hub,
		mailer:        mailer,
		// Outbound email is throttled so a large sweep cannot hammer
		// the provider.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
}

// Dispatch delivers a notification. The in-app insert must succeed or
// the dispatch fails; every failure past that point is a channel error:
// logged and swallowed, never undoing the insert.
func (d *Dispatcher) Dispatch(req Request) (*model.Notification, error) {
	n, err := d.notifications.Insert(req.OwnerID, req.Title, req.Message, req.Category)
	if err != nil {
		return nil, apperr.Persistence(err, "persist notification for user %d", req.OwnerID)
	}

	if d.hub != nil {
		d.hub.Send(websocket.NewMessage("notification", "created", n.ID, n.OwnerID, map[string]any{
			"category": n.Category,
			"title":    n.Title,
		}))
	}

	d.maybeEmail(req)
	return n, nil
}

// maybeEmail checks preferences and hands the email off to a goroutine.
// It never returns an error: the email channel is fire-and-forget.
func (d *Dispatcher) maybeEmail(req Request) {
	if d.mailer == nil {
		return
	}

	pref, err := d.notifications.GetPreference(req.OwnerID)
	if err != nil {
		d.logger.Warn("read preference", "user_id", req.OwnerID, "error", err)
		return
	}
	if !pref.EmailEnabled || !pref.CategoryEnabled(req.Category) {
		return
	}

	user, err := d.users.GetByID(req.OwnerID)
	if err != nil || user == nil || user.Email == "" {
		d.logger.Warn("no email address for user", "user_id", req.OwnerID, "error", err)
		return
	}

	templateKey := req.Template
	if templateKey == "" {
		templateKey = req.Category
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.limiter.Wait(context.Background()); err != nil {
			return
		}
		if err := d.mailer.Send(user.Email, templateKey, req.Email); err != nil {
			cerr := apperr.Channel(err, "email %s to user %d", templateKey, req.OwnerID)
			d.logger.Warn("email delivery failed", "user_id", req.OwnerID, "template", templateKey, "error", cerr)
		}
	}()
}

// Flush blocks until all in-flight email sends have finished. Called at
// shutdown and from tests.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}
