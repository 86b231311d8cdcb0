package handler

import (
	"net/http"

	"github.com/msomdec/event-tracker/internal/service"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth      *service.AuthService
	Events    *service.EventService
	Reminders *service.ReminderService
	Notifier  *service.Notifier
	// AuthLimiter throttles register and login per client IP.
	AuthLimiter *service.TokenBucket
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services, cookieSecure bool) {
	authHandler := NewAuthHandler(svc.Auth, cookieSecure)
	eventHandler := NewEventHandler(svc.Events)
	reminderHandler := NewReminderHandler(svc.Reminders, svc.Notifier)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Auth, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(svc.AuthLimiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("POST /api/auth/register", limited(authHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", limited(authHandler.HandleLogin))
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", OptionalAuth(svc.Auth, http.HandlerFunc(authHandler.HandleMe)))

	mux.Handle("GET /api/events", protected(eventHandler.HandleList))
	mux.Handle("POST /api/events", protected(eventHandler.HandleCreate))
	mux.Handle("GET /api/events/{id}", protected(eventHandler.HandleGet))
	mux.Handle("PUT /api/events/{id}", protected(eventHandler.HandleUpdate))
	mux.Handle("DELETE /api/events/{id}", protected(eventHandler.HandleDelete))
	mux.Handle("GET /api/calendar.ics", protected(eventHandler.HandleCalendar))

	mux.Handle("GET /reminders", protected(reminderHandler.HandlePage))
	mux.Handle("GET /api/reminders", protected(reminderHandler.HandleList))
	mux.Handle("GET /api/reminders/stream", protected(reminderHandler.HandleStream))
}
