package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/event-tracker/internal/service"
	"github.com/msomdec/event-tracker/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// ReminderHandler exposes pending reminders and streams fired ones.
type ReminderHandler struct {
	reminders *service.ReminderService
	notifier  *service.Notifier
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminders *service.ReminderService, notifier *service.Notifier) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, notifier: notifier}
}

// HandleList returns the user's pending reminders.
// GET /api/reminders
// Response: {"reminders": [...]}
func (h *ReminderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	reminders, err := h.reminders.ListPending(r.Context(), user.ID)
	if err != nil {
		slog.Error("list reminders", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reminders": toReminderDTOs(reminders),
	})
}

// HandlePage serves the page that opens the reminder stream.
// GET /reminders
func (h *ReminderHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RemindersPage(user.Username).Render(r.Context(), w); err != nil {
		slog.Error("render reminders page", "user_id", user.ID, "error", err)
	}
}

// HandleStream keeps an SSE connection open and appends a notification
// fragment to #reminders each time one of the user's reminders fires.
// GET /api/reminders/stream
func (h *ReminderHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	notes, cancel := h.notifier.Subscribe(user.ID)
	defer cancel()

	sse := datastar.NewSSE(w, r)
	slog.Debug("reminder stream opened", "user_id", user.ID)

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("reminder stream closed", "user_id", user.ID)
			return
		case note, ok := <-notes:
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(
				view.ReminderToast(note),
				datastar.WithSelectorID("reminders"),
				datastar.WithModeAppend(),
			); err != nil {
				slog.Warn("send reminder", "user_id", user.ID, "error", err)
				return
			}
		}
	}
}
