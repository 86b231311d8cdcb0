package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/event-tracker/internal/service"
)

// EventHandler handles calendar event HTTP requests.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// HandleList returns the user's events, optionally filtered by title.
// GET /api/events?q=...
// Response: {"events": [...]}
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	events, err := h.events.List(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err, "list events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": toEventDTOs(events),
	})
}

// HandleCreate creates an event.
// POST /api/events
// Response: 201 {"event": {...}}, 409 on overlap
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req EventRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	event, err := h.events.Create(r.Context(), user.ID, req.toInput())
	if err != nil {
		writeServiceError(w, err, "create event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"event": toEventDTO(event),
	})
}

// HandleGet returns a single event.
// GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	event, err := h.events.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "get event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event": toEventDTO(event),
	})
}

// HandleUpdate replaces an event's fields.
// PUT /api/events/{id}
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req EventRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	event, err := h.events.Update(r.Context(), user.ID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeServiceError(w, err, "update event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event": toEventDTO(event),
	})
}

// HandleDelete removes an event.
// DELETE /api/events/{id}
// Response: 204 No Content
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.events.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, err, "delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCalendar serves the user's events as an iCalendar feed.
// GET /api/calendar.ics
func (h *EventHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	data, err := h.events.ExportICS(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write calendar", "error", err)
	}
}
