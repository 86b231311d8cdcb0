package handler

import (
	"time"

	"github.com/msomdec/event-tracker/internal/domain"
	"github.com/msomdec/event-tracker/internal/service"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// EventDTO is the JSON representation of an event. EndTime is null when the
// event has no explicit end.
type EventDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	StartTime   string  `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toEventDTO(e *domain.Event) EventDTO {
	dto := EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date,
		StartTime:   e.StartTime,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
	if e.HasEnd() {
		end := e.EndTime
		dto.EndTime = &end
	}
	return dto
}

func toEventDTOs(events []domain.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i := range events {
		dtos[i] = toEventDTO(&events[i])
	}
	return dtos
}

// EventRequest is the JSON body of event create and update requests.
type EventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
}

func (req EventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title:       req.Title,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
}

// ReminderDTO is the JSON representation of a pending reminder.
type ReminderDTO struct {
	ID        string `json:"id"`
	EventID   string `json:"eventId"`
	Title     string `json:"title"`
	EventDate string `json:"eventDate"`
	EventTime string `json:"eventTime"`
	FireAt    string `json:"fireAt"`
	Status    string `json:"status"`
}

func toReminderDTOs(reminders []domain.Reminder) []ReminderDTO {
	dtos := make([]ReminderDTO, len(reminders))
	for i, rem := range reminders {
		dtos[i] = ReminderDTO{
			ID:        rem.ID,
			EventID:   rem.EventID,
			Title:     rem.Title,
			EventDate: rem.EventDate,
			EventTime: rem.EventTime,
			FireAt:    rem.FireAt.Format(time.RFC3339),
			Status:    string(rem.Status),
		}
	}
	return dtos
}
