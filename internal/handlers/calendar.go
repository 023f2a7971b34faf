package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventra/eventra/internal/middleware"
	"github.com/eventra/eventra/internal/models"
	"github.com/eventra/eventra/internal/services"
	appErrors "github.com/eventra/eventra/pkg/errors"
	"github.com/eventra/eventra/pkg/response"
)

// ManualTrigger re-materializes reminder notifications on demand. The
// reminder engine implements it.
type ManualTrigger interface {
	TriggerNow(ctx context.Context, entryID string) (int, error)
}

// CalendarHandler exposes HTTP endpoints for calendar entries.
type CalendarHandler struct {
	service *services.CalendarService
	trigger ManualTrigger
}

// NewCalendarHandler constructs a calendar handler. The trigger is optional;
// without it the notify route reports not found.
func NewCalendarHandler(service *services.CalendarService, trigger ManualTrigger) (*CalendarHandler, error) {
	if service == nil {
		return nil, errors.New("calendar handler: service is required")
	}
	return &CalendarHandler{service: service, trigger: trigger}, nil
}

type createCalendarEntryPayload struct {
	Title               string  `json:"title" validate:"required,max=255"`
	Description         string  `json:"description"`
	StartsAt            string  `json:"starts_at" validate:"required"`
	EndsAt              string  `json:"ends_at" validate:"required"`
	ReminderLeadMinutes int     `json:"reminder_lead_minutes" validate:"gte=0"`
	Visibility          string  `json:"visibility" validate:"omitempty,oneof=private team"`
	TeamID              *string `json:"team_id"`
}

type updateCalendarEntryPayload struct {
	Title               *string `json:"title" validate:"omitempty,max=255"`
	Description         *string `json:"description"`
	StartsAt            *string `json:"starts_at"`
	EndsAt              *string `json:"ends_at"`
	ReminderLeadMinutes *int    `json:"reminder_lead_minutes" validate:"omitempty,gte=0"`
	Visibility          *string `json:"visibility" validate:"omitempty,oneof=private team"`
}

// Create registers a calendar entry owned by the caller.
func (h *CalendarHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload createCalendarEntryPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	startsAt, ok := parseTimestamp(c, payload.StartsAt, "starts_at")
	if !ok {
		return
	}
	endsAt, ok := parseTimestamp(c, payload.EndsAt, "ends_at")
	if !ok {
		return
	}

	entry, err := h.service.Create(c.Request.Context(), services.CreateCalendarEntryInput{
		Title:               payload.Title,
		Description:         payload.Description,
		StartsAt:            startsAt,
		EndsAt:              endsAt,
		ReminderLeadMinutes: payload.ReminderLeadMinutes,
		Visibility:          models.CalendarVisibility(payload.Visibility),
		CreatorID:           userID,
		TeamID:              payload.TeamID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

// Get loads a single calendar entry.
func (h *CalendarHandler) Get(c *gin.Context) {
	entry, err := h.service.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// List returns entries within an optional time range.
func (h *CalendarHandler) List(c *gin.Context) {
	input := services.ListCalendarEntriesInput{
		CreatorID: strings.TrimSpace(c.Query("creator_id")),
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
	}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, ok := parseTimestamp(c, raw, "from")
		if !ok {
			return
		}
		input.From = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, ok := parseTimestamp(c, raw, "to")
		if !ok {
			return
		}
		input.To = &to
	}

	entries, err := h.service.List(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries)
}

// Update edits calendar entry fields; content or schedule changes replace
// the entry's notifications with a fresh set.
func (h *CalendarHandler) Update(c *gin.Context) {
	var payload updateCalendarEntryPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.UpdateCalendarEntryInput{
		Title:               payload.Title,
		Description:         payload.Description,
		ReminderLeadMinutes: payload.ReminderLeadMinutes,
	}

	if payload.StartsAt != nil {
		startsAt, ok := parseTimestamp(c, *payload.StartsAt, "starts_at")
		if !ok {
			return
		}
		input.StartsAt = &startsAt
	}
	if payload.EndsAt != nil {
		endsAt, ok := parseTimestamp(c, *payload.EndsAt, "ends_at")
		if !ok {
			return
		}
		input.EndsAt = &endsAt
	}
	if payload.Visibility != nil {
		visibility := models.CalendarVisibility(*payload.Visibility)
		input.Visibility = &visibility
	}

	entry, err := h.service.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// Delete removes a calendar entry and its notifications.
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Notify triggers an immediate re-notification for the entry, replacing any
// existing reminder notifications.
func (h *CalendarHandler) Notify(c *gin.Context) {
	if h.trigger == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	created, err := h.trigger.TriggerNow(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"created": created,
		"message": "notifications sent",
	})
}

func parseTimestamp(c *gin.Context, raw, field string) (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		response.Error(c, appErrors.NewBadRequest(field+" must be an RFC3339 timestamp"))
		return time.Time{}, false
	}
	return parsed, true
}
