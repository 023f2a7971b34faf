package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/models"
	apperrors "github.com/eventra/eventra/pkg/errors"
	"github.com/eventra/eventra/pkg/logger"
)

var (
	// ErrCalendarEntryNotFound indicates the requested entry does not exist.
	ErrCalendarEntryNotFound = apperrors.New("CALENDAR_ENTRY_NOT_FOUND", "Calendar entry not found", http.StatusNotFound)
)

// EntryNotifier re-materializes notifications for an entry after an edit.
// The reminder engine implements it; the service only needs the contract.
type EntryNotifier interface {
	ResetForEntry(ctx context.Context, entry *models.CalendarEntry) (int, error)
}

// CreateCalendarEntryInput captures new entry attributes.
type CreateCalendarEntryInput struct {
	Title               string
	Description         string
	StartsAt            time.Time
	EndsAt              time.Time
	ReminderLeadMinutes int
	Visibility          models.CalendarVisibility
	CreatorID           string
	TeamID              *string
}

// UpdateCalendarEntryInput describes mutable entry fields.
type UpdateCalendarEntryInput struct {
	Title               *string
	Description         *string
	StartsAt            *time.Time
	EndsAt              *time.Time
	ReminderLeadMinutes *int
	Visibility          *models.CalendarVisibility
}

// ListCalendarEntriesInput filters entry listings.
type ListCalendarEntriesInput struct {
	CreatorID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// CalendarService handles calendar entry lifecycle.
type CalendarService struct {
	db       *gorm.DB
	notifier EntryNotifier
	log      *zap.Logger
}

// NewCalendarService constructs a CalendarService. The notifier is optional;
// when nil, edits do not re-materialize notifications.
func NewCalendarService(db *gorm.DB, notifier EntryNotifier) (*CalendarService, error) {
	if db == nil {
		return nil, errors.New("calendar service: db is required")
	}
	return &CalendarService{
		db:       db,
		notifier: notifier,
		log:      logger.WithModule("calendar"),
	}, nil
}

// Create registers a new calendar entry.
func (s *CalendarService) Create(ctx context.Context, input CreateCalendarEntryInput) (*models.CalendarEntry, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("entry title is required")
	}

	creatorID := strings.TrimSpace(input.CreatorID)
	if creatorID == "" {
		return nil, apperrors.NewBadRequest("creator id is required")
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	entry := &models.CalendarEntry{
		Title:               title,
		Description:         strings.TrimSpace(input.Description),
		StartsAt:            input.StartsAt.UTC(),
		EndsAt:              input.EndsAt.UTC(),
		ReminderLeadMinutes: input.ReminderLeadMinutes,
		Visibility:          visibility,
		CreatorID:           creatorID,
		TeamID:              input.TeamID,
	}

	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("calendar service: create entry: %w", err)
	}

	return entry, nil
}

// GetByID loads a single entry.
func (s *CalendarService) GetByID(ctx context.Context, id string) (*models.CalendarEntry, error) {
	ctx = ensureContext(ctx)

	var entry models.CalendarEntry
	err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCalendarEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("calendar service: load entry: %w", err)
	}

	return &entry, nil
}

// List returns entries matching the supplied filters ordered by start time.
func (s *CalendarService) List(ctx context.Context, input ListCalendarEntriesInput) ([]models.CalendarEntry, error) {
	ctx = ensureContext(ctx)

	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.CalendarEntry{})
	if creator := strings.TrimSpace(input.CreatorID); creator != "" {
		query = query.Where("creator_id = ?", creator)
	}
	if input.From != nil {
		query = query.Where("starts_at >= ?", input.From.UTC())
	}
	if input.To != nil {
		query = query.Where("starts_at <= ?", input.To.UTC())
	}

	var entries []models.CalendarEntry
	if err := query.Order("starts_at ASC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("calendar service: list entries: %w", err)
	}

	return entries, nil
}

// Update modifies entry fields. Content or schedule changes re-materialize
// the entry's notifications through the configured notifier, regardless of
// the current reminder window.
func (s *CalendarService) Update(ctx context.Context, id string, input UpdateCalendarEntryInput) (*models.CalendarEntry, error) {
	ctx = ensureContext(ctx)

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" && title != entry.Title {
			updates["title"] = title
			entry.Title = title
		}
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != entry.Description {
			updates["description"] = desc
			entry.Description = desc
		}
	}
	if input.StartsAt != nil && !input.StartsAt.UTC().Equal(entry.StartsAt) {
		entry.StartsAt = input.StartsAt.UTC()
		updates["starts_at"] = entry.StartsAt
	}
	if input.EndsAt != nil && !input.EndsAt.UTC().Equal(entry.EndsAt) {
		entry.EndsAt = input.EndsAt.UTC()
		updates["ends_at"] = entry.EndsAt
	}
	if input.ReminderLeadMinutes != nil && *input.ReminderLeadMinutes != entry.ReminderLeadMinutes {
		entry.ReminderLeadMinutes = *input.ReminderLeadMinutes
		updates["reminder_lead_minutes"] = entry.ReminderLeadMinutes
	}
	if input.Visibility != nil && *input.Visibility != entry.Visibility {
		entry.Visibility = *input.Visibility
		updates["visibility"] = entry.Visibility
	}

	if len(updates) == 0 {
		return entry, nil
	}

	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.CalendarEntry{}).
		Where("id = ?", entry.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("calendar service: update entry: %w", err)
	}

	if s.notifier != nil {
		if _, err := s.notifier.ResetForEntry(ctx, entry); err != nil {
			// The edit itself is persisted; a failed re-notify is logged and
			// left for the operator rather than rolled back.
			s.log.Warn("edit re-notify failed",
				zap.String("entry_id", entry.ID),
				zap.Error(err),
			)
		}
	}

	return entry, nil
}

// Delete removes the entry and every notification still referencing it.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("calendar_entry_id = ?", entry.ID).
			Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("calendar service: delete entry notifications: %w", err)
		}
		if err := tx.Delete(&models.CalendarEntry{}, "id = ?", entry.ID).Error; err != nil {
			return fmt.Errorf("calendar service: delete entry: %w", err)
		}
		return nil
	})
}

func validateEntry(entry *models.CalendarEntry) error {
	if !entry.StartsAt.Before(entry.EndsAt) {
		return apperrors.NewBadRequest("entry must start before it ends")
	}
	if entry.ReminderLeadMinutes < 0 {
		return apperrors.NewBadRequest("reminder lead minutes must not be negative")
	}
	if !entry.Visibility.Valid() {
		return apperrors.NewBadRequest("unknown visibility mode")
	}
	if entry.Visibility == models.VisibilityTeam && (entry.TeamID == nil || strings.TrimSpace(*entry.TeamID) == "") {
		return apperrors.NewBadRequest("team visibility requires a team")
	}
	return nil
}
