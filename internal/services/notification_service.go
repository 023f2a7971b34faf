package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventra/eventra/internal/models"
	apperrors "github.com/eventra/eventra/pkg/errors"
)

// NotificationDTO is the API-friendly notification payload.
type NotificationDTO struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	Kind            string               `json:"kind"`
	Title           string               `json:"title"`
	Message         string               `json:"message"`
	CalendarEntryID string               `json:"calendar_entry_id,omitempty"`
	Payload         map[string]any       `json:"payload,omitempty"`
	IsRead          bool                 `json:"is_read"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	ReadAt          *time.Time           `json:"read_at,omitempty"`
	Raw             *models.Notification `json:"-"`
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	UserID          string
	Kind            string
	Title           string
	Message         string
	CalendarEntryID string
	Payload         map[string]any
}

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationService manages per-recipient notification records.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db}, nil
}

// WithTx returns a copy of the service bound to the supplied transaction.
func (s *NotificationService) WithTx(tx *gorm.DB) *NotificationService {
	return &NotificationService{db: tx}
}

// Create persists a notification. Reminder-kind rows referencing a calendar
// entry insert with conflict-ignore semantics against the
// (calendar_entry_id, user_id, kind) unique index, so a concurrent or
// repeated insert for the same pair is silently dropped. The returned bool
// reports whether a row was actually inserted.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, bool, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, false, errors.New("notification service: user id is required")
	}

	kind := strings.TrimSpace(defaultIfEmpty(input.Kind, models.NotificationKindGeneric))

	notification := models.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   strings.TrimSpace(input.Title),
		Message: strings.TrimSpace(input.Message),
	}

	if entryID := strings.TrimSpace(input.CalendarEntryID); entryID != "" {
		notification.CalendarEntryID = &entryID
	}

	if input.Payload != nil {
		data, err := json.Marshal(input.Payload)
		if err != nil {
			return nil, false, fmt.Errorf("notification service: marshal payload: %w", err)
		}
		notification.Payload = datatypes.JSON(data)
	}

	tx := s.db.WithContext(ctx)
	if notification.CalendarEntryID != nil {
		tx = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "calendar_entry_id"},
				{Name: "user_id"},
				{Name: "kind"},
			},
			DoNothing: true,
		})
	}

	result := tx.Create(&notification)
	if result.Error != nil {
		// The conflict clause covers the dedup index; anything else is real.
		if isUniqueConstraintError(result.Error) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("notification service: create notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	dto := mapNotification(notification)
	return &dto, true, nil
}

// ListForUser returns notifications for the supplied user ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if input.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

// MarkRead sets the notification read flag for a user.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	return s.updateReadState(ctx, userID, notificationID, true)
}

// MarkUnread clears the notification read flag.
func (s *NotificationService) MarkUnread(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	return s.updateReadState(ctx, userID, notificationID, false)
}

func (s *NotificationService) updateReadState(ctx context.Context, userID, notificationID string, read bool) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	updates := map[string]any{"is_read": read}
	var readAt *time.Time
	if read {
		now := time.Now().UTC()
		readAt = &now
		updates["read_at"] = now
	} else {
		updates["read_at"] = nil
	}

	if err := s.db.WithContext(ctx).Model(&notification).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("notification service: update read state: %w", err)
	}

	notification.IsRead = read
	notification.ReadAt = readAt
	dto := mapNotification(notification)
	return &dto, nil
}

// MarkAllRead marks all unread notifications for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}

	return nil
}

// Delete removes a notification owned by the supplied user.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ExistsForEntry reports whether a reminder notification already references
// the calendar entry. Pre-check only: the unique index is what actually
// guarantees at-most-once materialization per recipient.
func (s *NotificationService) ExistsForEntry(ctx context.Context, entryID string) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("calendar_entry_id = ? AND kind = ?", entryID, models.NotificationKindReminder).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("notification service: reminder existence check: %w", err)
	}

	return count > 0, nil
}

// DeleteForEntry removes every notification referencing the calendar entry
// and returns the number of rows removed.
func (s *NotificationService) DeleteForEntry(ctx context.Context, entryID string) (int64, error) {
	ctx = ensureContext(ctx)

	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return 0, errors.New("notification service: entry id is required")
	}

	result := s.db.WithContext(ctx).
		Where("calendar_entry_id = ?", entryID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: delete for entry: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// SweepOlderThan deletes notifications of the given kind created more than
// the supplied number of days before now and returns the number removed.
// The caller supplies the instant so sweeps stay testable against a fixed
// clock.
func (s *NotificationService) SweepOlderThan(ctx context.Context, now time.Time, days int, kind string) (int64, error) {
	ctx = ensureContext(ctx)

	if days <= 0 {
		return 0, errors.New("notification service: retention days must be positive")
	}

	cutoff := now.UTC().AddDate(0, 0, -days)
	result := s.db.WithContext(ctx).
		Where("kind = ? AND created_at < ?", kind, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: sweep older than %dd: %w", days, result.Error)
	}

	return result.RowsAffected, nil
}

func mapNotification(row models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Kind:      row.Kind,
		Title:     row.Title,
		Message:   row.Message,
		Payload:   decodePayload(row.Payload),
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		ReadAt:    row.ReadAt,
		Raw:       &row,
	}
	if row.CalendarEntryID != nil {
		dto.CalendarEntryID = *row.CalendarEntryID
	}
	return dto
}

func decodePayload(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
