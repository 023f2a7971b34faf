package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification kinds.
const (
	NotificationKindReminder = "reminder"
	NotificationKindGeneric  = "generic"
)

// Notification is an in-app notification for a single recipient.
//
// CalendarEntryID is populated for reminder-kind rows and participates in a
// composite unique index with the recipient and kind, so a conflict-ignoring
// insert is the deduplication mechanism. The column is nullable: generic
// notifications carry NULL and never collide with each other.
type Notification struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null;uniqueIndex:idx_notifications_entry_user_kind" json:"user_id"`
	Kind   string `gorm:"type:varchar(32);not null;default:'generic';uniqueIndex:idx_notifications_entry_user_kind" json:"kind"`

	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	CalendarEntryID *string        `gorm:"type:uuid;index;uniqueIndex:idx_notifications_entry_user_kind" json:"calendar_entry_id,omitempty"`
	Payload         datatypes.JSON `json:"payload"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
