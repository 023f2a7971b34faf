package models

import "time"

// CalendarVisibility controls who receives reminders for an entry.
type CalendarVisibility string

const (
	// VisibilityPrivate notifies only the entry creator.
	VisibilityPrivate CalendarVisibility = "private"
	// VisibilityTeam notifies every active member of the entry's team,
	// resolved at trigger time.
	VisibilityTeam CalendarVisibility = "team"
)

// Valid reports whether the visibility is a known mode.
func (v CalendarVisibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityTeam:
		return true
	default:
		return false
	}
}

// CalendarEntry is a scheduled item with a reminder lead time.
type CalendarEntry struct {
	BaseModel

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	StartsAt time.Time `gorm:"index;not null" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`

	// ReminderLeadMinutes opens the reminder window this many minutes
	// before StartsAt. Zero collapses the half-open window to nothing.
	ReminderLeadMinutes int `gorm:"not null;default:0" json:"reminder_lead_minutes"`

	Visibility CalendarVisibility `gorm:"type:varchar(16);not null;default:'private'" json:"visibility"`

	CreatorID string  `gorm:"type:uuid;index;not null" json:"creator_id"`
	Creator   *User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	TeamID    *string `gorm:"type:uuid;index" json:"team_id"`
	Team      *Team   `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

// WindowOpensAt returns the instant the reminder window opens.
func (e *CalendarEntry) WindowOpensAt() time.Time {
	return e.StartsAt.Add(-time.Duration(e.ReminderLeadMinutes) * time.Minute)
}

// InReminderWindow reports whether now lies in [StartsAt-lead, StartsAt).
func (e *CalendarEntry) InReminderWindow(now time.Time) bool {
	return !now.Before(e.WindowOpensAt()) && now.Before(e.StartsAt)
}
