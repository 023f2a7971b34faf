package models

import "time"

// User describes platform users. Authentication lives in a fronting
// gateway; this record only carries identity and membership.
type User struct {
	BaseModel

	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string `json:"display_name"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Teams []Team `gorm:"many2many:user_teams;" json:"teams,omitempty"`

	LastSeenAt *time.Time `json:"last_seen_at"`
}
