package models

// Team groups users for shared calendar visibility.
type Team struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`

	Users []User `gorm:"many2many:user_teams;" json:"users,omitempty"`
}
