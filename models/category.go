package models

import (
	"time"

	"gorm.io/gorm"
)

// EventCategory groups events for color-coding and pattern analysis.
// System categories (IsSystem, UserID nil) are shared by every user and
// cannot be modified or deleted.
type EventCategory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	Name      string         `gorm:"not null" json:"name"`
	Color     string         `gorm:"default:#3b82f6" json:"color"` // Hex color for UI
	IsSystem  bool           `gorm:"default:false" json:"is_system"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AvailableTo reports whether the category can be used by the given user:
// either the user owns it, or it is an active system category.
func (c *EventCategory) AvailableTo(userID uint) bool {
	if c.UserID != nil && *c.UserID == userID {
		return true
	}
	return c.IsSystem && c.IsActive
}

// OwnedBy reports whether the category belongs to the given user. System
// categories belong to nobody.
func (c *EventCategory) OwnedBy(userID uint) bool {
	return c.UserID != nil && *c.UserID == userID
}
