package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Timezone     string         `gorm:"default:UTC" json:"timezone"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserResponse is the safe response format for users
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Timezone:  u.Timezone,
		CreatedAt: u.CreatedAt,
	}
}

// UserInput is used for registration and profile updates
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Timezone string `json:"timezone"`
}

// Location resolves the user's IANA timezone, falling back to UTC when the
// stored name is empty or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
