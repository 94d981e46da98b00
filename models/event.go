package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PriorityMin = 1
	PriorityMax = 4

	MoodRatingMin = 1
	MoodRatingMax = 5
)

type Event struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	CategoryID      *uint          `gorm:"index" json:"category_id"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description,omitempty"`
	Location        string         `json:"location,omitempty"`
	StartTime       time.Time      `gorm:"not null;index" json:"start_time"`
	EndTime         time.Time      `gorm:"not null" json:"end_time"`
	AllDay          bool           `gorm:"default:false" json:"all_day"`
	Priority        int            `gorm:"default:2" json:"priority"`
	MoodRating      *int           `json:"mood_rating,omitempty"`
	MoodNotes       string         `json:"mood_notes,omitempty"`
	RecurrenceRule  string         `json:"recurrence_rule,omitempty"`
	ReminderMinutes int            `gorm:"default:0" json:"reminder_minutes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// EventInput is used for creating/updating events
type EventInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	CategoryID      *uint      `json:"category_id"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	AllDay          *bool      `json:"all_day"`
	Priority        *int       `json:"priority"`
	RecurrenceRule  *string    `json:"recurrence_rule"`
	ReminderMinutes *int       `json:"reminder_minutes"`
}

// MoodInput records how an event went, after the fact
type MoodInput struct {
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

// EventResponse is the response format for events. CategoryName and
// CategoryColor are denormalized from the event's category when known.
type EventResponse struct {
	ID              uint       `json:"id"`
	CategoryID      *uint      `json:"category_id"`
	CategoryName    string     `json:"category_name,omitempty"`
	CategoryColor   string     `json:"category_color,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	AllDay          bool       `json:"all_day"`
	Priority        int        `json:"priority"`
	MoodRating      *int       `json:"mood_rating,omitempty"`
	MoodNotes       string     `json:"mood_notes,omitempty"`
	RecurrenceRule  string     `json:"recurrence_rule,omitempty"`
	ReminderMinutes int        `json:"reminder_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:              e.ID,
		CategoryID:      e.CategoryID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		AllDay:          e.AllDay,
		Priority:        e.Priority,
		MoodRating:      e.MoodRating,
		MoodNotes:       e.MoodNotes,
		RecurrenceRule:  e.RecurrenceRule,
		ReminderMinutes: e.ReminderMinutes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}
