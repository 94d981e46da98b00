package models

import (
	"time"
)

type SuggestionType string

const (
	SuggestionResolveConflict       SuggestionType = "resolve_conflict"
	SuggestionMoveEvent             SuggestionType = "move_event"
	SuggestionOptimizeDistribution  SuggestionType = "optimize_distribution"
	SuggestionPatternAlert          SuggestionType = "pattern_alert"
	SuggestionSuggestBreak          SuggestionType = "suggest_break"
	SuggestionGeneralReorganization SuggestionType = "general_reorganization"
)

type SuggestionStatus string

const (
	SuggestionPending   SuggestionStatus = "pending"
	SuggestionAccepted  SuggestionStatus = "accepted"
	SuggestionRejected  SuggestionStatus = "rejected"
	SuggestionPostponed SuggestionStatus = "postponed"
)

// ScheduleSuggestion is a system-generated recommendation to modify the
// calendar. Its lifecycle is independent of the events it references: only
// a user response mutates it, and it is never deleted automatically.
type ScheduleSuggestion struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"not null;index" json:"user_id"`
	Type           SuggestionType   `gorm:"not null;index" json:"type"`
	Priority       int              `gorm:"not null" json:"priority"`   // 1 (low) .. 5 (high)
	Confidence     int              `gorm:"not null" json:"confidence"` // 0 .. 100
	Reason         string           `gorm:"not null" json:"reason"`
	EventID        *uint            `gorm:"index" json:"event_id,omitempty"`
	RelatedEventID *uint            `gorm:"index" json:"related_event_id,omitempty"`
	SuggestedTime  *time.Time       `json:"suggested_time,omitempty"`
	Status         SuggestionStatus `gorm:"not null;default:pending;index" json:"status"`
	RespondedAt    *time.Time       `json:"responded_at,omitempty"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// SuggestionResponseInput is the body of a user response to a suggestion.
type SuggestionResponseInput struct {
	Status SuggestionStatus `json:"status"`
}

// SuggestionResponse is the response format for suggestions.
type SuggestionResponse struct {
	ID             uint             `json:"id"`
	Type           SuggestionType   `json:"type"`
	Priority       int              `json:"priority"`
	Confidence     int              `json:"confidence"`
	Reason         string           `json:"reason"`
	EventID        *uint            `json:"event_id,omitempty"`
	RelatedEventID *uint            `json:"related_event_id,omitempty"`
	SuggestedTime  *time.Time       `json:"suggested_time,omitempty"`
	Status         SuggestionStatus `json:"status"`
	RespondedAt    *time.Time       `json:"responded_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (s *ScheduleSuggestion) ToResponse() SuggestionResponse {
	return SuggestionResponse{
		ID:             s.ID,
		Type:           s.Type,
		Priority:       s.Priority,
		Confidence:     s.Confidence,
		Reason:         s.Reason,
		EventID:        s.EventID,
		RelatedEventID: s.RelatedEventID,
		SuggestedTime:  s.SuggestedTime,
		Status:         s.Status,
		RespondedAt:    s.RespondedAt,
		CreatedAt:      s.CreatedAt,
	}
}

// Final reports whether the suggestion has reached a terminal status.
// Postponed suggestions may still be responded to again.
func (s *ScheduleSuggestion) Final() bool {
	return s.Status == SuggestionAccepted || s.Status == SuggestionRejected
}
