package models

import "time"

type ValidationSeverity string

const (
	SeverityInfo     ValidationSeverity = "info"
	SeverityWarning  ValidationSeverity = "warning"
	SeverityCritical ValidationSeverity = "critical"
)

// AIValidationResult is the advisory feedback attached to event creation and
// the /assistant/validate endpoint. UsedAI distinguishes real model output
// from the local fallback heuristic; it is never persisted.
type AIValidationResult struct {
	IsApproved  bool               `json:"is_approved"`
	Severity    ValidationSeverity `json:"severity"`
	Message     string             `json:"message"`
	Suggestions []string           `json:"suggestions"`
	UsedAI      bool               `json:"used_ai"`
}

// EventDraft is the assistant's structured reading of a natural-language
// event description. It is a proposal only; the client decides whether to
// turn it into a real event.
type EventDraft struct {
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	AllDay       bool      `json:"all_day"`
	Priority     int       `json:"priority"`
	CategoryHint string    `json:"category_hint,omitempty"`
}

// ParseResult wraps an EventDraft with the outcome of the parse attempt.
// A failed AI call yields Success=false rather than an error: the assistant
// degrading never blocks the user.
type ParseResult struct {
	Success bool        `json:"success"`
	UsedAI  bool        `json:"used_ai"`
	Event   *EventDraft `json:"event,omitempty"`
	Message string      `json:"message,omitempty"`
}
