package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"aurora/models"
)

const parserSystemPrompt = `You turn a natural-language event description into calendar fields.
Resolve relative dates ("tomorrow", "next friday") against the reference time you are given.
Respond with strict JSON only, no prose:
{"title": "...", "description": "...", "location": "...", "start_time": "RFC3339", "end_time": "RFC3339",
 "all_day": true|false, "priority": 1-4, "category_hint": "..."}`

type parsedEventPayload struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	AllDay       bool   `json:"all_day"`
	Priority     int    `json:"priority"`
	CategoryHint string `json:"category_hint"`
}

// ParseEventText asks the assistant to turn free text into an EventDraft.
// It never returns an error: when the AI is unavailable or its reply is
// unusable the result carries Success=false and a message, and the caller
// decides what to show.
func ParseEventText(ctx context.Context, ai *AIClient, text string, now time.Time, loc *time.Location) models.ParseResult {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ParseResult{Message: "No hay texto que interpretar."}
	}

	userPrompt := "Reference time: " + now.In(loc).Format(time.RFC3339) +
		"\nTimezone: " + loc.String() +
		"\nText: " + text

	reply, err := ai.Complete(ctx, parserSystemPrompt, userPrompt)
	if err != nil {
		return models.ParseResult{Message: "El asistente no está disponible; introduce el evento manualmente."}
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return models.ParseResult{Message: "El asistente no devolvió un evento utilizable."}
	}
	var p parsedEventPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.ParseResult{Message: "El asistente no devolvió un evento utilizable."}
	}

	start, okStart := parseFlexibleTime(p.StartTime, loc)
	if p.Title == "" || !okStart {
		return models.ParseResult{Message: "El asistente no devolvió un evento utilizable."}
	}
	end, okEnd := parseFlexibleTime(p.EndTime, loc)
	if !okEnd || !end.After(start) {
		end = start.Add(time.Hour)
	}

	priority := p.Priority
	if priority < models.PriorityMin {
		priority = models.PriorityMin
	}
	if priority > models.PriorityMax {
		priority = models.PriorityMax
	}

	return models.ParseResult{
		Success: true,
		UsedAI:  true,
		Event: &models.EventDraft{
			Title:        p.Title,
			Description:  p.Description,
			Location:     p.Location,
			StartTime:    start,
			EndTime:      end,
			AllDay:       p.AllDay,
			Priority:     priority,
			CategoryHint: p.CategoryHint,
		},
	}
}

// parseFlexibleTime accepts the handful of timestamp shapes models tend to
// emit: RFC3339, the same without zone (read in loc), and a date-only form.
func parseFlexibleTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
