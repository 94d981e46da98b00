package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aurora/models"
)

const validationSystemPrompt = `You are a scheduling assistant for a personal calendar.
Given a candidate event and the user's existing events, judge whether the placement is sensible
(conflicts, unrealistic timing, missing breaks). Respond with strict JSON only, no prose:
{"is_approved": true|false, "severity": "info"|"warning"|"critical", "recommendation_message": "...", "suggestions": ["..."]}`

type validationPayload struct {
	IsApproved            bool     `json:"is_approved"`
	Severity              string   `json:"severity"`
	RecommendationMessage string   `json:"recommendation_message"`
	Suggestions           []string `json:"suggestions"`
}

// ValidateEventPlacement asks the assistant whether the candidate placement
// is sensible. Every AI failure, from transport errors to a reply that is
// not the agreed JSON shape, degrades to the local overlap heuristic; the
// caller always gets a result and never an error.
func ValidateEventPlacement(ctx context.Context, ai *AIClient, cand models.EventDraft, existing []models.Event) models.AIValidationResult {
	reply, err := ai.Complete(ctx, validationSystemPrompt, validationUserPrompt(cand, existing))
	if err != nil {
		return fallbackValidation(cand, existing)
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return fallbackValidation(cand, existing)
	}
	var p validationPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return fallbackValidation(cand, existing)
	}

	severity := models.ValidationSeverity(strings.ToLower(p.Severity))
	switch severity {
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
	default:
		return fallbackValidation(cand, existing)
	}

	return models.AIValidationResult{
		IsApproved:  p.IsApproved,
		Severity:    severity,
		Message:     p.RecommendationMessage,
		Suggestions: p.Suggestions,
		UsedAI:      true,
	}
}

func validationUserPrompt(cand models.EventDraft, existing []models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %q from %s to %s (all-day: %t, priority %d).\n",
		cand.Title, cand.StartTime.Format(time.RFC3339), cand.EndTime.Format(time.RFC3339),
		cand.AllDay, cand.Priority)
	if len(existing) == 0 {
		b.WriteString("The calendar is empty in this window.")
		return b.String()
	}
	b.WriteString("Existing events in the same window:\n")
	for _, ev := range existing {
		fmt.Fprintf(&b, "- %q from %s to %s (all-day: %t)\n",
			ev.Title, ev.StartTime.Format(time.RFC3339), ev.EndTime.Format(time.RFC3339), ev.AllDay)
	}
	return b.String()
}

// fallbackValidation recomputes a coarse overlap check locally. The message
// wording is a stable contract: overlap feedback always contains the word
// "solapamiento" so clients can tell fallback output from model output.
func fallbackValidation(cand models.EventDraft, existing []models.Event) models.AIValidationResult {
	if cand.AllDay {
		return models.AIValidationResult{
			IsApproved: true,
			Severity:   models.SeverityInfo,
			Message:    "Sin conflictos: los eventos de día completo no bloquean franjas horarias.",
			UsedAI:     false,
		}
	}

	for _, ev := range existing {
		if ev.AllDay {
			continue
		}
		if cand.StartTime.Before(ev.EndTime) && ev.StartTime.Before(cand.EndTime) {
			return models.AIValidationResult{
				IsApproved: false,
				Severity:   models.SeverityWarning,
				Message: fmt.Sprintf("Se detectó un solapamiento con %q (%s - %s).",
					ev.Title, ev.StartTime.Format("15:04"), ev.EndTime.Format("15:04")),
				Suggestions: []string{
					fmt.Sprintf("Mover el evento después de las %s.", ev.EndTime.Format("15:04")),
					"Revisar la agenda del día antes de confirmar.",
				},
				UsedAI: false,
			}
		}
	}

	return models.AIValidationResult{
		IsApproved: true,
		Severity:   models.SeverityInfo,
		Message:    "Sin conflictos en el horario propuesto.",
		UsedAI:     false,
	}
}
