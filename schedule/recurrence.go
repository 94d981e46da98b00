// Package schedule contains the calendar analysis core: recurrence
// expansion, overlap detection, and suggestion scoring. Everything here is
// a pure computation over in-memory slices; persistence and HTTP live in
// the services and handlers packages.
package schedule

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"aurora/models"
)

// maxOccurrencesPerEvent caps recurrence expansion so a runaway rule
// (e.g. FREQ=MINUTELY) cannot blow up a window query.
const maxOccurrencesPerEvent = 366

// Occurrence is a concrete placement of an event on the calendar. A plain
// event yields at most one occurrence per window; a recurring event yields
// one per rule instance inside the window.
type Occurrence struct {
	EventID    uint      `json:"event_id"`
	Title      string    `json:"title"`
	CategoryID *uint     `json:"category_id,omitempty"`
	Priority   int       `json:"priority"`
	MoodRating *int      `json:"mood_rating,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	AllDay     bool      `json:"all_day"`
}

// ExpandEvents materializes events into occurrences inside the half-open
// window [from, to), all normalized to loc. Events carrying a recurrence
// rule are expanded with the rule anchored at StartTime and the original
// duration preserved; an unparsable rule degrades to the base occurrence.
// All-day occurrences snap to [00:00, +24h) of their start day.
func ExpandEvents(events []models.Event, from, to time.Time, loc *time.Location) []Occurrence {
	if loc == nil {
		loc = time.UTC
	}
	occs := make([]Occurrence, 0, len(events))
	for i := range events {
		occs = append(occs, expandEvent(&events[i], from, to, loc)...)
	}
	sort.SliceStable(occs, func(i, j int) bool {
		if !occs[i].Start.Equal(occs[j].Start) {
			return occs[i].Start.Before(occs[j].Start)
		}
		return occs[i].EventID < occs[j].EventID
	})
	return occs
}

func expandEvent(ev *models.Event, from, to time.Time, loc *time.Location) []Occurrence {
	if ev.RecurrenceRule == "" {
		if occ, ok := singleOccurrence(ev, ev.StartTime, ev.EndTime, from, to, loc); ok {
			return []Occurrence{occ}
		}
		return nil
	}

	rule, err := rrule.StrToRRule(ev.RecurrenceRule)
	if err != nil {
		// Bad rule: fall back to the base placement rather than hiding
		// the event from the calendar.
		if occ, ok := singleOccurrence(ev, ev.StartTime, ev.EndTime, from, to, loc); ok {
			return []Occurrence{occ}
		}
		return nil
	}
	rule.DTStart(ev.StartTime)

	var set rrule.Set
	set.RRule(rule)

	duration := ev.EndTime.Sub(ev.StartTime)
	// Widen the left edge by the duration so instances that started before
	// the window but spill into it are still produced.
	starts := set.Between(from.Add(-duration), to, true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		if occ, ok := singleOccurrence(ev, start, start.Add(duration), from, to, loc); ok {
			out = append(out, occ)
		}
	}
	return out
}

// singleOccurrence builds one occurrence for the given start/end, returning
// false when it lies outside the window. Intersection is half-open on both
// sides: an event ending exactly at `from`, or starting exactly at `to`,
// is not part of the window.
func singleOccurrence(ev *models.Event, start, end time.Time, from, to time.Time, loc *time.Location) (Occurrence, bool) {
	start = start.In(loc)
	end = end.In(loc)
	if ev.AllDay {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		start = day
		end = day.Add(24 * time.Hour)
	}
	if !start.Before(to) || !end.After(from) {
		return Occurrence{}, false
	}
	return Occurrence{
		EventID:    ev.ID,
		Title:      ev.Title,
		CategoryID: ev.CategoryID,
		Priority:   ev.Priority,
		MoodRating: ev.MoodRating,
		Start:      start,
		End:        end,
		AllDay:     ev.AllDay,
	}, true
}

func (o Occurrence) duration() time.Duration {
	return o.End.Sub(o.Start)
}

// dayOf returns midnight of the occurrence's start day in its own location.
func (o Occurrence) dayOf() time.Time {
	return time.Date(o.Start.Year(), o.Start.Month(), o.Start.Day(), 0, 0, 0, 0, o.Start.Location())
}
