package services

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"aurora/models"
)

// BuildCalendar renders the given events as an iCalendar document. All-day
// events are emitted with VALUE=DATE so importers treat them as date spans
// rather than midnight appointments; recurrence rules are carried through
// verbatim for the importer to expand.
func BuildCalendar(events []models.Event, loc *time.Location, owner string) string {
	if loc == nil {
		loc = time.UTC
	}

	name := "Aurora"
	if owner != "" {
		name = "Aurora - " + owner
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Aurora//Calendar//EN")
	cal.SetXWRCalName(name)

	now := time.Now().UTC()
	for i := range events {
		ev := &events[i]
		ve := cal.AddEvent(eventUID(ev))
		ve.SetDtStampTime(now)
		ve.SetCreatedTime(ev.CreatedAt.UTC())
		ve.SetModifiedAt(ev.UpdatedAt.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.RecurrenceRule != "" {
			ve.SetProperty(ical.ComponentPropertyRrule, ev.RecurrenceRule)
		}

		if ev.AllDay {
			day := ev.StartTime.In(loc)
			start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
			ve.SetAllDayStartAt(start)
			ve.SetAllDayEndAt(start.AddDate(0, 0, 1))
			continue
		}
		ve.SetStartAt(ev.StartTime.In(loc))
		ve.SetEndAt(ev.EndTime.In(loc))
	}

	return cal.Serialize()
}

// eventUID gives each event a stable identifier so re-exports update rather
// than duplicate entries in the importing calendar.
func eventUID(ev *models.Event) string {
	return fmt.Sprintf("aurora-%d@aurora.local", ev.ID)
}
