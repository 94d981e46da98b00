package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teambition/rrule-go"

	"aurora/database"
	"aurora/middleware"
	"aurora/models"
	"aurora/schedule"
	"aurora/services"
)

// weekWindow is the default listing range: the current week, Monday
// through Sunday, in the user's timezone.
func weekWindow(loc *time.Location) (time.Time, time.Time) {
	now := time.Now().In(loc)
	monday := (int(now.Weekday()) + 6) % 7
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -monday)
	return start, start.AddDate(0, 0, 7)
}

// parseWindow reads the from/to query parameters as RFC3339, falling back
// to the current week.
func parseWindow(c *fiber.Ctx, loc *time.Location) (time.Time, time.Time, error) {
	from, to := weekWindow(loc)
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid 'from' timestamp, expected RFC3339")
		}
		from = t.In(loc)
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid 'to' timestamp, expected RFC3339")
		}
		to = t.In(loc)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "'to' must be after 'from'")
	}
	return from, to, nil
}

// windowEvents loads the user's events that could place an occurrence
// inside [from, to): recurring ones anchored before the window's end plus
// the rest intersecting it. The lower bound is padded by a day because
// all-day rows store midnight as their end, not the day's true end;
// ExpandEvents filters exactly afterwards.
func windowEvents(userID uint, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := database.DB.
		Where("user_id = ?", userID).
		Where("(recurrence_rule != '' AND start_time < ?) OR (start_time < ? AND end_time > ?)", to, to, from.AddDate(0, 0, -1)).
		Order("start_time").
		Find(&events).Error
	return events, err
}

func eventResponses(events []models.Event, userID uint) []models.EventResponse {
	names := map[uint]models.EventCategory{}
	var cats []models.EventCategory
	if err := database.DB.
		Where("user_id = ? OR is_system = ?", userID, true).
		Find(&cats).Error; err == nil {
		for _, cat := range cats {
			names[cat.ID] = cat
		}
	}

	responses := make([]models.EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
		if events[i].CategoryID != nil {
			if cat, ok := names[*events[i].CategoryID]; ok {
				responses[i].CategoryName = cat.Name
				responses[i].CategoryColor = cat.Color
			}
		}
	}
	return responses
}

// ListEvents returns the user's events and their expanded occurrences for
// a window.
func ListEvents(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}
	loc := user.Location()

	from, to, err := parseWindow(c, loc)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	events, err := windowEvents(user.ID, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(fiber.Map{
		"events":      eventResponses(events, user.ID),
		"occurrences": schedule.ExpandEvents(events, from, to, loc),
		"from":        from,
		"to":          to,
	})
}

// MonthEvents returns the events and occurrences of one calendar month.
func MonthEvents(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}
	loc := user.Location()

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1970 || year > 2200 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid year",
		})
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Month must be between 1 and 12",
		})
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0)

	events, err := windowEvents(user.ID, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(fiber.Map{
		"events":      eventResponses(events, user.ID),
		"occurrences": schedule.ExpandEvents(events, from, to, loc),
		"from":        from,
		"to":          to,
	})
}

// GetEvent returns a single event by ID.
func GetEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if result := database.DB.Where("id = ? AND user_id = ?", eventID, userID).First(&event); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	responses := eventResponses([]models.Event{event}, userID)
	return c.JSON(responses[0])
}

// applyEventInput validates the input and copies it onto the event.
// Returns a client-facing error message, or "" when the input is fine.
func applyEventInput(event *models.Event, input *models.EventInput, userID uint, creating bool) string {
	if input.Title != "" {
		event.Title = input.Title
	}
	if creating && event.Title == "" {
		return "Title is required"
	}

	if input.Description != "" {
		event.Description = input.Description
	}
	if input.Location != "" {
		event.Location = input.Location
	}

	if input.AllDay != nil {
		event.AllDay = *input.AllDay
	}
	if input.StartTime != nil {
		event.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		event.EndTime = *input.EndTime
	}
	if creating && event.StartTime.IsZero() {
		return "Start time is required"
	}
	if event.AllDay {
		// All-day events may omit the end; they cover whole days anyway.
		if event.EndTime.IsZero() {
			event.EndTime = event.StartTime
		}
		if event.EndTime.Before(event.StartTime) {
			return "End time must not be before start time"
		}
	}
	if !event.AllDay {
		if event.EndTime.IsZero() {
			return "End time is required"
		}
		if !event.EndTime.After(event.StartTime) {
			return "End time must be after start time"
		}
	}

	if input.Priority != nil {
		if *input.Priority < models.PriorityMin || *input.Priority > models.PriorityMax {
			return "Priority must be between 1 and 4"
		}
		event.Priority = *input.Priority
	}

	if input.RecurrenceRule != nil {
		if *input.RecurrenceRule != "" {
			if _, err := rrule.StrToRRule(*input.RecurrenceRule); err != nil {
				return "Invalid recurrence rule"
			}
		}
		event.RecurrenceRule = *input.RecurrenceRule
	}

	if input.ReminderMinutes != nil {
		if *input.ReminderMinutes < 0 {
			return "Reminder minutes must not be negative"
		}
		event.ReminderMinutes = *input.ReminderMinutes
	}

	if input.CategoryID != nil {
		var cat models.EventCategory
		if result := database.DB.First(&cat, *input.CategoryID); result.Error != nil || !cat.AvailableTo(userID) {
			return "Unknown category"
		}
		event.CategoryID = input.CategoryID
	}

	return ""
}

// CreateEvent creates an event and attaches advisory placement feedback.
// The feedback is best-effort: an unreachable AI degrades to the local
// overlap heuristic and the event is created either way.
func CreateEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}

	var input models.EventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	event := models.Event{UserID: user.ID, Priority: 2}
	if msg := applyEventInput(&event, &input, user.ID, true); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if result := database.DB.Create(&event); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create event",
		})
	}

	validation := validatePlacement(c, user, &event)

	responses := eventResponses([]models.Event{event}, user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"event":      responses[0],
		"validation": validation,
	})
}

// validatePlacement runs the advisory check for a stored event against the
// rest of that day's calendar.
func validatePlacement(c *fiber.Ctx, user *models.User, event *models.Event) models.AIValidationResult {
	loc := user.Location()
	dayStart := time.Date(event.StartTime.In(loc).Year(), event.StartTime.In(loc).Month(), event.StartTime.In(loc).Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var neighbors []models.Event
	database.DB.
		Where("user_id = ? AND id != ? AND start_time < ? AND end_time > ?", user.ID, event.ID, dayEnd, dayStart.AddDate(0, 0, -1)).
		Find(&neighbors)

	draft := models.EventDraft{
		Title:     event.Title,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		AllDay:    event.AllDay,
		Priority:  event.Priority,
	}
	return services.ValidateEventPlacement(c.UserContext(), services.DefaultAI(), draft, neighbors)
}

// UpdateEvent updates an existing event.
func UpdateEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if result := database.DB.Where("id = ? AND user_id = ?", eventID, userID).First(&event); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	var input models.EventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := applyEventInput(&event, &input, userID, false); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if result := database.DB.Save(&event); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update event",
		})
	}

	responses := eventResponses([]models.Event{event}, userID)
	return c.JSON(responses[0])
}

// DeleteEvent removes an event.
func DeleteEvent(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if result := database.DB.Where("id = ? AND user_id = ?", eventID, userID).First(&event); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	if result := database.DB.Delete(&event); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete event",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetEventMood records how an event actually went.
func SetEventMood(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if result := database.DB.Where("id = ? AND user_id = ?", eventID, userID).First(&event); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	var input models.MoodInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.Rating < models.MoodRatingMin || input.Rating > models.MoodRatingMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rating must be between 1 and 5",
		})
	}

	event.MoodRating = &input.Rating
	event.MoodNotes = input.Notes

	if result := database.DB.Save(&event); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save mood",
		})
	}

	responses := eventResponses([]models.Event{event}, userID)
	return c.JSON(responses[0])
}
