package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"aurora/database"
	"aurora/models"
	"aurora/services"
)

type parseInput struct {
	Text string `json:"text"`
}

// ParseEventText turns free text into a structured event draft. Always
// 200: when the AI is unreachable the result carries Success=false and a
// message instead of an error status.
func ParseEventText(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}

	var input parseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := services.ParseEventText(c.UserContext(), services.DefaultAI(), input.Text, time.Now(), user.Location())
	return c.JSON(result)
}

// ValidateEventDraft checks a proposed placement against the rest of that
// day's calendar without persisting anything. Always 200; AI failure
// degrades to the local overlap heuristic.
func ValidateEventDraft(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}
	loc := user.Location()

	var draft models.EventDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if draft.StartTime.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start time is required",
		})
	}
	if !draft.AllDay && !draft.EndTime.After(draft.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End time must be after start time",
		})
	}

	start := draft.StartTime.In(loc)
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var neighbors []models.Event
	database.DB.
		Where("user_id = ? AND start_time < ? AND end_time > ?", user.ID, dayEnd, dayStart.AddDate(0, 0, -1)).
		Find(&neighbors)

	result := services.ValidateEventPlacement(c.UserContext(), services.DefaultAI(), draft, neighbors)
	return c.JSON(result)
}
