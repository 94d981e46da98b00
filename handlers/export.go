package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aurora/services"
)

// ExportCalendar serves the user's events for a window as an iCalendar
// file.
func ExportCalendar(c *fiber.Ctx) error {
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

	// Set headers for file download
	c.Set("Content-Disposition", "attachment; filename=\"calendar.ics\"")
	c.Set("Content-Type", "text/calendar; charset=utf-8")

	return c.SendString(services.BuildCalendar(events, loc, user.Username))
}
