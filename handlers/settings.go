package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"aurora/config"
)

type AppSettings struct {
	SessionDurationHours int    `json:"session_duration_hours"`
	DefaultTimezone      string `json:"default_timezone"`
	AIModel              string `json:"ai_model"`
	AIEnabled            bool   `json:"ai_enabled"`
}

// GetSettings returns non-sensitive application settings
func GetSettings(c *fiber.Ctx) error {
	cfg := config.GetConfig()
	return c.JSON(AppSettings{
		SessionDurationHours: cfg.SessionDurationHours,
		DefaultTimezone:      cfg.DefaultTimezone,
		AIModel:              cfg.AIModel,
		AIEnabled:            cfg.AIBaseURL != "",
	})
}

// UpdateSettings updates application settings
func UpdateSettings(c *fiber.Ctx) error {
	var input AppSettings
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.SessionDurationHours < 1 || input.SessionDurationHours > 720 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session duration must be between 1 and 720 hours",
		})
	}

	cfg := config.GetConfig()
	cfg.SessionDurationHours = input.SessionDurationHours

	if input.DefaultTimezone != "" {
		if _, err := time.LoadLocation(input.DefaultTimezone); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown timezone",
			})
		}
		cfg.DefaultTimezone = input.DefaultTimezone
	}
	if input.AIModel != "" {
		cfg.AIModel = input.AIModel
	}

	if err := cfg.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save settings",
		})
	}

	return c.JSON(AppSettings{
		SessionDurationHours: cfg.SessionDurationHours,
		DefaultTimezone:      cfg.DefaultTimezone,
		AIModel:              cfg.AIModel,
		AIEnabled:            cfg.AIBaseURL != "",
	})
}
