package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"aurora/database"
	"aurora/middleware"
	"aurora/models"
	"aurora/services"
)

// ListMoodEntries returns the user's standalone mood check-ins for a
// window, newest first, with notes decrypted.
func ListMoodEntries(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}

	from, to, err := parseWindow(c, user.Location())
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	var entries []models.MoodEntry
	if result := database.DB.
		Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", user.ID, from, to).
		Order("recorded_at DESC").
		Find(&entries); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch mood entries",
		})
	}

	responses := make([]models.MoodEntryResponse, len(entries))
	for i := range entries {
		note, err := services.DecryptNote(entries[i].NoteEncrypted)
		if err != nil {
			// Undecryptable notes (rotated secret) degrade to rating-only.
			note = ""
		}
		responses[i] = entries[i].ToResponse(note)
	}

	return c.JSON(responses)
}

// CreateMoodEntry records a mood check-in. The note is encrypted before it
// touches the database.
func CreateMoodEntry(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var input models.MoodEntryInput
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

	recordedAt := time.Now()
	if input.RecordedAt != nil {
		recordedAt = *input.RecordedAt
	}

	encrypted, err := services.EncryptNote(input.Note)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save mood entry",
		})
	}

	entry := models.MoodEntry{
		UserID:        userID,
		Rating:        input.Rating,
		NoteEncrypted: encrypted,
		RecordedAt:    recordedAt,
	}

	if result := database.DB.Create(&entry); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save mood entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry.ToResponse(input.Note))
}

// DeleteMoodEntry removes a mood check-in.
func DeleteMoodEntry(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	entryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mood entry ID",
		})
	}

	var entry models.MoodEntry
	if result := database.DB.Where("id = ? AND user_id = ?", entryID, userID).First(&entry); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Mood entry not found",
		})
	}

	if result := database.DB.Delete(&entry); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete mood entry",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
