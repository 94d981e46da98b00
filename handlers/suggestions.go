package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"aurora/middleware"
	"aurora/models"
	"aurora/services"
)

// ListSuggestions returns the user's pending suggestions, highest priority
// first, paged.
func ListSuggestions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	suggestions, total, err := services.PendingSuggestions(userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch suggestions",
		})
	}

	responses := make([]models.SuggestionResponse, len(suggestions))
	for i := range suggestions {
		responses[i] = suggestions[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"suggestions": responses,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

type generateInput struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// GenerateSuggestions analyzes a window of the user's calendar and persists
// fresh suggestions. The window defaults to the next seven days.
func GenerateSuggestions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}
	loc := user.Location()

	var input generateInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	from := time.Now().In(loc)
	to := from.AddDate(0, 0, 7)
	if input.From != nil {
		from = input.From.In(loc)
	}
	if input.To != nil {
		to = input.To.In(loc)
	}

	fresh, err := services.GenerateSuggestions(user, from, to)
	if err != nil {
		if errors.Is(err, services.ErrInvalidWindow) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "'to' must be after 'from'",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate suggestions",
		})
	}

	responses := make([]models.SuggestionResponse, len(fresh))
	for i := range fresh {
		responses[i] = fresh[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"suggestions": responses,
		"generated":   len(responses),
		"from":        from,
		"to":          to,
	})
}

// RespondToSuggestion accepts, rejects, or postpones a suggestion.
func RespondToSuggestion(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	suggestionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid suggestion ID",
		})
	}

	var input models.SuggestionResponseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	suggestion, err := services.RespondToSuggestion(userID, uint(suggestionID), input.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Status must be accepted, rejected, or postponed",
			})
		case errors.Is(err, services.ErrSuggestionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Suggestion not found",
			})
		case errors.Is(err, services.ErrSuggestionFinal):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Suggestion has already been resolved",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update suggestion",
			})
		}
	}

	return c.JSON(suggestion.ToResponse())
}
