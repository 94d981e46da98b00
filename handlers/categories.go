package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"aurora/database"
	"aurora/middleware"
	"aurora/models"
)

// ListCategories returns the user's own categories plus the active system
// ones.
func ListCategories(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var categories []models.EventCategory
	if result := database.DB.
		Where("user_id = ? OR (is_system = ? AND is_active = ?)", userID, true, true).
		Order("is_system DESC").
		Order("name").
		Find(&categories); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categories",
		})
	}

	return c.JSON(categories)
}

// CreateCategory creates a new personal category
func CreateCategory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var input models.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	// Default color if not provided
	if input.Color == "" {
		input.Color = "#3b82f6"
	}

	category := models.EventCategory{
		UserID:   &userID,
		Name:     input.Name,
		Color:    input.Color,
		IsActive: true,
	}

	if result := database.DB.Create(&category); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create category",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory updates a personal category. System categories are
// read-only.
func UpdateCategory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	categoryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	var category models.EventCategory
	if result := database.DB.First(&category, categoryID); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	}

	if !category.OwnedBy(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "System categories cannot be modified",
		})
	}

	var input models.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.Name != "" {
		category.Name = input.Name
	}
	if input.Color != "" {
		category.Color = input.Color
	}

	if result := database.DB.Save(&category); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update category",
		})
	}

	return c.JSON(category)
}

// DeleteCategory deletes a personal category. When events still reference
// it the caller must name a target_category_id to move them to; deleting
// without one reports the event count instead.
func DeleteCategory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	categoryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	var category models.EventCategory
	if result := database.DB.First(&category, categoryID); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	}

	if !category.OwnedBy(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "System categories cannot be deleted",
		})
	}

	var eventCount int64
	if result := database.DB.Model(&models.Event{}).
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Count(&eventCount); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete category",
		})
	}

	if eventCount > 0 {
		rawTarget := c.Query("target_category_id")
		if rawTarget == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":       "Category still has events; pass target_category_id to move them",
				"event_count": eventCount,
			})
		}

		targetID, err := strconv.ParseUint(rawTarget, 10, 32)
		if err != nil || targetID == uint64(categoryID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid target category",
			})
		}

		var target models.EventCategory
		if result := database.DB.First(&target, targetID); result.Error != nil || !target.AvailableTo(userID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid target category",
			})
		}

		if result := database.DB.Model(&models.Event{}).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Update("category_id", target.ID); result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to move events",
			})
		}
	}

	if result := database.DB.Delete(&category); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete category",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
