package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"aurora/database"
	"aurora/models"
	"aurora/schedule"
)

type categoryMoodResponse struct {
	schedule.CategoryMood
	CategoryName  string `json:"category_name,omitempty"`
	CategoryColor string `json:"category_color,omitempty"`
}

type dayLoadResponse struct {
	Day              time.Time `json:"day"`
	Count            int       `json:"count"`
	AllDay           int       `json:"all_day"`
	ScheduledMinutes int       `json:"scheduled_minutes"`
}

// WellbeingStats summarizes a window: mood per category, load per day, and
// the overall average across rated events and standalone check-ins.
func WellbeingStats(c *fiber.Ctx) error {
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
	occs := schedule.ExpandEvents(events, from, to, loc)

	var cats []models.EventCategory
	database.DB.Where("user_id = ? OR is_system = ?", user.ID, true).Find(&cats)
	catByID := make(map[uint]models.EventCategory, len(cats))
	for _, cat := range cats {
		catByID[cat.ID] = cat
	}

	moods := schedule.CategoryMoodStats(occs)
	moodResponses := make([]categoryMoodResponse, len(moods))
	for i, cm := range moods {
		moodResponses[i] = categoryMoodResponse{CategoryMood: cm}
		if cat, ok := catByID[cm.CategoryID]; ok {
			moodResponses[i].CategoryName = cat.Name
			moodResponses[i].CategoryColor = cat.Color
		}
	}

	load := schedule.DailyLoad(occs)
	loadResponses := make([]dayLoadResponse, len(load))
	for i, dl := range load {
		loadResponses[i] = dayLoadResponse{
			Day:              dl.Day,
			Count:            dl.Count,
			AllDay:           dl.AllDay,
			ScheduledMinutes: int(dl.Scheduled.Minutes()),
		}
	}

	// Overall average counts each rated event once, however many
	// occurrences it expands to, plus every standalone check-in. Events
	// without a single occurrence in the window stay out of it.
	inWindow := make(map[uint]bool, len(occs))
	for _, o := range occs {
		inWindow[o.EventID] = true
	}

	var ratingSum, ratingCount int
	var ratedEvents int
	for i := range events {
		if events[i].MoodRating != nil && inWindow[events[i].ID] {
			ratingSum += *events[i].MoodRating
			ratingCount++
			ratedEvents++
		}
	}

	var entries []models.MoodEntry
	database.DB.
		Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", user.ID, from, to).
		Find(&entries)
	for i := range entries {
		ratingSum += entries[i].Rating
		ratingCount++
	}

	var averageMood *float64
	if ratingCount > 0 {
		avg := float64(ratingSum) / float64(ratingCount)
		averageMood = &avg
	}

	return c.JSON(fiber.Map{
		"from":           from,
		"to":             to,
		"category_moods": moodResponses,
		"daily_load":     loadResponses,
		"average_mood":   averageMood,
		"rated_events":   ratedEvents,
		"mood_entries":   len(entries),
	})
}
