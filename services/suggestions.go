package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"aurora/database"
	"aurora/models"
	"aurora/schedule"
)

var (
	ErrInvalidWindow      = errors.New("invalid time window")
	ErrInvalidStatus      = errors.New("invalid suggestion status")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrSuggestionFinal    = errors.New("suggestion already finalized")
)

// GenerateSuggestions runs the analysis pipeline for one user's window:
// expand events in the user's timezone, detect overlaps, score, then
// persist every draft that does not already have a pending twin. Returns
// the freshly created batch in ranked order.
func GenerateSuggestions(user *models.User, from, to time.Time) ([]models.ScheduleSuggestion, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}
	loc := user.Location()
	from = from.In(loc)
	to = to.In(loc)

	var events []models.Event
	if err := database.DB.Where("user_id = ?", user.ID).Find(&events).Error; err != nil {
		return nil, err
	}

	occs := schedule.ExpandEvents(events, from, to, loc)
	overlaps := schedule.DetectOverlaps(occs)
	drafts := schedule.Score(occs, overlaps, from, to, categoryNames(user.ID))
	if len(drafts) == 0 {
		return []models.ScheduleSuggestion{}, nil
	}

	pending, err := pendingKeys(user.ID)
	if err != nil {
		return nil, err
	}

	fresh := make([]models.ScheduleSuggestion, 0, len(drafts))
	for _, d := range drafts {
		if pending[suggestionKey(&d)] {
			continue
		}
		d.UserID = user.ID
		d.Status = models.SuggestionPending
		fresh = append(fresh, d)
	}
	if len(fresh) == 0 {
		return []models.ScheduleSuggestion{}, nil
	}

	if err := database.DB.Create(&fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

// PendingSuggestions returns one page of the user's open suggestions in
// ranked order, plus the total count for the pager.
func PendingSuggestions(userID uint, limit, offset int) ([]models.ScheduleSuggestion, int64, error) {
	base := database.DB.Model(&models.ScheduleSuggestion{}).
		Where("user_id = ? AND status = ?", userID, models.SuggestionPending)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var suggestions []models.ScheduleSuggestion
	err := base.
		Order("priority DESC").
		Order("confidence DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&suggestions).Error
	if err != nil {
		return nil, 0, err
	}
	return suggestions, total, nil
}

// RespondToSuggestion applies a user verdict. Accepted and rejected are
// terminal; postponed suggestions may be responded to again later.
func RespondToSuggestion(userID, suggestionID uint, status models.SuggestionStatus) (*models.ScheduleSuggestion, error) {
	switch status {
	case models.SuggestionAccepted, models.SuggestionRejected, models.SuggestionPostponed:
	default:
		return nil, ErrInvalidStatus
	}

	var s models.ScheduleSuggestion
	err := database.DB.Where("id = ? AND user_id = ?", suggestionID, userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Final() {
		return nil, ErrSuggestionFinal
	}

	now := time.Now()
	s.Status = status
	s.RespondedAt = &now
	if err := database.DB.Save(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// pendingKeys indexes the user's open suggestions by identity so a second
// generate run over the same window does not duplicate them.
func pendingKeys(userID uint) (map[string]bool, error) {
	var open []models.ScheduleSuggestion
	err := database.DB.
		Where("user_id = ? AND status = ?", userID, models.SuggestionPending).
		Find(&open).Error
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(open))
	for i := range open {
		keys[suggestionKey(&open[i])] = true
	}
	return keys, nil
}

// suggestionKey is the dedup identity: type plus the unordered event pair,
// falling back to the reason text for suggestions that reference no event.
func suggestionKey(s *models.ScheduleSuggestion) string {
	var a, b uint
	if s.EventID != nil {
		a = *s.EventID
	}
	if s.RelatedEventID != nil {
		b = *s.RelatedEventID
	}
	if a > b {
		a, b = b, a
	}
	if a == 0 && b == 0 {
		return fmt.Sprintf("%s:%s", s.Type, s.Reason)
	}
	return fmt.Sprintf("%s:%d:%d", s.Type, a, b)
}

func categoryNames(userID uint) map[uint]string {
	var cats []models.EventCategory
	err := database.DB.
		Where("user_id = ? OR (is_system = ? AND is_active = ?)", userID, true, true).
		Find(&cats).Error
	if err != nil {
		return nil
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}
