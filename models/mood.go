package models

import (
	"time"
)

// MoodEntry is a standalone wellness check-in, independent of any event.
// The free-text note is encrypted at rest (services.EncryptNote); only the
// numeric rating is stored in the clear so pattern queries stay cheap.
type MoodEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Rating        int       `gorm:"not null" json:"rating"` // 1 (low) .. 5 (high)
	NoteEncrypted []byte    `gorm:"type:blob" json:"-"`
	RecordedAt    time.Time `gorm:"not null;index" json:"recorded_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type MoodEntryInput struct {
	Rating     int        `json:"rating"`
	Note       string     `json:"note"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// MoodEntryResponse carries the decrypted note.
type MoodEntryResponse struct {
	ID         uint      `json:"id"`
	Rating     int       `json:"rating"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *MoodEntry) ToResponse(note string) MoodEntryResponse {
	return MoodEntryResponse{
		ID:         m.ID,
		Rating:     m.Rating,
		Note:       note,
		RecordedAt: m.RecordedAt,
		CreatedAt:  m.CreatedAt,
	}
}
