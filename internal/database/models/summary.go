package models

import "github.com/google/uuid"

// Summary holds the processing result for a video. The API serves it
// read-only; the summarization pipeline writes it out of band.
type Summary struct {
	Base
	VideoID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"video_id"`
	Content string    `gorm:"type:text" json:"content"`
}

func (Summary) TableName() string {
	return "summaries"
}
