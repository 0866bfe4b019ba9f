package models

import "github.com/google/uuid"

// VideoStatus tracks the upload lifecycle. DELETED is terminal and doubles
// as the soft-delete flag: rows are never removed.
type VideoStatus string

const (
	VideoStatusPending   VideoStatus = "PENDING"
	VideoStatusUploading VideoStatus = "UPLOADING"
	VideoStatusReady     VideoStatus = "READY"
	VideoStatusDeleted   VideoStatus = "DELETED"
)

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Writes outside this table are rejected by the video service.
func (s VideoStatus) CanTransition(next VideoStatus) bool {
	switch next {
	case VideoStatusUploading:
		return s == VideoStatusPending || s == VideoStatusReady || s == VideoStatusUploading
	case VideoStatusReady:
		return s == VideoStatusPending || s == VideoStatusUploading
	case VideoStatusDeleted:
		return s != VideoStatusDeleted
	default:
		return false
	}
}

type Video struct {
	Base
	UserID      uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `json:"description,omitempty"`
	FileName    string      `gorm:"not null" json:"file_name"`
	FileKey     string      `gorm:"uniqueIndex;not null" json:"file_key"` // assigned once at creation, immutable
	FileSize    int64       `json:"file_size"`
	MimeType    string      `gorm:"not null" json:"mime_type"`
	Status      VideoStatus `gorm:"default:'PENDING'" json:"status"`
	IsPublic    bool        `gorm:"default:false" json:"is_public"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Summary *Summary `gorm:"foreignKey:VideoID" json:"summary,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}
