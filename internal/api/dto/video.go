package dto

import (
	"github.com/clipsum/backend/internal/api/validation"
)

type CreateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	MimeType    string `json:"mime_type"`
}

func (r CreateVideoRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if !validation.IsValidVideoTitle(r.Title) {
		errors["title"] = "Title must be between 2 and 100 characters"
	}
	if !validation.IsValidVideoDescription(r.Description) {
		errors["description"] = "Description cannot exceed 1000 characters"
	}
	if r.FileName == "" {
		errors["file_name"] = "Filename is required"
	}
	if r.FileSize <= 0 {
		errors["file_size"] = "File size must be a positive number"
	}
	if !validation.IsValidVideoMimeType(r.MimeType) {
		errors["mime_type"] = "Only video files are allowed"
	}

	return errors
}

type UpdateVideoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

func (r UpdateVideoRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && !validation.IsValidVideoTitle(*r.Title) {
		errors["title"] = "Title must be between 2 and 100 characters"
	}
	if r.Description != nil && !validation.IsValidVideoDescription(*r.Description) {
		errors["description"] = "Description cannot exceed 1000 characters"
	}

	return errors
}
