package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clipsum/backend/internal/api/dto"
	"github.com/clipsum/backend/internal/api/middleware"
	"github.com/clipsum/backend/internal/videos"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type VideoHandler struct {
	videoService *videos.Service
	dev          bool
}

func NewVideoHandler(videoService *videos.Service, dev bool) *VideoHandler {
	return &VideoHandler{videoService: videoService, dev: dev}
}

// Create handles POST /api/v1/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	result, err := h.videoService.CreateVideo(r.Context(), userID, videos.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		MimeType:    req.MimeType,
	})
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusCreated, result, "Video created successfully. Ready for upload.")
}

// List handles GET /api/v1/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	list, err := h.videoService.GetUserVideos(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, list, "Videos retrieved successfully")
}

// Get handles GET /api/v1/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	videoID, ok := parseVideoID(w, r)
	if !ok {
		return
	}

	video, err := h.videoService.GetVideo(r.Context(), userID, videoID)
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, video, "Video retrieved successfully")
}

// Update handles PATCH /api/v1/videos/{id}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	videoID, ok := parseVideoID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	video, err := h.videoService.UpdateVideo(r.Context(), userID, videoID, videos.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{id}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	videoID, ok := parseVideoID(w, r)
	if !ok {
		return
	}

	if err := h.videoService.DeleteVideo(r.Context(), userID, videoID); err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"id": videoID.String()}, "Video deleted successfully")
}

// UploadURL handles GET /api/v1/videos/{id}/upload-url
func (h *VideoHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	videoID, ok := parseVideoID(w, r)
	if !ok {
		return
	}

	result, err := h.videoService.GetUploadURL(r.Context(), userID, videoID)
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, result, "Upload URL generated successfully")
}

// Confirm handles POST /api/v1/videos/{id}/confirm
func (h *VideoHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	videoID, ok := parseVideoID(w, r)
	if !ok {
		return
	}

	result, err := h.videoService.ConfirmUpload(r.Context(), userID, videoID)
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, result, "Upload confirmed successfully")
}

func parseVideoID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationErrors(w, map[string]string{"id": "Invalid video ID format"})
		return uuid.Nil, false
	}
	return videoID, true
}
