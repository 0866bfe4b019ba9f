package videos

import (
	"context"
	"errors"
	"log/slog"

	"github.com/clipsum/backend/internal/database/models"
	"github.com/clipsum/backend/internal/storage"
	"github.com/clipsum/backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound     = apperr.New(apperr.NotFound, "VIDEO_NOT_FOUND", "Video not found")
	ErrForbidden         = apperr.New(apperr.Authorization, "UNAUTHORIZED_ACCESS", "Unauthorized access to video")
	ErrObjectMissing     = apperr.New(apperr.NotFound, "STORAGE_FILE_NOT_FOUND", "Video file not found in storage")
	ErrInvalidTransition = apperr.New(apperr.Conflict, "INVALID_STATUS_TRANSITION", "Video is not in a state that allows this operation")
)

// Service orchestrates the video record store and the object storage gateway.
// The database row is authoritative; storage cleanup is advisory.
type Service struct {
	db     *gorm.DB
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewService(db *gorm.DB, store storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{db: db, store: store, logger: logger}
}

type CreateInput struct {
	Title       string
	Description string
	FileName    string
	FileSize    int64
	MimeType    string
}

type UpdateInput struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// VideoResult is a video record plus an optional transient download URL.
// The URL is generated per request and never persisted.
type VideoResult struct {
	*models.Video
	FileURL string `json:"file_url,omitempty"`
}

type CreateResult struct {
	Video     *models.Video `json:"video"`
	UploadURL string        `json:"upload_url"`
}

type UploadURLResult struct {
	UploadURL string `json:"upload_url"`
	FileKey   string `json:"file_key"`
}

// CreateVideo stores a PENDING record under a fresh file key and hands back
// a presigned URL for the client to PUT the bytes directly to storage.
func (s *Service) CreateVideo(ctx context.Context, userID uuid.UUID, input CreateInput) (*CreateResult, error) {
	fileKey := storage.GenerateFileKey(input.FileName)

	video := models.Video{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		FileName:    input.FileName,
		FileKey:     fileKey,
		FileSize:    input.FileSize,
		MimeType:    input.MimeType,
		Status:      models.VideoStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&video).Error; err != nil {
		return nil, err
	}

	uploadURL, err := s.store.PresignUpload(ctx, fileKey, input.MimeType)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "UPLOAD_URL_ERROR", "Failed to generate upload URL")
	}

	return &CreateResult{Video: &video, UploadURL: uploadURL}, nil
}

// GetVideo returns a video readable by the requester: the owner always, or
// anyone when the video is public. READY videos carry a download URL.
func (s *Service) GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*VideoResult, error) {
	video, err := s.find(ctx, videoID, true)
	if err != nil {
		return nil, err
	}

	if video.UserID != userID && !video.IsPublic {
		return nil, ErrForbidden
	}

	result := &VideoResult{Video: video}
	if video.Status == models.VideoStatusReady {
		url, err := s.store.PresignDownload(ctx, video.FileKey)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.Upstream, "DOWNLOAD_URL_ERROR", "Failed to generate download URL")
		}
		result.FileURL = url
	}

	return result, nil
}

// GetUserVideos lists the requester's non-deleted videos, newest first.
// No download URLs for list views.
func (s *Service) GetUserVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	var videos []models.Video
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, models.VideoStatusDeleted).
		Order("created_at DESC").
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// UpdateVideo applies a partial metadata update. Owner only; public readers
// may not write.
func (s *Service) UpdateVideo(ctx context.Context, userID, videoID uuid.UUID, input UpdateInput) (*models.Video, error) {
	video, err := s.findOwned(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(video).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.find(ctx, videoID, true)
}

// DeleteVideo soft-deletes the record, then best-effort removes the storage
// object. A storage failure is logged and swallowed: the row is authoritative
// and the client must not see a delete fail over advisory cleanup.
func (s *Service) DeleteVideo(ctx context.Context, userID, videoID uuid.UUID) error {
	video, err := s.findOwned(ctx, userID, videoID)
	if err != nil {
		return err
	}

	if !video.Status.CanTransition(models.VideoStatusDeleted) {
		return ErrInvalidTransition
	}

	if err := s.db.WithContext(ctx).Model(video).
		Update("status", models.VideoStatusDeleted).Error; err != nil {
		return err
	}

	if err := s.store.Delete(ctx, video.FileKey); err != nil {
		s.logger.Error("storage delete failed, keeping record deleted",
			"video_id", video.ID,
			"file_key", video.FileKey,
			"error", err,
		)
	}

	return nil
}

// GetUploadURL re-issues a presigned PUT against the existing file key so the
// owner can retry a failed or abandoned upload.
func (s *Service) GetUploadURL(ctx context.Context, userID, videoID uuid.UUID) (*UploadURLResult, error) {
	video, err := s.findOwned(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	if !video.Status.CanTransition(models.VideoStatusUploading) {
		return nil, ErrInvalidTransition
	}

	if err := s.db.WithContext(ctx).Model(video).
		Update("status", models.VideoStatusUploading).Error; err != nil {
		return nil, err
	}

	uploadURL, err := s.store.PresignUpload(ctx, video.FileKey, video.MimeType)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "UPLOAD_URL_ERROR", "Failed to generate upload URL")
	}

	return &UploadURLResult{UploadURL: uploadURL, FileKey: video.FileKey}, nil
}

// ConfirmUpload verifies the object actually landed in storage, corrects the
// recorded size from the authoritative object when readable, and flips the
// video READY.
func (s *Service) ConfirmUpload(ctx context.Context, userID, videoID uuid.UUID) (*VideoResult, error) {
	video, err := s.findOwned(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	if !video.Status.CanTransition(models.VideoStatusReady) {
		return nil, ErrInvalidTransition
	}

	exists, err := s.store.Exists(ctx, video.FileKey)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "STORAGE_CHECK_ERROR", "Failed to check storage for video file")
	}
	if !exists {
		// Client claimed completion but storage disagrees; status unchanged.
		return nil, ErrObjectMissing
	}

	fileSize := video.FileSize
	if size, err := s.store.Size(ctx, video.FileKey); err != nil {
		s.logger.Warn("could not read object size, keeping reported size",
			"video_id", video.ID,
			"file_key", video.FileKey,
			"error", err,
		)
	} else {
		fileSize = size
	}

	updates := map[string]interface{}{
		"status":    models.VideoStatusReady,
		"file_size": fileSize,
	}
	if err := s.db.WithContext(ctx).Model(video).Updates(updates).Error; err != nil {
		return nil, err
	}

	fileURL, err := s.store.PresignDownload(ctx, video.FileKey)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "DOWNLOAD_URL_ERROR", "Failed to generate download URL")
	}

	video.Status = models.VideoStatusReady
	video.FileSize = fileSize
	return &VideoResult{Video: video, FileURL: fileURL}, nil
}

// find loads a video. DELETED rows behave as absent everywhere: the state is
// terminal and its storage object may already be gone.
func (s *Service) find(ctx context.Context, videoID uuid.UUID, withSummary bool) (*models.Video, error) {
	query := s.db.WithContext(ctx)
	if withSummary {
		query = query.Preload("Summary")
	}

	var video models.Video
	if err := query.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if video.Status == models.VideoStatusDeleted {
		return nil, ErrVideoNotFound
	}

	return &video, nil
}

// findOwned loads a video for a mutating operation; only the owner passes.
func (s *Service) findOwned(ctx context.Context, userID, videoID uuid.UUID) (*models.Video, error) {
	video, err := s.find(ctx, videoID, false)
	if err != nil {
		return nil, err
	}
	if video.UserID != userID {
		return nil, ErrForbidden
	}
	return video, nil
}
