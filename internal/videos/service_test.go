package videos_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clipsum/backend/internal/database/models"
	"github.com/clipsum/backend/internal/testutil"
	"github.com/clipsum/backend/internal/videos"
	"github.com/clipsum/backend/pkg/apperr"
	"github.com/clipsum/backend/pkg/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVideoService(t *testing.T) (*videos.Service, *testutil.TestSetup) {
	t.Helper()
	ts := testutil.NewTestContext(t)
	t.Cleanup(ts.Cleanup)
	svc := videos.NewService(ts.DB, ts.Store, util.NewLogger("test"))
	return svc, ts
}

func TestCreateVideo(t *testing.T) {
	svc, ts := newVideoService(t)

	result, err := svc.CreateVideo(context.Background(), ts.User.ID, videos.CreateInput{
		Title:    "My first video",
		FileName: "clip.mp4",
		FileSize: 2048,
		MimeType: "video/mp4",
	})
	require.NoError(t, err)

	assert.Equal(t, models.VideoStatusPending, result.Video.Status)
	assert.True(t, strings.HasPrefix(result.Video.FileKey, "videos/"))
	assert.True(t, strings.HasSuffix(result.Video.FileKey, ".mp4"))
	assert.Contains(t, result.UploadURL, result.Video.FileKey)
	assert.False(t, result.Video.IsPublic)
}

func TestCreateVideo_PresignFailure(t *testing.T) {
	svc, ts := newVideoService(t)
	ts.Store.FailPresign = true

	_, err := svc.CreateVideo(context.Background(), ts.User.ID, videos.CreateInput{
		Title:    "Doomed",
		FileName: "clip.mp4",
		MimeType: "video/mp4",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Upstream))
}

func TestGetVideo_OwnerAlwaysReads(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusPending)

	result, err := svc.GetVideo(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, result.Video.ID)
	assert.Empty(t, result.FileURL, "no download URL until READY")
}

func TestGetVideo_ReadyCarriesDownloadURL(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)

	result, err := svc.GetVideo(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)
	assert.Contains(t, result.FileURL, video.FileKey)
}

func TestGetVideo_PrivateHiddenFromOthers(t *testing.T) {
	svc, ts := newVideoService(t)
	stranger := testutil.CreateTestUser(t, ts.DB)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)

	_, err := svc.GetVideo(context.Background(), stranger.ID, video.ID)
	assert.ErrorIs(t, err, videos.ErrForbidden)
}

func TestGetVideo_PublicReadableByOthers(t *testing.T) {
	svc, ts := newVideoService(t)
	stranger := testutil.CreateTestUser(t, ts.DB)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)
	require.NoError(t, ts.DB.Model(video).Update("is_public", true).Error)

	result, err := svc.GetVideo(context.Background(), stranger.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, result.Video.ID)
}

func TestGetVideo_DeletedLooksAbsent(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusDeleted)

	_, err := svc.GetVideo(context.Background(), ts.User.ID, video.ID)
	assert.ErrorIs(t, err, videos.ErrVideoNotFound)
}

func TestGetVideo_UnknownID(t *testing.T) {
	svc, ts := newVideoService(t)

	_, err := svc.GetVideo(context.Background(), ts.User.ID, uuid.New())
	assert.ErrorIs(t, err, videos.ErrVideoNotFound)
}

func TestGetUserVideos_ExcludesDeletedNewestFirst(t *testing.T) {
	svc, ts := newVideoService(t)

	older := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)
	newer := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusPending)
	deleted := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusDeleted)

	// Make the ordering unambiguous
	require.NoError(t, ts.DB.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	// Another user's video must not leak in
	stranger := testutil.CreateTestUser(t, ts.DB)
	testutil.CreateTestVideo(t, ts.DB, stranger.ID, models.VideoStatusReady)

	list, err := svc.GetUserVideos(context.Background(), ts.User.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	for _, v := range list {
		assert.NotEqual(t, deleted.ID, v.ID)
	}
}

func TestUpdateVideo_PartialUpdate(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)

	title := "Renamed"
	public := true
	updated, err := svc.UpdateVideo(context.Background(), ts.User.ID, video.ID, videos.UpdateInput{
		Title:    &title,
		IsPublic: &public,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, video.Description, updated.Description)
	assert.Equal(t, video.FileKey, updated.FileKey, "file key is immutable")
}

func TestUpdateVideo_PublicIsNotWritableByOthers(t *testing.T) {
	svc, ts := newVideoService(t)
	stranger := testutil.CreateTestUser(t, ts.DB)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)
	require.NoError(t, ts.DB.Model(video).Update("is_public", true).Error)

	title := "Hijacked"
	_, err := svc.UpdateVideo(context.Background(), stranger.ID, video.ID, videos.UpdateInput{Title: &title})
	assert.ErrorIs(t, err, videos.ErrForbidden)
}

func TestDeleteVideo(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)
	ts.Store.Put(video.FileKey, 1024)

	require.NoError(t, svc.DeleteVideo(context.Background(), ts.User.ID, video.ID))

	var stored models.Video
	require.NoError(t, ts.DB.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, models.VideoStatusDeleted, stored.Status)
	assert.Contains(t, ts.Store.Deleted, video.FileKey)

	// A second delete sees the record as already gone
	err := svc.DeleteVideo(context.Background(), ts.User.ID, video.ID)
	assert.ErrorIs(t, err, videos.ErrVideoNotFound)
}

func TestDeleteVideo_StorageFailureStillDeletesRecord(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)
	ts.Store.FailDelete = true

	require.NoError(t, svc.DeleteVideo(context.Background(), ts.User.ID, video.ID))

	var stored models.Video
	require.NoError(t, ts.DB.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, models.VideoStatusDeleted, stored.Status)
}

func TestDeleteVideo_NonOwnerForbidden(t *testing.T) {
	svc, ts := newVideoService(t)
	stranger := testutil.CreateTestUser(t, ts.DB)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)

	err := svc.DeleteVideo(context.Background(), stranger.ID, video.ID)
	assert.ErrorIs(t, err, videos.ErrForbidden)
}

func TestGetUploadURL_MarksUploading(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusPending)

	result, err := svc.GetUploadURL(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.FileKey, result.FileKey)
	assert.Contains(t, result.UploadURL, video.FileKey)

	var stored models.Video
	require.NoError(t, ts.DB.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, models.VideoStatusUploading, stored.Status)
}

func TestGetUploadURL_RetryWhileUploading(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusUploading)

	_, err := svc.GetUploadURL(context.Background(), ts.User.ID, video.ID)
	assert.NoError(t, err)
}

func TestGetUploadURL_ReadyVideoAllowsReupload(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)

	_, err := svc.GetUploadURL(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)

	var stored models.Video
	require.NoError(t, ts.DB.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, models.VideoStatusUploading, stored.Status)
}

func TestConfirmUpload_ObjectMissingKeepsStatus(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusUploading)

	_, err := svc.ConfirmUpload(context.Background(), ts.User.ID, video.ID)
	assert.ErrorIs(t, err, videos.ErrObjectMissing)

	var stored models.Video
	require.NoError(t, ts.DB.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, models.VideoStatusUploading, stored.Status)
}

func TestConfirmUpload_Success(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusUploading)
	ts.Store.Put(video.FileKey, 9999)

	result, err := svc.ConfirmUpload(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusReady, result.Video.Status)
	assert.EqualValues(t, 9999, result.Video.FileSize, "size corrected from storage")
	assert.Contains(t, result.FileURL, video.FileKey)

	var stored models.Video
	require.NoError(t, ts.DB.First(&stored, "id = ?", video.ID).Error)
	assert.Equal(t, models.VideoStatusReady, stored.Status)
	assert.EqualValues(t, 9999, stored.FileSize)
}

func TestConfirmUpload_SizeFailureKeepsReportedSize(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusUploading)
	ts.Store.Put(video.FileKey, 9999)
	ts.Store.FailSize = true

	result, err := svc.ConfirmUpload(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusReady, result.Video.Status)
	assert.EqualValues(t, video.FileSize, result.Video.FileSize)
}

func TestConfirmUpload_AlreadyReadyConflicts(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusReady)
	ts.Store.Put(video.FileKey, 1024)

	_, err := svc.ConfirmUpload(context.Background(), ts.User.ID, video.ID)
	assert.ErrorIs(t, err, videos.ErrInvalidTransition)
}

func TestConfirmUpload_FromPending(t *testing.T) {
	svc, ts := newVideoService(t)
	video := testutil.CreateTestVideo(t, ts.DB, ts.User.ID, models.VideoStatusPending)
	ts.Store.Put(video.FileKey, 1024)

	result, err := svc.ConfirmUpload(context.Background(), ts.User.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusReady, result.Video.Status)
}
