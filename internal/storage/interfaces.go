package storage

import "context"

// ObjectStore is the gateway to the video object store. URL-returning
// operations hand out time-limited capability URLs; the bytes never pass
// through this process.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Size(ctx context.Context, key string) (int64, error)
}
