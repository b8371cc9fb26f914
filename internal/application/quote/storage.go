package quote

import (
	"context"
	"time"
)

// AssetStorage provides presigned access to the object store holding
// quote reference images. Implementations live in infrastructure.
type AssetStorage interface {
	// GenerateUploadURL returns a presigned PUT URL for a storage key
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL for a storage key
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists reports whether an object has been uploaded
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
