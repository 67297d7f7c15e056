// Package media holds the object storage port and the upload flow shared by
// profile avatars and room images.
package media

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// ObjectStorage is implemented by the S3 adapter and its development stub
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// Key prefixes for the objects this service owns
const (
	PrefixAvatars = "avatars"
	PrefixRooms   = "rooms"
)

// imageExtensions lists the accepted image content types
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Errors returned by the upload flow
var (
	ErrUnsupportedType = shared.NewDomainError("UNSUPPORTED_MEDIA_TYPE", "Only JPEG, PNG and WebP images are accepted")
	ErrTooLarge        = shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum upload size")
	ErrForeignKey      = shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this resource")
	ErrNotUploaded     = shared.NewDomainError("UPLOAD_NOT_FOUND", "No object was uploaded under this key")
)

// UploadURL is a presigned PUT the client uploads the file to directly
type UploadURL struct {
	URL         string    `json:"upload_url"`
	Method      string    `json:"method"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Uploader runs the two-step upload: hand out a presigned URL, then confirm
// that the object landed under the key before the owner references it
type Uploader struct {
	storage    ObjectStorage
	maxSize    int64
	expiration time.Duration
	logger     *zap.Logger
}

// NewUploader creates an Uploader
func NewUploader(storage ObjectStorage, maxSize int64, expiration time.Duration, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{storage: storage, maxSize: maxSize, expiration: expiration, logger: logger}
}

// CreateImageUpload validates the declared file and returns a presigned upload URL
// under prefix/owner/
func (u *Uploader) CreateImageUpload(ctx context.Context, prefix string, owner uuid.UUID, contentType string, size int64) (*UploadURL, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if size <= 0 || (u.maxSize > 0 && size > u.maxSize) {
		return nil, ErrTooLarge
	}

	key := ownerPrefix(prefix, owner) + ksuid.New().String() + ext
	url, expiresAt, err := u.storage.GenerateUploadURL(ctx, key, contentType, u.expiration)
	if err != nil {
		return nil, err
	}
	return &UploadURL{
		URL:         url,
		Method:      "PUT",
		StorageKey:  key,
		ContentType: contentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// Confirm checks that key belongs to the owner and the object exists
func (u *Uploader) Confirm(ctx context.Context, prefix string, owner uuid.UUID, key string) error {
	if !strings.HasPrefix(key, ownerPrefix(prefix, owner)) || strings.Contains(key, "..") {
		return ErrForeignKey
	}
	exists, err := u.storage.ObjectExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotUploaded
	}
	return nil
}

// DownloadURL returns a URL for the key, or "" for an empty key. Failures
// are logged rather than failing the read that embeds the URL.
func (u *Uploader) DownloadURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, _, err := u.storage.GenerateDownloadURL(ctx, key, u.expiration)
	if err != nil {
		u.logger.Warn("Failed to sign download URL", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

// Remove deletes a replaced object. Failures are logged only; an orphaned
// object is harmless.
func (u *Uploader) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := u.storage.DeleteObject(ctx, key); err != nil {
		u.logger.Warn("Failed to delete replaced object", zap.String("key", key), zap.Error(err))
	}
}

func ownerPrefix(prefix string, owner uuid.UUID) string {
	return prefix + "/" + owner.String() + "/"
}
