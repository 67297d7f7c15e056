package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/roombook/backend/internal/application/media"
)

// StubObjectStorage stands in for S3 when storage is disabled in development.
// URLs point at BaseURL and every object is reported as present so the
// upload confirmation flow can be exercised without a bucket.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/roombook"
	}
	return &StubObjectStorage{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Ensure StubObjectStorage implements ObjectStorage
var _ media.ObjectStorage = (*StubObjectStorage)(nil)

// GenerateUploadURL returns a fake upload URL
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// GenerateDownloadURL returns a fake download URL
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return s.BaseURL + "/" + storageKey, time.Now().Add(expiresIn), nil
}

// DeleteObject does nothing
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// ObjectExists always reports true
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}
