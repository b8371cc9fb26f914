package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	quoteapp "github.com/printshop/backend/internal/application/quote"
)

var _ quoteapp.AssetStorage = (*StubAssetStorage)(nil)

// StubAssetStorage is an in-memory AssetStorage for local development
// and tests. Upload URLs it hands out do not accept real uploads;
// MarkUploaded records the key so ObjectExists can confirm it.
type StubAssetStorage struct {
	mu      sync.RWMutex
	objects map[string]bool
	baseURL string
}

// NewStubAssetStorage creates a stub asset storage
func NewStubAssetStorage() *StubAssetStorage {
	return &StubAssetStorage{
		objects: make(map[string]bool),
		baseURL: "http://localhost/assets/",
	}
}

// GenerateUploadURL returns a fabricated upload URL for the key
func (s *StubAssetStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return s.baseURL + storageKey + "?op=put", time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL returns a fabricated download URL for the key
func (s *StubAssetStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return s.baseURL + storageKey, time.Now().Add(expiresIn), nil
}

// ObjectExists reports whether MarkUploaded recorded the key
func (s *StubAssetStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[storageKey], nil
}

// MarkUploaded records a key as present
func (s *StubAssetStorage) MarkUploaded(storageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = true
}
