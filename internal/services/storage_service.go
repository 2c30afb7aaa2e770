package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ekoorso/ekoorso-backend/internal/config"
)

const maxDataURLBytes = 256 * 1024

var (
	ErrUnknownBucket   = errors.New("unknown storage bucket")
	ErrFileTooLarge    = errors.New("file exceeds the data URL size limit")
	ErrUploadFailed    = errors.New("upload failed")
	ErrInvalidFileType = errors.New("invalid file type")
)

// Buckets mirror the hosted-platform storage layout.
var storageBuckets = map[string]bool{
	"course-images":    true,
	"course-materials": true,
	"avatars":          true,
}

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// StorageService writes uploads to per-bucket directories on local disk and
// maps them to public URLs.
type StorageService struct {
	baseDir string
	baseURL string
}

func NewStorageService(cfg *config.Config) *StorageService {
	return &StorageService{baseDir: cfg.UploadDir, baseURL: cfg.PublicBaseURL}
}

// ValidateImage rejects non-image content types for image buckets.
func (s *StorageService) ValidateImage(contentType string) error {
	if !imageContentTypes[contentType] {
		return ErrInvalidFileType
	}
	return nil
}

// Store writes content under the bucket and returns its public URL.
func (s *StorageService) Store(bucket, originalName string, content []byte) (string, error) {
	if !storageBuckets[bucket] {
		return "", ErrUnknownBucket
	}

	ext := filepath.Ext(originalName)
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)

	dir := filepath.Join(s.baseDir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.publicURL(bucket, name), nil
}

// StoreWithFallback runs the staged fallback chain: direct write, then an
// admin-supplied external URL, then inline data-URL encoding for small
// files. A hard failure is returned only when every stage fails.
func (s *StorageService) StoreWithFallback(bucket, originalName, contentType, externalURL string, content []byte) (string, error) {
	url, err := s.Store(bucket, originalName, content)
	if err == nil {
		return url, nil
	}
	if errors.Is(err, ErrUnknownBucket) {
		return "", err
	}

	if strings.TrimSpace(externalURL) != "" {
		return externalURL, nil
	}

	if len(content) <= maxDataURLBytes {
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
	}

	return "", err
}

func (s *StorageService) publicURL(bucket, name string) string {
	path := "/uploads/" + bucket + "/" + name
	if s.baseURL == "" {
		return path
	}
	return strings.TrimSuffix(s.baseURL, "/") + path
}
