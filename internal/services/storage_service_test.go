package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ekoorso/ekoorso-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorageService(t *testing.T) *StorageService {
	t.Helper()
	return NewStorageService(&config.Config{UploadDir: t.TempDir()})
}

func TestStoreWritesFileAndReturnsURL(t *testing.T) {
	svc := newStorageService(t)

	url, err := svc.Store("course-images", "cover.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/course-images/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
}

func TestStoreUnknownBucket(t *testing.T) {
	svc := newStorageService(t)

	_, err := svc.Store("secrets", "x.png", []byte("data"))
	assert.ErrorIs(t, err, ErrUnknownBucket)

	_, err = svc.StoreWithFallback("secrets", "x.png", "image/png", "https://cdn.example.com/x.png", []byte("data"))
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestStoreWithFallbackPrefersDirectWrite(t *testing.T) {
	svc := newStorageService(t)

	url, err := svc.StoreWithFallback("avatars", "me.jpg", "image/jpeg", "https://cdn.example.com/me.jpg", []byte("jpg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/avatars/"), url)
}

func TestStoreWithFallbackChain(t *testing.T) {
	// Point the upload dir at a plain file so every disk write fails.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	svc := NewStorageService(&config.Config{UploadDir: filepath.Join(blocked, "nested")})

	// Stage two: the admin-supplied external URL.
	url, err := svc.StoreWithFallback("course-images", "cover.png", "image/png", "https://cdn.example.com/cover.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cover.png", url)

	// Stage three: small files inline as data URLs.
	url, err = svc.StoreWithFallback("course-images", "cover.png", "image/png", "", []byte("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)

	// Hard failure once the file is too big to inline.
	big := make([]byte, maxDataURLBytes+1)
	_, err = svc.StoreWithFallback("course-images", "huge.png", "image/png", "", big)
	assert.Error(t, err)
}

func TestValidateImage(t *testing.T) {
	svc := newStorageService(t)

	assert.NoError(t, svc.ValidateImage("image/png"))
	assert.NoError(t, svc.ValidateImage("image/webp"))
	assert.ErrorIs(t, svc.ValidateImage("application/pdf"), ErrInvalidFileType)
	assert.ErrorIs(t, svc.ValidateImage(""), ErrInvalidFileType)
}

func TestPublicURLUsesBase(t *testing.T) {
	svc := NewStorageService(&config.Config{UploadDir: t.TempDir(), PublicBaseURL: "https://api.ekoorso.com/"})

	url, err := svc.Store("avatars", "me.png", []byte("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://api.ekoorso.com/uploads/avatars/"), url)
}
