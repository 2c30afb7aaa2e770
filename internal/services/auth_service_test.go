package services

import (
	"testing"
	"time"

	"github.com/ekoorso/ekoorso-backend/internal/config"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	return NewAuthService(db, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "new@test.test",
		Password: "password123",
		FullName: "New Student",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "new@test.test", resp.User.Email)
	assert.Equal(t, "New Student", resp.User.FullName)
	assert.False(t, resp.User.IsAdmin)

	_, err = svc.Register(&dto.RegisterRequest{
		Email:    "new@test.test",
		Password: "otherpassword",
		FullName: "Impostor",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(&dto.LoginRequest{Email: "new@test.test", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(&dto.LoginRequest{Email: "new@test.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Email: "ghost@test.test", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "rotate@test.test",
		Password: "password123",
		FullName: "Rotator",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The presented token is spent on rotation.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The new one still works.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	require.NoError(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "leave@test.test",
		Password: "password123",
		FullName: "Leaver",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	userID := createTestUser(t, db, "profile@test.test", false)

	profile, err := svc.UpdateProfile(userID, &dto.UpdateProfileRequest{
		FullName:    "Renamed",
		PhoneNumber: "+222 12 34 56 78",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", profile.FullName)
	assert.Equal(t, "+222 12 34 56 78", profile.PhoneNumber)
}
