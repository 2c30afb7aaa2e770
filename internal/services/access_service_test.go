package services

import (
	"testing"

	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAdminShortCircuits(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	adminID := createTestUser(t, db, "admin@test.test", true)
	courseID := createTestCourse(t, db, "Go Basics", true)

	level, err := svc.Resolve(adminID, courseID)
	require.NoError(t, err)
	assert.Equal(t, AccessAdmin, level)

	// No enrollment or payment should have been created for the admin.
	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestResolveEnrollmentLevels(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	userID := createTestUser(t, db, "student@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	enrollment := models.Enrollment{UserID: userID, CourseID: courseID, IsActive: false}
	require.NoError(t, db.Create(&enrollment).Error)

	level, err := svc.Resolve(userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, AccessPending, level)

	require.NoError(t, db.Model(&enrollment).Update("is_active", true).Error)

	level, err = svc.Resolve(userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, AccessApproved, level)
}

func TestResolveNoClaims(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	userID := createTestUser(t, db, "visitor@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	level, err := svc.Resolve(userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, AccessNone, level)
	assert.False(t, level.CanView())
}

func TestResolveVerifiedPaymentRepairsEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	userID := createTestUser(t, db, "payer@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	payment := models.Payment{
		UserID:   userID,
		CourseID: courseID,
		Amount:   99.0,
		Status:   models.PaymentStatusVerified,
	}
	require.NoError(t, db.Create(&payment).Error)

	level, err := svc.Resolve(userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, AccessApproved, level)

	var enrollments []models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	assert.True(t, enrollments[0].IsActive)

	// Re-visiting the course must not duplicate the enrollment.
	for i := 0; i < 3; i++ {
		level, err = svc.Resolve(userID, courseID)
		require.NoError(t, err)
		assert.Equal(t, AccessApproved, level)
	}
	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolvePendingPaymentGrantsNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	userID := createTestUser(t, db, "waiting@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	payment := models.Payment{
		UserID:   userID,
		CourseID: courseID,
		Amount:   99.0,
		Status:   models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	level, err := svc.Resolve(userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, AccessNone, level)
}

func TestAccessLevelCanView(t *testing.T) {
	assert.True(t, AccessAdmin.CanView())
	assert.True(t, AccessApproved.CanView())
	assert.True(t, AccessPending.CanView())
	assert.False(t, AccessNone.CanView())
}
