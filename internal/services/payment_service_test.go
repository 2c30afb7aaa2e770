package services

import (
	"testing"

	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentUsesCoursePrice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	userID := createTestUser(t, db, "buyer@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	payment, err := svc.CreatePayment(userID, &dto.CreatePaymentRequest{
		CourseID:         courseID,
		PaymentReference: "TX-12345",
	})
	require.NoError(t, err)
	assert.Equal(t, 99.0, payment.Amount)
	assert.Equal(t, "mobile_money", payment.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestCreatePaymentUnknownCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	userID := createTestUser(t, db, "buyer@test.test", false)

	_, err := svc.CreatePayment(userID, &dto.CreatePaymentRequest{CourseID: uuid.New()})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestVerifyPaymentActivatesEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	userID := createTestUser(t, db, "buyer@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	payment, err := svc.CreatePayment(userID, &dto.CreatePaymentRequest{CourseID: courseID})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(payment.ID, &dto.UpdatePaymentStatusRequest{
		Status:            models.PaymentStatusVerified,
		VerificationNotes: "Matched transfer TX-12345",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVerified, updated.Status)

	var enrollments []models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	assert.True(t, enrollments[0].IsActive)

	// Verifying the same payment again must not create a second row.
	_, err = svc.UpdateStatus(payment.ID, &dto.UpdatePaymentStatusRequest{Status: models.PaymentStatusVerified})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestVerifyPaymentActivatesExistingInactiveEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	userID := createTestUser(t, db, "buyer@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	enrollment := models.Enrollment{UserID: userID, CourseID: courseID, IsActive: false}
	require.NoError(t, db.Create(&enrollment).Error)

	payment, err := svc.CreatePayment(userID, &dto.CreatePaymentRequest{CourseID: courseID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(payment.ID, &dto.UpdatePaymentStatusRequest{Status: models.PaymentStatusVerified})
	require.NoError(t, err)

	var got models.Enrollment
	require.NoError(t, db.First(&got, "id = ?", enrollment.ID).Error)
	assert.True(t, got.IsActive)
}

func TestRejectPaymentLeavesNoEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	userID := createTestUser(t, db, "buyer@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	payment, err := svc.CreatePayment(userID, &dto.CreatePaymentRequest{CourseID: courseID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(payment.ID, &dto.UpdatePaymentStatusRequest{
		Status:            models.PaymentStatusRejected,
		VerificationNotes: "No matching transfer found",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateStatusValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	_, err := svc.UpdateStatus(uuid.New(), &dto.UpdatePaymentStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)

	_, err = svc.UpdateStatus(uuid.New(), &dto.UpdatePaymentStatusRequest{Status: models.PaymentStatusVerified})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestListAllPaymentsStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db)

	userID := createTestUser(t, db, "buyer@test.test", false)
	courseID := createTestCourse(t, db, "Go Basics", true)

	p1, err := svc.CreatePayment(userID, &dto.CreatePaymentRequest{CourseID: courseID})
	require.NoError(t, err)
	_, err = svc.CreatePayment(userID, &dto.CreatePaymentRequest{CourseID: courseID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(p1.ID, &dto.UpdatePaymentStatusRequest{Status: models.PaymentStatusVerified})
	require.NoError(t, err)

	all, err := svc.ListAllPayments("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	verified, err := svc.ListAllPayments(models.PaymentStatusVerified)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, p1.ID, verified[0].ID)
	assert.Equal(t, "Go Basics", verified[0].CourseTitle)

	_, err = svc.ListAllPayments("bogus")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}
