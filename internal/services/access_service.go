package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessLevel classifies a user's right to view a course's lessons.
type AccessLevel string

const (
	AccessAdmin    AccessLevel = "admin"
	AccessApproved AccessLevel = "approved"
	AccessPending  AccessLevel = "pending"
	AccessNone     AccessLevel = "none"
)

// CanView reports whether lesson content may be shown at this level.
// Pending enrollments see content with limited features.
func (l AccessLevel) CanView() bool {
	return l == AccessAdmin || l == AccessApproved || l == AccessPending
}

// ErrAccessCheck wraps any storage failure during resolution; callers show a
// generic message and keep content hidden.
var ErrAccessCheck = errors.New("error checking access")

// AccessService derives a user's effective access to a course from the
// admin flag, the enrollment record, and the payment ledger.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// Resolve runs the sequential access check:
//  1. admin profile short-circuits to AccessAdmin,
//  2. an enrollment maps to approved/pending via is_active,
//  3. a verified payment without an enrollment self-heals: a new active
//     enrollment is created and access is approved,
//  4. otherwise none.
//
// Checks are idempotent reads except the self-healing insert, which is
// guarded by the (user_id, course_id) unique index, so re-running the
// resolver after navigation cannot duplicate enrollments.
func (s *AccessService) Resolve(userID, courseID uuid.UUID) (AccessLevel, error) {
	var profile models.Profile
	err := s.db.Select("is_admin").First(&profile, "id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("access check failed", "action", "load_profile", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrAccessCheck, err)
	}
	if profile.IsAdmin {
		return AccessAdmin, nil
	}

	var enrollment models.Enrollment
	err = s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err == nil {
		if enrollment.IsActive {
			return AccessApproved, nil
		}
		return AccessPending, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("access check failed", "action", "load_enrollment", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrAccessCheck, err)
	}

	// No enrollment: fall back to the payment ledger.
	var payment models.Payment
	err = s.db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, models.PaymentStatusVerified).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AccessNone, nil
	}
	if err != nil {
		slog.Error("access check failed", "action", "load_payments", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrAccessCheck, err)
	}

	// Verified payment with no enrollment row: repair it.
	newEnrollment := models.Enrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		IsActive: true,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
	}).Create(&newEnrollment).Error
	if err != nil {
		slog.Error("access check failed", "action", "create_enrollment", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrAccessCheck, err)
	}

	slog.Info("enrollment created from verified payment",
		"user_id", userID, "course_id", courseID, "payment_id", payment.ID)
	return AccessApproved, nil
}
