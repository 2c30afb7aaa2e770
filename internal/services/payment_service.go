package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// CreatePayment records a purchase attempt at the course's current price
// with status pending. The actual mobile-money transfer happens out of band.
func (s *PaymentService) CreatePayment(userID uuid.UUID, req *dto.CreatePaymentRequest) (*models.Payment, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ?", req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	method := req.PaymentMethod
	if method == "" {
		method = "mobile_money"
	}

	payment := models.Payment{
		ID:               uuid.New(),
		UserID:           userID,
		CourseID:         course.ID,
		Amount:           course.Price,
		PaymentMethod:    method,
		PaymentReference: req.PaymentReference,
		Status:           models.PaymentStatusPending,
	}

	if err := s.db.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

// ListUserPayments returns the user's own payments, newest first, joined
// with the course title and price for display.
func (s *PaymentService) ListUserPayments(userID uuid.UUID) ([]dto.PaymentResponse, error) {
	var payments []models.Payment
	err := s.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse(p, nil, nil))
	}
	return out, nil
}

// ListAllPayments returns every payment (admin view), optionally filtered by
// status, joined with course and payer details.
func (s *PaymentService) ListAllPayments(status string) ([]dto.PaymentResponse, error) {
	if status != "" && status != models.PaymentStatusPending &&
		status != models.PaymentStatusVerified && status != models.PaymentStatusRejected {
		return nil, ErrInvalidPaymentStatus
	}

	var payments []models.Payment
	q := s.db.Preload("Course").Preload("User").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	userIDs := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		userIDs = append(userIDs, p.UserID)
	}
	profiles := map[uuid.UUID]models.Profile{}
	if len(userIDs) > 0 {
		var rows []models.Profile
		if err := s.db.Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load payer profiles: %w", err)
		}
		for _, row := range rows {
			profiles[row.ID] = row
		}
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		var profile *models.Profile
		if row, ok := profiles[p.UserID]; ok {
			profile = &row
		}
		out = append(out, paymentResponse(p, &p.User, profile))
	}
	return out, nil
}

// UpdateStatus transitions a payment. A transition to verified must leave
// exactly one active enrollment for the payer and course: an existing row is
// activated, a missing one inserted. Runs in one transaction so concurrent
// verifications cannot end up half-applied; the (user_id, course_id) unique
// index blocks duplicate rows.
func (s *PaymentService) UpdateStatus(paymentID uuid.UUID, req *dto.UpdatePaymentStatusRequest) (*models.Payment, error) {
	switch req.Status {
	case models.PaymentStatusPending, models.PaymentStatusVerified, models.PaymentStatusRejected:
	default:
		return nil, ErrInvalidPaymentStatus
	}

	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("failed to fetch payment: %w", err)
		}

		updates := map[string]interface{}{
			"status":             req.Status,
			"verification_notes": req.VerificationNotes,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		if req.Status == models.PaymentStatusVerified {
			if err := ensureActiveEnrollment(tx, payment.UserID, payment.CourseID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment status updated",
		"payment_id", payment.ID, "status", req.Status, "user_id", payment.UserID)
	return &payment, nil
}

// ensureActiveEnrollment activates an existing enrollment or inserts a new
// active one. ON CONFLICT on the (user_id, course_id) index makes the insert
// idempotent under concurrent verifications.
func ensureActiveEnrollment(tx *gorm.DB, userID, courseID uuid.UUID) error {
	var existing models.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			return nil
		}
		if err := tx.Model(&existing).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to activate enrollment: %w", err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}

	enrollment := models.Enrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		IsActive: true,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
	}).Create(&enrollment).Error
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func paymentResponse(p models.Payment, user *models.User, profile *models.Profile) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		CourseID:          p.CourseID,
		Amount:            p.Amount,
		PaymentMethod:     p.PaymentMethod,
		PaymentReference:  p.PaymentReference,
		Status:            p.Status,
		VerificationNotes: p.VerificationNotes,
		CourseTitle:       p.Course.Title,
		CoursePrice:       p.Course.Price,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if user != nil {
		resp.PayerEmail = user.Email
	}
	if profile != nil {
		resp.PayerName = profile.FullName
	}
	return resp
}
