package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePaymentRequest struct {
	CourseID         uuid.UUID `json:"course_id" validate:"required"`
	PaymentMethod    string    `json:"payment_method" validate:"omitempty,max=50"`
	PaymentReference string    `json:"payment_reference" validate:"omitempty,max=255"`
}

type UpdatePaymentStatusRequest struct {
	Status            string `json:"status" validate:"required,oneof=pending verified rejected"`
	VerificationNotes string `json:"verification_notes"`
}

// PaymentResponse joins the payment row with course and payer details for
// display, mirroring the ledger listings.
type PaymentResponse struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	CourseID          uuid.UUID `json:"course_id"`
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"payment_method"`
	PaymentReference  string    `json:"payment_reference"`
	Status            string    `json:"status"`
	VerificationNotes string    `json:"verification_notes"`
	CourseTitle       string    `json:"course_title"`
	CoursePrice       float64   `json:"course_price"`
	PayerEmail        string    `json:"payer_email,omitempty"`
	PayerName         string    `json:"payer_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
