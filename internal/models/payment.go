package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusRejected = "rejected"
)

// Payment records one course-purchase attempt, verified manually by an
// admin after an out-of-band mobile-money transfer.
type Payment struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID          uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Amount            float64   `gorm:"not null" json:"amount"`
	PaymentMethod     string    `gorm:"size:50" json:"payment_method"`
	PaymentReference  string    `gorm:"size:255" json:"payment_reference"`
	Status            string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	VerificationNotes string    `gorm:"type:text" json:"verification_notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	User              User      `gorm:"foreignKey:UserID" json:"-"`
	Course            Course    `gorm:"foreignKey:CourseID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
