package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the one-to-one companion of User, created on signup.
// Its ID is the owning user's ID.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName    string    `gorm:"size:255" json:"full_name"`
	PhoneNumber string    `gorm:"size:50" json:"phone_number"`
	AvatarURL   string    `gorm:"type:text" json:"avatar_url"`
	IsAdmin     bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `gorm:"foreignKey:ID" json:"-"`
}
