package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson ordering follows OrderIndex; duplicate indexes are tolerated.
type Lesson struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Title           string         `gorm:"not null;size:255" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	YoutubeVideoID  string         `gorm:"size:50" json:"youtube_video_id"`
	VideoURL        string         `gorm:"type:text" json:"video_url"`
	OrderIndex      int            `gorm:"not null;default:0;index" json:"order_index"`
	DurationMinutes int            `gorm:"default:0" json:"duration_minutes"`
	IsFree          bool           `gorm:"default:false" json:"is_free"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Course          Course         `gorm:"foreignKey:CourseID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
