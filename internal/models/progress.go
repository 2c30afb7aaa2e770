package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress is upserted on every playback tick, keyed by (user_id, lesson_id).
type Progress struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson" json:"user_id"`
	LessonID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson" json:"lesson_id"`
	IsCompleted         bool      `gorm:"default:false" json:"is_completed"`
	LastWatchedPosition float64   `gorm:"default:0" json:"last_watched_position"`
	UpdatedAt           time.Time `json:"updated_at"`
	User                User      `gorm:"foreignKey:UserID" json:"-"`
	Lesson              Lesson    `gorm:"foreignKey:LessonID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
