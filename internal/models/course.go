package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var CourseLevels = []string{"Beginner", "Intermediate", "Advanced"}

type Course struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null;size:255" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	ShortDescription string         `gorm:"size:500" json:"short_description"`
	Price            float64        `gorm:"not null;default:0" json:"price"`
	Level            string         `gorm:"size:20;default:'Beginner'" json:"level"`
	ImageURL         string         `gorm:"type:text" json:"image_url"`
	VideoURL         string         `gorm:"type:text" json:"video_url"`
	IsPublished      bool           `gorm:"default:false;index" json:"is_published"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
