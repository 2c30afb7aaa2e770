package dto

import "github.com/ekoorso/ekoorso-backend/internal/models"

type CreateCourseRequest struct {
	Title            string  `json:"title" validate:"required,max=255"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"short_description" validate:"omitempty,max=500"`
	Price            float64 `json:"price" validate:"gte=0"`
	Level            string  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	ImageURL         string  `json:"image_url"`
	VideoURL         string  `json:"video_url"`
	IsPublished      bool    `json:"is_published"`
}

type UpdateCourseRequest struct {
	Title            *string  `json:"title" validate:"omitempty,max=255"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"short_description" validate:"omitempty,max=500"`
	Price            *float64 `json:"price" validate:"omitempty,gte=0"`
	Level            *string  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	ImageURL         *string  `json:"image_url"`
	VideoURL         *string  `json:"video_url"`
	IsPublished      *bool    `json:"is_published"`
}

// EnrolledCourseResponse is one dashboard row: the course plus the user's
// completion summary.
type EnrolledCourseResponse struct {
	Course           models.Course `json:"course"`
	IsActive         bool          `json:"is_active"`
	TotalLessons     int64         `json:"total_lessons"`
	CompletedLessons int64         `json:"completed_lessons"`
}

type CreateLessonRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url"`
	OrderIndex      int    `json:"order_index" validate:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	IsFree          bool   `json:"is_free"`
}

type UpdateLessonRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=255"`
	Description     *string `json:"description"`
	VideoURL        *string `json:"video_url"`
	OrderIndex      *int    `json:"order_index" validate:"omitempty,gte=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
	IsFree          *bool   `json:"is_free"`
}
