package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLessonNotFound = errors.New("lesson not found")

var (
	youtubeWatchRe = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/)|youtu\.be/)([^?&/]+)`)
	youtubeIDRe    = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

type LessonService struct {
	db *gorm.DB
}

func NewLessonService(db *gorm.DB) *LessonService {
	return &LessonService{db: db}
}

// ListLessons returns a course's lessons ordered by order_index.
// Duplicate order_index values are tolerated.
func (s *LessonService) ListLessons(courseID uuid.UUID) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.Where("course_id = ?", courseID).
		Order("order_index ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *LessonService) GetLesson(lessonID uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to fetch lesson: %w", err)
	}
	return &lesson, nil
}

func (s *LessonService) CreateLesson(courseID uuid.UUID, req *dto.CreateLessonRequest) (*models.Lesson, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	lesson := models.Lesson{
		ID:              uuid.New(),
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		YoutubeVideoID:  ExtractYoutubeID(req.VideoURL),
		VideoURL:        req.VideoURL,
		OrderIndex:      req.OrderIndex,
		DurationMinutes: req.DurationMinutes,
		IsFree:          req.IsFree,
	}

	if err := s.db.Create(&lesson).Error; err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	return &lesson, nil
}

func (s *LessonService) UpdateLesson(lessonID uuid.UUID, req *dto.UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
		updates["youtube_video_id"] = ExtractYoutubeID(*req.VideoURL)
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.IsFree != nil {
		updates["is_free"] = *req.IsFree
	}

	if len(updates) > 0 {
		if err := s.db.Model(lesson).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update lesson: %w", err)
		}
	}
	return s.GetLesson(lessonID)
}

func (s *LessonService) DeleteLesson(lessonID uuid.UUID) error {
	result := s.db.Delete(&models.Lesson{}, "id = ?", lessonID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// ExtractYoutubeID pulls the video ID out of watch/embed/youtu.be URLs, or
// accepts a raw 11-character ID. Returns "placeholder" when nothing usable
// is found so lesson rows never carry an empty video reference.
func ExtractYoutubeID(url string) string {
	if url == "" {
		return "placeholder"
	}
	if m := youtubeWatchRe.FindStringSubmatch(url); len(m) == 2 {
		return m[1]
	}
	if youtubeIDRe.MatchString(url) {
		return url
	}
	return "placeholder"
}
