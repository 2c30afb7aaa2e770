package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidLevel   = errors.New("invalid course level")
)

type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// ListCourses returns published courses newest first. Admins can list all.
func (s *CourseService) ListCourses(includeUnpublished bool) ([]models.Course, error) {
	var courses []models.Course
	q := s.db.Order("created_at DESC")
	if !includeUnpublished {
		q = q.Where("is_published = ?", true)
	}
	if err := q.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	for i := range courses {
		courses[i].ImageURL = NormalizeAssetURL(courses[i].ImageURL)
	}
	return courses, nil
}

func (s *CourseService) GetCourse(courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	course.ImageURL = NormalizeAssetURL(course.ImageURL)
	return &course, nil
}

func (s *CourseService) CreateCourse(req *dto.CreateCourseRequest) (*models.Course, error) {
	level := req.Level
	if level == "" {
		level = "Beginner"
	}
	if !validLevel(level) {
		return nil, ErrInvalidLevel
	}

	course := models.Course{
		ID:               uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		Level:            level,
		ImageURL:         req.ImageURL,
		VideoURL:         req.VideoURL,
		IsPublished:      req.IsPublished,
	}

	if err := s.db.Create(&course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &course, nil
}

func (s *CourseService) UpdateCourse(courseID uuid.UUID, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.GetCourse(courseID)
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
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Level != nil {
		if !validLevel(*req.Level) {
			return nil, ErrInvalidLevel
		}
		updates["level"] = *req.Level
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	if len(updates) > 0 {
		if err := s.db.Model(course).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update course: %w", err)
		}
	}
	return s.GetCourse(courseID)
}

// DeleteCourse removes the course and its lessons.
func (s *CourseService) DeleteCourse(courseID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Lesson{}).Error; err != nil {
			return fmt.Errorf("failed to delete lessons: %w", err)
		}
		result := tx.Delete(&models.Course{}, "id = ?", courseID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete course: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCourseNotFound
		}
		return nil
	})
}

// ListEnrolledCourses returns the user's enrolled courses with lesson
// completion counts for the dashboard.
func (s *CourseService) ListEnrolledCourses(userID uuid.UUID) ([]dto.EnrolledCourseResponse, error) {
	var enrollments []models.Enrollment
	err := s.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	out := make([]dto.EnrolledCourseResponse, 0, len(enrollments))
	for _, e := range enrollments {
		var total, completed int64
		if err := s.db.Model(&models.Lesson{}).
			Where("course_id = ?", e.CourseID).Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count lessons: %w", err)
		}
		err := s.db.Model(&models.Progress{}).
			Joins("JOIN lessons ON lessons.id = progresses.lesson_id").
			Where("progresses.user_id = ? AND lessons.course_id = ? AND progresses.is_completed = ?",
				userID, e.CourseID, true).
			Count(&completed).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count completed lessons: %w", err)
		}

		course := e.Course
		course.ImageURL = NormalizeAssetURL(course.ImageURL)
		out = append(out, dto.EnrolledCourseResponse{
			Course:           course,
			IsActive:         e.IsActive,
			TotalLessons:     total,
			CompletedLessons: completed,
		})
	}
	return out, nil
}

func validLevel(level string) bool {
	for _, l := range models.CourseLevels {
		if l == level {
			return true
		}
	}
	return false
}

// NormalizeAssetURL repairs storage object URLs that are missing the
// /public/ path segment.
func NormalizeAssetURL(url string) string {
	if url == "" {
		return url
	}
	if strings.Contains(url, "/storage/v1/object/") && !strings.Contains(url, "/public/") {
		return strings.Replace(url, "/object/", "/object/public/", 1)
	}
	return url
}
