package services

import (
	"fmt"
	"time"

	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// SaveProgress upserts the (user, lesson) progress row. Called on every
// playback tick and on completion; a completed row never flips back to
// incomplete from a later tick.
func (s *ProgressService) SaveProgress(userID, lessonID uuid.UUID, position float64, completed bool) error {
	progress := models.Progress{
		ID:                  uuid.New(),
		UserID:              userID,
		LessonID:            lessonID,
		IsCompleted:         completed,
		LastWatchedPosition: position,
		UpdatedAt:           time.Now(),
	}

	assignments := map[string]interface{}{
		"last_watched_position": position,
		"updated_at":            time.Now(),
	}
	if completed {
		assignments["is_completed"] = true
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&progress).Error
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (s *ProgressService) GetLessonProgress(userID, lessonID uuid.UUID) (*models.Progress, error) {
	var progress models.Progress
	err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetCourseProgress returns the user's progress rows for every lesson in a
// course, keyed by lesson ID, for the dashboard summary.
func (s *ProgressService) GetCourseProgress(userID, courseID uuid.UUID) (map[uuid.UUID]models.Progress, error) {
	var rows []models.Progress
	err := s.db.
		Joins("JOIN lessons ON lessons.id = progresses.lesson_id").
		Where("progresses.user_id = ? AND lessons.course_id = ?", userID, courseID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load course progress: %w", err)
	}

	out := make(map[uuid.UUID]models.Progress, len(rows))
	for _, row := range rows {
		out[row.LessonID] = row
	}
	return out, nil
}
