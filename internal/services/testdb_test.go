package services

import (
	"testing"

	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.Payment{},
		&models.Progress{},
		&models.RefreshToken{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, isAdmin bool) uuid.UUID {
	t.Helper()

	user := models.User{Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	profile := models.Profile{ID: user.ID, FullName: "Test User", IsAdmin: isAdmin}
	require.NoError(t, db.Create(&profile).Error)
	return user.ID
}

func createTestCourse(t *testing.T, db *gorm.DB, title string, published bool) uuid.UUID {
	t.Helper()

	course := models.Course{Title: title, Price: 99.0, Level: "Beginner", IsPublished: published}
	require.NoError(t, db.Create(&course).Error)
	return course.ID
}

func createTestLesson(t *testing.T, db *gorm.DB, courseID uuid.UUID, title string, order int) uuid.UUID {
	t.Helper()

	lesson := models.Lesson{CourseID: courseID, Title: title, YoutubeVideoID: "dQw4w9WgXcQ", OrderIndex: order, DurationMinutes: 10}
	require.NoError(t, db.Create(&lesson).Error)
	return lesson.ID
}
