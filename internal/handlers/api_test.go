package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ekoorso/ekoorso-backend/internal/config"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/handlers"
	"github.com/ekoorso/ekoorso-backend/internal/models"
	"github.com/ekoorso/ekoorso-backend/internal/playback"
	"github.com/ekoorso/ekoorso-backend/internal/routes"
	"github.com/ekoorso/ekoorso-backend/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testAPI struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Course{}, &models.Lesson{},
		&models.Enrollment{}, &models.Payment{}, &models.Progress{}, &models.RefreshToken{},
	))

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    time.Hour,
		JWTRefreshExpiry:   24 * time.Hour,
		UploadDir:          t.TempDir(),
		PaymentPhoneNumber: "+222 00 00 00 00",
		CompletionPercent:  95,
	}

	authService := services.NewAuthService(db, cfg)
	courseService := services.NewCourseService(db)
	lessonService := services.NewLessonService(db)
	paymentService := services.NewPaymentService(db)
	accessService := services.NewAccessService(db)
	progressService := services.NewProgressService(db)
	storageService := services.NewStorageService(cfg)
	manager := playback.NewManager(progressService, playback.Config{
		ReadyTimeout: time.Hour, TickInterval: time.Hour, CompletionPercent: 95,
	})

	h := &routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Profile:  handlers.NewProfileHandler(authService),
		Course:   handlers.NewCourseHandler(courseService, authService),
		Lesson:   handlers.NewLessonHandler(lessonService),
		Payment:  handlers.NewPaymentHandler(paymentService, cfg),
		Learn:    handlers.NewLearnHandler(accessService, courseService, lessonService, progressService),
		Playback: handlers.NewPlaybackHandler(manager, accessService, lessonService),
		Upload:   handlers.NewUploadHandler(storageService, authService),
		Health:   handlers.NewHealthHandler(),
	}

	app := fiber.New()
	routes.Setup(app, cfg, db, h)
	return &testAPI{app: app, db: db, cfg: cfg}
}

func (a *testAPI) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (a *testAPI) register(t *testing.T, email string) dto.AuthResponse {
	t.Helper()

	resp := a.request(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email:    email,
		Password: "password123",
		FullName: "Test Student",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.AuthResponse](t, resp)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	api := newTestAPI(t)

	auth := api.register(t, "student@test.test")

	resp := api.request(t, http.MethodGet, "/api/profile", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.request(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.request(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email: "student@test.test", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogHidesUnpublishedCourses(t *testing.T) {
	api := newTestAPI(t)

	require.NoError(t, api.db.Create(&models.Course{Title: "Published", IsPublished: true}).Error)
	require.NoError(t, api.db.Create(&models.Course{Title: "Draft"}).Error)

	resp := api.request(t, http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	courses := decode[[]models.Course](t, resp)
	require.Len(t, courses, 1)
	assert.Equal(t, "Published", courses[0].Title)

	// Admins see drafts too.
	auth := api.register(t, "admin@test.test")
	require.NoError(t, api.db.Model(&models.Profile{}).
		Where("id = ?", auth.User.ID).Update("is_admin", true).Error)

	resp = api.request(t, http.MethodGet, "/api/courses", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	courses = decode[[]models.Course](t, resp)
	assert.Len(t, courses, 2)
}

func TestPaymentVerificationGrantsAccess(t *testing.T) {
	api := newTestAPI(t)

	course := models.Course{Title: "Go Basics", Price: 99, IsPublished: true}
	require.NoError(t, api.db.Create(&course).Error)

	student := api.register(t, "student@test.test")
	admin := api.register(t, "admin@test.test")
	require.NoError(t, api.db.Model(&models.Profile{}).
		Where("id = ?", admin.User.ID).Update("is_admin", true).Error)

	// Without any claim the learner is pointed at the payment page.
	resp := api.request(t, http.MethodGet, "/api/courses/"+course.ID.String()+"/access", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := decode[dto.AccessResponse](t, resp)
	assert.Equal(t, "none", access.Level)
	assert.Equal(t, "/courses/"+course.ID.String()+"/payment", access.RedirectTo)

	// The learner records a payment claim.
	resp = api.request(t, http.MethodPost, "/api/payments", student.AccessToken, dto.CreatePaymentRequest{
		CourseID:         course.ID,
		PaymentReference: "TX-777",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payment := decode[models.Payment](t, resp)
	assert.Equal(t, 99.0, payment.Amount)

	// A non-admin cannot touch the back office.
	resp = api.request(t, http.MethodPut, "/api/admin/payments/"+payment.ID.String(), student.AccessToken, dto.UpdatePaymentStatusRequest{
		Status: models.PaymentStatusVerified,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin verifies it.
	resp = api.request(t, http.MethodPut, "/api/admin/payments/"+payment.ID.String(), admin.AccessToken, dto.UpdatePaymentStatusRequest{
		Status:            models.PaymentStatusVerified,
		VerificationNotes: "Matched transfer TX-777",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Access flips to approved.
	resp = api.request(t, http.MethodGet, "/api/courses/"+course.ID.String()+"/access", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access = decode[dto.AccessResponse](t, resp)
	assert.Equal(t, "approved", access.Level)
}

func TestPlaybackSessionLifecycle(t *testing.T) {
	api := newTestAPI(t)

	course := models.Course{Title: "Go Basics", Price: 99, IsPublished: true}
	require.NoError(t, api.db.Create(&course).Error)
	lesson := models.Lesson{
		CourseID: course.ID, Title: "Intro", YoutubeVideoID: "dQw4w9WgXcQ",
		OrderIndex: 1, DurationMinutes: 10,
	}
	require.NoError(t, api.db.Create(&lesson).Error)

	student := api.register(t, "student@test.test")

	// Not enrolled: no session.
	resp := api.request(t, http.MethodPost, "/api/playback/sessions", student.AccessToken, dto.StartPlaybackRequest{
		LessonID: lesson.ID,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	enrollment := models.Enrollment{UserID: student.User.ID, CourseID: course.ID, IsActive: true}
	require.NoError(t, api.db.Create(&enrollment).Error)

	resp = api.request(t, http.MethodPost, "/api/playback/sessions", student.AccessToken, dto.StartPlaybackRequest{
		LessonID: lesson.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[dto.PlaybackSessionResponse](t, resp)
	assert.Equal(t, "primary", session.Strategy)
	assert.Equal(t, "initializing", session.Phase)

	base := "/api/playback/sessions/" + session.SessionID.String()

	resp = api.request(t, http.MethodPost, base+"/events", student.AccessToken, dto.PlaybackEventRequest{Type: "ready"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[dto.PlaybackSessionResponse](t, resp)
	assert.Equal(t, "ready", state.Phase)

	resp = api.request(t, http.MethodPost, base+"/events", student.AccessToken, dto.PlaybackEventRequest{Type: "ended"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[dto.PlaybackSessionResponse](t, resp)
	assert.True(t, state.Completed)
	assert.Equal(t, 100, state.ProgressPct)

	// The completion write landed in the progress table.
	var progress models.Progress
	require.NoError(t, api.db.Where("user_id = ? AND lesson_id = ?", student.User.ID, lesson.ID).First(&progress).Error)
	assert.True(t, progress.IsCompleted)

	resp = api.request(t, http.MethodDelete, base, student.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.request(t, http.MethodGet, base, student.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
