package routes

import (
	"time"

	"github.com/ekoorso/ekoorso-backend/internal/config"
	"github.com/ekoorso/ekoorso-backend/internal/handlers"
	"github.com/ekoorso/ekoorso-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Course   *handlers.CourseHandler
	Lesson   *handlers.LessonHandler
	Payment  *handlers.PaymentHandler
	Learn    *handlers.LearnHandler
	Playback *handlers.PlaybackHandler
	Upload   *handlers.UploadHandler
	Health   *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h *Handlers) {
	// Uploaded assets are served straight off the local disk buckets.
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth — public, with a stricter 10 req/min limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// Profile
	api.Get("/profile", middleware.JWTProtected(cfg), h.Profile.Me)
	api.Put("/profile", middleware.JWTProtected(cfg), h.Profile.Update)
	api.Post("/profile/avatar", middleware.JWTProtected(cfg), h.Upload.Avatar)

	// Public catalog. The optional JWT lets admins see unpublished courses.
	api.Get("/courses", middleware.JWTOptional(cfg), h.Course.List)
	api.Get("/courses/:id", h.Course.Get)
	api.Get("/courses/:id/lessons", h.Lesson.List)

	// Enrollment and lesson viewing (JWT required)
	api.Get("/dashboard", middleware.JWTProtected(cfg), h.Learn.Dashboard)
	api.Get("/courses/:id/access", middleware.JWTProtected(cfg), h.Learn.Access)
	api.Get("/courses/:id/learn", middleware.JWTProtected(cfg), h.Learn.Content)
	api.Get("/courses/:id/progress", middleware.JWTProtected(cfg), h.Learn.Progress)

	// Payments
	api.Get("/payments/instructions", h.Payment.Instructions)
	api.Post("/payments", middleware.JWTProtected(cfg), h.Payment.Create)
	api.Get("/payments", middleware.JWTProtected(cfg), h.Payment.ListOwn)

	// Playback sessions
	api.Post("/playback/sessions", middleware.JWTProtected(cfg), h.Playback.Start)
	api.Post("/playback/sessions/:id/events", middleware.JWTProtected(cfg), h.Playback.Event)
	api.Get("/playback/sessions/:id", middleware.JWTProtected(cfg), h.Playback.State)
	api.Delete("/playback/sessions/:id", middleware.JWTProtected(cfg), h.Playback.Close)

	// Back office (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/courses", h.Course.Create)
	admin.Put("/courses/:id", h.Course.Update)
	admin.Delete("/courses/:id", h.Course.Delete)
	admin.Post("/courses/:id/lessons", h.Lesson.Create)
	admin.Put("/lessons/:lessonId", h.Lesson.Update)
	admin.Delete("/lessons/:lessonId", h.Lesson.Delete)
	admin.Get("/payments", h.Payment.ListAll)
	admin.Put("/payments/:id", h.Payment.UpdateStatus)
	admin.Post("/uploads/:bucket", h.Upload.Upload)
}
