package handlers

import (
	"errors"
	"fmt"

	"github.com/ekoorso/ekoorso-backend/internal/authctx"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LearnHandler serves the lesson-viewing surface: access resolution,
// gated course content and per-course progress.
type LearnHandler struct {
	accessService   *services.AccessService
	courseService   *services.CourseService
	lessonService   *services.LessonService
	progressService *services.ProgressService
}

func NewLearnHandler(access *services.AccessService, courses *services.CourseService, lessons *services.LessonService, progress *services.ProgressService) *LearnHandler {
	return &LearnHandler{
		accessService:   access,
		courseService:   courses,
		lessonService:   lessons,
		progressService: progress,
	}
}

// Access resolves the authenticated user's access level for a course.
// Users without any claim are pointed at the payment page.
func (h *LearnHandler) Access(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid course ID",
		})
	}

	level, err := h.accessService.Resolve(userID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Error checking access",
		})
	}

	resp := dto.AccessResponse{Level: string(level)}
	switch level {
	case services.AccessNone:
		resp.RedirectTo = fmt.Sprintf("/courses/%s/payment", courseID)
		resp.Message = "Enroll in this course to watch the lessons"
	case services.AccessPending:
		resp.Message = "Your payment is awaiting verification"
	}
	return c.JSON(resp)
}

// Content returns a course with its lessons and the user's progress per
// lesson. It is only served to users whose access level permits viewing.
func (h *LearnHandler) Content(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid course ID",
		})
	}

	level, err := h.accessService.Resolve(userID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Error checking access",
		})
	}
	if !level.CanView() {
		return c.Status(fiber.StatusForbidden).JSON(dto.AccessResponse{
			Level:      string(level),
			RedirectTo: fmt.Sprintf("/courses/%s/payment", courseID),
			Message:    "Enroll in this course to watch the lessons",
		})
	}

	course, err := h.courseService.GetCourse(courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch course",
		})
	}
	lessons, err := h.lessonService.ListLessons(courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch lessons",
		})
	}
	progress, err := h.progressService.GetCourseProgress(userID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch progress",
		})
	}

	return c.JSON(fiber.Map{
		"course":   course,
		"lessons":  lessons,
		"access":   string(level),
		"progress": progress,
	})
}

// Dashboard lists the user's enrolled courses with completion summaries.
func (h *LearnHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	courses, err := h.courseService.ListEnrolledCourses(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch enrollments",
		})
	}
	return c.JSON(courses)
}

// Progress returns the lesson → progress map for a course, used by the
// dashboard completion bars.
func (h *LearnHandler) Progress(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid course ID",
		})
	}

	progress, err := h.progressService.GetCourseProgress(userID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch progress",
		})
	}
	return c.JSON(progress)
}
