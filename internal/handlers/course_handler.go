package handlers

import (
	"errors"

	"github.com/ekoorso/ekoorso-backend/internal/authctx"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/services"
	"github.com/ekoorso/ekoorso-backend/internal/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CourseHandler struct {
	courseService *services.CourseService
	authService   *services.AuthService
}

func NewCourseHandler(courseService *services.CourseService, authService *services.AuthService) *CourseHandler {
	return &CourseHandler{courseService: courseService, authService: authService}
}

// List returns the public catalog. Authenticated admins also see
// unpublished courses.
func (h *CourseHandler) List(c *fiber.Ctx) error {
	includeUnpublished := false
	if userID, err := authctx.GetUserID(c); err == nil {
		if isAdmin, err := h.authService.IsAdmin(userID); err == nil && isAdmin {
			includeUnpublished = true
		}
	}

	courses, err := h.courseService.ListCourses(includeUnpublished)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch courses",
		})
	}
	return c.JSON(courses)
}

func (h *CourseHandler) Get(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid course ID",
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
	return c.JSON(course)
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	course, err := h.courseService.CreateCourse(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLevel) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create course",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (h *CourseHandler) Update(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid course ID",
		})
	}

	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	course, err := h.courseService.UpdateCourse(courseID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Course not found",
			})
		case errors.Is(err, services.ErrInvalidLevel):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update course",
			})
		}
	}
	return c.JSON(course)
}

func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid course ID",
		})
	}

	if err := h.courseService.DeleteCourse(courseID); err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete course",
		})
	}
	return c.JSON(fiber.Map{"message": "Course deleted successfully"})
}
