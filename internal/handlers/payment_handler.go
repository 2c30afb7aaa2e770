package handlers

import (
	"errors"

	"github.com/ekoorso/ekoorso-backend/internal/authctx"
	"github.com/ekoorso/ekoorso-backend/internal/config"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/services"
	"github.com/ekoorso/ekoorso-backend/internal/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	cfg            *config.Config
}

func NewPaymentHandler(paymentService *services.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, cfg: cfg}
}

// Instructions returns the mobile money details shown on the payment page.
func (h *PaymentHandler) Instructions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"phone_number": h.cfg.PaymentPhoneNumber,
		"methods":      []string{"mobile_money", "bank_transfer"},
	})
}

// Create records a pending payment claim for the authenticated user.
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreatePaymentRequest
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

	payment, err := h.paymentService.CreatePayment(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create payment",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// ListOwn returns the authenticated user's payments, newest first.
func (h *PaymentHandler) ListOwn(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	payments, err := h.paymentService.ListUserPayments(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch payments",
		})
	}
	return c.JSON(payments)
}

// ListAll returns every payment for the back office. The optional
// ?status= query narrows to one verification state.
func (h *PaymentHandler) ListAll(c *fiber.Ctx) error {
	status := c.Query("status")

	payments, err := h.paymentService.ListAllPayments(status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPaymentStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch payments",
		})
	}
	return c.JSON(payments)
}

// UpdateStatus verifies or rejects a payment. Verification activates
// the payer's enrollment in the same transaction.
func (h *PaymentHandler) UpdateStatus(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid payment ID",
		})
	}

	var req dto.UpdatePaymentStatusRequest
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

	payment, err := h.paymentService.UpdateStatus(paymentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment not found",
			})
		case errors.Is(err, services.ErrInvalidPaymentStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update payment",
			})
		}
	}
	return c.JSON(payment)
}
