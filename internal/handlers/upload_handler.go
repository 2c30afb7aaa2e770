package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/ekoorso/ekoorso-backend/internal/authctx"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	storageService *services.StorageService
	authService    *services.AuthService
}

func NewUploadHandler(storage *services.StorageService, auth *services.AuthService) *UploadHandler {
	return &UploadHandler{storageService: storage, authService: auth}
}

// Upload stores an admin-supplied file in a named bucket. An optional
// external_url form field supplies the fallback location used when the
// local write fails.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	bucket := c.Params("bucket")

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing file",
		})
	}
	contentType := file.Header.Get("Content-Type")
	if bucket == "course-images" || bucket == "avatars" {
		if err := h.storageService.ValidateImage(contentType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Only image files are allowed",
			})
		}
	}

	content, err := readMultipart(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read file",
		})
	}

	url, err := h.storageService.StoreWithFallback(bucket, file.Filename, contentType, c.FormValue("external_url"), content)
	if err != nil {
		if errors.Is(err, services.ErrUnknownBucket) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Unknown bucket",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Upload failed",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

// Avatar stores a profile picture for the authenticated user and points
// the profile at it.
func (h *UploadHandler) Avatar(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing file",
		})
	}
	contentType := file.Header.Get("Content-Type")
	if err := h.storageService.ValidateImage(contentType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Only image files are allowed",
		})
	}

	content, err := readMultipart(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read file",
		})
	}

	url, err := h.storageService.StoreWithFallback("avatars", file.Filename, contentType, "", content)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Upload failed",
		})
	}

	profile, err := h.authService.UpdateProfile(userID, &dto.UpdateProfileRequest{AvatarURL: url})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}
	return c.JSON(fiber.Map{"url": url, "profile": profile})
}

func readMultipart(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
