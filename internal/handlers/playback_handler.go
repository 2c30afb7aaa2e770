package handlers

import (
	"errors"

	"github.com/ekoorso/ekoorso-backend/internal/authctx"
	"github.com/ekoorso/ekoorso-backend/internal/dto"
	"github.com/ekoorso/ekoorso-backend/internal/playback"
	"github.com/ekoorso/ekoorso-backend/internal/services"
	"github.com/ekoorso/ekoorso-backend/internal/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PlaybackHandler exposes the video session lifecycle: start, report
// player events, read state, close.
type PlaybackHandler struct {
	manager       *playback.Manager
	accessService *services.AccessService
	lessonService *services.LessonService
}

func NewPlaybackHandler(manager *playback.Manager, access *services.AccessService, lessons *services.LessonService) *PlaybackHandler {
	return &PlaybackHandler{manager: manager, accessService: access, lessonService: lessons}
}

// Start opens a playback session for a lesson the user may view. Any
// previous session of the same user is closed first, so a user holds at
// most one live session.
func (h *PlaybackHandler) Start(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.StartPlaybackRequest
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

	lesson, err := h.lessonService.GetLesson(req.LessonID)
	if err != nil {
		if errors.Is(err, services.ErrLessonNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch lesson",
		})
	}

	if !lesson.IsFree {
		level, err := h.accessService.Resolve(userID, lesson.CourseID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Error checking access",
			})
		}
		if !level.CanView() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "You are not enrolled in this course",
			})
		}
	}

	session := h.manager.Start(userID, lesson.ID, lesson.YoutubeVideoID, float64(lesson.DurationMinutes)*60)
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(session))
}

// Event feeds one client-reported player event into the session state
// machine.
func (h *PlaybackHandler) Event(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid session ID",
		})
	}

	var req dto.PlaybackEventRequest
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

	session, err := h.manager.Get(sessionID, userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Session not found",
		})
	}

	switch req.Type {
	case "ready":
		err = session.HandleReady()
	case "playing":
		err = session.HandleStateChange(playback.PhasePlaying)
	case "paused":
		err = session.HandleStateChange(playback.PhasePaused)
	case "buffering":
		err = session.HandleStateChange(playback.PhaseBuffering)
	case "ended":
		err = session.HandleEnded()
	case "error":
		err = session.HandleError(req.ErrorCode)
	case "position":
		err = session.ReportPosition(req.Position, req.Duration)
	}
	if err != nil {
		if errors.Is(err, playback.ErrSessionClosed) {
			return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{
				Error: true, Message: "Session closed",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process event",
		})
	}
	return c.JSON(sessionResponse(session))
}

// State returns the current session snapshot.
func (h *PlaybackHandler) State(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid session ID",
		})
	}

	session, err := h.manager.Get(sessionID, userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Session not found",
		})
	}
	return c.JSON(sessionResponse(session))
}

// Close tears down a session, stopping its timers and sampling loop.
func (h *PlaybackHandler) Close(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid session ID",
		})
	}

	if err := h.manager.Close(sessionID, userID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Session not found",
		})
	}
	return c.JSON(fiber.Map{"message": "Session closed"})
}

func sessionResponse(s *playback.Session) dto.PlaybackSessionResponse {
	snap := s.Snapshot()
	return dto.PlaybackSessionResponse{
		SessionID:      s.ID,
		LessonID:       s.LessonID,
		YoutubeVideoID: s.VideoID,
		Strategy:       string(snap.Strategy),
		Phase:          string(snap.Phase),
		ProgressPct:    snap.ProgressPct,
		Completed:      snap.Completed,
	}
}
