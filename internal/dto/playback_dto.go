package dto

import "github.com/google/uuid"

type StartPlaybackRequest struct {
	LessonID uuid.UUID `json:"lesson_id" validate:"required"`
}

// PlaybackEventRequest carries a raw player event reported by the client.
// Position and Duration are in seconds and accompany position samples.
type PlaybackEventRequest struct {
	Type      string  `json:"type" validate:"required,oneof=ready playing paused buffering ended error position"`
	ErrorCode int     `json:"error_code"`
	Position  float64 `json:"position" validate:"gte=0"`
	Duration  float64 `json:"duration" validate:"gte=0"`
}

type PlaybackSessionResponse struct {
	SessionID      uuid.UUID `json:"session_id"`
	LessonID       uuid.UUID `json:"lesson_id"`
	YoutubeVideoID string    `json:"youtube_video_id"`
	Strategy       string    `json:"strategy"`
	Phase          string    `json:"phase"`
	ProgressPct    int       `json:"progress_pct"`
	Completed      bool      `json:"completed"`
}

type AccessResponse struct {
	Level      string `json:"level"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Message    string `json:"message,omitempty"`
}
