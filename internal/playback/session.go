// Package playback owns the lifecycle of one embedded-player session per
// lesson view: primary/fallback strategy selection, periodic progress
// sampling, and completion detection.
package playback

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the player lifecycle state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhaseReady        Phase = "ready"
	PhasePlaying      Phase = "playing"
	PhasePaused       Phase = "paused"
	PhaseBuffering    Phase = "buffering"
	PhaseCompleted    Phase = "completed"
)

// Strategy selects the player implementation. It is chosen once per lesson
// view; the only transition is Primary -> Fallback.
type Strategy string

const (
	StrategyPrimary  Strategy = "primary"
	StrategyFallback Strategy = "fallback"
)

// Embed error codes that mean the video cannot be embedded at all, so a
// retry of the same embed is pointless.
var unrecoverableEmbedCodes = map[int]bool{100: true, 101: true, 150: true}

var ErrSessionClosed = errors.New("playback session closed")

// ProgressSink persists sampled progress. Implemented by the progress service.
type ProgressSink interface {
	SaveProgress(userID, lessonID uuid.UUID, position float64, completed bool) error
}

// Config carries the coordinator tunables.
type Config struct {
	// ReadyTimeout bounds how long the primary embed may take to signal
	// readiness before the fallback player takes over.
	ReadyTimeout time.Duration
	// TickInterval is the progress sampling period.
	TickInterval time.Duration
	// CompletionPercent is the watched-percentage threshold that marks a
	// lesson completed.
	CompletionPercent int
}

func (c Config) withDefaults() Config {
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 8 * time.Second
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.CompletionPercent <= 0 {
		c.CompletionPercent = 95
	}
	return c
}

// Session is the state machine for a single lesson view. All transitions are
// serialized behind mu; the sampling goroutine and the ready timer both feed
// through the same guarded paths.
type Session struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	LessonID uuid.UUID
	VideoID  string

	cfg  Config
	sink ProgressSink

	mu          sync.Mutex
	phase       Phase
	strategy    Strategy
	degraded    bool
	fellBack    bool
	completed   bool
	closed      bool
	tickStarted bool
	position    float64
	duration    float64

	readyTimer *time.Timer
	done       chan struct{}
}

func newSession(userID, lessonID uuid.UUID, videoID string, durationSeconds float64, sink ProgressSink, cfg Config) *Session {
	s := &Session{
		ID:       uuid.New(),
		UserID:   userID,
		LessonID: lessonID,
		VideoID:  videoID,
		cfg:      cfg.withDefaults(),
		sink:     sink,
		phase:    PhaseInitializing,
		strategy: StrategyPrimary,
		duration: durationSeconds,
		done:     make(chan struct{}),
	}
	s.readyTimer = time.AfterFunc(s.cfg.ReadyTimeout, s.readyTimedOut)
	return s
}

// HandleReady marks the player initialized and starts progress sampling.
func (s *Session) HandleReady() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.readyTimer.Stop()
	if s.phase == PhaseInitializing {
		s.phase = PhaseReady
	}
	start := !s.tickStarted
	s.tickStarted = true
	s.mu.Unlock()

	if start {
		go s.sampleLoop()
	}
	return nil
}

// HandleStateChange records playing/paused/buffering reports.
func (s *Session) HandleStateChange(phase Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.completed {
		return nil
	}
	switch phase {
	case PhasePlaying, PhasePaused, PhaseBuffering:
		s.phase = phase
	}
	return nil
}

// ReportPosition stores the latest client-reported position and duration in
// seconds. The sampling ticker, not this call, persists progress.
func (s *Session) ReportPosition(position, duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if position >= 0 {
		s.position = position
	}
	if duration > 0 {
		s.duration = duration
	}
	return nil
}

// HandleEnded handles the player's natural end-of-video signal.
func (s *Session) HandleEnded() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	pos := s.duration
	if pos <= 0 {
		pos = s.position
	}
	write := s.completeLocked(pos)
	s.mu.Unlock()

	if write {
		s.persist(pos, true)
	}
	return nil
}

// HandleError degrades the session. Codes meaning "unavailable / embedding
// disabled" force the fallback player instead of a retry of the same embed.
func (s *Session) HandleError(code int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.degraded = true
	s.mu.Unlock()

	if unrecoverableEmbedCodes[code] {
		s.switchToFallback("embed error")
	}
	return nil
}

// UseFallback switches to the fallback player on explicit user action.
func (s *Session) UseFallback() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()
	s.switchToFallback("user request")
	return nil
}

func (s *Session) readyTimedOut() {
	s.switchToFallback("ready timeout")
}

// switchToFallback is idempotent: the strategy is revisited at most once per
// lesson view, no matter how many triggers fire.
func (s *Session) switchToFallback(reason string) {
	s.mu.Lock()
	if s.closed || s.fellBack {
		s.mu.Unlock()
		return
	}
	s.fellBack = true
	s.strategy = StrategyFallback
	if s.phase == PhaseInitializing {
		s.phase = PhaseReady
	}
	s.readyTimer.Stop()
	start := !s.tickStarted
	s.tickStarted = true
	s.mu.Unlock()

	slog.Info("playback falling back to alternate player",
		"session_id", s.ID, "lesson_id", s.LessonID, "reason", reason)

	if start {
		go s.sampleLoop()
	}
}

// sampleLoop persists the latest reported position every tick and declares
// completion once the watched percentage crosses the threshold.
func (s *Session) sampleLoop() {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.done:
			return
		}
	}
}

func (s *Session) sample() {
	s.mu.Lock()
	// Once completed the session's writes are done; later ticks and
	// threshold re-crossings from seeking must not re-issue them.
	if s.closed || s.completed || s.duration <= 0 {
		s.mu.Unlock()
		return
	}
	pos := s.position
	pct := int(pos / s.duration * 100)
	completeNow := pct >= s.cfg.CompletionPercent && s.completeLocked(pos)
	s.mu.Unlock()

	s.persist(pos, completeNow)
}

// completeLocked flips the completion flag exactly once and reports whether
// the caller owns the single completion write. Callers hold mu.
func (s *Session) completeLocked(position float64) bool {
	if s.completed {
		return false
	}
	s.completed = true
	s.phase = PhaseCompleted
	s.position = position
	return true
}

func (s *Session) persist(position float64, completed bool) {
	if err := s.sink.SaveProgress(s.UserID, s.LessonID, position, completed); err != nil {
		slog.Error("failed to persist lesson progress",
			"session_id", s.ID, "lesson_id", s.LessonID, "user_id", s.UserID, "error", err)
	}
}

// Close tears the session down: the ready timer and the sampling goroutine
// are always cancelled, on every exit path.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.readyTimer.Stop()
	close(s.done)
	s.mu.Unlock()
}

// Snapshot returns the session state for API responses.
type Snapshot struct {
	Phase       Phase
	Strategy    Strategy
	Degraded    bool
	Completed   bool
	Position    float64
	Duration    float64
	ProgressPct int
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	pct := 0
	if s.duration > 0 {
		pct = int(s.position / s.duration * 100)
		if pct > 100 {
			pct = 100
		}
	}
	if s.completed {
		pct = 100
	}
	return Snapshot{
		Phase:       s.phase,
		Strategy:    s.strategy,
		Degraded:    s.degraded,
		Completed:   s.completed,
		Position:    s.position,
		Duration:    s.duration,
		ProgressPct: pct,
	}
}
