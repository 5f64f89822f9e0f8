// Package buzz provides a periodic alarm: a live clock, a set of daily times,
// and an audible/visual buzz when one of those times is reached.
// This file contains the scheduler that turns clock ticks into buzzes.
package buzz

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Xevion/go-buzz/internal/telemetry"
	"github.com/Xevion/go-buzz/types"
	"github.com/google/uuid"
)

// readyTimeout bounds the audio readiness check made before each buzz.
const readyTimeout = 2 * time.Second

// TickResult describes what a single tick did.
type TickResult struct {
	// Current time as "HH:MM:SS"
	Time string
	// Countdown to the next buzz, or NoCountdown
	Countdown string
	// Next buzz, nil when no times are configured
	Next *NextEventEstimate
	// A configured time was reached and a session started
	Triggered bool
	// A configured time was reached but a session was already active
	Suppressed bool
}

// Scheduler decides when a configured time has been reached and runs the
// alert session that follows. Every state change happens under one mutex,
// since the session terminator runs on its own goroutine.
type Scheduler struct {
	mu        sync.Mutex
	clock     Clock
	sink      AlertSink
	presenter Presenter
	logger    *slog.Logger

	session *AlertSession
}

func NewScheduler(sink AlertSink, presenter Presenter, clock Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:     clock,
		sink:      sink,
		presenter: presenter,
		logger:    logger,
	}
}

// OnTick evaluates one clock sample against the configured times.
// A time fires only on the tick whose seconds field is 0; a tick that never
// lands on second 0 misses that minute.
func (s *Scheduler) OnTick(sample ClockSample, configured []types.BuzzTime) TickResult {
	telemetry.Ticks.Inc()

	result := TickResult{
		Time:      sample.String(),
		Countdown: NoCountdown,
	}

	if sample.Second == 0 && containsTime(configured, sample.BuzzTime()) {
		if s.start(sample.Instant, SourceSchedule) {
			result.Triggered = true
		} else {
			result.Suppressed = true
		}
	}

	if next, ok := ComputeNextEvent(sample, configured); ok {
		result.Next = &next
		result.Countdown = next.Countdown()
	}

	s.presenter.ShowCurrentTime(result.Time)
	s.presenter.ShowCountdown(result.Countdown)
	return result
}

// Trigger starts a session immediately, as the "test buzz" button does.
// It reports false if a session was already active.
func (s *Scheduler) Trigger(at time.Time) bool {
	return s.start(at, SourceTest)
}

// start begins a session unless one is active.
func (s *Scheduler) start(at time.Time, source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		telemetry.Suppressed.Inc()
		s.logger.Debug("Buzz suppressed, session already active",
			"source", source, "session", s.session.ID, "started_at", s.session.StartedAt)
		return false
	}

	session := &AlertSession{
		ID:        uuid.New(),
		StartedAt: at,
		Source:    source,
	}
	s.session = session

	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	if err := s.sink.EnsureReady(ctx); err != nil {
		s.logger.Warn("Audio unavailable, flashing only", "session", session.ID, "error", err)
	} else {
		s.sink.Play()
	}

	s.presenter.SetFlashing(true)

	id := session.ID
	session.timer = s.clock.AfterFunc(AlertDuration, func() {
		s.expire(id)
	})

	telemetry.Triggers.WithLabelValues(source).Inc()
	telemetry.SessionActive.Set(1)
	s.logger.Info("Buzz", "source", source, "session", id, "at", at.Format(time.TimeOnly))
	return true
}

// expire ends the session with the given id. A terminator belonging to a
// session that already ended does nothing.
func (s *Scheduler) expire(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.ID != id {
		return
	}
	s.endLocked()
}

// EndActiveSession stops the current session, if any. Calling it with no
// active session is a no-op.
func (s *Scheduler) EndActiveSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	if s.session.timer != nil {
		s.session.timer.Stop()
	}
	s.endLocked()
}

func (s *Scheduler) endLocked() {
	s.logger.Debug("Session ended", "session", s.session.ID)
	s.session = nil
	s.presenter.SetFlashing(false)
	telemetry.SessionActive.Set(0)
}

// Active reports whether a session is in progress.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Session returns a copy of the active session.
func (s *Scheduler) Session() (AlertSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return AlertSession{}, false
	}
	return *s.session, true
}

func containsTime(times []types.BuzzTime, t types.BuzzTime) bool {
	for _, c := range times {
		if c == t {
			return true
		}
	}
	return false
}
