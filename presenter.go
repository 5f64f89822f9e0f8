package buzz

import (
	"context"
	"log/slog"

	"github.com/Xevion/go-buzz/types"
)

// Presenter shows the clock state. Implementations must not block.
type Presenter interface {
	ShowCurrentTime(text string)
	ShowCountdown(text string)
	SetFlashing(active bool)
	RenderTimesList(times []types.BuzzTime)
}

// AlertSink makes the buzz audible. Play must return immediately.
type AlertSink interface {
	EnsureReady(ctx context.Context) error
	Play()
}

// MultiPresenter fans every call out to each presenter in order.
type MultiPresenter []Presenter

func (m MultiPresenter) ShowCurrentTime(text string) {
	for _, p := range m {
		p.ShowCurrentTime(text)
	}
}

func (m MultiPresenter) ShowCountdown(text string) {
	for _, p := range m {
		p.ShowCountdown(text)
	}
}

func (m MultiPresenter) SetFlashing(active bool) {
	for _, p := range m {
		p.SetFlashing(active)
	}
}

func (m MultiPresenter) RenderTimesList(times []types.BuzzTime) {
	for _, p := range m {
		p.RenderTimesList(times)
	}
}

// LogPresenter writes flash transitions and list changes to the log.
// The clock and countdown are not logged.
type LogPresenter struct {
	logger *slog.Logger
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPresenter{logger: logger}
}

func (p *LogPresenter) ShowCurrentTime(string) {}

func (p *LogPresenter) ShowCountdown(string) {}

func (p *LogPresenter) SetFlashing(active bool) {
	if active {
		p.logger.Info("Flash on")
	} else {
		p.logger.Info("Flash off")
	}
}

func (p *LogPresenter) RenderTimesList(times []types.BuzzTime) {
	p.logger.Info("Buzz times", "times", times, "count", len(times))
}
