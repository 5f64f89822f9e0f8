package buzz

import (
	"context"
	"sync"
	"time"

	"github.com/Xevion/go-buzz/types"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) Timers() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.timers...)
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeSink struct {
	mu       sync.Mutex
	readyErr error
	ready    int
	plays    int
}

func (s *fakeSink) EnsureReady(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready++
	return s.readyErr
}

func (s *fakeSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
}

func (s *fakeSink) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

type fakePresenter struct {
	mu         sync.Mutex
	times      []string
	countdowns []string
	flashes    []bool
	lists      [][]types.BuzzTime
}

func (p *fakePresenter) ShowCurrentTime(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.times = append(p.times, text)
}

func (p *fakePresenter) ShowCountdown(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdowns = append(p.countdowns, text)
}

func (p *fakePresenter) SetFlashing(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flashes = append(p.flashes, active)
}

func (p *fakePresenter) RenderTimesList(times []types.BuzzTime) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = append(p.lists, times)
}

func (p *fakePresenter) Flashes() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.flashes...)
}

func (p *fakePresenter) LastCountdown() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.countdowns) == 0 {
		return ""
	}
	return p.countdowns[len(p.countdowns)-1]
}

func at(h, m, s int) time.Time {
	return time.Date(2025, 8, 2, h, m, s, 0, time.UTC)
}

func bt(s string) types.BuzzTime {
	t, err := types.ParseBuzzTime(s)
	if err != nil {
		panic(err)
	}
	return t
}
