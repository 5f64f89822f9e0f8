package store

import (
	"context"
	"sync"

	"github.com/Xevion/go-buzz/types"
)

// Memory is a Backend that keeps everything in process memory.
// It is used when the configured backend cannot be opened.
type Memory struct {
	mu    sync.Mutex
	times []types.BuzzTime
	clip  *types.Clip
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) LoadTimes(context.Context) ([]types.BuzzTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.BuzzTime(nil), m.times...), nil
}

func (m *Memory) SaveTimes(_ context.Context, times []types.BuzzTime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.times = append([]types.BuzzTime(nil), times...)
	return nil
}

func (m *Memory) LoadClip(context.Context) (types.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clip == nil {
		return types.Clip{}, ErrNoClip
	}
	return types.Clip{Name: m.clip.Name, Data: append([]byte(nil), m.clip.Data...)}, nil
}

func (m *Memory) SaveClip(_ context.Context, clip types.Clip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clip = &types.Clip{Name: clip.Name, Data: append([]byte(nil), clip.Data...)}
	return nil
}

func (m *Memory) DeleteClip(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clip = nil
	return nil
}

func (m *Memory) Close() error { return nil }
