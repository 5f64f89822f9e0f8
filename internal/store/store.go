// Package store persists the configured buzz times and the custom alert clip.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Workiva/go-datastructures/set"
	"github.com/Xevion/go-buzz/types"
)

// ErrNoClip is returned by LoadClip when no custom clip has been saved.
var ErrNoClip = errors.New("no custom clip stored")

// Backend is where times and the clip are written to.
type Backend interface {
	// Name identifies the backend in logs and status output.
	Name() string
	LoadTimes(ctx context.Context) ([]types.BuzzTime, error)
	// SaveTimes replaces the whole persisted list.
	SaveTimes(ctx context.Context, times []types.BuzzTime) error
	LoadClip(ctx context.Context) (types.Clip, error)
	SaveClip(ctx context.Context, clip types.Clip) error
	DeleteClip(ctx context.Context) error
	Close() error
}

// Store keeps an in-memory copy of the configured times in front of a Backend.
// Reads never touch the backend; mutations write through before the in-memory
// set changes, so a failed write leaves both unchanged.
type Store struct {
	mu      sync.Mutex // serializes mutations
	times   *set.Set
	backend Backend
	logger  *slog.Logger
}

// New loads the persisted times from backend.
func New(ctx context.Context, backend Backend, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loaded, err := backend.LoadTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading times from %s: %w", backend.Name(), err)
	}

	s := &Store{
		times:   set.New(),
		backend: backend,
		logger:  logger.With("store", backend.Name()),
	}
	for _, t := range loaded {
		s.times.Add(t)
	}

	s.logger.Debug("Loaded buzz times", "count", s.times.Len())
	return s, nil
}

// Backend returns the name of the underlying backend.
func (s *Store) Backend() string {
	return s.backend.Name()
}

// Snapshot returns a sorted copy of the configured times. It is safe to call
// from the tick loop while another goroutine mutates the store.
func (s *Store) Snapshot() []types.BuzzTime {
	items := s.times.Flatten()
	out := make([]types.BuzzTime, 0, len(items))
	for _, item := range items {
		out = append(out, item.(types.BuzzTime))
	}
	return types.SortBuzzTimes(out)
}

// List returns the configured times in chronological order.
func (s *Store) List(ctx context.Context) ([]types.BuzzTime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Add inserts t. Adding a time that is already present is a no-op and reports false.
func (s *Store) Add(ctx context.Context, t types.BuzzTime) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.times.Exists(t) {
		return false, nil
	}

	next := append(s.Snapshot(), t)
	if err := s.backend.SaveTimes(ctx, types.SortBuzzTimes(next)); err != nil {
		return false, fmt.Errorf("saving times: %w", err)
	}

	s.times.Add(t)
	s.logger.Info("Added buzz time", "time", t)
	return true, nil
}

// Remove deletes t. Removing an absent time is a no-op and reports false.
func (s *Store) Remove(ctx context.Context, t types.BuzzTime) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.times.Exists(t) {
		return false, nil
	}

	current := s.Snapshot()
	next := make([]types.BuzzTime, 0, len(current))
	for _, c := range current {
		if c != t {
			next = append(next, c)
		}
	}
	if err := s.backend.SaveTimes(ctx, next); err != nil {
		return false, fmt.Errorf("saving times: %w", err)
	}

	s.times.Remove(t)
	s.logger.Info("Removed buzz time", "time", t)
	return true, nil
}

// SaveClip replaces the stored custom clip.
func (s *Store) SaveClip(ctx context.Context, clip types.Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.SaveClip(ctx, clip); err != nil {
		return fmt.Errorf("saving clip: %w", err)
	}
	s.logger.Info("Saved custom clip", "name", clip.Name, "bytes", len(clip.Data))
	return nil
}

// LoadClip returns the stored clip. ok is false when none is stored.
func (s *Store) LoadClip(ctx context.Context) (clip types.Clip, ok bool, err error) {
	clip, err = s.backend.LoadClip(ctx)
	if errors.Is(err, ErrNoClip) {
		return types.Clip{}, false, nil
	}
	if err != nil {
		return types.Clip{}, false, fmt.Errorf("loading clip: %w", err)
	}
	return clip, true, nil
}

// ClearClip removes the stored clip, if any.
func (s *Store) ClearClip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.DeleteClip(ctx); err != nil {
		return fmt.Errorf("deleting clip: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}
