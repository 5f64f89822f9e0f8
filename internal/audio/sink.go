// Package audio renders and plays the buzz sound.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Xevion/go-buzz/internal/telemetry"
	"github.com/Xevion/go-buzz/types"
	"github.com/spf13/afero"
)

const (
	DefaultVolume = 1.0
	playTimeout   = 30 * time.Second
)

type Options struct {
	Player Player
	Fs     afero.Fs // where temporary audio files are written, defaults to the OS filesystem
	TmpDir string
	Volume *float64
	Logger *slog.Logger
}

// Sink plays the custom clip, or the synthesized tone when there is none.
type Sink struct {
	mu       sync.Mutex
	player   Player
	fs       afero.Fs
	tmpDir   string
	logger   *slog.Logger
	volume   float64
	clip     *types.Clip
	clipKind Kind
	ready    bool
	closed   bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewSink(opts Options) *Sink {
	if opts.Player == nil {
		opts.Player = NewCommandPlayer(nil)
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	volume := DefaultVolume
	if opts.Volume != nil {
		volume = clamp(*opts.Volume)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Sink{
		player: opts.Player,
		fs:     opts.Fs,
		tmpDir: opts.TmpDir,
		logger: opts.Logger,
		volume: volume,
		ctx:    ctx,
		cancel: cancel,
	}
}

// EnsureReady checks the player once. A failed check is retried on the next call.
func (s *Sink) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if err := s.player.Ready(ctx); err != nil {
		return err
	}
	s.ready = true
	return nil
}

// Play starts playback in the background and returns immediately.
// A custom clip the player rejects is retried once as the tone.
// Failures are logged.
func (s *Sink) Play() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	volume := s.volume
	clip, kind := s.clip, s.clipKind
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, playTimeout)
		defer cancel()

		err := s.play(ctx, clip, kind, volume)
		if err != nil && clip != nil && ctx.Err() == nil {
			s.logger.Warn("Failed to play custom clip, using tone", "clip", clip.Name, "error", err)
			err = s.play(ctx, nil, "", volume)
		}
		if err != nil {
			telemetry.PlayFailures.Inc()
			s.mu.Lock()
			s.ready = false
			s.mu.Unlock()
			s.logger.Error("Failed to play buzz", "error", err)
		}
	}()
}

func (s *Sink) play(ctx context.Context, clip *types.Clip, kind Kind, volume float64) error {
	ext := KindWAV.Extension()
	if clip != nil {
		ext = kind.Extension()
	}

	f, err := afero.TempFile(s.fs, s.tmpDir, "buzz-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() { _ = s.fs.Remove(path) }()

	if err := s.render(f, clip, kind, volume); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return s.player.Play(ctx, path)
}

// render writes the sound to f. PCM16 WAV clips are volume scaled and other
// WAV encodings and containers are passed through as-is. A WAV clip that
// cannot be decoded is replaced by the tone.
func (s *Sink) render(f afero.File, clip *types.Clip, kind Kind, volume float64) error {
	if clip == nil {
		return writeWAV(f, Tone(volume))
	}

	if kind == KindWAV {
		buf, err := decodePCM16(clip.Data)
		switch {
		case err == nil:
			scale(buf, volume)
			return writeWAV(f, buf)
		case errors.Is(err, errNotPCM16):
			s.logger.Debug("Playing clip without volume scaling", "clip", clip.Name, "error", err)
		default:
			s.logger.Warn("Custom clip is corrupt, using tone", "clip", clip.Name, "error", err)
			return writeWAV(f, Tone(volume))
		}
	}

	_, err := f.Write(clip.Data)
	return err
}

// SetVolume sets the playback level, clamped to [0, 1].
func (s *Sink) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = clamp(level)
}

func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetClip switches playback to clip. An unrecognised clip is rejected with
// ErrUnsupportedClip and playback falls back to the tone.
func (s *Sink) SetClip(clip types.Clip) error {
	kind, err := Sniff(clip.Data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.clip = nil
		s.logger.Warn("Custom clip rejected, using tone", "clip", clip.Name, "error", err)
		return err
	}

	s.clip = &types.Clip{Name: clip.Name, Data: clip.Data}
	s.clipKind = kind
	s.logger.Info("Custom clip loaded", "clip", clip.Name, "kind", kind, "bytes", len(clip.Data))
	return nil
}

// ClearClip reverts to the tone.
func (s *Sink) ClearClip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clip = nil
}

// ClipName returns the name of the active custom clip, or "" when using the tone.
func (s *Sink) ClipName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return ""
	}
	return s.clip.Name
}

// Close stops running playbacks and waits for them to exit.
func (s *Sink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
