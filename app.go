package buzz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/internal/audio"
	"github.com/Xevion/go-buzz/internal/connect"
	"github.com/Xevion/go-buzz/internal/scheduling"
	"github.com/Xevion/go-buzz/internal/store"
	"github.com/Xevion/go-buzz/internal/telemetry"
	"github.com/Xevion/go-buzz/types"
)

var (
	ErrInvalidArgs = errors.New("invalid arguments provided")
	ErrNoLocation  = errors.New("no latitude/longitude configured")
)

// IsInvalidInput reports whether err was caused by a bad argument rather than a failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidArgs) ||
		errors.Is(err, ErrNoLocation) ||
		errors.Is(err, types.ErrInvalidTime) ||
		errors.Is(err, audio.ErrUnsupportedClip)
}

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	logger    *slog.Logger

	clock        Clock
	tickInterval time.Duration
	latitude     float64
	longitude    float64

	store     *store.Store
	sink      *audio.Sink
	hub       *connect.Hub
	presenter Presenter
	scheduler *Scheduler

	closeOnce sync.Once
}

type appOptions struct {
	clock  Clock
	player audio.Player
	fs     afero.Fs
}

// Option customises NewApp, mostly for tests.
type Option func(*appOptions)

// WithClock replaces the wall clock and timers.
func WithClock(clock Clock) Option {
	return func(o *appOptions) { o.clock = clock }
}

// WithPlayer replaces the external player command.
func WithPlayer(player audio.Player) Option {
	return func(o *appOptions) { o.player = player }
}

// WithFs replaces the filesystem used by the file store and for temporary audio files.
func WithFs(fs afero.Fs) Option {
	return func(o *appOptions) { o.fs = fs }
}

// NewApp opens the store, loads the custom clip and wires the scheduler to the
// audio sink and presenters. A store that cannot be opened is replaced by an
// in-memory one so the clock keeps working.
func NewApp(request types.NewAppRequest, opts ...Option) (*App, error) {
	o := appOptions{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	if request.Volume != nil && (*request.Volume < 0 || *request.Volume > 1) {
		return nil, fmt.Errorf("%w: volume must be between 0 and 1", ErrInvalidArgs)
	}
	if request.TickInterval == 0 {
		request.TickInterval = time.Second
	}
	if request.TickInterval < 0 || request.TickInterval > time.Second {
		return nil, fmt.Errorf("%w: tick interval must be in (0, 1s]", ErrInvalidArgs)
	}
	logger := request.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	st := store.OpenOrMemory(ctx, store.Options{
		Backend:    request.StoreBackend,
		DataDir:    request.DataDir,
		SQLitePath: request.SQLitePath,
		Fs:         o.fs,
		Logger:     logger,
	})

	player := o.player
	if player == nil {
		player = audio.NewCommandPlayer(request.PlayerCommand)
	}
	sink := audio.NewSink(audio.Options{
		Player: player,
		Fs:     o.fs,
		Volume: request.Volume,
		Logger: logger.With("component", "audio"),
	})

	hub := connect.NewHub(logger.With("component", "websocket"))
	presenter := MultiPresenter{hub, NewLogPresenter(logger)}

	app := &App{
		ctx:          ctx,
		ctxCancel:    ctxCancel,
		logger:       logger,
		clock:        o.clock,
		tickInterval: request.TickInterval,
		latitude:     request.Latitude,
		longitude:    request.Longitude,
		store:        st,
		sink:         sink,
		hub:          hub,
		presenter:    presenter,
		scheduler:    NewScheduler(sink, presenter, o.clock, logger),
	}
	hub.OnTest(func() { app.TestBuzz() })

	if err := app.seed(ctx, request.SeedTimes); err != nil {
		_ = app.Close()
		return nil, err
	}

	clip, ok, err := st.LoadClip(ctx)
	if err != nil {
		telemetry.StoreErrors.WithLabelValues("load_clip").Inc()
		logger.Error("Failed to load custom clip, using tone", "error", err)
	} else if ok {
		// an unsupported clip is logged by the sink and the tone is used
		_ = sink.SetClip(clip)
	}

	app.timesChanged()
	return app, nil
}

// seed adds times to a store that holds none.
func (app *App) seed(ctx context.Context, seeds []types.TimeString) error {
	if len(seeds) == 0 || len(app.store.Snapshot()) > 0 {
		return nil
	}

	parsed := make([]types.BuzzTime, 0, len(seeds))
	for _, s := range seeds {
		t, err := types.ParseBuzzTime(string(s))
		if err != nil {
			return fmt.Errorf("%w: seed times: %w", ErrInvalidArgs, err)
		}
		parsed = append(parsed, t)
	}

	// repeated seeds are a no-op, like adding a time twice
	builder := scheduling.NewSchedule()
	for _, t := range types.SortBuzzTimes(parsed) {
		builder.OnFixedTime(t.Hour, t.Minute)
	}
	plan, err := builder.Build()
	if err != nil {
		return fmt.Errorf("%w: seed times: %w", ErrInvalidArgs, err)
	}

	for _, t := range plan.Times() {
		if _, err := app.store.Add(ctx, t); err != nil {
			telemetry.StoreErrors.WithLabelValues("add").Inc()
			return err
		}
	}
	app.logger.Info("Seeded buzz times", "times", plan.Times())
	return nil
}

// Start runs the tick loop until ctx is cancelled or the app is closed.
func (app *App) Start(ctx context.Context) {
	app.logger.Info("Starting", "times", len(app.store.Snapshot()), "store", app.store.Backend(), "volume", app.sink.Volume(), "tick", app.tickInterval)

	ticker := time.NewTicker(app.tickInterval)
	defer ticker.Stop()

	app.tick()
	for {
		select {
		case <-ticker.C:
			app.tick()
		case <-ctx.Done():
			app.logger.Info("Context cancelled, stopping tick loop")
			return
		case <-app.ctx.Done():
			app.logger.Info("App closed, stopping tick loop")
			return
		}
	}
}

func (app *App) tick() TickResult {
	return app.scheduler.OnTick(SampleOf(app.clock.Now()), app.store.Snapshot())
}

// Close stops the active session, disconnects presentation clients and closes the store.
func (app *App) Close() error {
	var err error
	app.closeOnce.Do(func() {
		if app.ctxCancel != nil {
			app.ctxCancel()
		}
		if app.scheduler != nil {
			app.scheduler.EndActiveSession()
		}
		if app.hub != nil {
			app.hub.Close()
		}
		if app.sink != nil {
			app.sink.Close()
		}
		if app.store != nil {
			err = app.store.Close()
		}
	})
	return err
}

// PresentationHandler serves the live websocket feed.
func (app *App) PresentationHandler() http.Handler {
	return app.hub
}

// Times returns the configured times in chronological order.
func (app *App) Times() []types.BuzzTime {
	return app.store.Snapshot()
}

// AddTime adds a "HH:MM" time. added is false if it was already configured.
func (app *App) AddTime(ctx context.Context, s types.TimeString) (t types.BuzzTime, added bool, err error) {
	t, err = types.ParseBuzzTime(string(s))
	if err != nil {
		return types.BuzzTime{}, false, err
	}
	return app.addTime(ctx, t)
}

// AddSunTime resolves today's sunrise or sunset, plus offset, to a fixed time and adds it.
func (app *App) AddSunTime(ctx context.Context, sunset bool, offset types.DurationString) (types.BuzzTime, bool, error) {
	if app.latitude == 0 && app.longitude == 0 {
		return types.BuzzTime{}, false, ErrNoLocation
	}

	builder := scheduling.NewSchedule().
		WithNow(app.clock.Now).
		WithLocation(app.latitude, app.longitude)
	if sunset {
		builder.OnSunset(offset)
	} else {
		builder.OnSunrise(offset)
	}

	plan, err := builder.Build()
	if err != nil {
		return types.BuzzTime{}, false, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return app.addTime(ctx, plan.Times()[0])
}

func (app *App) addTime(ctx context.Context, t types.BuzzTime) (types.BuzzTime, bool, error) {
	added, err := app.store.Add(ctx, t)
	if err != nil {
		telemetry.StoreErrors.WithLabelValues("add").Inc()
		return t, false, err
	}
	if added {
		app.timesChanged()
	}
	return t, added, nil
}

// RemoveTime removes a "HH:MM" time. removed is false if it was not configured.
func (app *App) RemoveTime(ctx context.Context, s types.TimeString) (bool, error) {
	t, err := types.ParseBuzzTime(string(s))
	if err != nil {
		return false, err
	}

	removed, err := app.store.Remove(ctx, t)
	if err != nil {
		telemetry.StoreErrors.WithLabelValues("remove").Inc()
		return false, err
	}
	if removed {
		app.timesChanged()
	}
	return removed, nil
}

func (app *App) timesChanged() {
	times := app.store.Snapshot()
	telemetry.ConfiguredTimes.Set(float64(len(times)))
	app.presenter.RenderTimesList(times)
}

// SetClip validates, stores and activates a custom alert sound.
// Unsupported formats are rejected and the current sound is kept.
func (app *App) SetClip(ctx context.Context, clip types.Clip) error {
	if _, err := audio.Sniff(clip.Data); err != nil {
		return err
	}
	if err := app.store.SaveClip(ctx, clip); err != nil {
		telemetry.StoreErrors.WithLabelValues("save_clip").Inc()
		return err
	}
	return app.sink.SetClip(clip)
}

// ClearClip removes the custom sound and goes back to the tone.
func (app *App) ClearClip(ctx context.Context) error {
	if err := app.store.ClearClip(ctx); err != nil {
		telemetry.StoreErrors.WithLabelValues("clear_clip").Inc()
		return err
	}
	app.sink.ClearClip()
	return nil
}

// SetVolume sets the playback level between 0 and 1.
func (app *App) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: volume must be between 0 and 1, got %v", ErrInvalidArgs, level)
	}
	app.sink.SetVolume(level)
	app.logger.Info("Volume changed", "volume", level)
	return nil
}

// TestBuzz fires a buzz now. It reports false if one is already in progress.
func (app *App) TestBuzz() bool {
	return app.scheduler.Trigger(app.clock.Now())
}

// Status is a snapshot of the clock, the next buzz and the audio settings.
func (app *App) Status() types.Status {
	sample := SampleOf(app.clock.Now())
	times := app.store.Snapshot()

	status := types.Status{
		Version:   internal.Version(),
		Now:       sample.String(),
		Countdown: NoCountdown,
		Flashing:  app.scheduler.Active(),
		Times:     times,
		Volume:    app.sink.Volume(),
		ClipName:  app.sink.ClipName(),
		Store:     app.store.Backend(),
	}
	if next, ok := ComputeNextEvent(sample, times); ok {
		status.Countdown = next.Countdown()
		status.Next = &next.Target
		status.NextAt = &next.At
	}
	return status
}
