// Package server exposes the buzz daemon over HTTP: a JSON API, the live
// websocket feed, Prometheus metrics and the browser UI.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Xevion/go-buzz/internal/telemetry"
	"github.com/Xevion/go-buzz/types"
)

//go:embed web
var webFS embed.FS

const DefaultMaxUploadBytes = 10 << 20

// Controller is the daemon as seen by the API.
type Controller interface {
	Times() []types.BuzzTime
	AddTime(ctx context.Context, t types.TimeString) (types.BuzzTime, bool, error)
	AddSunTime(ctx context.Context, sunset bool, offset types.DurationString) (types.BuzzTime, bool, error)
	RemoveTime(ctx context.Context, t types.TimeString) (bool, error)
	SetClip(ctx context.Context, clip types.Clip) error
	ClearClip(ctx context.Context) error
	SetVolume(level float64) error
	TestBuzz() bool
	Status() types.Status
	PresentationHandler() http.Handler
}

type Options struct {
	MaxUploadBytes int64
	Logger         *slog.Logger

	// IsBadRequest reports whether a Controller error was caused by the caller's input.
	IsBadRequest func(error) bool
}

type Server struct {
	ctrl           Controller
	router         chi.Router
	logger         *slog.Logger
	maxUploadBytes int64
	isBadRequest   func(error) bool
}

func New(ctrl Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.IsBadRequest == nil {
		opts.IsBadRequest = func(err error) bool { return errors.Is(err, types.ErrInvalidTime) }
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(opts.Logger))
	router.Use(middleware.Recoverer)

	s := &Server{
		ctrl:           ctrl,
		router:         router,
		logger:         opts.Logger,
		maxUploadBytes: opts.MaxUploadBytes,
		isBadRequest:   opts.IsBadRequest,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/times", s.handleListTimes)
		r.Post("/times", s.handleAddTime)
		r.Delete("/times/{time}", s.handleRemoveTime)
		r.Put("/audio", s.handleSetAudio)
		r.Delete("/audio", s.handleClearAudio)
		r.Put("/volume", s.handleSetVolume)
		r.Post("/test", s.handleTest)
		r.Get("/status", s.handleStatus)
	})

	s.router.Handle("/ws", s.ctrl.PresentationHandler())
	s.router.Handle("/metrics", telemetry.Handler())

	static, _ := fs.Sub(webFS, "web")
	s.router.Handle("/*", http.FileServer(http.FS(static)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			telemetry.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			telemetry.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
