package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Xevion/go-buzz/internal"
	"github.com/spf13/afero"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Options struct {
	Backend    string
	DataDir    string
	SQLitePath string   // defaults to <DataDir>/buzz.db
	Fs         afero.Fs // file backend only, defaults to the OS filesystem
	Logger     *slog.Logger
}

// Open opens the configured backend and loads the times it holds.
func Open(ctx context.Context, opts Options) (*Store, error) {
	backend, err := openBackend(opts)
	if err != nil {
		return nil, err
	}

	s, err := New(ctx, backend, opts.Logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}

// OpenOrMemory is Open, falling back to an empty in-memory store when the
// configured backend cannot be used. The failure is logged once.
func OpenOrMemory(ctx context.Context, opts Options) *Store {
	s, err := Open(ctx, opts)
	if err == nil {
		return s
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Storage unavailable, buzz times will not persist", "backend", opts.Backend, "error", err)

	s, _ = New(ctx, NewMemory(), logger)
	return s
}

func openBackend(opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendFile, "":
		fs := opts.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFile(fs, filepath.Join(opts.DataDir, internal.AppID))
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.DataDir, internal.AppID+".db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", opts.Backend)
	}
}
