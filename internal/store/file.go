package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xevion/go-buzz/types"
	"github.com/spf13/afero"
)

const (
	timesFile    = "buzz_times.json"
	clipFile     = "custom_audio.bin"
	clipMetaFile = "custom_audio.json"
)

type clipMeta struct {
	Name    string    `json:"name"`
	Size    int       `json:"size"`
	SavedAt time.Time `json:"saved_at"`
}

// File is a Backend storing JSON and raw clip bytes in a directory.
type File struct {
	fs  afero.Fs
	dir string
}

// NewFile creates dir on fs if needed.
func NewFile(fs afero.Fs, dir string) (*File, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &File{fs: fs, dir: dir}, nil
}

func (f *File) Name() string { return "file" }

func (f *File) path(name string) string {
	return filepath.Join(f.dir, name)
}

// writeAtomic writes to a temporary file first and renames it over name, so a
// crash mid-write never leaves a truncated file behind.
func (f *File) writeAtomic(name string, data []byte) error {
	tmp := f.path(name + ".tmp")
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.fs.Rename(tmp, f.path(name)); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (f *File) LoadTimes(ctx context.Context) ([]types.BuzzTime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := afero.ReadFile(f.fs, f.path(timesFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", timesFile, err)
	}

	var times []types.BuzzTime
	if err := json.Unmarshal(raw, &times); err != nil {
		return nil, fmt.Errorf("decode %s: %w", timesFile, err)
	}
	return types.SortBuzzTimes(times), nil
}

func (f *File) SaveTimes(ctx context.Context, times []types.BuzzTime) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if times == nil {
		times = []types.BuzzTime{}
	}

	raw, err := json.Marshal(times)
	if err != nil {
		return err
	}
	return f.writeAtomic(timesFile, raw)
}

func (f *File) LoadClip(ctx context.Context) (types.Clip, error) {
	if err := ctx.Err(); err != nil {
		return types.Clip{}, err
	}

	rawMeta, err := afero.ReadFile(f.fs, f.path(clipMetaFile))
	if errors.Is(err, os.ErrNotExist) {
		return types.Clip{}, ErrNoClip
	}
	if err != nil {
		return types.Clip{}, fmt.Errorf("read %s: %w", clipMetaFile, err)
	}

	var meta clipMeta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return types.Clip{}, fmt.Errorf("decode %s: %w", clipMetaFile, err)
	}

	data, err := afero.ReadFile(f.fs, f.path(clipFile))
	if errors.Is(err, os.ErrNotExist) {
		return types.Clip{}, ErrNoClip
	}
	if err != nil {
		return types.Clip{}, fmt.Errorf("read %s: %w", clipFile, err)
	}

	return types.Clip{Name: meta.Name, Data: data}, nil
}

func (f *File) SaveClip(ctx context.Context, clip types.Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := f.writeAtomic(clipFile, clip.Data); err != nil {
		return err
	}

	meta, err := json.Marshal(clipMeta{Name: clip.Name, Size: len(clip.Data), SavedAt: time.Now()})
	if err != nil {
		return err
	}
	return f.writeAtomic(clipMetaFile, meta)
}

func (f *File) DeleteClip(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// metadata first so a partial delete reads as "no clip"
	for _, name := range []string{clipMetaFile, clipFile} {
		if err := f.fs.Remove(f.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (f *File) Close() error { return nil }
