package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoPlayer is returned when the player command is not available.
var ErrNoPlayer = errors.New("audio player unavailable")

// DefaultPlayerCommand plays WAV files through ALSA.
var DefaultPlayerCommand = []string{"aplay", "-q"}

// Player plays an audio file from disk.
type Player interface {
	// Ready checks that Play can work. It is called before every buzz.
	Ready(ctx context.Context) error
	Play(ctx context.Context, path string) error
}

// CommandPlayer runs an external program with the file path appended to its arguments.
type CommandPlayer struct {
	command  []string
	lookPath func(string) (string, error)
}

func NewCommandPlayer(command []string) *CommandPlayer {
	if len(command) == 0 {
		command = DefaultPlayerCommand
	}
	return &CommandPlayer{command: command, lookPath: exec.LookPath}
}

func (p *CommandPlayer) Ready(context.Context) error {
	if _, err := p.lookPath(p.command[0]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoPlayer, p.command[0], err)
	}
	return nil
}

func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p.command[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (p *CommandPlayer) String() string {
	return strings.Join(p.command, " ")
}
