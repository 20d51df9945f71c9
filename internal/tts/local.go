package tts

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoLocalEngine is returned when the host has no usable speech command.
var ErrNoLocalEngine = errors.New("no local speech engine found")

// Local speaks through the host's speech synthesizer. It produces no audio
// bytes; the speech plays on the server machine, which is where the
// desktop app runs.
type Local struct {
	command string
	args    []string
}

// NewLocal probes for a host speech command (espeak-ng, espeak, or say on
// macOS) and returns ErrNoLocalEngine when none is installed.
func NewLocal() (*Local, error) {
	candidates := [][]string{
		{"espeak-ng", "-s", "160"},
		{"espeak", "-s", "160"},
	}
	if runtime.GOOS == "darwin" {
		candidates = append([][]string{{"say"}}, candidates...)
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return &Local{command: c[0], args: c[1:]}, nil
		}
	}
	return nil, ErrNoLocalEngine
}

// Name identifies the provider.
func (l *Local) Name() string {
	return "local"
}

// Voices lists the single system voice.
func (l *Local) Voices() []Voice {
	return []Voice{{ID: "local", Name: "System TTS"}}
}

// Synthesize speaks the text on the host and returns a live Audio marker.
func (l *Local) Synthesize(ctx context.Context, text, _ string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	args := append(append([]string{}, l.args...), text)
	cmd := exec.CommandContext(ctx, l.command, args...)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", l.command, err)
	}
	return &Audio{Format: "live"}, nil
}
