// Package tts provides speech synthesis with an ordered fallback chain:
// the Murf cloud engine first, then the host's local engine.
package tts

import (
	"context"
	"errors"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("tts: empty text")

// Audio is the result of one synthesis. Live audio was spoken directly by
// a host engine and carries no bytes to serve.
type Audio struct {
	Data   []byte
	Format string // "mp3", or "live" for host playback
}

// Live reports whether the audio was played on the host instead of being
// returned as a file.
func (a *Audio) Live() bool {
	return a != nil && len(a.Data) == 0 && a.Format == "live"
}

// Voice describes one selectable voice.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Synthesizer converts text to speech. Implementations return an error
// when synthesis fails so the chain can move to the next provider.
type Synthesizer interface {
	// Name identifies the provider in logs and the voices endpoint.
	Name() string
	// Synthesize produces audio for text. voiceID may be empty for the
	// provider default.
	Synthesize(ctx context.Context, text, voiceID string) (*Audio, error)
	// Voices lists the voices this provider offers.
	Voices() []Voice
}
