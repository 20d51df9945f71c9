package tts

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNoProviders is returned by a chain with nothing configured.
var ErrNoProviders = errors.New("tts: no providers configured")

// Chain tries providers in order and returns the first success. Provider
// failures are logged and carried into the final error when every
// provider fails.
type Chain struct {
	providers []Synthesizer
}

// NewChain builds a chain from providers in priority order.
func NewChain(providers ...Synthesizer) *Chain {
	return &Chain{providers: providers}
}

// Name identifies the chain by its primary provider.
func (c *Chain) Name() string {
	if len(c.providers) == 0 {
		return "none"
	}
	return c.providers[0].Name()
}

// Available reports whether any provider is configured.
func (c *Chain) Available() bool {
	return len(c.providers) > 0
}

// Synthesize walks the providers in order.
func (c *Chain) Synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}

	var errs []error
	for _, p := range c.providers {
		audio, err := p.Synthesize(ctx, text, voiceID)
		if err == nil {
			return audio, nil
		}
		if errors.Is(err, ErrEmptyText) {
			return nil, err
		}
		slog.Warn("TTS provider failed, trying next", "provider", p.Name(), "error", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// Voices aggregates the voices of every provider, primary first.
func (c *Chain) Voices() []Voice {
	var out []Voice
	for _, p := range c.providers {
		out = append(out, p.Voices()...)
	}
	return out
}
