// Package llm wraps the Google Gemini API behind the small collaborator
// surface the conversation manager needs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrNoResponse is returned by Ping when the model answers with nothing.
var ErrNoResponse = errors.New("gemini returned no response")

// Gemini generates replies with a Google Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini wraps an existing genai client. The client is created by the
// composition root and shared with the transcription service.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// Generate sends the flattened prompt and returns the model's text.
// Transport failures are returned as errors; a response with no usable
// candidates comes back as empty text with a nil error, which the caller
// treats as the model producing nothing.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return firstCandidateText(resp), nil
}

// Ping performs a tiny round trip to verify the API key and model.
func (g *Gemini) Ping(ctx context.Context) error {
	out, err := g.Generate(ctx, "Hello! Please respond with just 'Hello back!' to test the connection.")
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		return ErrNoResponse
	}
	return nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
