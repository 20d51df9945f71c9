// Package stt turns recorded audio into text.
package stt

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// transcribeInstruction keeps the model from editorializing.
const transcribeInstruction = "Transcribe this audio recording exactly as spoken. " +
	"Reply with only the transcribed words. If there is no speech, reply with nothing."

// Recognizer converts an audio recording into a transcript. An empty
// transcript with a nil error means no speech was detected.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Gemini transcribes audio with a multimodal Gemini model, reusing the
// same client as the reply generator.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini wraps an existing genai client.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// Transcribe sends the audio inline with a transcription instruction.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(transcribeInstruction),
		genai.NewPartFromBytes(audio, mimeType),
	}
	content := genai.NewContentFromParts(parts, genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String()), nil
}
