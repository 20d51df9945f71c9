package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMurfBaseURL = "https://api.murf.ai"
	murfGeneratePath   = "/v1/speech/generate"

	// DefaultMurfVoiceID is used when the caller does not pick a voice.
	DefaultMurfVoiceID = "en-US-terrell"

	// maxAudioDownloadSize caps a downloaded clip (32MB); spoken replies
	// are short and anything larger is a misbehaving upstream.
	maxAudioDownloadSize = 32 << 20
)

// ErrMurfNoAudio is returned when Murf accepts the request but the
// response carries neither an audio URL nor encoded audio.
var ErrMurfNoAudio = errors.New("murf response contained no audio")

// Murf synthesizes speech through the Murf REST API.
type Murf struct {
	apiKey         string
	baseURL        string
	defaultVoiceID string
	httpClient     *http.Client
}

// MurfOption customizes the Murf client.
type MurfOption func(*Murf)

// WithMurfBaseURL overrides the API base URL. Tests point this at a local
// server.
func WithMurfBaseURL(url string) MurfOption {
	return func(m *Murf) {
		m.baseURL = strings.TrimRight(url, "/")
	}
}

// WithMurfHTTPClient overrides the HTTP client.
func WithMurfHTTPClient(c *http.Client) MurfOption {
	return func(m *Murf) {
		m.httpClient = c
	}
}

// NewMurf creates a Murf client.
func NewMurf(apiKey, defaultVoiceID string, opts ...MurfOption) *Murf {
	if defaultVoiceID == "" {
		defaultVoiceID = DefaultMurfVoiceID
	}
	m := &Murf{
		apiKey:         apiKey,
		baseURL:        defaultMurfBaseURL,
		defaultVoiceID: defaultVoiceID,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name identifies the provider.
func (m *Murf) Name() string {
	return "murf"
}

// Voices lists the configured default voice. Murf exposes a large
// catalogue; the app pins one voice and lets MURF_VOICE_ID change it.
func (m *Murf) Voices() []Voice {
	return []Voice{{ID: m.defaultVoiceID, Name: "Default Murf Voice"}}
}

type murfGenerateRequest struct {
	Text        string `json:"text"`
	VoiceID     string `json:"voiceId"`
	Format      string `json:"format"`
	ChannelType string `json:"channelType"`
	SampleRate  int    `json:"sampleRate"`
}

type murfGenerateResponse struct {
	AudioFile    string `json:"audioFile"`
	EncodedAudio string `json:"encodedAudio"`
}

// Synthesize generates MP3 audio for text. The API answers with either a
// download URL or base64 audio; both shapes are handled.
func (m *Murf) Synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if voiceID == "" {
		voiceID = m.defaultVoiceID
	}

	body, err := json.Marshal(murfGenerateRequest{
		Text:        text,
		VoiceID:     voiceID,
		Format:      "MP3",
		ChannelType: "STEREO",
		SampleRate:  44100,
	})
	if err != nil {
		return nil, fmt.Errorf("encode murf request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+murfGeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build murf request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call murf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("murf returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out murfGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode murf response: %w", err)
	}

	switch {
	case out.AudioFile != "":
		data, err := m.download(ctx, out.AudioFile)
		if err != nil {
			return nil, err
		}
		return &Audio{Data: data, Format: "mp3"}, nil
	case out.EncodedAudio != "":
		data, err := base64.StdEncoding.DecodeString(out.EncodedAudio)
		if err != nil {
			return nil, fmt.Errorf("decode murf audio: %w", err)
		}
		return &Audio{Data: data, Format: "mp3"}, nil
	default:
		return nil, ErrMurfNoAudio
	}
}

func (m *Murf) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build audio download request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download murf audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("murf audio download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read murf audio: %w", err)
	}
	return data, nil
}
