package api

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avavoice/ava-server/internal/assistant"
	"github.com/avavoice/ava-server/internal/stt"
	"github.com/avavoice/ava-server/internal/tts"
)

// maxAudioUploadSize caps voice uploads (10MB).
const maxAudioUploadSize = 10 << 20

// SpeechHandler serves the voice input, synthesis and audio file endpoints.
type SpeechHandler struct {
	*Handler
	svc        *assistant.Service
	recognizer stt.Recognizer // nil when speech recognition is unavailable
	synth      *tts.Chain
	audio      *tts.Store
}

// NewSpeechHandler creates a new SpeechHandler.
func NewSpeechHandler(base *Handler, svc *assistant.Service, recognizer stt.Recognizer, synth *tts.Chain, audio *tts.Store) *SpeechHandler {
	return &SpeechHandler{Handler: base, svc: svc, recognizer: recognizer, synth: synth, audio: audio}
}

// RegisterRoutes registers speech routes on the router.
func (h *SpeechHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/voice", h.Voice)
	r.Post("/api/tts", h.Synthesize)
	r.Get("/api/voices", h.Voices)
	r.Post("/api/cleanup", h.Cleanup)
	r.Delete("/api/audio/{filename}", h.DeleteAudio)
}

type voiceResponse struct {
	Transcript   string `json:"transcript"`
	Reply        string `json:"reply"`
	SessionID    string `json:"session_id"`
	AudioURL     string `json:"audio_url,omitempty"`
	LiveAudio    bool   `json:"live_audio,omitempty"`
	ProcessingMs int64  `json:"processing_ms"`
}

// Voice accepts a recorded audio clip, transcribes it and answers the
// transcript as a spoken turn. The audio comes as a multipart "audio" file.
func (h *SpeechHandler) Voice(w http.ResponseWriter, r *http.Request) {
	if h.recognizer == nil {
		Fail(w, http.StatusServiceUnavailable, "Speech recognition not configured", "STT_UNAVAILABLE")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadSize)
	if err := r.ParseMultipartForm(maxAudioUploadSize); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid multipart request", err.Error())
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		Fail(w, http.StatusBadRequest, "Missing audio file", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		Fail(w, http.StatusBadRequest, "Failed to read audio file", err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	transcript, err := h.recognizer.Transcribe(r.Context(), data, mimeType)
	if err != nil {
		slog.Error("Speech recognition failed", "error", err)
		Fail(w, http.StatusBadGateway, "Speech recognition failed", err.Error())
		return
	}
	if transcript == "" {
		Fail(w, http.StatusOK, "No speech detected", "TIMEOUT_OR_NO_SPEECH")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	res := h.svc.Respond(r.Context(), assistant.Request{
		UserID:     h.userID(r),
		SessionID:  sessionID,
		Text:       transcript,
		VoiceID:    r.FormValue("voice_id"),
		Speak:      true,
		VoiceInput: true,
	})

	OK(w, voiceResponse{
		Transcript:   transcript,
		Reply:        res.Reply,
		SessionID:    sessionID,
		AudioURL:     res.AudioURL,
		LiveAudio:    res.LiveAudio,
		ProcessingMs: res.ProcessingMs,
	}, "")
}

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type ttsResponse struct {
	AudioURL string `json:"audio_url,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Synthesize converts text to speech and returns a URL for the audio file.
// When only a host engine is available the reply is spoken directly and
// fallback is set instead of a URL.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	if h.synth == nil || !h.synth.Available() {
		Fail(w, http.StatusServiceUnavailable, "Speech synthesis not configured", "TTS_UNAVAILABLE")
		return
	}

	var req ttsRequest
	if err := decode(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	audio, err := h.synth.Synthesize(r.Context(), req.Text, req.VoiceID)
	if err != nil {
		if errors.Is(err, tts.ErrEmptyText) {
			Fail(w, http.StatusBadRequest, "Text is required", "EMPTY_TEXT")
			return
		}
		slog.Error("Speech synthesis failed", "error", err)
		Fail(w, http.StatusBadGateway, "Speech synthesis failed", err.Error())
		return
	}

	if audio.Live() {
		OK(w, ttsResponse{Fallback: true}, "Spoken with local engine")
		return
	}

	filename, err := h.audio.Save(audio.Data, audio.Format)
	if err != nil {
		slog.Error("Failed to store synthesized audio", "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to store audio", err.Error())
		return
	}
	OK(w, ttsResponse{AudioURL: "/audio/" + filename}, "")
}

// Voices lists the voices offered by the configured synthesizers.
func (h *SpeechHandler) Voices(w http.ResponseWriter, r *http.Request) {
	if h.synth == nil {
		OK(w, []tts.Voice{}, "")
		return
	}
	voices := h.synth.Voices()
	if voices == nil {
		voices = []tts.Voice{}
	}
	OK(w, voices, "")
}

// Cleanup removes expired audio files beyond the retention policy.
func (h *SpeechHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.audio.Cleanup()
	if err != nil {
		slog.Error("Audio cleanup failed", "error", err)
		Fail(w, http.StatusInternalServerError, "Cleanup failed", err.Error())
		return
	}
	OK(w, map[string]int{"removed": removed}, "")
}

// DeleteAudio removes a single generated audio file.
func (h *SpeechHandler) DeleteAudio(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := h.audio.Delete(filename); err != nil {
		if errors.Is(err, tts.ErrNotManaged) || errors.Is(err, fs.ErrNotExist) {
			Fail(w, http.StatusNotFound, "Audio file not found", "NOT_FOUND")
			return
		}
		slog.Error("Failed to delete audio file", "file", filename, "error", err)
		Fail(w, http.StatusInternalServerError, "Failed to delete audio file", err.Error())
		return
	}
	OK(w, nil, "Audio file deleted")
}
