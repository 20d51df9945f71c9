// Ava - Voice Assistant Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/avavoice/ava-server/internal/api"
	"github.com/avavoice/ava-server/internal/assistant"
	"github.com/avavoice/ava-server/internal/chat"
	"github.com/avavoice/ava-server/internal/config"
	"github.com/avavoice/ava-server/internal/conversation"
	"github.com/avavoice/ava-server/internal/domain"
	"github.com/avavoice/ava-server/internal/llm"
	"github.com/avavoice/ava-server/internal/middleware"
	"github.com/avavoice/ava-server/internal/store"
	"github.com/avavoice/ava-server/internal/stt"
	"github.com/avavoice/ava-server/internal/tts"
	"github.com/avavoice/ava-server/web"
)

// maintenanceInterval paces the background reaper: idle conversation
// sessions, stale audio files and ended chat sessions.
const maintenanceInterval = 10 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	var repo store.Repository
	if cfg.PersistenceEnabled() {
		repo, err = store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				slog.Error("Failed to close repository", "error", closeErr)
			}
		}()
		if err := repo.Ping(context.Background()); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database connected", "path", cfg.DBPath)

		// Chat messages, medications and reminders all hang off the
		// default user; make sure its row exists before traffic arrives.
		if err := ensureDefaultUser(context.Background(), repo, cfg.DefaultUserID); err != nil {
			slog.Error("Failed to ensure default user", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("Persistence disabled (DB_PATH empty)")
	}

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	gemini := llm.NewGemini(genaiClient, cfg.Gemini.Model)
	recognizer := stt.NewGemini(genaiClient, cfg.Gemini.Model)
	slog.Info("Gemini client initialized", "model", cfg.Gemini.Model)

	// Speech synthesis: Murf cloud engine first, local engine as fallback.
	var synths []tts.Synthesizer
	if cfg.TTS.MurfAPIKey != "" {
		synths = append(synths, tts.NewMurf(cfg.TTS.MurfAPIKey, cfg.TTS.MurfVoiceID))
		slog.Info("Murf TTS enabled", "voice", cfg.TTS.MurfVoiceID)
	}
	if local, err := tts.NewLocal(); err != nil {
		slog.Info("Local TTS unavailable", "error", err)
	} else {
		synths = append(synths, local)
		slog.Info("Local TTS enabled", "engine", local.Name())
	}
	synth := tts.NewChain(synths...)

	audio, err := tts.NewStore(cfg.TTS.AudioDir, cfg.TTS.MaxAudioFiles, cfg.TTS.AudioRetention)
	if err != nil {
		slog.Error("Failed to initialize audio store", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	sessions := conversation.NewSessionManager(func() *conversation.Manager {
		return conversation.New(gemini, cfg.SystemPrompt,
			conversation.WithMaxTurns(cfg.MaxTurns))
	})
	svc := assistant.New(sessions, synth, audio, repo)

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, cfg.DefaultUserID)
	assistantHandler := api.NewAssistantHandler(baseHandler, svc)
	speechHandler := api.NewSpeechHandler(baseHandler, svc, recognizer, synth, audio)
	medicationHandler := api.NewMedicationHandler(baseHandler)
	reminderHandler := api.NewReminderHandler(baseHandler)
	historyHandler := api.NewHistoryHandler(baseHandler)
	healthHandler := api.NewHealthHandler(baseHandler, gemini, synth)
	wsHandler := chat.NewWebSocketHandler(svc, cfg.DefaultUserID, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterRoutes(r)
	assistantHandler.RegisterRoutes(r)
	speechHandler.RegisterRoutes(r)
	medicationHandler.RegisterRoutes(r)
	reminderHandler.RegisterRoutes(r)
	historyHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Generated speech files.
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(audio.Dir()))))

	// Embedded chat page (catch-all).
	r.Handle("/*", web.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming replies over the websocket
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMaintenance(ctx, cfg, sessions, audio, repo)
	slog.Info("Maintenance worker started", "session_ttl", cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// ensureDefaultUser inserts the configured default user on first boot.
// An existing row is left untouched so edited profile fields survive
// restarts.
func ensureDefaultUser(ctx context.Context, repo store.Repository, userID string) error {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}
	return repo.UpsertUser(ctx, &domain.User{
		ID:       userID,
		Email:    "user@ava.local",
		Timezone: "UTC",
		IsActive: true,
	})
}

// startMaintenance reaps idle conversation sessions, expired audio files
// and ended chat sessions on a fixed interval until ctx is cancelled.
func startMaintenance(ctx context.Context, cfg *config.Config, sessions *conversation.SessionManager, audio *tts.Store, repo store.Repository) {
	go func() {
		ticker := time.NewTicker(maintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.ReapIdle(cfg.SessionTTL); n > 0 {
					slog.Info("Reaped idle conversation sessions", "count", n)
				}
				if n, err := audio.Cleanup(); err != nil {
					slog.Warn("Audio cleanup failed", "error", err)
				} else if n > 0 {
					slog.Info("Removed stale audio files", "count", n)
				}
				if repo != nil {
					if n, err := repo.CleanupEndedSessions(ctx, cfg.SessionTTL); err != nil {
						slog.Warn("Chat session cleanup failed", "error", err)
					} else if n > 0 {
						slog.Info("Removed ended chat sessions", "count", n)
					}
				}
			}
		}
	}()
}
