package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"khmerspeech/internal/ai"
	"khmerspeech/internal/api"
	"khmerspeech/internal/config"
	"khmerspeech/internal/firestore"
	"khmerspeech/internal/gcp"
	"khmerspeech/internal/gcs"
	"khmerspeech/internal/speech"
	"khmerspeech/internal/track"
	"khmerspeech/internal/transcribe"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.Env)

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gcpClient, err := gcp.NewClient(ctx, cfg.GoogleKeyFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build Google credentials")
	}

	speechClient := speech.NewClient(gcpClient, logger)
	blobStore := gcs.NewClient(gcpClient, cfg.Bucket, logger)
	docStore := firestore.NewClient(gcpClient, cfg.ProjectID, logger)

	var cleaner transcribe.Cleaner
	if cfg.OpenAIKey != "" {
		cleaner = ai.NewCleaner(cfg.OpenAIKey, logger)
		logger.Info().Msg("transcript cleanup enabled")
	} else {
		logger.Info().Msg("OPENAI_API_KEY not set, storing raw transcripts only")
	}

	registry := track.NewRegistry()
	persister := transcribe.NewPersister(docStore, blobStore, cleaner, logger)
	orchestrator := transcribe.NewOrchestrator(
		transcribe.NewSpeechRecognizer(speechClient),
		persister,
		registry,
		cfg.Bucket,
		cfg.MaxAttempts,
		logger,
	)

	r := gin.Default()
	r.Use(corsMiddleware())

	handler := api.NewHandler(ctx, orchestrator, registry, logger)
	handler.RegisterRoutes(r)

	logger.Info().Str("port", cfg.Port).Str("bucket", cfg.Bucket).Msg("khmerspeech backend running")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

// newLogger constructs a zerolog.Logger with sane defaults for the service.
func newLogger(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()

	if env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

// corsMiddleware adds CORS headers for the web client
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
