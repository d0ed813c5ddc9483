package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/bymediadev/SoapBoxx/pkg/validator"

	"github.com/bymediadev/SoapBoxx/internal/adapter/handler"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/audio"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/transcribe"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/watch"
	"github.com/bymediadev/SoapBoxx/internal/usecase/feedback"
	"github.com/bymediadev/SoapBoxx/internal/usecase/transcription"
	pkgai "github.com/bymediadev/SoapBoxx/pkg/ai"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

func main() {
	// Load configuration; scoring weight violations are fatal here so
	// they can never reach the scoring path at runtime.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())

	log.Println("🔧 Initializing dependencies...")

	// Audio subsystem
	log.Println("🎙️  Initializing audio subsystem...")
	devices := audio.NewDeviceManager(logger)
	defer devices.Terminate()

	// Transcription backend
	log.Printf("📝 Initializing %s transcription backend...", cfg.Transcription.Backend)
	backend, err := transcribe.New(&cfg.Transcription, logger)
	if err != nil {
		log.Fatalf("Failed to initialize transcription backend: %v", err)
	}
	if loader, ok := transcribe.AsModelLoader(backend); ok {
		if err := loader.LoadModel(cfg.Transcription.WhisperModel); err != nil {
			log.Fatalf("Failed to load local whisper model: %v", err)
		}
	}
	if backend.RequiresNetwork() {
		backend = transcribe.WithRetry(backend, uint64(cfg.Transcription.MaxRetries), logger)
	}

	// Feedback engine
	log.Println("🤖 Initializing feedback engine...")
	completer := pkgai.NewClient(&cfg.Feedback)
	if !completer.Configured() {
		log.Println("⚠️  No OpenAI API key configured; feedback runs on local heuristics only")
	}
	engine, err := feedback.NewEngine(completer, &cfg.Feedback, cfg.ScoringWeights(), logger)
	if err != nil {
		log.Fatalf("Failed to initialize feedback engine: %v", err)
	}
	defer engine.Close()

	// Session manager
	log.Println("🎛️  Initializing session manager...")
	manager := transcription.NewManager(devices, backend, cfg, logger)

	// Recordings folder watcher
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.Watcher.Enabled {
		log.Printf("📂 Watching recordings folder: %s", cfg.Watcher.Dir)
		watcher, err := watch.New(&cfg.Watcher, backend, func(path, text string) {
			logger.Info("Offline recording transcribed",
				zap.String("path", path),
				zap.Int("chars", len(text)),
			)
		}, logger)
		if err != nil {
			log.Fatalf("Failed to initialize recordings watcher: %v", err)
		}
		go func() {
			if err := watcher.Run(watchCtx); err != nil {
				logger.Error("Recordings watcher stopped", zap.Error(err))
			}
		}()
	}

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg,
		handler.NewFeedback(engine, logger),
		handler.NewSessions(manager, logger),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.ListenAddr()
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	cancelWatch()
	manager.StopAll(ctx)

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
