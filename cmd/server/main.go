package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"video_digest/internal/cache"
	"video_digest/internal/config"
	"video_digest/internal/llm"
	"video_digest/internal/publisher"
	"video_digest/internal/retry"
	"video_digest/internal/server"
	"video_digest/internal/service"
	"video_digest/internal/source/metadata"
	"video_digest/internal/source/transcript"
	"video_digest/internal/storage/postgres"
	"video_digest/internal/summarize"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	channelStore := postgres.NewChannelStore(db)
	contentStore := postgres.NewContentStore(db)
	summaryStore := postgres.NewSummaryStore(db)
	tagStore := postgres.NewTagStore(db)
	historyStore := postgres.NewHistoryStore(db)
	txManager := postgres.NewTransactionManager(db)

	transcriptSource := transcript.New(transcript.Config{
		BaseURL: cfg.Transcript.BaseURL,
		APIKey:  cfg.Transcript.APIKey,
		Timeout: cfg.Transcript.Timeout,
	}, logger)

	metadataSource := metadata.New(metadata.Config{
		BaseURL: cfg.Metadata.BaseURL,
		APIKey:  cfg.Metadata.APIKey,
		Timeout: cfg.Metadata.Timeout,
	}, logger)

	llmClient := llm.NewOpenAI(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	})

	summarizer := summarize.New(llmClient, summarize.Config{
		Model:          cfg.Processing.Model,
		ChunkSize:      cfg.Processing.ChunkSize,
		TagCountTarget: cfg.Processing.TagCountTarget,
		Temperature:    cfg.Processing.Temperature,
		MaxTokens:      cfg.Processing.MaxTokens,
		Retry: retry.Options{
			MaxAttempts:  cfg.Processing.Retry.MaxAttempts,
			InitialDelay: cfg.Processing.Retry.InitialBackoff,
			MaxDelay:     cfg.Processing.Retry.MaxBackoff,
		},
	}, logger)

	transcriptCache := cache.NewMemory(cfg.Cache.TTL, logger)

	videoService := service.NewVideoService(
		channelStore,
		contentStore,
		summaryStore,
		tagStore,
		historyStore,
		txManager,
		transcriptSource,
		metadataSource,
		summarizer,
		transcriptCache,
		rabbitMQ,
		logger,
		cfg.Processing,
	)

	srv := server.New(videoService, cfg.Server.APIKey, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go transcriptCache.StartJanitor(ctx, cfg.Cache.SweepInterval)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		cancel()
	}()

	logger.Info("starting server", "addr", cfg.Server.Addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
