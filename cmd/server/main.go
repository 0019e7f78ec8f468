package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	minervaroot "github.com/maricastroc/minerva-ai"
	"github.com/maricastroc/minerva-ai/internal/backend"
	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
	"github.com/maricastroc/minerva-ai/internal/handler"
	"github.com/maricastroc/minerva-ai/internal/middleware"
	"github.com/maricastroc/minerva-ai/internal/repository"
	"github.com/maricastroc/minerva-ai/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(minervaroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Generation backends in priority order
	client, err := backend.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	models := cfg.Models
	if len(models) == 0 {
		models = config.PriorityModels
	}
	backends := make([]domain.Generator, 0, len(models))
	for _, model := range models {
		backends = append(backends, backend.NewGemini(client, model))
	}

	// Initialize stores and services
	conversations := repository.NewConversationRepo(pool)
	messages := repository.NewMessageRepo(pool)

	cache := service.NewResponseCache()
	cache.Start(ctx)

	dispatcher := service.NewDispatcher(backends)
	fallback := service.NewFallbackResponder()
	titles := service.NewTitleSynthesizer(backend.NewTitleGemini(client, cfg.TitleModel))

	exchange := service.NewExchangeService(conversations, messages, dispatcher, fallback, titles, cache)
	regenerate := service.NewRegenerateService(conversations, messages, dispatcher, fallback)

	// Initialize handler and router
	h := handler.New(handler.Deps{
		Exchange:      exchange,
		Regenerate:    regenerate,
		Conversations: conversations,
		Messages:      messages,
		Verifier:      middleware.StaticVerifier(cfg.TokenMap()),
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recover(), middleware.Logging())
	h.Register(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped gracefully")
}
