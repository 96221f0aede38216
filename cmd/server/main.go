package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/generation"
	"github.com/p-n-ai/pai-study/internal/platform/cache"
	"github.com/p-n-ai/pai-study/internal/platform/config"
	"github.com/p-n-ai/pai-study/internal/platform/database"
	"github.com/p-n-ai/pai-study/internal/platform/logging"
	"github.com/p-n-ai/pai-study/internal/quiz"
	"github.com/p-n-ai/pai-study/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	router, err := ai.NewRouterFromConfig(cfg.AI)
	if err != nil {
		return err
	}

	checks := map[string]web.Checker{}

	var events generation.EventLogger = generation.NopEventLogger{}
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		events = generation.NewPostgresEventLogger(db.Pool)
		checks["database"] = db
		slog.Info("generation events persisted to postgres")
	}

	var kv *cache.Cache
	if cfg.Cache.URL != "" {
		kv, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return err
		}
		defer kv.Close()
		checks["cache"] = kv
	}

	svc := generation.NewService(generation.ServiceConfig{
		LLM:              router,
		Budget:           newBudget(cfg.Generation.TokenBudget, kv),
		Events:           events,
		Model:            cfg.AI.Model,
		MaxTokens:        cfg.Generation.MaxTokens,
		Timeout:          cfg.Generation.Timeout,
		DefaultQuestions: cfg.Generation.DefaultQuestions,
		MaxQuestions:     cfg.Generation.MaxQuestions,
	})

	srv := newHTTPServer(cfg, web.NewServer(web.Config{
		Catalog:   cat,
		Generator: svc,
		Quizzes:   quiz.NewRegistry(cfg.Quiz.SessionTTL),
		Checks:    checks,
	}))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// newBudget picks the token budget store. A zero limit disables budgeting.
func newBudget(limit int64, kv *cache.Cache) ai.BudgetChecker {
	switch {
	case limit <= 0:
		return ai.UnlimitedBudget{}
	case kv != nil:
		return ai.NewRedisBudget(kv.Client, limit)
	default:
		return ai.NewInMemoryBudget(limit)
	}
}

// newHTTPServer sizes the write timeout to outlast a slow generation.
func newHTTPServer(cfg *config.Config, s *web.Server) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Generation.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
