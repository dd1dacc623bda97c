package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cube-solver/api/internal/config"
	"cube-solver/api/internal/handle"
	"cube-solver/api/internal/httpserver"
	"cube-solver/api/internal/llm"
	"cube-solver/api/internal/llm/gemini"
	"cube-solver/api/internal/logger"
	"cube-solver/api/internal/solver"
	"cube-solver/api/internal/store"
	"cube-solver/api/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("cube-solver stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	engine := gemini.New(cfg.GeminiAPIKey, cfg.VisionModel, cfg.TextModel)
	client := llm.NewClient(engine, llm.Options{
		Timeout:    cfg.UpstreamTimeout,
		MaxRetries: cfg.UpstreamMaxRetries,
		RPS:        cfg.UpstreamRPS,
		Burst:      cfg.UpstreamBurst,
	})

	planner, err := solver.NewPlanner(client)
	if err != nil {
		return fmt.Errorf("planner: %w", err)
	}

	// --- Postgres (необязательно) ---
	var rec handle.Recorder
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)

		repo := store.NewAnalysisRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		rec = repo
		lg.Info("audit store enabled", zap.String("db", safeDSNSummary(cfg.DatabaseURL)))
	}

	h := handle.New(vision.NewExtractor(client), planner, rec, lg, handle.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxImagePixels: cfg.MaxImagePixels,
		Engine:         client.Name(),
		VisionModel:    cfg.VisionModel,
		TextModel:      cfg.TextModel,
	})

	mux := httpserver.NewMux(httpserver.Routes{Analyze: h.AnalyzeCube}, lg)
	lg.Info("cube-solver starting",
		zap.String("addr", cfg.Addr()),
		zap.String("vision_model", cfg.VisionModel),
		zap.String("text_model", cfg.TextModel),
		zap.Duration("upstream_timeout", cfg.UpstreamTimeout))
	return httpserver.New(cfg.Addr(), mux, lg).Run(ctx, 30*time.Second)
}

// safeDSNSummary — хост и база без пароля, для логов.
func safeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "custom DSN"
	}
	return fmt.Sprintf("%s%s", u.Host, u.Path)
}
