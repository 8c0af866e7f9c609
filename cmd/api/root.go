package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hireny/job-board/internal/config"
	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/repositories"
	"hireny/job-board/internal/services"
)

const app = "jobboard"

var (
	v = viper.New()

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "jobboard serves the job board API and scores applications with an AI model",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	if err := v.BindPFlag("log_debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		log.Fatalf("binding debug flag: %v", err)
	}
	if err := v.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("json")); err != nil {
		log.Fatalf("binding json flag: %v", err)
	}
}

// deps holds what every command needs: configuration, a logger and the
// repositories on top of an open database.
type deps struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *gorm.DB
	jobs repositories.JobRepository
	apps repositories.ApplicationRepository
}

func bootstrap() (*deps, error) {
	cfg := config.Load(v)

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	db, err := config.InitDatabase(cfg, l)
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:  cfg,
		log:  l,
		db:   db,
		jobs: repositories.NewJobRepository(db),
		apps: repositories.NewApplicationRepository(db),
	}, nil
}

func (r *deps) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = r.log.Sync()
}

// evaluator builds the AI client for the configured provider. A missing
// credential is logged and leaves the client unconfigured so the server can
// still start; evaluations then fail with a recorded error.
func (r *deps) evaluator(ctx context.Context) (services.Evaluator, error) {
	ai := r.cfg.AI
	key := r.cfg.ActiveAPIKey()

	var (
		generator services.TextGenerator
		err       error
	)
	switch ai.Provider {
	case config.ProviderOpenRouter:
		generator, err = services.NewOpenRouterGenerator(key, ai.OpenRouterModel, ai.OpenRouterURL)
	case config.ProviderGemini:
		generator, err = services.NewGeminiGenerator(ctx, key, ai.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", ai.Provider)
	}
	if err != nil {
		r.log.Error("AI client is not configured",
			zap.String(logger.FieldProvider, ai.Provider),
			zap.Bool("key_set", key != ""),
			zap.Error(err))
		generator = nil
	}

	extractor := services.NewExtractor(r.cfg.Storage.DownloadTimeout, r.log)

	return services.NewEvaluator(generator, extractor, services.EvaluatorConfig{
		Provider:    ai.Provider,
		Temperature: float32(ai.Temperature),
		MaxAttempts: r.cfg.Worker.RetryMaxAttempts,
	}, r.log), nil
}

func (r *deps) queue(evaluator services.Evaluator) services.EvaluationQueue {
	return services.NewEvaluationQueue(r.apps, r.jobs, evaluator, services.QueueConfig{
		ScoreThreshold: r.cfg.AI.ScoreThreshold,
		PollInterval:   r.cfg.Worker.PollInterval,
	}, r.log)
}
