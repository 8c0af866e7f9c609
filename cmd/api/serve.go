package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hireny/job-board/internal/handlers"
	"hireny/job-board/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the evaluation worker",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "port to listen on (default from PORT or 3001)")
	if err := v.BindPFlag("port", serveCmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
}

func serve() error {
	ctx := context.Background()

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	cfg := d.cfg
	log := d.log

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		return err
	}

	evaluator, err := d.evaluator(ctx)
	if err != nil {
		return err
	}

	queue := d.queue(evaluator)
	queue.Start(ctx)
	if cfg.Server.EvaluateInline {
		log.Info("evaluations run inline with the triggering request")
	}

	queueHandler := handlers.NewQueueHandler(queue, cfg.Server.EvaluateInline, log)
	routes := handlers.Routes{
		System:       handlers.NewSystemHandler(evaluator, log),
		Queue:        queueHandler,
		Jobs:         handlers.NewJobHandler(d.jobs),
		Applications: handlers.NewApplicationHandler(d.apps, d.jobs, storageService, queueHandler, cfg.Storage.MaxFileSize, log),
		HR:           handlers.NewHRHandler(d.apps, log),
		HRAPIKey:     cfg.Auth.HRAPIKey,
	}
	if cfg.Auth.HRAPIKey == "" {
		log.Warn("HR_API_KEY is not set, HR routes are locked")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Job Board API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		// Room for the multipart envelope around a maximum-size résumé.
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	handlers.RegisterRoutes(app, routes)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		queue.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// corsConfig splits configured origins into exact matches and "*.domain"
// suffix patterns, which fiber's exact list cannot express.
func corsConfig(origins []string) cors.Config {
	var exact, suffixes []string
	for _, origin := range origins {
		if strings.HasPrefix(origin, "*.") {
			suffixes = append(suffixes, origin[1:])
			continue
		}
		exact = append(exact, origin)
	}

	return cors.Config{
		AllowOrigins:     strings.Join(exact, ","),
		AllowOriginsFunc: originMatcher(suffixes),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}
}

func originMatcher(suffixes []string) func(string) bool {
	return func(origin string) bool {
		if !strings.HasPrefix(origin, "https://") {
			return false
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(origin, suffix) {
				return true
			}
		}
		return false
	}
}
