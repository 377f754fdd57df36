package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"waste-collection-service/internal/app"
	"waste-collection-service/internal/config"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/services"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 15 * time.Second
	retrainTimeout  = 10 * time.Minute
)

// main is the application composition root.
// It loads config, builds the App and serves HTTP until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var schedule *services.RetrainSchedule
	if cfg.RetrainSchedule != "" {
		schedule, err = services.NewRetrainSchedule(cfg.RetrainSchedule, a.Retrainer, retrainTimeout, logger)
		if err != nil {
			return err
		}
		schedule.Start()
		logger.Info("retrain schedule started", zap.String("cron", cfg.RetrainSchedule))
	}

	// WriteTimeout covers fleet planning with cold route caches.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("db_driver", cfg.DBDriver),
			zap.Bool("model_loaded", a.Retrainer.Active() != nil),
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if schedule != nil {
		schedule.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
