// Package app is the composition root shared by the server and the CLI.
// It wires concrete adapters (SQL, Redis, OSRM, Kafka, msgpack files) behind ports.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"waste-collection-service/internal/adapters/cache"
	"waste-collection-service/internal/adapters/events"
	"waste-collection-service/internal/adapters/modelstore"
	"waste-collection-service/internal/adapters/repositories"
	"waste-collection-service/internal/adapters/routing"
	"waste-collection-service/internal/api"
	"waste-collection-service/internal/config"
	"waste-collection-service/internal/platform/db"
	"waste-collection-service/internal/ports"
	"waste-collection-service/internal/services"

	"go.uber.org/zap"
)

type App struct {
	Config    config.Config
	Logger    *zap.Logger
	DB        *sql.DB
	Dialect   db.Dialect
	Store     *repositories.SQLStore
	Retrainer *services.Retrainer
	Reports   *services.ReportService
	Predictor *services.Predictor
	Planner   *services.FleetPlanner
	Dashboard *services.Dashboard

	closers []io.Closer
}

// Open connects the database, applies the schema and optional seed, and
// builds every service. The caller must Close the returned App.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      conn,
		Dialect: db.Dialect(cfg.DBDriver),
		closers: []io.Closer{conn},
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := repositories.InitSchema(ctx, conn, a.Dialect); err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	if cfg.SeedPath != "" {
		if err := repositories.SeedFromJSON(ctx, conn, a.Dialect, cfg.SeedPath); err != nil {
			return nil, fmt.Errorf("open app: %w", err)
		}
		logger.Info("seed applied", zap.String("path", cfg.SeedPath))
	}

	a.Store = repositories.NewSQLStore(conn, a.Dialect)

	routeCache, err := a.routeCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	osrm, err := routing.NewOSRMRouteProvider(cfg.OSRMBaseURL, cfg.OSRMTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	provider := routing.NewCachedRouteProvider(osrm, routeCache, logger)

	publisher, err := a.publisher()
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}

	retrainCfg := services.DefaultRetrainerConfig()
	retrainCfg.Threshold = cfg.RetrainThreshold
	a.Retrainer = services.NewRetrainer(a.Store, modelstore.NewFileModelStore(cfg.ModelPath), publisher, retrainCfg, logger)
	if err := a.Retrainer.LoadActive(ctx); err != nil {
		// Serve without a model until the next retrain.
		logger.Warn("model snapshot not loaded", zap.String("path", cfg.ModelPath), zap.Error(err))
	}

	a.Reports = services.NewReportService(a.Store, a.Retrainer, publisher, logger)
	a.Predictor = services.NewPredictor(a.Store, a.Retrainer, logger)
	a.Planner = services.NewFleetPlanner(a.Store, a.Store, provider, services.FleetPlannerConfig{
		RouteTimeout: cfg.OSRMTimeout,
		Concurrency:  cfg.RoutingConcurrency,
	}, logger)
	a.Dashboard = services.NewDashboard(a.Store, a.Store, logger)

	return a, nil
}

// Router builds the HTTP handler over the App's services.
func (a *App) Router() http.Handler {
	return api.NewRouter(api.Deps{
		Reports:     a.Reports,
		Predictor:   a.Predictor,
		Models:      a.Retrainer,
		Planner:     a.Planner,
		Dashboard:   a.Dashboard,
		Containers:  a.Store,
		Collections: a.Store,
		Users:       a.Store,
		Vehicles:    a.Store,
	}, a.Logger)
}

// Close releases adapters in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Redis is preferred when configured; otherwise legs are cached in the database.
func (a *App) routeCache(ctx context.Context) (ports.RouteCache, error) {
	if a.Config.RedisURL == "" {
		return cache.NewSQLRouteCache(a.DB, a.Dialect, a.Config.RouteCacheTTL), nil
	}
	rc, err := cache.NewRedisRouteCache(ctx, a.Config.RedisURL, a.Config.RouteCacheTTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rc)
	return rc, nil
}

func (a *App) publisher() (ports.EventPublisher, error) {
	if len(a.Config.KafkaBrokers) == 0 {
		return events.NewLogPublisher(a.Logger), nil
	}
	kp, err := events.NewKafkaPublisher(a.Config.KafkaBrokers, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, kp)
	a.Logger.Info("publishing events to kafka", zap.Strings("brokers", a.Config.KafkaBrokers))
	return kp, nil
}
