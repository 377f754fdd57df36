package api

import (
	"net/http"
	"waste-collection-service/internal/api/handlers"
	"waste-collection-service/internal/ports"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the services and repositories the HTTP layer depends on.
type Deps struct {
	Reports     handlers.ReportSubmitter
	Predictor   handlers.Predictor
	Models      handlers.ModelManager
	Planner     handlers.FleetPlanner
	Dashboard   handlers.DashboardService
	Containers  ports.ContainerRepository
	Collections ports.CollectionStore
	Users       ports.UserRepository
	Vehicles    ports.VehicleRepository
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	health := handlers.NewHealthHandler(func() bool { return d.Models.Active() != nil }, logger)
	reports := handlers.NewReportHandler(d.Reports, logger)
	users := handlers.NewUserHandler(d.Users, logger)
	containers := handlers.NewContainerHandler(d.Containers, d.Collections, logger)
	model := handlers.NewModelHandler(d.Predictor, d.Models, logger)
	fleet := handlers.NewFleetHandler(d.Planner, d.Vehicles, logger)
	dashboard := handlers.NewDashboardHandler(d.Dashboard, logger)

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", reports.Submit).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}/stats", users.Stats).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", users.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/stats", dashboard.Stats).Methods(http.MethodGet)
	api.HandleFunc("/containers/full", containers.Full).Methods(http.MethodGet)
	api.HandleFunc("/containers/all", containers.All).Methods(http.MethodGet)
	api.HandleFunc("/containers/map", containers.Map).Methods(http.MethodGet)
	api.HandleFunc("/containers/{id:[0-9]+}/collections", containers.Collect).Methods(http.MethodPost)
	api.HandleFunc("/predict/{id:[0-9]+}", model.Predict).Methods(http.MethodGet)
	api.HandleFunc("/model", model.Get).Methods(http.MethodGet)
	api.HandleFunc("/model/retrain", model.Retrain).Methods(http.MethodPost)
	api.HandleFunc("/fleet/routes", fleet.Routes).Methods(http.MethodGet)
	api.HandleFunc("/fleet/composition", fleet.Composition).Methods(http.MethodGet)
	api.HandleFunc("/simulate", dashboard.Simulate).Methods(http.MethodPost)
	api.HandleFunc("/tonnage/monthly", dashboard.Tonnage).Methods(http.MethodGet)

	r.Use(requestIDMiddleware, metricsMiddleware)

	return loggingMiddleware(logger)(r)
}
