package handlers

import (
	"context"
	"net/http"
	"waste-collection-service/internal/api/dto"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

type FleetPlanner interface {
	Plan(ctx context.Context) (*domain.FleetPlan, error)
}

type FleetHandler struct {
	base
	Planner  FleetPlanner
	Vehicles ports.VehicleRepository
}

func NewFleetHandler(planner FleetPlanner, vehicles ports.VehicleRepository, logger *zap.Logger) *FleetHandler {
	return &FleetHandler{base: base{Logger: logger}, Planner: planner, Vehicles: vehicles}
}

// Routes assigns eligible containers to the active fleet and returns one
// route per loaded vehicle.
func (h *FleetHandler) Routes(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Planner.Plan(r.Context())
	if err != nil {
		h.fail(w, r, "plan fleet", err)
		return
	}

	s := plan.Summary
	res := dto.FleetPlanResponse{
		Success:     true,
		GeneratedAt: plan.GeneratedAt,
		Summary: dto.FleetSummaryResponse{
			TotalVehicles:           s.ActiveVehicles,
			VehiclesUsed:            s.VehiclesUsed,
			TotalContainers:         s.EligibleContainers,
			AssignedContainers:      s.AssignedContainers,
			TotalDistanceKm:         dto.Round(s.TotalDistanceKm, 2),
			TotalTimeHours:          dto.Round(s.TotalTimeHours, 2),
			AvgContainersPerVehicle: dto.Round(s.AvgContainersPerVehicle, 1),
			RoutedCount:             s.RoutedCount,
			EstimatedCount:          s.EstimatedCount,
		},
		Routes: make([]dto.VehicleRouteResponse, 0, len(plan.Routes)),
	}
	for _, route := range plan.Routes {
		res.Routes = append(res.Routes, vehicleRouteResponse(route))
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

// Composition counts active vehicles by type.
func (h *FleetHandler) Composition(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Vehicles.ListActiveVehicles(r.Context())
	if err != nil {
		h.fail(w, r, "fleet composition", err)
		return
	}

	var res dto.FleetCompositionResponse
	for _, v := range vehicles {
		switch v.Type {
		case domain.VehicleSmall:
			res.SmallTrucks++
		case domain.VehicleLarge:
			res.LargeTrucks++
		case domain.VehicleCrane:
			res.CraneVehicles++
		}
		res.TotalVehicles++
		res.TotalCapacityTons += v.CapacityTons()
		res.HourlyCost += v.HourlyCost()
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

func vehicleRouteResponse(route *domain.VehicleRoute) dto.VehicleRouteResponse {
	v := route.Vehicle
	res := dto.VehicleRouteResponse{
		VehicleID:        v.VehicleID,
		PlateNumber:      v.Plate,
		VehicleType:      v.Type.String(),
		CapacityTons:     v.CapacityTons(),
		TotalContainers:  len(route.Stops),
		TotalDistanceKm:  dto.Round(route.Result.DistanceKm, 2),
		EstimatedTimeMin: dto.Round(route.Result.DurationMin, 0),
		TotalWeightTons:  dto.Round(route.LoadTons, 2),
		CapacityUsage:    dto.Round(route.CapacityUsage, 1),
		RouteSource:      string(route.Result.Source),
		RoutePoints:      make([][2]float64, 0, len(route.Stops)),
		RouteGeometry:    make([][2]float64, 0, len(route.Result.Geometry)),
		Containers:       make([]dto.RouteStopResponse, 0, len(route.Stops)),
	}

	for _, c := range route.Stops {
		stop := dto.RouteStopResponse{
			ContainerID:    c.ContainerID,
			Type:           c.Type.String(),
			NeighborhoodID: c.NeighborhoodID,
			FillLevel:      c.FillLevel,
			CapacityLiters: c.CapacityLiters,
		}
		if c.Location != nil {
			stop.Latitude, stop.Longitude = c.Location.Lat, c.Location.Lon
			res.RoutePoints = append(res.RoutePoints, dto.LatLon(c.Location.Lon, c.Location.Lat))
		}
		res.Containers = append(res.Containers, stop)
	}
	for _, p := range route.Result.Geometry {
		res.RouteGeometry = append(res.RouteGeometry, dto.LatLon(p.Lon, p.Lat))
	}

	return res
}
