package dto

import "time"

type RouteStopResponse struct {
	ContainerID    int64   `json:"container_id"`
	Type           string  `json:"type"`
	NeighborhoodID int64   `json:"neighborhood_id"`
	FillLevel      float64 `json:"fill_level"`
	CapacityLiters int     `json:"capacity_liters"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

type VehicleRouteResponse struct {
	VehicleID        int64               `json:"vehicle_id"`
	PlateNumber      string              `json:"plate_number"`
	VehicleType      string              `json:"vehicle_type"`
	CapacityTons     float64             `json:"capacity_tons"`
	TotalContainers  int                 `json:"total_containers"`
	TotalDistanceKm  float64             `json:"total_distance_km"`
	EstimatedTimeMin float64             `json:"estimated_time_min"`
	TotalWeightTons  float64             `json:"total_weight_tons"`
	CapacityUsage    float64             `json:"capacity_usage"`
	RouteSource      string              `json:"route_source"`
	RoutePoints      [][2]float64        `json:"route_points"`
	RouteGeometry    [][2]float64        `json:"route_geometry"`
	Containers       []RouteStopResponse `json:"container_details"`
}

type FleetSummaryResponse struct {
	TotalVehicles           int     `json:"total_vehicles"`
	VehiclesUsed            int     `json:"vehicles_used"`
	TotalContainers         int     `json:"total_containers"`
	AssignedContainers      int     `json:"assigned_containers"`
	TotalDistanceKm         float64 `json:"total_distance_km"`
	TotalTimeHours          float64 `json:"total_time_hours"`
	AvgContainersPerVehicle float64 `json:"avg_containers_per_vehicle"`
	RoutedCount             int     `json:"routed_count"`
	EstimatedCount          int     `json:"estimated_count"`
}

type FleetPlanResponse struct {
	Success     bool                   `json:"success"`
	GeneratedAt time.Time              `json:"generated_at"`
	Summary     FleetSummaryResponse   `json:"summary"`
	Routes      []VehicleRouteResponse `json:"routes"`
}

type FleetCompositionResponse struct {
	SmallTrucks       int     `json:"small_trucks"`
	LargeTrucks       int     `json:"large_trucks"`
	CraneVehicles     int     `json:"crane_vehicles"`
	TotalVehicles     int     `json:"total_vehicles"`
	TotalCapacityTons float64 `json:"total_capacity_tons"`
	HourlyCost        float64 `json:"hourly_cost"`
}
