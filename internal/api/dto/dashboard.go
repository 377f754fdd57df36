package dto

type DashboardStatsResponse struct {
	TotalContainers  int     `json:"total_containers"`
	FullContainers   int     `json:"full_containers"`
	FillRate         float64 `json:"fill_rate"`
	TotalVehicles    int     `json:"total_vehicles"`
	Neighborhoods    int     `json:"neighborhoods"`
	TodayReports     int     `json:"today_reports"`
	TodayCollections int     `json:"today_collections"`
	MonthTonnage     float64 `json:"month_tonnage"`
	TotalReports     int     `json:"total_reports"`
	VerifiedReports  int     `json:"verified_reports"`
	VerificationRate float64 `json:"verification_rate"`
}

type MonthlyTonnageResponse struct {
	Month              string  `json:"month"`
	SurfaceTonnage     float64 `json:"surface_tonnage"`
	UndergroundTonnage float64 `json:"underground_tonnage"`
	TotalTonnage       float64 `json:"total_tonnage"`
}

type TonnageResponse struct {
	MonthlyData     []MonthlyTonnageResponse `json:"monthly_data"`
	AvgDailyTonnage float64                  `json:"avg_daily_tonnage"`
	AvgDailyKm      float64                  `json:"avg_daily_km"`
}

type SimulationResults struct {
	TotalVehicles       int     `json:"total_vehicles"`
	SmallTrucks         int     `json:"small_trucks"`
	LargeTrucks         int     `json:"large_trucks"`
	CraneVehicles       int     `json:"crane_vehicles"`
	EstimatedHours      float64 `json:"estimated_hours"`
	EstimatedCost       float64 `json:"estimated_cost"`
	ContainersToCollect int     `json:"containers_to_collect"`
	Efficiency          float64 `json:"efficiency"`
}

type SimulationResponse struct {
	Success bool              `json:"success"`
	Results SimulationResults `json:"results"`
}
