package handlers

import (
	"context"
	"net/http"
	"waste-collection-service/internal/api/dto"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/services"

	"go.uber.org/zap"
)

type DashboardService interface {
	Stats(ctx context.Context) (domain.DashboardStats, error)
	Tonnage(ctx context.Context) (*services.TonnageReport, error)
	Simulate(ctx context.Context) (domain.CollectionEstimate, error)
}

type DashboardHandler struct {
	base
	Dashboard DashboardService
}

func NewDashboardHandler(dashboard DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{base: base{Logger: logger}, Dashboard: dashboard}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		h.fail(w, r, "dashboard stats", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, dto.DashboardStatsResponse{
		TotalContainers:  st.TotalContainers,
		FullContainers:   st.FullContainers,
		FillRate:         dto.Round(st.FillRate(), 4),
		TotalVehicles:    st.TotalVehicles,
		Neighborhoods:    st.Neighborhoods,
		TodayReports:     st.TodayReports,
		TodayCollections: st.TodayCollections,
		MonthTonnage:     st.MonthTonnage,
		TotalReports:     st.TotalReports,
		VerifiedReports:  st.VerifiedReports,
		VerificationRate: dto.Round(st.VerificationRate(), 4),
	})
}

// Tonnage lists recent monthly tonnage, most recent first.
func (h *DashboardHandler) Tonnage(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Dashboard.Tonnage(r.Context())
	if err != nil {
		h.fail(w, r, "monthly tonnage", err)
		return
	}

	res := dto.TonnageResponse{
		MonthlyData:     make([]dto.MonthlyTonnageResponse, 0, len(rep.Months)),
		AvgDailyTonnage: dto.Round(rep.AvgDailyTonnage, 2),
		AvgDailyKm:      dto.Round(rep.AvgDailyKm, 2),
	}
	for _, m := range rep.Months {
		res.MonthlyData = append(res.MonthlyData, dto.MonthlyTonnageResponse{
			Month:              m.Month,
			SurfaceTonnage:     m.Surface,
			UndergroundTonnage: m.Underground,
			TotalTonnage:       m.Total,
		})
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

// Simulate estimates a collection run over the current full containers.
func (h *DashboardHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	est, err := h.Dashboard.Simulate(r.Context())
	if err != nil {
		h.fail(w, r, "simulate", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, dto.SimulationResponse{
		Success: true,
		Results: dto.SimulationResults{
			TotalVehicles:       est.TotalVehicles,
			SmallTrucks:         est.SmallTrucks,
			LargeTrucks:         est.LargeTrucks,
			CraneVehicles:       est.CraneVehicles,
			EstimatedHours:      dto.Round(est.EstimatedHours, 2),
			EstimatedCost:       est.EstimatedHourlyCost,
			ContainersToCollect: est.ContainersToCollect,
			Efficiency:          dto.Round(est.EfficiencyPercentage, 2),
		},
	})
}
