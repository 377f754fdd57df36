package handlers

import (
	"context"
	"fmt"
	"net/http"
	"waste-collection-service/internal/api/dto"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/services"

	"go.uber.org/zap"
)

type ReportSubmitter interface {
	Submit(ctx context.Context, req services.SubmitReportRequest) (*services.SubmitReportResult, error)
}

type ReportHandler struct {
	base
	Reports ReportSubmitter
}

func NewReportHandler(reports ReportSubmitter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{base: base{Logger: logger}, Reports: reports}
}

// Submit accepts a citizen fill report. fill_level is a percentage.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitReportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "submit report", err)
		return
	}
	if req.FillLevel == nil {
		h.fail(w, r, "submit report", fmt.Errorf("%w: fill_level is required", domain.ErrValidation))
		return
	}
	if *req.FillLevel < 0 || *req.FillLevel > 100 {
		h.fail(w, r, "submit report", fmt.Errorf("%w: fill_level must be between 0 and 100", domain.ErrValidation))
		return
	}

	res, err := h.Reports.Submit(r.Context(), services.SubmitReportRequest{
		UserID:        req.UserID,
		ContainerID:   req.ContainerID,
		EstimatedFill: *req.FillLevel / 100,
		HasPhoto:      req.HasPhoto,
		Notes:         req.Notes,
	})
	if err != nil {
		h.fail(w, r, "submit report", err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, dto.SubmitReportResponse{
		Success:          true,
		ReportID:         res.ReportID,
		ReportStatus:     string(res.Outcome),
		Accuracy:         dto.Round(res.Accuracy*100, 1),
		TrustScore:       dto.Round(res.TrustScore, 2),
		TrustChange:      dto.Round(res.TrustDelta, 3),
		TotalReports:     res.TotalReports,
		ContainerUpdated: res.ContainerUpdated,
		ModelUpdated:     res.ModelUpdated,
	})
}
