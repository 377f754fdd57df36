package handlers

import (
	"context"
	"net/http"
	"waste-collection-service/internal/api/dto"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/services"

	"go.uber.org/zap"
)

type Predictor interface {
	Predict(ctx context.Context, containerID int64) (*domain.Prediction, error)
}

type ModelManager interface {
	Active() *domain.ModelSnapshot
	Retrain(ctx context.Context, trigger string) (*domain.ModelSnapshot, error)
}

type ModelHandler struct {
	base
	Predictor Predictor
	Models    ModelManager
}

func NewModelHandler(predictor Predictor, models ModelManager, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{base: base{Logger: logger}, Predictor: predictor, Models: models}
}

func (h *ModelHandler) Predict(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "predict", err)
		return
	}

	p, err := h.Predictor.Predict(r.Context(), id)
	if err != nil {
		h.fail(w, r, "predict", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, dto.PredictionResponse{
		ContainerID:     p.Container.ContainerID,
		ContainerType:   p.Container.Type.String(),
		CapacityLiters:  p.Container.CapacityLiters,
		CurrentFill:     p.Container.FillLevel,
		Neighborhood:    p.Neighborhood.Name,
		Population:      p.Neighborhood.Population,
		FillProbability: dto.Round(p.FillProbability, 4),
		IsFull:          p.IsFull,
		Confidence:      dto.Round(p.Confidence, 4),
		ModelVersion:    p.ModelVersion,
		PredictedAt:     p.PredictedAt,
	})
}

// Get describes the active snapshot.
func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.Models.Active()
	if snap == nil {
		h.fail(w, r, "get model", domain.ErrModelUnavailable)
		return
	}
	h.writeJSON(w, r, http.StatusOK, modelResponse(snap))
}

// Retrain trains a new snapshot on demand.
func (h *ModelHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Models.Retrain(r.Context(), services.TriggerManual)
	if err != nil {
		h.fail(w, r, "retrain", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, modelResponse(snap))
}

func modelResponse(s *domain.ModelSnapshot) dto.ModelResponse {
	return dto.ModelResponse{
		Version:        s.Version,
		FeatureColumns: s.FeatureColumns,
		TrainAccuracy:  dto.Round(s.TrainAccuracy, 4),
		TestAccuracy:   dto.Round(s.TestAccuracy, 4),
		SampleCount:    s.SampleCount,
		TrainedAt:      s.TrainedAt,
	}
}
