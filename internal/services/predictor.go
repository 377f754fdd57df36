package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

// SnapshotSource yields the active model snapshot, or nil if none is trained.
type SnapshotSource interface {
	Active() *domain.ModelSnapshot
}

// Predictor answers fill-probability queries against the active snapshot.
type Predictor struct {
	containers ports.ContainerRepository
	models     SnapshotSource
	logger     *zap.Logger
	now        func() time.Time
}

func NewPredictor(containers ports.ContainerRepository, models SnapshotSource, logger *zap.Logger) *Predictor {
	return &Predictor{containers: containers, models: models, logger: logger, now: time.Now}
}

func (p *Predictor) Predict(ctx context.Context, containerID int64) (_ *domain.Prediction, err error) {
	defer obs.Time(ctx, p.logger, "model.Predict")(&err)

	// One load per request: a concurrent retrain cannot change the model mid-prediction.
	snap := p.models.Active()
	if snap == nil {
		return nil, domain.ErrModelUnavailable
	}

	container, err := p.containers.GetContainer(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	hood, err := p.containers.GetNeighborhood(ctx, container.NeighborhoodID)
	if errors.Is(err, domain.ErrNotFound) {
		hood = domain.FallbackNeighborhood(container.NeighborhoodID)
	} else if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	stats, ok, err := p.containers.GetCollectionStats(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	vec, err := ml.Vector(ml.FeatureInput{
		Type:              container.Type,
		CapacityLiters:    container.CapacityLiters,
		PopulationDensity: hood.PopulationDensity,
		Stats:             ml.WithHistoryDefaults(stats, ok),
	}, snap.FeatureColumns)
	if err != nil {
		return nil, fmt.Errorf("predict: model v%d: %w", snap.Version, err)
	}

	prob := snap.Classifier.PredictProba(vec)

	return &domain.Prediction{
		Container:       container,
		Neighborhood:    hood,
		FillProbability: prob,
		IsFull:          prob >= ml.FullThreshold,
		Confidence:      math.Max(prob, 1-prob),
		ModelVersion:    snap.Version,
		PredictedAt:     p.now().UTC(),
	}, nil
}
