package services

import (
	"context"
	"testing"
	"time"
	"waste-collection-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingClassifier struct {
	prob float64
	got  []float64
}

func (c *recordingClassifier) PredictProba(x []float64) float64 {
	c.got = append([]float64(nil), x...)
	return c.prob
}

type staticSnapshot struct{ snap *domain.ModelSnapshot }

func (s staticSnapshot) Active() *domain.ModelSnapshot { return s.snap }

func predictorFixture() *fakeContainers {
	return &fakeContainers{
		containers: []*domain.Container{
			{ContainerID: 1, Type: domain.ContainerPaper, CapacityLiters: 1100, FillLevel: 0.4, NeighborhoodID: 1, Status: domain.ContainerActive},
			{ContainerID: 2, Type: domain.ContainerGlass, CapacityLiters: 800, FillLevel: 0.9, NeighborhoodID: 99, Status: domain.ContainerActive},
		},
		neighborhoods: map[int64]*domain.Neighborhood{
			1: {NeighborhoodID: 1, Name: "Moda", Population: 30000, PopulationDensity: 12000, AreaKm2: 2.5},
		},
		stats: map[int64]domain.CollectionStats{
			1: {AvgTonnage: 0.3, AvgFillBefore: 0.85, EventCount: 6},
		},
	}
}

func newTestPredictor(snap *domain.ModelSnapshot) *Predictor {
	p := NewPredictor(predictorFixture(), staticSnapshot{snap: snap}, zap.NewNop())
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestPredictWithoutModel(t *testing.T) {
	_, err := newTestPredictor(nil).Predict(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestPredictUnknownContainer(t *testing.T) {
	snap := &domain.ModelSnapshot{Version: 1, Classifier: &recordingClassifier{}, FeatureColumns: []string{"capacity_liters"}}

	_, err := newTestPredictor(snap).Predict(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPredictFollowsSnapshotColumnOrder(t *testing.T) {
	clf := &recordingClassifier{prob: 0.8}
	snap := &domain.ModelSnapshot{
		Version:        4,
		Classifier:     clf,
		FeatureColumns: []string{"collection_count", "density_high", "capacity_liters", "type_paper"},
	}

	got, err := newTestPredictor(snap).Predict(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{6, 1, 1100, 1}, clf.got)
	assert.InDelta(t, 0.8, got.FillProbability, 1e-12)
	assert.True(t, got.IsFull)
	assert.InDelta(t, 0.8, got.Confidence, 1e-12)
	assert.Equal(t, 4, got.ModelVersion)
	assert.Equal(t, "Moda", got.Neighborhood.Name)
}

func TestPredictUsesFallbacks(t *testing.T) {
	clf := &recordingClassifier{prob: 0.3}
	snap := &domain.ModelSnapshot{
		Version:        1,
		Classifier:     clf,
		FeatureColumns: []string{"population_density", "avg_tonnage", "avg_fill_before", "collection_count"},
	}

	got, err := newTestPredictor(snap).Predict(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{5000, 0.5, 0.5, 10}, clf.got)
	assert.False(t, got.IsFull)
	assert.InDelta(t, 0.7, got.Confidence, 1e-12)
	assert.Equal(t, domain.DefaultPopulation, got.Neighborhood.Population)
}

func TestPredictRejectsUnknownColumn(t *testing.T) {
	snap := &domain.ModelSnapshot{Version: 2, Classifier: &recordingClassifier{}, FeatureColumns: []string{"container_id"}}

	_, err := newTestPredictor(snap).Predict(context.Background(), 1)
	assert.Error(t, err)
}
