package modelstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constClassifier float64

func (c constClassifier) PredictProba([]float64) float64 { return float64(c) }

func trainedSnapshot(t *testing.T, version int) *domain.ModelSnapshot {
	t.Helper()

	X := make([][]float64, 40)
	y := make([]int, 40)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 4)}
		if i >= 20 {
			y[i] = 1
		}
	}
	forest, err := ml.TrainForest(context.Background(), X, y, ml.ForestParams{NumTrees: 5, MaxDepth: 3, Seed: 1})
	require.NoError(t, err)

	return &domain.ModelSnapshot{
		Version:        version,
		Classifier:     forest,
		FeatureColumns: []string{"capacity_liters", "population_density"},
		TrainAccuracy:  0.97,
		TestAccuracy:   0.9,
		SampleCount:    40,
		TrainedAt:      time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := NewFileModelStore(filepath.Join(t.TempDir(), "none.msgpack"))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "fill_predictor.msgpack")
	store := NewFileModelStore(path)
	ctx := context.Background()

	snap := trainedSnapshot(t, 3)
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, snap.FeatureColumns, got.FeatureColumns)
	assert.Equal(t, 40, got.SampleCount)
	assert.True(t, snap.TrainedAt.Equal(got.TrainedAt))

	x := []float64{35, 1}
	assert.InDelta(t, snap.Classifier.PredictProba(x), got.Classifier.PredictProba(x), 1e-12)
}

func TestSaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileModelStore(filepath.Join(dir, "fill_predictor.msgpack"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, trainedSnapshot(t, 1)))
	require.NoError(t, store.Save(ctx, trainedSnapshot(t, 2)))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveRejectsUnknownClassifier(t *testing.T) {
	store := NewFileModelStore(filepath.Join(t.TempDir(), "m.msgpack"))

	err := store.Save(context.Background(), &domain.ModelSnapshot{Classifier: constClassifier(0.5)})
	assert.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.msgpack")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack"), 0o644))

	_, err := NewFileModelStore(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
