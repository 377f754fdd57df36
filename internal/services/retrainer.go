package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultRetrainThreshold = 10
	MinTrainingSamples      = 50
	TestFraction            = 0.2
	SplitSeed               = 42
)

// Retrain triggers, recorded on events and metrics.
const (
	TriggerThreshold = "threshold"
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"
)

type RetrainerConfig struct {
	// Threshold is the verified-report count that triggers a retrain.
	Threshold  int
	MinSamples int
	Forest     ml.ForestParams
}

func DefaultRetrainerConfig() RetrainerConfig {
	return RetrainerConfig{
		Threshold:  DefaultRetrainThreshold,
		MinSamples: MinTrainingSamples,
		Forest:     ml.DefaultForestParams(),
	}
}

// Retrainer owns the active model snapshot and is the only writer of it.
//
// Retrains are serialized by mu. The verified counter is re-read under the
// lock, so concurrent threshold crossings produce a single retrain. Readers
// use Active and never block on a running retrain.
type Retrainer struct {
	training ports.TrainingStore
	models   ports.ModelStore
	events   ports.EventPublisher
	cfg      RetrainerConfig
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	active atomic.Pointer[domain.ModelSnapshot]
}

func NewRetrainer(
	training ports.TrainingStore,
	models ports.ModelStore,
	events ports.EventPublisher,
	cfg RetrainerConfig,
	logger *zap.Logger,
) *Retrainer {
	if cfg.Threshold < 1 {
		cfg.Threshold = DefaultRetrainThreshold
	}
	if cfg.MinSamples < 1 {
		cfg.MinSamples = MinTrainingSamples
	}
	return &Retrainer{
		training: training,
		models:   models,
		events:   events,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *Retrainer) Threshold() int { return r.cfg.Threshold }

// Active returns the current snapshot, or nil before the first successful train.
func (r *Retrainer) Active() *domain.ModelSnapshot {
	return r.active.Load()
}

// LoadActive restores the persisted snapshot. A missing snapshot is not an error.
func (r *Retrainer) LoadActive(ctx context.Context) error {
	snap, err := r.models.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Info("no persisted model snapshot")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load model snapshot: %w", err)
	}

	r.active.Store(snap)
	r.logger.Info("model snapshot loaded",
		zap.Int("version", snap.Version),
		zap.Int("samples", snap.SampleCount),
		zap.Time("trained_at", snap.TrainedAt),
	)
	return nil
}

// MaybeRetrain retrains when the durable counter has reached the threshold.
// It reports whether a new snapshot was published.
func (r *Retrainer) MaybeRetrain(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.training.VerifiedCount(ctx)
	if err != nil {
		return false, fmt.Errorf("maybe retrain: %w", err)
	}
	if count < r.cfg.Threshold {
		return false, nil
	}

	r.logger.Info("verified report threshold reached, retraining",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("verified", count),
		zap.Int("threshold", r.cfg.Threshold),
	)

	if _, err := r.retrainLocked(ctx, count, TriggerThreshold); err != nil {
		return false, err
	}
	return true, nil
}

// Retrain trains unconditionally. On success the counter is reduced by the
// value it had when training started.
func (r *Retrainer) Retrain(ctx context.Context, trigger string) (*domain.ModelSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.training.VerifiedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrain: %w", err)
	}
	return r.retrainLocked(ctx, count, trigger)
}

func (r *Retrainer) retrainLocked(ctx context.Context, observed int, trigger string) (_ *domain.ModelSnapshot, err error) {
	defer obs.Time(ctx, r.logger, "model.Retrain")(&err)
	defer func() {
		result := "success"
		switch {
		case errors.Is(err, domain.ErrInsufficientData):
			result = "skipped"
		case err != nil:
			result = "failed"
		}
		obs.RetrainAttempts.WithLabelValues(result).Inc()
	}()

	rows, err := r.training.ListTrainingRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrain: load training rows: %w", err)
	}
	if len(rows) < r.cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d rows, need %d", domain.ErrInsufficientData, len(rows), r.cfg.MinSamples)
	}

	X, y, err := buildTrainingSet(rows)
	if err != nil {
		return nil, fmt.Errorf("retrain: %w", err)
	}

	trainIdx, testIdx := ml.TrainTestSplit(len(X), TestFraction, SplitSeed)
	Xtrain, ytrain := pick(X, y, trainIdx)
	Xtest, ytest := pick(X, y, testIdx)

	forest, err := ml.TrainForest(ctx, Xtrain, ytrain, r.cfg.Forest)
	if err != nil {
		return nil, fmt.Errorf("retrain: %w", err)
	}

	version := 1
	if prev := r.active.Load(); prev != nil {
		version = prev.Version + 1
	}

	snap := &domain.ModelSnapshot{
		Version:        version,
		Classifier:     forest,
		FeatureColumns: append([]string(nil), ml.FeatureColumns...),
		TrainAccuracy:  ml.Accuracy(forest, Xtrain, ytrain),
		TestAccuracy:   ml.Accuracy(forest, Xtest, ytest),
		SampleCount:    len(X),
		TrainedAt:      r.now().UTC(),
	}

	if err := r.models.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("retrain: save snapshot: %w", err)
	}
	r.active.Store(snap)

	// The snapshot is live at this point. A failed reset only means the next
	// qualifying report retrains again.
	if err := r.training.ConsumeVerified(ctx, observed); err != nil {
		r.logger.Warn("reset verified counter failed", zap.Error(err))
	}

	r.logger.Info("model retrained",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.String("trigger", trigger),
		zap.Int("version", snap.Version),
		zap.Int("samples", snap.SampleCount),
		zap.Float64("positive_rate", positiveRate(y)),
		zap.Float64("train_accuracy", snap.TrainAccuracy),
		zap.Float64("test_accuracy", snap.TestAccuracy),
	)

	publish(ctx, r.events, r.logger, ports.TopicModelRetrained,
		strconv.Itoa(snap.Version), newModelRetrainedEvent(snap, trigger))

	return snap, nil
}

func buildTrainingSet(rows []domain.TrainingRow) ([][]float64, []int, error) {
	X := make([][]float64, 0, len(rows))
	y := make([]int, 0, len(rows))
	for _, row := range rows {
		vec, err := ml.Vector(ml.FeatureInput{
			Type:              row.Type,
			CapacityLiters:    row.CapacityLiters,
			PopulationDensity: row.PopulationDensity,
			Stats:             ml.WithHistoryDefaults(row.Stats, row.HasHistory),
		}, ml.FeatureColumns)
		if err != nil {
			return nil, nil, fmt.Errorf("container %d: %w", row.ContainerID, err)
		}
		X = append(X, vec)
		y = append(y, ml.Label(row.FillLevel))
	}
	return X, y, nil
}

func pick(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func positiveRate(y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	f := make([]float64, len(y))
	for i, v := range y {
		f[i] = float64(v)
	}
	return stat.Mean(f, nil)
}
