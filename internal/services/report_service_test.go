package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	"waste-collection-service/internal/adapters/repositories"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"
	"waste-collection-service/internal/platform/db"
	"waste-collection-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// seedStore opens a temp SQLite store with one neighborhood, two users and
// n containers. Container 1 is at 0.82; the rest alternate full and empty.
func seedStore(t *testing.T, n int) *repositories.SQLStore {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	require.NoError(t, repositories.InitSchema(ctx, conn, db.SQLite))

	seed := repositories.Seed{
		Neighborhoods: []repositories.NeighborhoodSeed{{NeighborhoodID: 1, Name: "Nilüfer", Population: 20000, PopulationDensity: 8000}},
		Users: []repositories.UserSeed{
			{UserID: 1, Name: "Zeynep"},
			{UserID: 2, Name: "Can"},
		},
	}
	for i := 1; i <= n; i++ {
		capacity, fill := 800, 0.2
		if i%2 == 0 {
			capacity, fill = 1100, 0.9
		}
		if i == 1 {
			fill = 0.82
		}
		seed.Containers = append(seed.Containers, repositories.ContainerSeed{
			ContainerID:    int64(i),
			ContainerType:  domain.ContainerTypes[i%len(domain.ContainerTypes)].String(),
			CapacityLiters: capacity,
			FillLevel:      fill,
			NeighborhoodID: 1,
		})
	}
	require.NoError(t, repositories.ApplySeed(ctx, conn, db.SQLite, seed))

	return repositories.NewSQLStore(conn, db.SQLite)
}

type reportFixture struct {
	store     *repositories.SQLStore
	svc       *ReportService
	retrainer *Retrainer
	models    *fakeModelStore
	events    *fakePublisher
}

func newReportFixture(t *testing.T, containers, threshold int) reportFixture {
	store := seedStore(t, containers)
	models := &fakeModelStore{}
	events := &fakePublisher{}

	cfg := testRetrainerConfig()
	cfg.Threshold = threshold
	retrainer := NewRetrainer(store, models, events, cfg, zap.NewNop())

	svc := NewReportService(store, retrainer, events, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC) }

	return reportFixture{store: store, svc: svc, retrainer: retrainer, models: models, events: events}
}

func TestSubmitHighConfidenceReport(t *testing.T) {
	f := newReportFixture(t, 5, 10)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, SubmitReportRequest{UserID: 1, ContainerID: 1, EstimatedFill: 0.80})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeVerified, res.Outcome)
	assert.InDelta(t, 0.98, res.Accuracy, 1e-9)
	assert.InDelta(t, 0.05, res.TrustDelta, 1e-9)
	assert.InDelta(t, 0.55, res.TrustScore, 1e-9)
	assert.Equal(t, 1, res.TotalReports)
	assert.Equal(t, 1, res.AccurateReports)
	assert.True(t, res.ContainerUpdated)
	assert.False(t, res.ModelUpdated)
	assert.Positive(t, res.ReportID)

	c, err := f.store.GetContainer(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.80, c.FillLevel, 1e-12)
	require.NotNil(t, c.LastCollectionAt)

	n, err := f.store.VerifiedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{ports.TopicReportSubmitted}, f.events.topics())
}

func TestSubmitPhotoBonus(t *testing.T) {
	f := newReportFixture(t, 5, 10)

	res, err := f.svc.Submit(context.Background(), SubmitReportRequest{UserID: 1, ContainerID: 1, EstimatedFill: 0.80, HasPhoto: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.07, res.TrustDelta, 1e-9)
	assert.InDelta(t, 0.57, res.TrustScore, 1e-9)
}

func TestSubmitVerifiedBelowOverwriteAccuracy(t *testing.T) {
	f := newReportFixture(t, 5, 10)
	ctx := context.Background()

	// |0.55 - 0.82| = 0.27, accuracy 0.73.
	res, err := f.svc.Submit(ctx, SubmitReportRequest{UserID: 1, ContainerID: 1, EstimatedFill: 0.55})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeVerified, res.Outcome)
	assert.False(t, res.ContainerUpdated)

	c, err := f.store.GetContainer(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.82, c.FillLevel, 1e-12)
	assert.Nil(t, c.LastCollectionAt)

	n, err := f.store.VerifiedCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitRejectedReport(t *testing.T) {
	f := newReportFixture(t, 5, 10)

	res, err := f.svc.Submit(context.Background(), SubmitReportRequest{UserID: 2, ContainerID: 1, EstimatedFill: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejected, res.Outcome)
	assert.InDelta(t, 0.47, res.TrustScore, 1e-9)
	assert.Zero(t, res.AccurateReports)
	assert.Equal(t, 1, res.TotalReports)
}

func TestSubmitValidation(t *testing.T) {
	f := newReportFixture(t, 5, 10)

	cases := []struct {
		desc string
		req  SubmitReportRequest
	}{
		{desc: "estimate above one", req: SubmitReportRequest{UserID: 1, ContainerID: 1, EstimatedFill: 1.2}},
		{desc: "negative estimate", req: SubmitReportRequest{UserID: 1, ContainerID: 1, EstimatedFill: -0.1}},
		{desc: "missing user", req: SubmitReportRequest{ContainerID: 1, EstimatedFill: 0.5}},
		{desc: "missing container", req: SubmitReportRequest{UserID: 1, EstimatedFill: 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), tc.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSubmitUnknownEntitiesLeaveNoTrace(t *testing.T) {
	f := newReportFixture(t, 5, 10)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, SubmitReportRequest{UserID: 1, ContainerID: 999, EstimatedFill: 0.5})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "999")

	_, err = f.svc.Submit(ctx, SubmitReportRequest{UserID: 42, ContainerID: 1, EstimatedFill: 0.5})
	require.ErrorIs(t, err, domain.ErrNotFound)

	u, err := f.store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, u.TotalReports)
	assert.Empty(t, f.events.topics())
}

func TestSubmitTriggersRetrainAtThreshold(t *testing.T) {
	f := newReportFixture(t, 60, 2)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, SubmitReportRequest{UserID: 1, ContainerID: 1, EstimatedFill: 0.80})
	require.NoError(t, err)
	assert.False(t, first.ModelUpdated)

	// Container 1 now reads 0.80; an exact estimate keeps it high-confidence.
	second, err := f.svc.Submit(ctx, SubmitReportRequest{UserID: 2, ContainerID: 1, EstimatedFill: 0.80})
	require.NoError(t, err)
	assert.True(t, second.ModelUpdated)

	snap := f.retrainer.Active()
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, 60, snap.SampleCount)
	assert.Equal(t, ml.FeatureColumns, snap.FeatureColumns)

	n, err := f.store.VerifiedCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Contains(t, f.events.topics(), ports.TopicModelRetrained)
}

func TestSubmitRetrainSkippedKeepsCounter(t *testing.T) {
	f := newReportFixture(t, 10, 2)
	ctx := context.Background()

	for _, user := range []int64{1, 2} {
		res, err := f.svc.Submit(ctx, SubmitReportRequest{UserID: user, ContainerID: 1, EstimatedFill: 0.82})
		require.NoError(t, err)
		assert.False(t, res.ModelUpdated)
	}

	assert.Nil(t, f.retrainer.Active())
	assert.Zero(t, f.models.saves)

	n, err := f.store.VerifiedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
