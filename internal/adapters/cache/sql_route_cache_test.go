package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	"waste-collection-service/internal/adapters/repositories"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/db"
	"waste-collection-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLCache(t *testing.T, ttl time.Duration) *SQLRouteCache {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.SQLite))

	return NewSQLRouteCache(conn, db.SQLite, ttl)
}

func TestSQLRouteCacheRoundTrip(t *testing.T) {
	c := newSQLCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "route:2:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	leg := ports.RouteLeg{
		DistanceMeters:  2500,
		DurationSeconds: 300,
		Geometry:        []domain.Coordinates{{Lon: 28.9, Lat: 40.2}, {Lon: 28.91, Lat: 40.21}},
	}
	require.NoError(t, c.Put(ctx, "route:2:abc", leg))

	got, ok, err := c.Get(ctx, "route:2:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, leg, got)

	leg.DistanceMeters = 2600
	require.NoError(t, c.Put(ctx, "route:2:abc", leg))
	got, _, err = c.Get(ctx, "route:2:abc")
	require.NoError(t, err)
	assert.InDelta(t, 2600.0, got.DistanceMeters, 1e-9)
}

func TestSQLRouteCacheExpiry(t *testing.T) {
	c := newSQLCache(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	require.NoError(t, c.Put(ctx, "k", ports.RouteLeg{DistanceMeters: 1}))

	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLRouteCacheRejectsEmptyKey(t *testing.T) {
	c := newSQLCache(t, 0)

	_, _, err := c.Get(context.Background(), " ")
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), "", ports.RouteLeg{}))
}
