package cache

import (
	"context"
	"testing"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedisRouteCache(ctx, "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get(ctx, "route:2:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	leg := ports.RouteLeg{
		DistanceMeters:  4200,
		DurationSeconds: 600,
		Geometry:        []domain.Coordinates{{Lon: 28.9, Lat: 40.2}, {Lon: 28.95, Lat: 40.21}},
	}
	require.NoError(t, c.Put(ctx, "route:2:abc", leg))

	got, ok, err := c.Get(ctx, "route:2:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, leg, got)
}

func TestRedisRouteCacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedisRouteCache(ctx, "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put(ctx, "k", ports.RouteLeg{DistanceMeters: 1}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisRouteCacheBadURL(t *testing.T) {
	_, err := NewRedisRouteCache(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}
