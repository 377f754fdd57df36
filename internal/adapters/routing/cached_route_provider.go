package routing

import (
	"context"
	"strconv"
	"strings"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// CachedRouteProvider serves repeated stop sequences from a RouteCache.
// Only successful legs are cached, and cache errors never fail a route.
type CachedRouteProvider struct {
	inner  ports.RouteProvider
	cache  ports.RouteCache
	logger *zap.Logger
}

func NewCachedRouteProvider(inner ports.RouteProvider, cache ports.RouteCache, logger *zap.Logger) *CachedRouteProvider {
	return &CachedRouteProvider{inner: inner, cache: cache, logger: logger}
}

func (c *CachedRouteProvider) Route(ctx context.Context, stops []domain.Coordinates) (ports.RouteLeg, error) {
	key := RouteKey(stops)

	leg, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("route cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return leg, nil
	}

	leg, err = c.inner.Route(ctx, stops)
	if err != nil {
		return ports.RouteLeg{}, err
	}

	if err := c.cache.Put(ctx, key, leg); err != nil {
		c.logger.Warn("route cache write failed", zap.String("key", key), zap.Error(err))
	}

	return leg, nil
}

// RouteKey identifies an ordered stop sequence. Coordinates are rounded to
// six decimals so float noise does not split cache entries.
func RouteKey(stops []domain.Coordinates) string {
	var b strings.Builder
	for i, s := range stops {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(s.String())
	}
	return "route:" + strconv.Itoa(len(stops)) + ":" + strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}
