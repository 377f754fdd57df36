package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisRouteCache stores resolved legs in Redis with a per-entry TTL.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRouteCache parses a redis:// URL and verifies the connection.
func NewRedisRouteCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRouteCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis route cache: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis route cache: ping: %w", err)
	}

	return &RedisRouteCache{client: client, ttl: ttl}, nil
}

type cachedLeg struct {
	DistanceMeters  float64      `msgpack:"d"`
	DurationSeconds float64      `msgpack:"t"`
	Geometry        [][2]float64 `msgpack:"g"`
}

func (r *RedisRouteCache) Get(ctx context.Context, key string) (ports.RouteLeg, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteLeg{}, false, nil
	}
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("redis route cache get %q: %w", key, err)
	}

	var c cachedLeg
	if err := msgpack.Unmarshal(raw, &c); err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("redis route cache decode %q: %w", key, err)
	}

	geometry := make([]domain.Coordinates, len(c.Geometry))
	for i, p := range c.Geometry {
		geometry[i] = domain.Coordinates{Lon: p[0], Lat: p[1]}
	}

	return ports.RouteLeg{DistanceMeters: c.DistanceMeters, DurationSeconds: c.DurationSeconds, Geometry: geometry}, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	c := cachedLeg{
		DistanceMeters:  leg.DistanceMeters,
		DurationSeconds: leg.DurationSeconds,
		Geometry:        make([][2]float64, len(leg.Geometry)),
	}
	for i, p := range leg.Geometry {
		c.Geometry[i] = [2]float64{p.Lon, p.Lat}
	}

	raw, err := msgpack.Marshal(&c)
	if err != nil {
		return fmt.Errorf("redis route cache encode %q: %w", key, err)
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis route cache set %q: %w", key, err)
	}
	return nil
}

func (r *RedisRouteCache) Close() error {
	return r.client.Close()
}
