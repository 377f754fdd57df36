package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/db"
	"waste-collection-service/internal/ports"
)

// SQLRouteCache is a SQL-backed cache of resolved route legs.
// Entries older than ttl are treated as misses.
type SQLRouteCache struct {
	DB      *sql.DB
	dialect db.Dialect
	ttl     time.Duration
	now     func() time.Time
}

func NewSQLRouteCache(conn *sql.DB, dialect db.Dialect, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: conn, dialect: dialect, ttl: ttl, now: time.Now}
}

type lonLat [2]float64

// Fetch a cached leg for one stop-sequence key.
func (s *SQLRouteCache) Get(ctx context.Context, key string) (ports.RouteLeg, bool, error) {
	if s.DB == nil {
		return ports.RouteLeg{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return ports.RouteLeg{}, false, errors.New("get route cache: key must not be empty")
	}

	q := s.dialect.Rebind(`
	SELECT distance_meters, duration_seconds, geometry, cached_at
	FROM route_cache
	WHERE cache_key = ?;
	`)

	var (
		meters, seconds float64
		geometryJSON    string
		cachedAt        time.Time
	)
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&meters, &seconds, &geometryJSON, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteLeg{}, false, nil
	}
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(cachedAt) > s.ttl {
		return ports.RouteLeg{}, false, nil
	}

	var points []lonLat
	if err := json.Unmarshal([]byte(geometryJSON), &points); err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get route cache: decode geometry: %w", err)
	}

	geometry := make([]domain.Coordinates, len(points))
	for i, p := range points {
		geometry[i] = domain.Coordinates{Lon: p[0], Lat: p[1]}
	}

	return ports.RouteLeg{DistanceMeters: meters, DurationSeconds: seconds, Geometry: geometry}, true, nil
}

// Store one resolved leg, replacing any previous entry for the key.
func (s *SQLRouteCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	points := make([]lonLat, len(leg.Geometry))
	for i, c := range leg.Geometry {
		points[i] = lonLat{c.Lon, c.Lat}
	}
	geometryJSON, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("insert route cache: encode geometry: %w", err)
	}

	q := s.dialect.Rebind(`
	INSERT INTO route_cache (cache_key, distance_meters, duration_seconds, geometry, cached_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		geometry = EXCLUDED.geometry,
		cached_at = EXCLUDED.cached_at;
	`)

	if _, err := s.DB.ExecContext(ctx, q, key, leg.DistanceMeters, leg.DurationSeconds, string(geometryJSON), s.now().UTC()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
