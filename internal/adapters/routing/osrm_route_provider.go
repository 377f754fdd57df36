package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

// OSRMRouteProvider implements RouteProvider using an OSRM routing server.
//
// Every failure (transport, non-2xx status, OSRM error code, malformed body)
// is returned wrapped in domain.ErrExternalService so callers can fall back.
// The provider is safe for concurrent use.
type OSRMRouteProvider struct {
	session     *http.Client
	baseURL     string
	profile     string
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

type OSRMOption func(*OSRMRouteProvider)

// WithRetry sets the attempt budget and initial backoff for transient failures.
func WithRetry(maxAttempts int, backoff time.Duration) OSRMOption {
	return func(o *OSRMRouteProvider) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		o.backoff = backoff
	}
}

func WithHTTPClient(c *http.Client) OSRMOption {
	return func(o *OSRMRouteProvider) { o.session = c }
}

func NewOSRMRouteProvider(
	baseURL string,
	timeout time.Duration,
	logger *zap.Logger,
	opts ...OSRMOption,
) (*OSRMRouteProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("OSRM base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("OSRM base url: %w", err)
	}

	provider := &OSRMRouteProvider{
		session:     &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		profile:     "driving",
		userAgent:   "waste-collection-service",
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance *float64 `json:"distance"`
		Duration *float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route asks OSRM for a driving route visiting stops in the given order.
func (o *OSRMRouteProvider) Route(
	ctx context.Context,
	stops []domain.Coordinates,
) (_ ports.RouteLeg, err error) {
	defer obs.Time(ctx, o.logger, "osrm.Route")(&err)

	if len(stops) < 2 {
		return ports.RouteLeg{}, fmt.Errorf("%w: osrm route: need at least 2 stops, got %d", domain.ErrValidation, len(stops))
	}

	endpoint := o.routeURL(stops)

	decoded, err := o.fetch(ctx, endpoint)
	if err != nil {
		return ports.RouteLeg{}, fmt.Errorf("%w: osrm request: %w", domain.ErrExternalService, err)
	}
	if len(decoded.Routes) == 0 {
		return ports.RouteLeg{}, fmt.Errorf("%w: osrm returned no routes", domain.ErrExternalService)
	}

	route := decoded.Routes[0]
	if route.Distance == nil || route.Duration == nil {
		return ports.RouteLeg{}, fmt.Errorf("%w: osrm route missing distance or duration", domain.ErrExternalService)
	}

	geometry := make([]domain.Coordinates, 0, len(route.Geometry.Coordinates))
	for i, c := range route.Geometry.Coordinates {
		if len(c) != 2 {
			return ports.RouteLeg{}, fmt.Errorf("%w: invalid geometry point #%d", domain.ErrExternalService, i)
		}
		geometry = append(geometry, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return ports.RouteLeg{
		DistanceMeters:  *route.Distance,
		DurationSeconds: *route.Duration,
		Geometry:        geometry,
	}, nil
}

// routeURL builds /route/v1/{profile}/{lon,lat;lon,lat...} with full GeoJSON geometry.
func (o *OSRMRouteProvider) routeURL(stops []domain.Coordinates) string {
	parts := make([]string, 0, len(stops))
	for _, s := range stops {
		parts = append(parts, s.String())
	}

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", o.baseURL, o.profile, strings.Join(parts, ";"), q.Encode())
}
