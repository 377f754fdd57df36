package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// osrmError is a failed OSRM exchange. Status is zero when no HTTP response
// was read; Code and Message come from OSRM's JSON error envelope when present.
type osrmError struct {
	Status  int
	Code    string
	Message string
	err     error
}

func (e *osrmError) Error() string {
	switch {
	case e.Status == 0:
		return "osrm transport: " + e.err.Error()
	case e.Code != "":
		return fmt.Sprintf("osrm status %d code %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("osrm status %d: %s", e.Status, e.Message)
}

func (e *osrmError) Unwrap() error { return e.err }

// temporary reports whether repeating the request may succeed.
// OSRM rejects unroutable or malformed input (NoRoute, NoSegment, InvalidQuery,
// TooBig, ...) with a code in the body; those answers are final.
func (e *osrmError) temporary() bool {
	switch {
	case e.Status == 0:
		var netErr net.Error
		return errors.As(e.err, &netErr)
	case e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return e.Code == "" || e.Code == "InternalError"
	}
	return false
}

// fetch issues GET endpoint and returns a response whose code is "Ok",
// retrying temporary failures with exponential backoff.
func (o *OSRMRouteProvider) fetch(ctx context.Context, endpoint string) (*osrmResponse, error) {
	backoff := o.backoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := o.get(ctx, endpoint)
		if err == nil {
			return res, nil
		}

		var oe *osrmError
		if !errors.As(err, &oe) || !oe.temporary() || attempt >= o.maxAttempts || ctx.Err() != nil {
			return nil, err
		}
		o.logger.Debug("osrm retry",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

func (o *OSRMRouteProvider) get(ctx context.Context, endpoint string) (*osrmResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent)

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, &osrmError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &osrmError{err: fmt.Errorf("read body: %w", err)}
	}

	var decoded osrmResponse
	decodeErr := json.Unmarshal(raw, &decoded)
	if resp.StatusCode < 400 && decodeErr == nil && decoded.Code == "Ok" {
		return &decoded, nil
	}

	e := &osrmError{Status: resp.StatusCode, Code: decoded.Code, Message: decoded.Message}
	if decodeErr != nil {
		e.Code, e.Message, e.err = "", snippet(raw), decodeErr
	}
	return nil, e
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}
