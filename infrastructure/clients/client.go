// Package clients holds the HTTP callers for the three downstream services.
// Every call goes through the shared circuit breaker and is bounded by a
// per-attempt timeout; failures surface as typed downstream errors.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"library-gateway/application/resilience"
	apperrors "library-gateway/pkg/errors"
)

// Downstream service names as tracked by the circuit breaker
const (
	ServiceLibrary     = "library"
	ServiceReservation = "reservation"
	ServiceRating      = "rating"
)

// UserHeader carries the caller's identity to the downstream services
const UserHeader = "X-User-Name"

// Config holds downstream client settings
type Config struct {
	LibraryBaseURL     string
	ReservationBaseURL string
	RatingBaseURL      string
	// RequestTimeout bounds every downstream attempt, first tries included.
	RequestTimeout time.Duration
}

// DefaultConfig returns the default client settings
func DefaultConfig() Config {
	return Config{
		LibraryBaseURL:     "http://library:8080",
		ReservationBaseURL: "http://reservation:8080",
		RatingBaseURL:      "http://rating:8080",
		RequestTimeout:     10 * time.Second,
	}
}

// baseClient implements the shared request/JSON plumbing for one downstream
// service. The breaker gates every call and receives exactly one outcome
// report per allowed attempt.
type baseClient struct {
	service string
	baseURL string
	http    *http.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

func newBaseClient(service, baseURL string, timeout time.Duration, breaker *resilience.Breaker, logger *zap.Logger) baseClient {
	if timeout <= 0 {
		timeout = DefaultConfig().RequestTimeout
	}
	return baseClient{
		service: service,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// call performs one breaker-guarded JSON request. The username is attached
// as the trusted identity header when non-empty; out may be nil for
// responses whose body is irrelevant.
func (c *baseClient) call(ctx context.Context, method, path string, query url.Values, username string, body any, out any) error {
	return c.breaker.Execute(ctx, c.service, func(ctx context.Context) error {
		return c.do(ctx, method, path, query, username, body, out)
	})
}

func (c *baseClient) do(ctx context.Context, method, path string, query url.Values, username string, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("encode request body").WithCause(err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return apperrors.NewInternalError("build request").WithCause(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set(UserHeader, username)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &urlErr) && urlErr.Timeout()) {
			return apperrors.NewTimeoutError(c.service, err)
		}
		return apperrors.NewExternalError(c.service, err)
	}
	// Drain whatever the handler below leaves unread so the transport can
	// reuse the connection.
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	c.logger.Debug("downstream call",
		zap.String("service", c.service),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewExternalError(c.service,
			fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalError(c.service,
			fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}
