package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"github.com/couchcryptid/station-geocode-migrator/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultBaseURL is the Google Geocoding API JSON endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client implements domain.Geocoder using the Google Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	retry      RetryPolicy
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the geocoding endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithClock sets the time source for the pre-request delay.
func WithClock(clk clockwork.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// NewClient creates a geocoding client. timeout bounds each attempt.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		retry:   DefaultRetryPolicy(),
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve geocodes query restricted to countryCode. Every attempt is preceded
// by the policy delay; non-200 statuses, empty result sets, and transport
// errors (including timeouts) are retried until the policy is exhausted, after
// which a *domain.GeocodingError is returned.
func (c *Client) Resolve(ctx context.Context, query, countryCode string) (domain.GeocodeResult, error) {
	country := strings.ToLower(countryCode)
	if query == "" {
		return domain.GeocodeResult{}, &domain.GeocodingError{Query: query, Country: country, Err: domain.ErrEmptyQuery}
	}

	maxAttempts := c.retry.attempts()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			return domain.GeocodeResult{}, err
		}

		result, err := c.doRequest(ctx, query, country)
		if err == nil {
			c.metrics.GeocodeAttempts.Observe(float64(attempt))
			c.logger.Info("geocoded", "city", query, "place_id", result.PlaceID, "attempt", attempt)
			return result, nil
		}
		if ctx.Err() != nil {
			return domain.GeocodeResult{}, ctx.Err()
		}
		lastErr = err

		if attempt < maxAttempts {
			c.logger.Warn("geocode attempt failed, retrying",
				"city", query,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", err,
			)
		}
	}

	c.metrics.GeocodeAttempts.Observe(float64(maxAttempts))
	c.logger.Error("geocoding failed after all attempts",
		"city", query,
		"country", country,
		"max_attempts", maxAttempts,
		"error", lastErr,
	)
	return domain.GeocodeResult{}, &domain.GeocodingError{
		Query:    query,
		Country:  country,
		Attempts: maxAttempts,
		Err:      lastErr,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.retry.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(c.retry.Delay):
		return nil
	}
}

func (c *Client) requestURL(query, country string) string {
	params := url.Values{
		"address":    {query},
		"components": {"country:" + country},
		"key":        {c.apiKey},
	}
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) doRequest(ctx context.Context, query, country string) (domain.GeocodeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(query, country), nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("create request: %w", err)
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("transport_error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: %w", redactKey(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues("http_error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodeResult{}, fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	var gr response
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("transport_error").Inc()
		return domain.GeocodeResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(gr.Results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("no_results").Inc()
		if gr.Status != "" && gr.Status != "ZERO_RESULTS" {
			return domain.GeocodeResult{}, fmt.Errorf("%w: status %s: %s", domain.ErrNoResults, gr.Status, gr.ErrorMessage)
		}
		return domain.GeocodeResult{}, domain.ErrNoResults
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	r := gr.Results[0]
	return domain.GeocodeResult{
		Lat:     r.Geometry.Location.Lat,
		Lng:     r.Geometry.Location.Lng,
		PlaceID: r.PlaceID,
	}, nil
}

// redactKey strips the request URL from transport errors so the API key
// never reaches the logs.
func redactKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

// Google Geocoding API response types.

type response struct {
	Results      []result `json:"results"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

type result struct {
	Geometry geometry `json:"geometry"`
	PlaceID  string   `json:"place_id"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
