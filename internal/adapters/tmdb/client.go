// Package tmdb is the movie catalog adapter for The Movie Database API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"cinematch/internal/domain"
	"cinematch/internal/metrics"
	"cinematch/pkg/log"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultTimeout      = 3500 * time.Millisecond
	DefaultAttempts     = 2
	DefaultRPS          = 40

	maxLoggedBody = 512
)

// Config configures the catalog client.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration // per attempt
	Attempts     int
	RPS          float64
	HTTPClient   *http.Client
}

// Client calls the catalog API. Every call waits on a shared rate limiter,
// runs through a circuit breaker and is retried with exponential backoff.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a new Client, filling unset config fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	cfg.ImageBaseURL = strings.TrimRight(cfg.ImageBaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRPS
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), burstFor(cfg.RPS)),
		breaker: newBreaker("tmdb"),
	}
}

// burstFor lets at least one request through at once, so a fractional rate
// such as 0.5 still admits calls instead of rejecting every Wait.
func burstFor(rps float64) int {
	return max(1, int(math.Ceil(rps)))
}

// newBreaker opens after five consecutive failures. Client errors (4xx)
// count as successes since retrying them elsewhere would not help.
func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var httpErr *domain.UpstreamHTTPError
			if errors.As(err, &httpErr) {
				return httpErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.GlobalWarn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Discover fetches one page of /discover/movie.
func (c *Client) Discover(ctx context.Context, query url.Values, page int) (domain.CatalogPage, error) {
	return c.fetchPage(ctx, "/discover/movie", query, page)
}

// Search fetches one page of /search/movie.
func (c *Client) Search(ctx context.Context, query url.Values, page int) (domain.CatalogPage, error) {
	return c.fetchPage(ctx, "/search/movie", query, page)
}

// WatchProviders returns the flat-rate provider names for a movie in a region.
func (c *Client) WatchProviders(ctx context.Context, movieID, region string) ([]string, error) {
	if _, err := strconv.Atoi(movieID); err != nil {
		return nil, fmt.Errorf("movie id %q: %w", movieID, domain.ErrValidation)
	}
	body, err := c.get(ctx, "/movie/"+movieID+"/watch/providers", url.Values{})
	if err != nil {
		return nil, err
	}

	var resp providersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode watch providers: %w", err)
	}
	names := []string{}
	for _, p := range resp.Results[strings.ToUpper(region)].Flatrate {
		names = append(names, p.ProviderName)
	}
	return names, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, query url.Values, page int) (domain.CatalogPage, error) {
	q := cloneValues(query)
	q.Set("page", strconv.Itoa(page))

	body, err := c.get(ctx, endpoint, q)
	if err != nil {
		return domain.CatalogPage{}, err
	}

	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.CatalogPage{}, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return c.toCatalogPage(resp), nil
}

// get performs a GET with rate limiting, retries and the circuit breaker.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("tmdb api key: %w", domain.ErrConfiguration)
	}

	operation := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.attempt(ctx, endpoint, query)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequests.WithLabelValues(endpointLabel(endpoint), "rejected").Inc()
			return nil, backoff.Permanent(fmt.Errorf("%s: %w", endpoint, err))
		}
		return body, err
	}

	return backoff.RetryWithData(operation, c.newBackOff(ctx))
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.Attempts-1)), ctx)
}

// attempt runs a single request under the per-attempt timeout. Non-2xx
// responses are permanent; transport failures are retryable.
func (c *Client) attempt(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := cloneValues(query)
	if !isJWTToken(c.cfg.APIKey) {
		q.Set("api_key", c.cfg.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	if isJWTToken(c.cfg.APIKey) {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	label := endpointLabel(endpoint)
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(label, "network_error").Inc()
		log.GlobalDebugCtx(ctx, "catalog request failed", "endpoint", endpoint, "error", err.Error())
		return nil, fmt.Errorf("%s: %w: %v", endpoint, domain.ErrTransientNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(label, "network_error").Inc()
		return nil, fmt.Errorf("%s: %w: %v", endpoint, domain.ErrTransientNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues(label, "http_error").Inc()
		logged := string(body)
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody]
		}
		log.GlobalWarnCtx(ctx, "catalog returned error status",
			"endpoint", endpoint, "status", resp.StatusCode, "body", logged)
		return nil, backoff.Permanent(&domain.UpstreamHTTPError{Endpoint: endpoint, Status: resp.StatusCode, Body: logged})
	}

	metrics.UpstreamRequests.WithLabelValues(label, "ok").Inc()
	return body, nil
}

// isJWTToken reports whether the key is a v4 read access token rather than a v3 key.
func isJWTToken(apiKey string) bool {
	return len(apiKey) > 100 && strings.HasPrefix(apiKey, "eyJ")
}

// endpointLabel keeps metric cardinality bounded by collapsing movie ids.
func endpointLabel(endpoint string) string {
	if strings.HasPrefix(endpoint, "/movie/") {
		return "/movie/{id}/watch/providers"
	}
	return endpoint
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
