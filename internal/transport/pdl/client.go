// Package pdl is the outbound HTTP client for the people-data enrichment service.
package pdl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/prospector/internal/domain"
	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/entity"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/search/request"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
	"github.com/kailas-cloud/prospector/internal/metrics"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.peopledatalabs.com/v5"

// Upstream endpoint paths, relative to the base URL.
const (
	EndpointPersonSearch   = "/person/search"
	EndpointCompanySearch  = "/company/search"
	EndpointPersonEnrich   = lookup.PersonEndpoint
	EndpointCompanyEnrich  = lookup.CompanyEndpoint
	EndpointPersonIdentify = "/person/identify"
	EndpointPersonBulk     = "/person/enrich/bulk"
	EndpointIPEnrich       = lookup.IPEndpoint
	EndpointJobTitleEnrich = lookup.JobTitleEndpoint
)

const (
	apiKeyHeader       = "X-Api-Key"
	creditsRemainingHd = "X-RateLimit-Remaining"
	creditsLimitHd     = "X-RateLimit-Limit"
	maxBodyBytes       = 32 << 20
)

// Config holds the upstream client settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  float64 // requests per second; 0 disables throttling
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the enrichment service. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates an upstream client.
func NewClient(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := max(cfg.Burst, 1)
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		limiter: limiter,
		logger:  logger,
	}
}

// Search runs a search query against the endpoint for kind.
func (c *Client) Search(ctx context.Context, kind entity.Kind, body request.Body) (upstream.Response, error) {
	endpoint := EndpointPersonSearch
	if kind == entity.Company {
		endpoint = EndpointCompanySearch
	}
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return upstream.Response{}, err
	}
	return decodeResponse(endpoint, raw)
}

// Lookup calls a GET enrichment endpoint and returns the raw success body.
func (c *Client) Lookup(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	return c.do(req, endpoint)
}

// Identify resolves a person from identity signals.
func (c *Client) Identify(ctx context.Context, id lookup.Identity) (upstream.Response, error) {
	raw, err := c.post(ctx, EndpointPersonIdentify, id.Trimmed())
	if err != nil {
		return upstream.Response{}, err
	}
	return decodeResponse(EndpointPersonIdentify, raw)
}

// BulkEnrich enriches a batch of people in one call.
func (c *Client) BulkEnrich(ctx context.Context, body bulk.Body) ([]upstream.BulkItem, error) {
	raw, err := c.post(ctx, EndpointPersonBulk, body)
	if err != nil {
		return nil, err
	}
	items, err := upstream.DecodeBulk(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", EndpointPersonBulk, err, domain.ErrUpstreamError)
	}
	return items, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint)
}

// do sends the request and returns the body of a 2xx response.
// Any other status becomes a *domain.UpstreamError.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	ctx := req.Context()
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: wait for rate limiter: %w", endpoint, err)
		}
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s: %w", endpoint, err)
		}
		c.logger.Warn("Upstream request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%s request failed: %w", endpoint, domain.ErrUpstreamError)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	recordCredits(ctx, resp.Header)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", endpoint, domain.ErrUpstreamError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := upstream.ErrorMessage(body)
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Warn("Upstream returned error status",
				zap.String("endpoint", endpoint),
				zap.Int("status", resp.StatusCode),
				zap.String("message", msg),
			)
		}
		return nil, domain.NewUpstreamError(endpoint, resp.StatusCode, msg)
	}
	return body, nil
}

func decodeResponse(endpoint string, body []byte) (upstream.Response, error) {
	r, err := upstream.DecodeResponse(body)
	if err != nil {
		return upstream.Response{}, fmt.Errorf("%s: %w: %w", endpoint, err, domain.ErrUpstreamError)
	}
	return r, nil
}

// recordCredits copies the credit headers into the request's collector and the gauge.
func recordCredits(ctx context.Context, h http.Header) {
	remaining, err := strconv.Atoi(strings.TrimSpace(h.Get(creditsRemainingHd)))
	if err != nil {
		return
	}
	limit, _ := strconv.Atoi(strings.TrimSpace(h.Get(creditsLimitHd)))
	domain.CreditsFromContext(ctx).Record(remaining, limit)
	metrics.UpstreamCreditsRemaining.Set(float64(remaining))
}
