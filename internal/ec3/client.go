// Package ec3 fetches Environmental Product Declarations from the EC3
// database (buildingtransparency.org).
package ec3

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/metrics"
)

const DefaultBaseURL = "https://buildingtransparency.org/api"

// Options configures a Client
type Options struct {
	APIKey    string
	BaseURL   string
	RateLimit float64 // requests per second; 0 disables throttling
	CachePath string  // empty disables the response cache
	CacheTTL  time.Duration
}

// Client reads EPDs from the EC3 API. Without an API key it serves the
// embedded sample products instead.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	cache   *Cache
	apiKey  string
	logger  *slog.Logger
}

// NewClient creates a client and opens its cache
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetTimeout(30 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
		apiKey: opts.APIKey,
		logger: slog.Default().With("component", "ec3"),
	}
	if opts.APIKey != "" {
		c.http.SetAuthToken(opts.APIKey)
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	if opts.CachePath != "" && opts.APIKey != "" {
		cache, err := OpenCache(opts.CachePath, opts.CacheTTL)
		if err != nil {
			return nil, errors.ConfigErrorf("ec3 cache unavailable: %v", err)
		}
		c.cache = cache
	}
	return c, nil
}

// UsingFixtures reports whether the client serves sample products
func (c *Client) UsingFixtures() bool {
	return c.apiKey == ""
}

// SearchProducts lists EPDs in category, optionally filtered by country code
func (c *Client) SearchProducts(ctx context.Context, category, country string) ([]Product, error) {
	if c.UsingFixtures() {
		c.logger.Warn("EC3_API_KEY not set, using fixture products", "category", category)
		metrics.EC3Requests.WithLabelValues("fixture").Inc()
		products, err := FixtureProducts(category)
		if err != nil {
			return nil, errors.InternalErrorf("fixture products: %v", err)
		}
		return products, nil
	}

	cacheKey := "search:" + category + ":" + country
	var products []Product
	if c.cached(cacheKey, &products) {
		return products, nil
	}

	params := map[string]string{"category": category}
	if country != "" {
		params["country"] = country
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&products).
		Get("/epds")
	metrics.EC3Requests.WithLabelValues("api").Inc()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "EC3 search for %s failed", category)
	}
	if resp.IsError() {
		return nil, errors.ExternalErrorf(statusError(resp), "EC3 API error").
			WithContext("category", category).
			WithContext("status", resp.StatusCode())
	}

	c.store(cacheKey, products)
	c.logger.Debug("ec3 search", "category", category, "country", country, "products", len(products))
	return products, nil
}

// GetProduct fetches one EPD by id. It returns nil when the product does not
// exist or no API key is configured.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	if c.UsingFixtures() {
		c.logger.Warn("EC3_API_KEY not set, product lookup unavailable", "epd_id", id)
		return nil, nil
	}

	cacheKey := "epd:" + id
	var product Product
	if c.cached(cacheKey, &product) {
		return &product, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&product).
		Get("/epds/{id}")
	metrics.EC3Requests.WithLabelValues("api").Inc()
	if err != nil {
		return nil, errors.ExternalErrorf(err, "EC3 lookup for %s failed", id)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, errors.ExternalErrorf(statusError(resp), "EC3 API error").
			WithContext("epd_id", id).
			WithContext("status", resp.StatusCode())
	}

	c.store(cacheKey, product)
	return &product, nil
}

// Close releases the cache file
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.ExternalError(err, "EC3 rate limit wait cancelled")
	}
	return nil
}

// cached is best effort: read failures count as misses
func (c *Client) cached(key string, v any) bool {
	if c.cache == nil {
		return false
	}
	ok, err := c.cache.Get(key, v)
	if err != nil {
		c.logger.Warn("ec3 cache read failed", "key", key, "error", err)
		return false
	}
	if ok {
		metrics.EC3Requests.WithLabelValues("cache").Inc()
	}
	return ok
}

func (c *Client) store(key string, v any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(key, v); err != nil {
		c.logger.Warn("ec3 cache write failed", "key", key, "error", err)
	}
}

type httpStatusError struct {
	status string
}

func (e httpStatusError) Error() string { return e.status }

func statusError(resp *resty.Response) error {
	return httpStatusError{status: resp.Status()}
}
