package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
)

// BaseCurrency is the store's source currency. All catalog and cart amounts
// are quoted in it.
const BaseCurrency = "cad"

// RateCache is the cache surface the converter needs (pkg/redis satisfies it).
type RateCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FXKey(base, target string) string
}

// Converter fetches spot exchange rates with a short-TTL cache in front.
// A failed fetch degrades to a rate of 1 rather than blocking checkout:
// availability over accuracy.
type Converter struct {
	httpClient *http.Client
	baseURL    string
	cache      RateCache
	cacheTTL   time.Duration
	logg       *logger.Logger
}

// Option configures optional converter behavior.
type Option func(*Converter)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Converter) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewConverter builds the converter. cache may be nil; every call then hits
// the rate service.
func NewConverter(cfg config.FXConfig, cache RateCache, logg *logger.Logger, opts ...Option) *Converter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	converter := &Converter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		logg:       logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(converter)
		}
	}

	return converter
}

// Rate returns the multiplicative factor from the base currency to target.
// It never fails: par (1) is the fallback for the base currency itself, for
// fetch errors and for unknown currencies.
func (c *Converter) Rate(ctx context.Context, target string) decimal.Decimal {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" || target == BaseCurrency {
		return decimal.NewFromInt(1)
	}

	if cached, ok := c.cachedRate(ctx, target); ok {
		return cached
	}

	rate, err := c.fetchRate(ctx, target)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "target_currency", target),
				fmt.Sprintf("exchange rate fetch failed, falling back to par: %v", err))
		}
		return decimal.NewFromInt(1)
	}

	c.storeRate(ctx, target, rate)
	return rate
}

type ratesResponse struct {
	Result string                     `json:"result"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

func (c *Converter) fetchRate(ctx context.Context, target string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/latest/%s", c.baseURL, strings.ToUpper(BaseCurrency))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("building rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("rate service status %d", resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decoding rate response: %w", err)
	}

	rate, ok := payload.Rates[strings.ToUpper(target)]
	if !ok || !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("rate for %s missing from response", target)
	}
	return rate, nil
}

func (c *Converter) cachedRate(ctx context.Context, target string) (decimal.Decimal, bool) {
	if c.cache == nil {
		return decimal.Decimal{}, false
	}
	raw, err := c.cache.Get(ctx, c.cache.FXKey(BaseCurrency, target))
	if err != nil || raw == "" {
		return decimal.Decimal{}, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Decimal{}, false
	}
	return rate, true
}

func (c *Converter) storeRate(ctx context.Context, target string, rate decimal.Decimal) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	key := c.cache.FXKey(BaseCurrency, target)
	if err := c.cache.Set(ctx, key, rate.String(), c.cacheTTL); err != nil && c.logg != nil {
		c.logg.Warn(ctx, fmt.Sprintf("caching exchange rate failed: %v", err))
	}
}
