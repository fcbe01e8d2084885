package pricing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the pricing API used when none is configured.
const DefaultBaseURL = "https://api.portkey.ai/model-configs/pricing"

// rates holds per-token USD prices resolved from the API.
type rates struct {
	input     float64
	output    float64
	cacheRead float64
}

// Client is a Service backed by a pricing API. Lookups are cached for the
// process lifetime (negative answers included); API failures fall back to
// the static table.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*rates // nil entry = known miss
}

// NewClient builds a pricing client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		cache:   make(map[string]*rates),
	}
}

// Cost prices a call via the API, the static table, or the flat rate, in
// that order.
func (c *Client) Cost(ctx context.Context, provider, model string, promptTokens, completionTokens, cacheReadTokens int) float64 {
	r := c.lookup(ctx, provider, model)
	if r == nil {
		return estimate(model, promptTokens, completionTokens)
	}

	// API prices are cents per token.
	costCents := float64(promptTokens)*r.input +
		float64(completionTokens)*r.output +
		float64(cacheReadTokens)*r.cacheRead
	return costCents / 100
}

func (c *Client) lookup(ctx context.Context, provider, model string) *rates {
	key := provider + "/" + model

	c.mu.RLock()
	r, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return r
	}

	r = c.fetch(ctx, provider, model)

	c.mu.Lock()
	c.cache[key] = r
	c.mu.Unlock()
	return r
}

// fetch asks the pricing API for one model. Any failure is logged and
// returned as a miss.
func (c *Client) fetch(ctx context.Context, provider, model string) *rates {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, provider, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("building pricing request failed", "model", model, "error", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("pricing lookup failed", "model", model, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Warn("pricing API error", "model", model, "status", resp.StatusCode)
		}
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Warn("reading pricing response failed", "model", model, "error", err)
		return nil
	}

	payg := gjson.GetBytes(data, "pricing_config.pay_as_you_go")
	if !payg.Exists() {
		return nil
	}

	return &rates{
		input:     payg.Get("request_token.price").Float(),
		output:    payg.Get("response_token.price").Float(),
		cacheRead: payg.Get("cache_read_input_token.price").Float(),
	}
}
