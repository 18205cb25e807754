// Package fetch retrieves raw problem and contest data from the upstream
// platforms. Each document has an ordered list of endpoint candidates
// (direct URL first, CORS-proxy mirrors after); every attempt is bounded by
// a deadline and wrapped in a per-host rate limiter and circuit breaker.
// Exhausting the chain yields ErrAllCandidatesFailed, never a panic and
// never a partial mutation of shared state.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/gymrun/gymrun/internal/config"
	"github.com/gymrun/gymrun/internal/metrics"
)

// ErrAllCandidatesFailed signals that every endpoint candidate for a
// document failed. Callers treat it as "no data", not as a fault.
var ErrAllCandidatesFailed = errors.New("all endpoint candidates failed")

// Client performs rate-limited, breaker-guarded upstream requests.
type Client struct {
	http    *http.Client
	timeout time.Duration
	sources config.SourcesConfig
	metrics *metrics.Registry

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewClient builds a fetch client from the source configuration.
func NewClient(cfg config.SourcesConfig, m *metrics.Registry) *Client {
	return &Client{
		http: &http.Client{
			// Per-attempt deadlines come from the context; this is the
			// absolute backstop.
			Timeout: cfg.RequestTimeout + 2*time.Second,
		},
		timeout:  cfg.RequestTimeout,
		sources:  cfg,
		metrics:  m,
		limiters: make(map[string]*rate.Limiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(c.sources.RateLimitRPS), c.sources.RateLimitBurst)
	c.limiters[host] = l
	return l
}

func (c *Client) breaker(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.breakers[host]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	c.breakers[host] = b
	return b
}

// getJSON performs one bounded attempt against a single candidate URL and
// decodes the body into out.
func (c *Client) getJSON(ctx context.Context, candidate string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gymrun/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// fetchChain walks the candidate list in priority order. Each candidate
// gets exactly one attempt; decode decides whether the payload is usable.
func (c *Client) fetchChain(ctx context.Context, platform string, candidates []string, decode func(json.RawMessage) error) error {
	if len(candidates) == 0 {
		return ErrAllCandidatesFailed
	}

	for _, candidate := range candidates {
		host := hostOf(candidate)
		start := time.Now()

		if !c.limiter(host).Allow() {
			log.Warn().Str("platform", platform).Str("host", host).
				Msg("rate limit exceeded, skipping candidate")
			c.metrics.ObserveFetch(platform, host, "rate_limited", time.Since(start))
			continue
		}

		_, err := c.breaker(host).Execute(func() (interface{}, error) {
			var raw json.RawMessage
			if err := c.getJSON(ctx, candidate, &raw); err != nil {
				return nil, err
			}
			return nil, decode(raw)
		})
		if err == nil {
			c.metrics.ObserveFetch(platform, host, "ok", time.Since(start))
			log.Debug().Str("platform", platform).Str("host", host).
				Dur("elapsed", time.Since(start)).Msg("candidate succeeded")
			return nil
		}

		c.metrics.ObserveFetch(platform, host, "error", time.Since(start))
		log.Warn().Str("platform", platform).Str("host", host).Err(err).
			Msg("candidate failed, advancing")

		if ctx.Err() != nil {
			break
		}
	}
	return ErrAllCandidatesFailed
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
