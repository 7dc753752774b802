package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	Name  string
	Kind  catalog.Kind
	URL   string
	Token string
	Proxy string

	// RatePerMinute caps requests; zero means unlimited.
	RatePerMinute int
	RetryMax      int
	RetryWaitMin  time.Duration
	Timeout       time.Duration
}

// HTTPSource GETs a JSON collection from a backend endpoint.
type HTTPSource struct {
	cfg     HTTPConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("source %s: missing url", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.Kind)
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 4
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.HTTPClient.Timeout = cfg.Timeout

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		client.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(float64(cfg.RatePerMinute) / 60.0)
	}

	return &HTTPSource{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (s *HTTPSource) Name() string       { return s.cfg.Name }
func (s *HTTPSource) Kind() catalog.Kind { return s.cfg.Kind }

func (s *HTTPSource) Fetch(ctx context.Context) ([]catalog.RawRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Source: s.cfg.Name, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: s.cfg.Name, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gigscope")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: s.cfg.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Source: s.cfg.Name, Err: fmt.Errorf("HTTP %d for %s", resp.StatusCode, s.cfg.URL)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: s.cfg.Name, Err: err}
	}

	records, err := DecodeCollection(body, s.cfg.Kind)
	if err != nil {
		return nil, &FetchError{Source: s.cfg.Name, Err: err}
	}
	return records, nil
}
