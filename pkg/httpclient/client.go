// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"

	fluentlog "github.com/tombee/fluent/internal/log"
	"github.com/tombee/fluent/pkg/body"
	"github.com/tombee/fluent/pkg/pool"
)

// Client is a configured http.Client together with the resources it owns:
// the pool manager behind its transport and the idle monitor sweeping it.
type Client struct {
	httpClient *http.Client
	manager    *pool.Manager
	monitor    *pool.IdleMonitor
	cfg        Config
	mapper     body.ObjectMapper
	logger     *slog.Logger
}

// New translates cfg into an http.Client. The resulting client:
//   - follows redirects up to MaxRedirects, or returns the 3xx when disabled
//   - keeps a public-suffix-aware cookie jar when CookieManagement is set
//   - routes through the explicit proxy, or the environment proxy when
//     UseSystemProperties is set
//   - runs interceptors before the built-in header, logging and metrics layer
//   - sweeps expired and idle pooled connections in the background
//
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := fluentlog.OrDefault(cfg.Logger)

	manager, err := pool.NewManager(cfg.Pool)
	if err != nil {
		return nil, err
	}

	proxy, err := proxyFunc(cfg)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}
	manager.SetProxy(proxy)

	httpClient := &http.Client{
		Transport:     buildTransport(manager, cfg),
		Timeout:       cfg.Timeout,
		CheckRedirect: redirectPolicy(cfg),
	}

	if cfg.CookieManagement {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	var monitor *pool.IdleMonitor
	if cfg.Monitor.Enabled {
		monitor = pool.NewIdleMonitor(manager, cfg.Monitor.Interval, cfg.Monitor.IdleThreshold, logger)
		monitor.Start()
	}

	return &Client{
		httpClient: httpClient,
		manager:    manager,
		monitor:    monitor,
		cfg:        cfg,
		mapper:     body.MapperOrDefault(cfg.ObjectMapper),
		logger:     logger,
	}, nil
}

// NewFromHTTPClient wraps a caller-owned http.Client. The returned client
// has no pool manager and no idle monitor.
func NewFromHTTPClient(c *http.Client) *Client {
	return NewWithResources(c, nil, nil)
}

// NewWithResources assembles a client from explicit parts. Any of them
// may be nil; Close skips nil resources.
func NewWithResources(c *http.Client, m *pool.Manager, mon *pool.IdleMonitor) *Client {
	if c == nil {
		c = &http.Client{}
	}
	return &Client{
		httpClient: c,
		manager:    m,
		monitor:    mon,
		cfg:        DefaultConfig(),
		mapper:     body.JSONMapper{},
		logger:     slog.Default(),
	}
}

// HTTPClient returns the underlying engine client.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// Manager returns the pool manager, or nil for wrapped clients.
func (c *Client) Manager() *pool.Manager { return c.manager }

// Monitor returns the idle monitor, or nil when disabled.
func (c *Client) Monitor() *pool.IdleMonitor { return c.monitor }

// Config returns the configuration the client was built from.
func (c *Client) Config() Config { return c.cfg }

// buildTransport wraps base in the custom layers, outermost first:
// retry, rate limit, interceptors, logging.
func buildTransport(base http.RoundTripper, cfg Config) http.RoundTripper {
	var rt http.RoundTripper = newLoggingTransport(base, cfg)

	if len(cfg.Interceptors) > 0 {
		rt = newInterceptorTransport(rt, cfg.Interceptors)
	}
	if cfg.RateLimit != nil {
		rt = newRateLimitTransport(rt, *cfg.RateLimit)
	}
	if cfg.RetryAttempts > 0 {
		rt = newRetryTransport(rt, cfg)
	}
	return rt
}

const defaultMaxRedirects = 10

func redirectPolicy(cfg Config) func(*http.Request, []*http.Request) error {
	if !cfg.FollowRedirects {
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	limit := cfg.MaxRedirects
	if limit <= 0 {
		limit = defaultMaxRedirects
	}
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return fmt.Errorf("stopped after %d redirects", limit)
		}
		return nil
	}
}

// proxyFunc picks the transport proxy selector. An explicit proxy wins;
// the environment is only consulted when UseSystemProperties is set.
func proxyFunc(cfg Config) (func(*http.Request) (*url.URL, error), error) {
	if cfg.Proxy != nil && cfg.Proxy.URL != "" {
		u, err := cfg.Proxy.proxyURL()
		if err != nil {
			return nil, err
		}
		return http.ProxyURL(u), nil
	}
	if cfg.UseSystemProperties {
		return http.ProxyFromEnvironment, nil
	}
	return nil, nil
}
