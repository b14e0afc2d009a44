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
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/fluent/pkg/body"
	fluenterrors "github.com/tombee/fluent/pkg/errors"
	"github.com/tombee/fluent/pkg/pool"
)

// DefaultUserAgent is sent when a request carries no User-Agent.
const DefaultUserAgent = "fluent-http-client/1.0"

// ProxyConfig routes requests through an explicit proxy.
type ProxyConfig struct {
	// URL of the proxy, e.g. http://proxy.internal:3128.
	URL string `yaml:"url"`

	// Username and Password are sent as Proxy-Authorization: Basic.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RateLimitConfig caps the client's outbound request rate.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Burst defaults to 1.
	Burst int `yaml:"burst"`
}

// MonitorConfig controls the idle-connection monitor.
type MonitorConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	IdleThreshold time.Duration `yaml:"idle_threshold"`
}

// Config holds the options New translates into an http.Client.
type Config struct {
	// FollowRedirects follows 3xx responses. When false the redirect
	// response itself is returned.
	FollowRedirects bool `yaml:"follow_redirects"`

	// MaxRedirects caps followed redirects. Default: 10.
	MaxRedirects int `yaml:"max_redirects"`

	// CookieManagement keeps a cookie jar across requests.
	CookieManagement bool `yaml:"cookie_management"`

	// Proxy sets an explicit proxy. It takes precedence over
	// UseSystemProperties.
	Proxy *ProxyConfig `yaml:"proxy"`

	// Interceptors run in order on every request before any built-in
	// header is applied.
	Interceptors []Interceptor `yaml:"-"`

	// UseSystemProperties honours HTTP_PROXY, HTTPS_PROXY and NO_PROXY
	// when no explicit proxy is configured.
	UseSystemProperties bool `yaml:"use_system_properties"`

	// Timeout bounds a whole request including redirects. 0 means none.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string `yaml:"user_agent"`

	// DefaultHeaders are set on every request that does not already
	// carry them.
	DefaultHeaders map[string]string `yaml:"default_headers"`

	// RetryAttempts is the maximum number of retry attempts (0 = no retries).
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryBackoff is the initial backoff delay before first retry.
	// Default: 100ms. Must be > 0 if RetryAttempts > 0.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxBackoff is the maximum backoff delay cap.
	// Default: 30s. Must be >= RetryBackoff.
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// AllowNonIdempotentRetry enables retry for POST, PUT, PATCH and DELETE.
	AllowNonIdempotentRetry bool `yaml:"allow_non_idempotent_retry"`

	RateLimit *RateLimitConfig `yaml:"rate_limit"`

	Pool    pool.Config   `yaml:"pool"`
	Monitor MonitorConfig `yaml:"monitor"`

	// ObjectMapper encodes Request.WithJSON bodies and decodes
	// Response.Decode. Default: go-json.
	ObjectMapper body.ObjectMapper `yaml:"-"`

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger `yaml:"-"`

	// Tracing emits an OpenTelemetry client span per request.
	Tracing        bool                 `yaml:"tracing"`
	TracerProvider trace.TracerProvider `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		FollowRedirects:  true,
		MaxRedirects:     10,
		CookieManagement: true,
		UserAgent:        DefaultUserAgent,
		RetryBackoff:     100 * time.Millisecond,
		MaxBackoff:       30 * time.Second,
		Pool:             pool.DefaultConfig(),
		Monitor: MonitorConfig{
			Enabled:       true,
			Interval:      pool.DefaultSweepInterval,
			IdleThreshold: pool.DefaultIdleThreshold,
		},
	}
}

func invalid(field, format string, args ...any) error {
	return &fluenterrors.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return invalid("timeout", "must be >= 0, got %v", c.Timeout)
	}

	if c.MaxRedirects < 0 {
		return invalid("max_redirects", "must be >= 0, got %d", c.MaxRedirects)
	}

	if c.RetryAttempts < 0 {
		return invalid("retry_attempts", "must be >= 0, got %d", c.RetryAttempts)
	}

	// If retries enabled, validate retry config
	if c.RetryAttempts > 0 {
		if c.RetryBackoff <= 0 {
			return invalid("retry_backoff", "must be > 0 when retry_attempts > 0, got %v", c.RetryBackoff)
		}
		if c.MaxBackoff < c.RetryBackoff {
			return invalid("max_backoff", "(%v) must be >= retry_backoff (%v)", c.MaxBackoff, c.RetryBackoff)
		}
	}

	if c.UserAgent == "" {
		return invalid("user_agent", "is required and must be non-empty")
	}

	if c.Proxy != nil {
		if err := c.Proxy.validate(); err != nil {
			return err
		}
	}

	if c.RateLimit != nil {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return invalid("rate_limit.requests_per_second", "must be > 0, got %v", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.Burst < 0 {
			return invalid("rate_limit.burst", "must be >= 0, got %d", c.RateLimit.Burst)
		}
	}

	if c.Monitor.Interval < 0 {
		return invalid("monitor.interval", "must be >= 0, got %v", c.Monitor.Interval)
	}
	if c.Monitor.IdleThreshold < 0 {
		return invalid("monitor.idle_threshold", "must be >= 0, got %v", c.Monitor.IdleThreshold)
	}

	return c.Pool.Validate()
}

func (p *ProxyConfig) validate() error {
	if p.URL == "" {
		if p.Username != "" || p.Password != "" {
			return &fluenterrors.ValidationError{
				Field:   "proxy.url",
				Message: "is required when proxy credentials are set",
				Hint:    "set proxy.url or FLUENT_PROXY_URL",
			}
		}
		return nil
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return &fluenterrors.ValidationError{Field: "proxy.url", Message: err.Error()}
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return &fluenterrors.ValidationError{
			Field:   "proxy.url",
			Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
			Hint:    "use http://host:port",
		}
	}
	if u.Host == "" {
		return invalid("proxy.url", "host is required")
	}
	if p.Password != "" && p.Username == "" {
		return invalid("proxy.username", "is required when a password is set")
	}
	return nil
}

// proxyURL returns the proxy URL with the configured credentials as
// userinfo, which net/http turns into Proxy-Authorization.
func (p *ProxyConfig) proxyURL() (*url.URL, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return nil, err
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u, nil
}
