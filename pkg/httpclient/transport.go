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
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	fluentlog "github.com/tombee/fluent/internal/log"
	"github.com/tombee/fluent/internal/tracing"
)

// loggingTransport is the innermost custom layer. It provides:
// - Default headers and User-Agent
// - Correlation ID and W3C trace context propagation
// - Optional client spans
// - Request logging with sanitized URLs
// - Request metrics
type loggingTransport struct {
	base           http.RoundTripper
	userAgent      string
	defaultHeaders map[string]string
	logger         *slog.Logger
	tracing        bool
	tracerProvider trace.TracerProvider
}

// newLoggingTransport creates a new logging transport that wraps the base transport.
func newLoggingTransport(base http.RoundTripper, cfg Config) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &loggingTransport{
		base:           base,
		userAgent:      cfg.UserAgent,
		defaultHeaders: cfg.DefaultHeaders,
		logger:         fluentlog.OrDefault(cfg.Logger),
		tracing:        cfg.Tracing,
		tracerProvider: cfg.TracerProvider,
	}
}

// RoundTrip implements http.RoundTripper.
// Logs all requests with method, URL (sanitized), status/error, and duration.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	r := req.Clone(req.Context())

	for k, v := range t.defaultHeaders {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	if r.Header.Get("User-Agent") == "" && t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}

	tracing.InjectIntoRequest(r)

	logURL := sanitizeURL(r.URL)

	var span trace.Span
	if t.tracing {
		var ctx context.Context
		ctx, span = tracing.StartClientSpan(r.Context(), t.tracerProvider, r, logURL)
		r = r.WithContext(ctx)
	}
	tracing.InjectHTTPHeaders(r.Context(), r)

	fluentlog.Trace(r.Context(), t.logger, "http request headers",
		slog.String(fluentlog.MethodKey, r.Method),
		slog.String(fluentlog.URLKey, logURL),
		slog.String("headers", dumpHeaders(r.Header)),
	)

	resp, err := t.base.RoundTrip(r)
	elapsed := time.Since(start)
	duration := elapsed.Milliseconds()

	if span != nil {
		tracing.EndClientSpan(span, resp, err)
	}

	if err != nil {
		recordRequest(r.Method, 0, elapsed)
		t.logger.Warn("http request failed",
			fluentlog.MethodKey, r.Method,
			fluentlog.URLKey, logURL,
			fluentlog.DurationKey, duration,
			"error", err.Error(),
		)
		return nil, err
	}

	recordRequest(r.Method, resp.StatusCode, elapsed)

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(r.Context(), level, "http request",
		fluentlog.MethodKey, r.Method,
		fluentlog.URLKey, logURL,
		fluentlog.StatusKey, resp.StatusCode,
		fluentlog.DurationKey, duration,
	)

	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport.
func (t *loggingTransport) CloseIdleConnections() {
	closeIdle(t.base)
}

var secretHeaders = map[string]bool{
	"Authorization":        true,
	"Proxy-Authorization":  true,
	"Cookie":               true,
	"X-Amz-Security-Token": true,
}

// dumpHeaders renders headers sorted by name with credentials redacted.
func dumpHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		v := strings.Join(h[k], ",")
		if secretHeaders[k] {
			v = fluentlog.SanitizeSecret(v)
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
	}
	return b.String()
}

// closeIdle calls CloseIdleConnections on rt when it supports it.
func closeIdle(rt http.RoundTripper) {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if ci, ok := rt.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}
