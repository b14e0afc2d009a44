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

/*
Package tracing provides OpenTelemetry tracing and correlation IDs for
outbound HTTP requests.

# Client spans

The HTTP client starts one client span per request and injects the W3C
traceparent header:

	ctx, span := tracing.StartClientSpan(ctx, tp, req, displayURL)
	tracing.InjectHTTPHeaders(ctx, req)
	resp, err := next.RoundTrip(req.WithContext(ctx))
	tracing.EndClientSpan(span, resp, err)

A nil TracerProvider falls back to the global otel provider, which is a
no-op unless the application installs one.

# Local provider

NewProvider builds an SDK TracerProvider that writes finished spans to
a slog.Logger. The CLI uses it for --trace:

	p := tracing.NewProvider(tracing.Config{ServiceName: "fluent", SampleRate: 1}, logger)
	defer p.Shutdown(ctx)
	cfg.TracerProvider = p

# Correlation IDs

Correlation IDs link a request to server-side logs:

	ctx = tracing.WithCorrelationID(ctx, tracing.NewCorrelationID())
	id := tracing.FromContext(ctx)

The client sends the ID as X-Correlation-ID.
*/
package tracing
