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

// Package httpclient turns a declarative Config into a ready net/http
// client and adds a small request/response layer on top of it.
//
// The engine stays net/http: connection pooling, TLS, redirects and
// cookies are delegated to http.Client and http.Transport. This package
// maps configuration onto them, runs caller interceptors, keeps a
// background monitor closing stale pooled connections, and tears all of
// it down on Close.
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.FollowRedirects = false
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	resp, err := client.Get(ctx, "https://api.example.com/items")
//
// Requests with route parameters, query strings and bodies:
//
//	req := httpclient.NewRequest(http.MethodPost, "https://api.example.com/items/{id}").
//	    WithRouteParam("id", "42").
//	    WithJSON(item)
//	resp, err := client.Do(ctx, req)
//
// # Transport layers
//
// Outermost first: retry, rate limit, interceptors (in list order),
// then the built-in layer setting default headers, User-Agent,
// correlation ID and trace context while logging and recording metrics,
// and finally the pool manager.
//
// # Retry behavior
//
// Retries are off unless RetryAttempts > 0. When enabled:
//   - Retries HTTP 5xx, 408 and 429 (honoring Retry-After)
//   - Retries transient network errors (connection refused, reset, DNS)
//   - Only retries idempotent methods (GET, HEAD, OPTIONS) by default
//   - Replays request bodies through Request.GetBody
//
// # Observability
//
// Every request is logged via log/slog with the URL sanitized (api_key,
// token, password and similar parameters redacted, userinfo masked):
// Debug for status < 400, Warn otherwise. Prometheus counters and a
// duration histogram are recorded per method and status.
package httpclient
