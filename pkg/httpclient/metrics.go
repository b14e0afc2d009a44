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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts requests by method and status code
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluent_http_requests_total",
			Help: "Total HTTP requests sent, by method and status code (\"error\" when no response)",
		},
		[]string{"method", "code"},
	)

	// requestDuration tracks round trip latency
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluent_http_request_duration_seconds",
			Help:    "HTTP round trip duration by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// closeErrors counts failures while closing client resources
	closeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluent_close_errors_total",
			Help: "Total errors collected while closing clients, by resource",
		},
		[]string{"resource"},
	)
)

// recordRequest records one round trip. A zero status means the request
// failed without a response.
func recordRequest(method string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	requestsTotal.WithLabelValues(method, code).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// recordCloseError increments the close error counter
func recordCloseError(resource string) {
	closeErrors.WithLabelValues(resource).Inc()
}
