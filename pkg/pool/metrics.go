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

package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonExpired = "expired"
	reasonIdle    = "idle"
)

var (
	// reapedConnections counts connections closed by sweeps
	reapedConnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluent_pool_reaped_connections_total",
			Help: "Total pooled connections closed by the idle monitor, by reason",
		},
		[]string{"reason"},
	)

	// sweepsTotal counts completed sweeps
	sweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fluent_pool_sweeps_total",
			Help: "Total idle connection sweeps performed",
		},
	)
)

func recordReaped(reason string, n int) {
	if n > 0 {
		reapedConnections.WithLabelValues(reason).Add(float64(n))
	}
}

func recordSweep() {
	sweepsTotal.Inc()
}
