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
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentlog "github.com/tombee/fluent/internal/log"
)

type fakeSweeper struct {
	expiredCalls atomic.Int32
	idleCalls    atomic.Int32
	lastIdle     atomic.Int64
	expired      int
	idle         int
	panics       atomic.Bool
}

func (f *fakeSweeper) CloseExpired() int {
	f.expiredCalls.Add(1)
	if f.panics.Load() {
		panic("sweeper exploded")
	}
	return f.expired
}

func (f *fakeSweeper) CloseIdle(d time.Duration) int {
	f.idleCalls.Add(1)
	f.lastIdle.Store(int64(d))
	return f.idle
}

func TestNewIdleMonitor_Defaults(t *testing.T) {
	m := NewIdleMonitor(&fakeSweeper{}, 0, 0, nil)
	assert.Equal(t, 5*time.Second, m.Interval())
	assert.Equal(t, 30*time.Second, m.IdleThreshold())
	assert.False(t, m.Running())
}

func TestIdleMonitor_SweepsPeriodically(t *testing.T) {
	s := &fakeSweeper{}
	m := NewIdleMonitor(s, 5*time.Millisecond, 42*time.Second, fluentlog.Discard())
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return m.Sweeps() >= 3 }, 2*time.Second, time.Millisecond)
	assert.True(t, m.Running())
	assert.Equal(t, int64(42*time.Second), s.lastIdle.Load())
	assert.GreaterOrEqual(t, s.expiredCalls.Load(), int32(3))
}

func TestIdleMonitor_NoSweepAfterStop(t *testing.T) {
	s := &fakeSweeper{}
	m := NewIdleMonitor(s, time.Millisecond, time.Second, fluentlog.Discard())
	m.Start()

	require.Eventually(t, func() bool { return m.Sweeps() > 0 }, 2*time.Second, time.Millisecond)
	require.NoError(t, m.Stop())

	calls := s.idleCalls.Load()
	sweeps := m.Sweeps()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, calls, s.idleCalls.Load())
	assert.Equal(t, sweeps, m.Sweeps())
	assert.False(t, m.Running())
	assert.Equal(t, 0, m.SweepNow())
	assert.Equal(t, calls, s.idleCalls.Load())
}

func TestIdleMonitor_StopIsIdempotent(t *testing.T) {
	m := NewIdleMonitor(&fakeSweeper{}, time.Millisecond, time.Second, fluentlog.Discard())
	m.Start()
	m.Start()
	assert.NoError(t, m.Stop())
	assert.NoError(t, m.Stop())
}

func TestIdleMonitor_StopBeforeStart(t *testing.T) {
	s := &fakeSweeper{}
	m := NewIdleMonitor(s, time.Millisecond, time.Second, fluentlog.Discard())
	assert.NoError(t, m.Stop())

	m.Start()
	time.Sleep(10 * time.Millisecond)
	assert.False(t, m.Running())
	assert.Equal(t, int32(0), s.expiredCalls.Load())
}

func TestIdleMonitor_RecoversFromPanic(t *testing.T) {
	s := &fakeSweeper{}
	s.panics.Store(true)
	m := NewIdleMonitor(s, time.Millisecond, time.Second, fluentlog.Discard())
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return s.expiredCalls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	assert.True(t, m.Running())

	s.panics.Store(false)
	require.Eventually(t, func() bool { return m.Sweeps() > 0 }, 2*time.Second, time.Millisecond)
}

func TestIdleMonitor_SweepNowRecordsMetrics(t *testing.T) {
	s := &fakeSweeper{expired: 2, idle: 3}
	m := NewIdleMonitor(s, time.Hour, time.Second, fluentlog.Discard())

	sweepsBefore := testutil.ToFloat64(sweepsTotal)
	expiredBefore := testutil.ToFloat64(reapedConnections.WithLabelValues(reasonExpired))
	idleBefore := testutil.ToFloat64(reapedConnections.WithLabelValues(reasonIdle))

	assert.Equal(t, 5, m.SweepNow())
	assert.Equal(t, int64(1), m.Sweeps())

	assert.Equal(t, sweepsBefore+1, testutil.ToFloat64(sweepsTotal))
	assert.Equal(t, expiredBefore+2, testutil.ToFloat64(reapedConnections.WithLabelValues(reasonExpired)))
	assert.Equal(t, idleBefore+3, testutil.ToFloat64(reapedConnections.WithLabelValues(reasonIdle)))
}

func TestIdleMonitor_ReapsRealConnections(t *testing.T) {
	srv := newCountingServer(t)
	mgr, c := newTestManager(t, Config{})

	get(t, c, srv.URL)
	waitIdle(t, mgr, 1)

	mon := NewIdleMonitor(mgr, 5*time.Millisecond, time.Millisecond, fluentlog.Discard())
	mon.Start()
	defer mon.Stop()

	require.Eventually(t, func() bool { return mgr.Stats().Total == 0 }, 2*time.Second, 5*time.Millisecond)
}
