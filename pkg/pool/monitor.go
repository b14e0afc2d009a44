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
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Monitor defaults.
const (
	DefaultSweepInterval = 5 * time.Second
	DefaultIdleThreshold = 30 * time.Second
)

// Sweeper closes stale connections on request. Manager implements it.
type Sweeper interface {
	CloseExpired() int
	CloseIdle(idle time.Duration) int
}

var _ Sweeper = (*Manager)(nil)

// IdleMonitor periodically sweeps a Sweeper: each tick closes expired
// connections, then those idle beyond the threshold.
type IdleMonitor struct {
	sweeper       Sweeper
	interval      time.Duration
	idleThreshold time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	sweeps atomic.Int64
}

// NewIdleMonitor creates a monitor for sweeper. A zero interval or
// threshold takes the package default.
func NewIdleMonitor(sweeper Sweeper, interval, idleThreshold time.Duration, logger *slog.Logger) *IdleMonitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IdleMonitor{
		sweeper:       sweeper,
		interval:      interval,
		idleThreshold: idleThreshold,
		logger:        logger.With(slog.String("component", "idle-monitor")),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Interval returns the time between sweeps.
func (m *IdleMonitor) Interval() time.Duration { return m.interval }

// IdleThreshold returns how long a connection may sit idle before it is closed.
func (m *IdleMonitor) IdleThreshold() time.Duration { return m.idleThreshold }

// Start launches the sweep loop in a background goroutine and returns
// immediately. Starting a running or stopped monitor does nothing.
func (m *IdleMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.stopped {
		return
	}
	m.started = true
	go m.run()
}

// Stop ends the sweep loop and waits for any in-progress sweep to finish.
// Once Stop returns no further sweep runs. Stop is safe to call before
// Start and more than once.
func (m *IdleMonitor) Stop() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	started := m.started
	close(m.stopCh)
	m.mu.Unlock()

	if started {
		<-m.doneCh
	}
	return nil
}

// Running reports whether the sweep loop is active.
func (m *IdleMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started && !m.stopped
}

// Sweeps returns the number of sweeps completed.
func (m *IdleMonitor) Sweeps() int64 {
	return m.sweeps.Load()
}

// SweepNow runs one sweep synchronously and returns how many connections
// it closed. It does nothing once the monitor is stopped.
func (m *IdleMonitor) SweepNow() int {
	m.mu.Lock()
	stopped := m.stopped
	m.mu.Unlock()
	if stopped {
		return 0
	}
	return m.sweep()
}

func (m *IdleMonitor) run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("idle monitor started",
		"interval", m.interval,
		"idle_threshold", m.idleThreshold,
	)

	for {
		select {
		case <-m.stopCh:
			m.logger.Debug("idle monitor stopping", "sweeps", m.sweeps.Load())
			return
		case <-ticker.C:
			select {
			case <-m.stopCh:
				m.logger.Debug("idle monitor stopping", "sweeps", m.sweeps.Load())
				return
			default:
			}
			m.sweep()
		}
	}
}

// sweep performs a single pass. A panicking sweeper is logged and the
// pass counts as closing nothing.
func (m *IdleMonitor) sweep() (closed int) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("idle connection sweep panicked", "panic", r)
			closed = 0
		}
	}()

	expired := m.sweeper.CloseExpired()
	idle := m.sweeper.CloseIdle(m.idleThreshold)

	m.sweeps.Add(1)
	recordSweep()
	recordReaped(reasonExpired, expired)
	recordReaped(reasonIdle, idle)

	if expired+idle > 0 {
		m.logger.Debug("closed stale connections",
			"expired", expired,
			"idle", idle,
		)
	}
	return expired + idle
}
