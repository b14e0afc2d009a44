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
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned when dialing through a closed Manager.
var ErrClosed = errors.New("connection pool shut down")

// Stats is a snapshot of the tracked connections.
type Stats struct {
	Total int
	Idle  int
	InUse int
	// Uses is the number of requests served across tracked connections.
	Uses int
}

// trackedConn records the lifecycle of one dialed connection.
// lastUsed, idle and uses are guarded by the owning Manager's mutex.
type trackedConn struct {
	net.Conn
	m         *Manager
	created   time.Time
	lastUsed  time.Time
	idle      bool
	uses      int
	closeOnce sync.Once
	closeErr  error
}

// idleNow reports whether the connection is parked. A connection that
// was dialed but never handed to a request counts as idle since it was
// dialed: the transport pools it directly when the request that
// triggered the dial is canceled first.
func (c *trackedConn) idleNow() bool {
	return c.idle || c.uses == 0
}

func (c *trackedConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Conn.Close()
		c.m.forget(c)
	})
	return c.closeErr
}

// Manager is an http.RoundTripper over an http.Transport that knows which
// of the transport's connections are idle and for how long.
//
// A connection counts as in use from the moment a request receives it
// until the transport returns it to its idle pool. HTTP/2 connections are never
// reported idle by net/http and are left to IdleConnTimeout.
type Manager struct {
	cfg       Config
	transport *http.Transport
	dialer    *net.Dialer
	now       func() time.Time

	mu     sync.Mutex
	conns  map[*trackedConn]struct{}
	closed bool
}

// NewManager builds a Manager and its transport from cfg. Zero fields
// take their DefaultConfig values.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = withDefaults(cfg)

	m := &Manager{
		cfg:   cfg,
		now:   time.Now,
		conns: make(map[*trackedConn]struct{}),
		dialer: &net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		},
	}

	m.transport = &http.Transport{
		DialContext:           m.dialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,
	}
	if cfg.TLSInsecureSkipVerify {
		m.transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in
	}

	return m, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = def.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = def.KeepAlive
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = def.TLSHandshakeTimeout
	}
	if cfg.ExpectContinueTimeout == 0 {
		cfg.ExpectContinueTimeout = def.ExpectContinueTimeout
	}
	return cfg
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// Transport exposes the underlying transport.
func (m *Manager) Transport() *http.Transport { return m.transport }

// SetProxy sets the transport's proxy selector. Call it before the
// manager serves requests.
func (m *Manager) SetProxy(proxy func(*http.Request) (*url.URL, error)) {
	m.transport.Proxy = proxy
}

func (m *Manager) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	conn, err := m.dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	now := m.now()
	tc := &trackedConn{Conn: conn, m: m, created: now, lastUsed: now}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		_ = conn.Close()
		return nil, ErrClosed
	}
	m.conns[tc] = struct{}{}
	return tc, nil
}

// RoundTrip sends req through the transport, following the connection
// it is served on.
func (m *Manager) RoundTrip(req *http.Request) (*http.Response, error) {
	var used atomic.Pointer[trackedConn]

	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if tc := m.lookup(info.Conn); tc != nil {
				used.Store(tc)
				m.markBusy(tc)
			}
		},
		PutIdleConn: func(err error) {
			if err != nil {
				return
			}
			if tc := used.Load(); tc != nil {
				m.markIdle(tc)
			}
		},
	}

	ctx := httptrace.WithClientTrace(req.Context(), trace)
	return m.transport.RoundTrip(req.WithContext(ctx))
}

// lookup maps the conn reported by httptrace back to its tracker.
func (m *Manager) lookup(c net.Conn) *trackedConn {
	if tlsConn, ok := c.(*tls.Conn); ok {
		c = tlsConn.NetConn()
	}
	tc, ok := c.(*trackedConn)
	if !ok {
		return nil
	}
	return tc
}

func (m *Manager) markBusy(tc *trackedConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tc.idle = false
	tc.uses++
	tc.lastUsed = m.now()
}

func (m *Manager) markIdle(tc *trackedConn) {
	m.mu.Lock()
	tc.idle = true
	tc.lastUsed = m.now()
	closed := m.closed
	m.mu.Unlock()

	if closed {
		_ = tc.Close()
	}
}

func (m *Manager) forget(tc *trackedConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, tc)
}

// closeWhere removes every idle connection matching pred from the
// tracked set and closes it outside the lock.
func (m *Manager) closeWhere(pred func(tc *trackedConn, now time.Time) bool) int {
	now := m.now()

	m.mu.Lock()
	var victims []*trackedConn
	for tc := range m.conns {
		if tc.idleNow() && pred(tc, now) {
			victims = append(victims, tc)
			delete(m.conns, tc)
		}
	}
	m.mu.Unlock()

	for _, tc := range victims {
		_ = tc.Close()
	}
	return len(victims)
}

// CloseExpired closes idle connections older than ConnTTL and returns how
// many were closed. It does nothing when ConnTTL is 0.
func (m *Manager) CloseExpired() int {
	ttl := m.cfg.ConnTTL
	if ttl <= 0 {
		return 0
	}
	return m.closeWhere(func(tc *trackedConn, now time.Time) bool {
		return now.Sub(tc.created) >= ttl
	})
}

// CloseIdle closes connections that have been idle for at least d.
func (m *Manager) CloseIdle(d time.Duration) int {
	return m.closeWhere(func(tc *trackedConn, now time.Time) bool {
		return now.Sub(tc.lastUsed) >= d
	})
}

// CloseIdleConnections closes every idle connection held by the transport.
func (m *Manager) CloseIdleConnections() {
	m.transport.CloseIdleConnections()
}

// Stats returns a snapshot of the tracked connections.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Stats
	for tc := range m.conns {
		s.Total++
		if tc.idleNow() {
			s.Idle++
		} else {
			s.InUse++
		}
		s.Uses += tc.uses
	}
	return s
}

// Close closes idle connections and refuses further dials. In-flight
// connections finish and are closed when the transport releases them.
// Calling Close more than once is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.transport.CloseIdleConnections()
	m.CloseIdle(0)
	return nil
}

// Closed reports whether Close has been called.
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
