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
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentlog "github.com/tombee/fluent/internal/log"
	fluenterrors "github.com/tombee/fluent/pkg/errors"
	"github.com/tombee/fluent/pkg/pool"
)

// closingTransport is a RoundTripper that is also an io.Closer.
type closingTransport struct {
	http.RoundTripper
	closeErr error
	panics   bool
	closed   int
}

func (c *closingTransport) Close() error {
	c.closed++
	if c.panics {
		panic("transport exploded")
	}
	return c.closeErr
}

func newResources(t *testing.T) (*pool.Manager, *pool.IdleMonitor) {
	t.Helper()
	m, err := pool.NewManager(pool.DefaultConfig())
	require.NoError(t, err)
	mon := pool.NewIdleMonitor(m, time.Hour, time.Hour, fluentlog.Discard())
	mon.Start()
	return m, mon
}

func TestClose_ReleasesEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logger = fluentlog.Discard()
	c, err := New(cfg)
	require.NoError(t, err)

	errs := c.Close()
	assert.Empty(t, errs)
	assert.NotNil(t, errs)
	assert.True(t, c.Manager().Closed())
	assert.False(t, c.Monitor().Running())
}

func TestClose_Twice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logger = fluentlog.Discard()
	c, err := New(cfg)
	require.NoError(t, err)

	assert.Empty(t, c.Close())
	assert.Empty(t, c.Close())
}

func TestClose_AlreadyClosedManager(t *testing.T) {
	m, mon := newResources(t)
	require.NoError(t, m.Close())

	c := NewWithResources(&http.Client{Transport: m}, m, mon)
	assert.Empty(t, c.Close())
	assert.False(t, mon.Running())
}

func TestClose_ContinuesAfterFailure(t *testing.T) {
	m, mon := newResources(t)
	closeFail := errors.New("close failed")
	transport := &closingTransport{RoundTripper: m, closeErr: closeFail}

	before := testutil.ToFloat64(closeErrors.WithLabelValues(resourceClient))

	c := NewWithResources(&http.Client{Transport: transport}, m, mon)
	c.logger = fluentlog.Discard()
	errs := c.Close()

	require.Len(t, errs, 1)
	var closeErr *fluenterrors.CloseError
	require.True(t, errors.As(errs[0], &closeErr))
	assert.Equal(t, resourceClient, closeErr.Resource)
	assert.ErrorIs(t, errs[0], closeFail)

	assert.Equal(t, 1, transport.closed)
	assert.True(t, m.Closed(), "manager must still be closed")
	assert.False(t, mon.Running(), "monitor must still be stopped")
	assert.Equal(t, before+1, testutil.ToFloat64(closeErrors.WithLabelValues(resourceClient)))

	joined := fluenterrors.CloseErrors(errs).Err()
	assert.ErrorIs(t, joined, closeFail)
}

func TestClose_RecoversPanic(t *testing.T) {
	m, mon := newResources(t)
	transport := &closingTransport{RoundTripper: m, panics: true}

	c := NewWithResources(&http.Client{Transport: transport}, m, mon)
	c.logger = fluentlog.Discard()

	var errs []error
	require.NotPanics(t, func() { errs = c.Close() })
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "transport exploded")
	assert.True(t, m.Closed())
	assert.False(t, mon.Running())
}

func TestClose_NilResources(t *testing.T) {
	c := NewWithResources(nil, nil, nil)
	assert.NotNil(t, c.HTTPClient())
	assert.Empty(t, c.Close())
}

func TestTryDo(t *testing.T) {
	var nilManager *pool.Manager
	called := false
	err := tryDo(nilManager, func(*pool.Manager) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called, "nil resources are skipped")

	m, err := pool.NewManager(pool.DefaultConfig())
	require.NoError(t, err)
	err = tryDo(m, func(*pool.Manager) error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
	_ = m.Close()
}
