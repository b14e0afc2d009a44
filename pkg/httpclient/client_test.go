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
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

func TestNew_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	hc := c.HTTPClient()
	assert.NotNil(t, hc.Jar, "cookie jar should be enabled by default")
	assert.Equal(t, time.Duration(0), hc.Timeout)
	assert.NotNil(t, hc.CheckRedirect)
	require.NotNil(t, c.Manager())
	require.NotNil(t, c.Monitor())
	assert.True(t, c.Monitor().Running())
	assert.Equal(t, cfg.Monitor.Interval, c.Monitor().Interval())
	assert.Nil(t, c.Manager().Transport().Proxy, "no proxy unless configured")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = -time.Second

	c, err := New(cfg)
	require.Error(t, err)
	assert.Nil(t, c)

	var verr *fluenterrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "timeout", verr.Field)
}

func TestNew_MonitorDisabled(t *testing.T) {
	c := newTestClient(t, testConfig())
	assert.Nil(t, c.Monitor())
	assert.NotNil(t, c.Manager())
}

func TestNew_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	c := newTestClient(t, cfg)
	assert.Equal(t, 50*time.Millisecond, c.HTTPClient().Timeout)

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)

	var reqErr *fluenterrors.RequestError
	require.True(t, errors.As(err, &reqErr))
	var urlErr *url.Error
	require.True(t, errors.As(err, &urlErr))
	assert.True(t, urlErr.Timeout())
}

func TestNew_RedirectsDisabledReturnsRedirect(t *testing.T) {
	srv := newCaptureServer(t)
	cfg := testConfig()
	cfg.FollowRedirects = false
	c := newTestClient(t, cfg)

	resp, err := c.Get(context.Background(), srv.URL+"/redirect")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/target", resp.Header.Get("Location"))
	assert.Len(t, srv.all(), 1)
}

func TestNew_RedirectsFollowed(t *testing.T) {
	srv := newCaptureServer(t)
	c := newTestClient(t, testConfig())

	resp, err := c.Get(context.Background(), srv.URL+"/redirect")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET /target", resp.String())
}

func TestNew_MaxRedirects(t *testing.T) {
	srv := newCaptureServer(t)
	cfg := testConfig()
	cfg.MaxRedirects = 2
	c := newTestClient(t, cfg)

	_, err := c.Get(context.Background(), srv.URL+"/loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 2 redirects")
	assert.Len(t, srv.all(), 3)
}

func TestNew_Cookies(t *testing.T) {
	tests := []struct {
		name       string
		cookies    bool
		wantCookie string
	}{
		{name: "enabled", cookies: true, wantCookie: "session=abc123"},
		{name: "disabled", cookies: false, wantCookie: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCaptureServer(t)
			cfg := testConfig()
			cfg.CookieManagement = tt.cookies
			c := newTestClient(t, cfg)

			first, err := c.Get(context.Background(), srv.URL+"/set-cookie")
			require.NoError(t, err)
			require.Len(t, first.Cookies(), 1)

			_, err = c.Get(context.Background(), srv.URL+"/echo")
			require.NoError(t, err)

			assert.Equal(t, tt.wantCookie, srv.last(t).Header.Get("Cookie"))
			if !tt.cookies {
				assert.Nil(t, c.HTTPClient().Jar)
			}
		})
	}
}

func TestNew_ProxyCredentials(t *testing.T) {
	var (
		mu        sync.Mutex
		proxyAuth string
		target    string
	)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		proxyAuth = r.Header.Get("Proxy-Authorization")
		target = r.URL.String()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer proxy.Close()

	cfg := testConfig()
	cfg.Proxy = &ProxyConfig{URL: proxy.URL, Username: "user", Password: "pass"}
	c := newTestClient(t, cfg)

	resp, err := c.Get(context.Background(), "http://upstream.example/resource")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
	assert.Equal(t, want, proxyAuth)
	assert.Equal(t, "http://upstream.example/resource", target)
}

func TestNew_SystemProxy(t *testing.T) {
	cfg := testConfig()
	cfg.UseSystemProperties = true
	c := newTestClient(t, cfg)
	assert.NotNil(t, c.Manager().Transport().Proxy)

	cfg.Proxy = &ProxyConfig{URL: "http://proxy.internal:3128"}
	explicit := newTestClient(t, cfg)
	u, err := explicit.Manager().Transport().Proxy(httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal:3128", u.Host)
}

func TestNew_WithRetries(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RetryAttempts = 2
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	c := newTestClient(t, cfg)

	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestNew_RateLimit(t *testing.T) {
	srv := newCaptureServer(t)
	cfg := testConfig()
	cfg.RateLimit = &RateLimitConfig{RequestsPerSecond: 10, Burst: 1}
	c := newTestClient(t, cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestClient_VerbHelpers(t *testing.T) {
	srv := newCaptureServer(t)
	c := newTestClient(t, testConfig())
	ctx := context.Background()

	tests := []struct {
		method string
		call   func() (*Response, error)
		body   string
	}{
		{method: http.MethodGet, call: func() (*Response, error) { return c.Get(ctx, srv.URL+"/v") }},
		{method: http.MethodHead, call: func() (*Response, error) { return c.Head(ctx, srv.URL+"/v") }},
		{method: http.MethodOptions, call: func() (*Response, error) { return c.Options(ctx, srv.URL+"/v") }},
		{method: http.MethodDelete, call: func() (*Response, error) { return c.Delete(ctx, srv.URL+"/v") }},
		{
			method: http.MethodPost,
			call:   func() (*Response, error) { return c.Post(ctx, srv.URL+"/v", strings.NewReader("p"), "text/plain") },
			body:   "p",
		},
		{
			method: http.MethodPut,
			call:   func() (*Response, error) { return c.Put(ctx, srv.URL+"/v", strings.NewReader("u"), "text/plain") },
			body:   "u",
		},
		{
			method: http.MethodPatch,
			call:   func() (*Response, error) { return c.Patch(ctx, srv.URL+"/v", strings.NewReader("x"), "text/plain") },
			body:   "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp, err := tt.call()
			require.NoError(t, err)
			assert.True(t, resp.IsSuccess())

			got := srv.last(t)
			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.body, string(got.Body))
			if tt.body != "" {
				assert.Equal(t, "text/plain", got.Header.Get("Content-Type"))
			}
		})
	}
}

func TestClient_NetworkErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := newTestClient(t, testConfig())
	_, err := c.Get(context.Background(), addr+"/gone?token=secret")
	require.Error(t, err)

	var reqErr *fluenterrors.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.MethodGet, reqErr.Method)
	assert.NotContains(t, reqErr.URL, "secret")

	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr), "engine error should stay reachable")
}

func TestClient_InterceptorsRunInOrderBeforeBuiltins(t *testing.T) {
	srv := newCaptureServer(t)

	var (
		mu      sync.Mutex
		seenUA  []string
		ordered []string
	)
	record := func(name string) Interceptor {
		return InterceptorFunc(func(req *http.Request) error {
			mu.Lock()
			defer mu.Unlock()
			ordered = append(ordered, name)
			seenUA = append(seenUA, req.Header.Get("User-Agent"))
			req.Header.Add("X-Order", name)
			return nil
		})
	}

	cfg := testConfig()
	cfg.DefaultHeaders = map[string]string{"X-Order": "default", "X-Team": "core"}
	cfg.Interceptors = []Interceptor{record("first"), record("second"), HeaderInterceptor("User-Agent", "custom/2.0")}
	c := newTestClient(t, cfg)

	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	got := srv.last(t)
	assert.Equal(t, []string{"first", "second"}, got.Header.Values("X-Order"))
	assert.Equal(t, "core", got.Header.Get("X-Team"))
	assert.Equal(t, "custom/2.0", got.Header.Get("User-Agent"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, ordered)
	assert.Equal(t, []string{"", ""}, seenUA, "built-in User-Agent must not be applied yet")
}

func TestClient_InterceptorErrorAbortsRequest(t *testing.T) {
	srv := newCaptureServer(t)
	boom := errors.New("denied")

	cfg := testConfig()
	cfg.Interceptors = []Interceptor{
		HeaderInterceptor("X-A", "1"),
		InterceptorFunc(func(*http.Request) error { return boom }),
	}
	c := newTestClient(t, cfg)

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var icErr *InterceptorError
	require.True(t, errors.As(err, &icErr))
	assert.Equal(t, 1, icErr.Index)
	assert.Empty(t, srv.all())
}

func TestNewFromHTTPClient(t *testing.T) {
	srv := newCaptureServer(t)
	c := NewFromHTTPClient(srv.Client())

	assert.Same(t, srv.Client(), c.HTTPClient())
	assert.Nil(t, c.Manager())
	assert.Nil(t, c.Monitor())

	resp, err := c.Get(context.Background(), srv.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, "GET /plain", resp.String())
	assert.Empty(t, c.Close())
}
