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
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	fluentlog "github.com/tombee/fluent/internal/log"
)

// captured is what the capture server saw for one request.
type captured struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// captureServer records every request it receives. Besides the catch-all
// echo route it serves /redirect, /loop, /set-cookie and /status/{code}.
type captureServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []captured
}

func newCaptureServer(t *testing.T) *captureServer {
	t.Helper()
	cs := &captureServer{}

	r := chi.NewRouter()
	r.Use(cs.record)
	r.Get("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	r.Get("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	r.Get("/set-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		switch code {
		case "404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(r.Method + " " + r.URL.Path))
	})

	cs.Server = httptest.NewServer(r)
	t.Cleanup(cs.Close)
	return cs
}

// record stores the request and replaces its body so handlers can still
// read it.
func (cs *captureServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		cs.mu.Lock()
		cs.requests = append(cs.requests, captured{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   data,
		})
		cs.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(data))
		next.ServeHTTP(w, r)
	})
}

func (cs *captureServer) all() []captured {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]captured(nil), cs.requests...)
}

func (cs *captureServer) last(t *testing.T) captured {
	t.Helper()
	reqs := cs.all()
	require.NotEmpty(t, reqs, "server received no requests")
	return reqs[len(reqs)-1]
}

// testConfig returns defaults with the monitor off and logging discarded.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Monitor.Enabled = false
	cfg.Logger = fluentlog.Discard()
	return cfg
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}
