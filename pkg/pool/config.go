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

// Package pool tracks the connections held by an http.Transport so that
// expired and long-idle ones can be closed from outside the transport.
//
// Pooling itself stays inside net/http. Manager wraps every dialed
// connection and watches it through httptrace hooks; IdleMonitor sweeps
// a Manager on a timer.
package pool

import (
	"time"

	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

// Config sizes the pool and sets connection timeouts.
type Config struct {
	// MaxIdleConns caps idle connections across all hosts.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost caps idle connections kept per host.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// MaxConnsPerHost caps all connections per host. 0 means no limit.
	MaxConnsPerHost int `yaml:"max_conns_per_host"`

	// IdleConnTimeout is the transport's own idle cutoff.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// ConnTTL is the maximum age of a connection. 0 means unbounded.
	ConnTTL time.Duration `yaml:"conn_ttl"`

	DialTimeout           time.Duration `yaml:"dial_timeout"`
	KeepAlive             time.Duration `yaml:"keep_alive"`
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout"`

	// TLSInsecureSkipVerify disables certificate verification.
	TLSInsecureSkipVerify bool `yaml:"tls_insecure_skip_verify"`
}

// DefaultConfig returns the pool defaults.
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Validate rejects negative sizes and durations.
func (c Config) Validate() error {
	ints := []struct {
		field string
		v     int
	}{
		{"max_idle_conns", c.MaxIdleConns},
		{"max_idle_conns_per_host", c.MaxIdleConnsPerHost},
		{"max_conns_per_host", c.MaxConnsPerHost},
	}
	for _, f := range ints {
		if f.v < 0 {
			return &fluenterrors.ValidationError{
				Field:   "pool." + f.field,
				Message: "must not be negative",
			}
		}
	}

	durations := []struct {
		field string
		d     time.Duration
	}{
		{"idle_conn_timeout", c.IdleConnTimeout},
		{"conn_ttl", c.ConnTTL},
		{"dial_timeout", c.DialTimeout},
		{"keep_alive", c.KeepAlive},
		{"tls_handshake_timeout", c.TLSHandshakeTimeout},
		{"response_header_timeout", c.ResponseHeaderTimeout},
		{"expect_continue_timeout", c.ExpectContinueTimeout},
	}
	for _, f := range durations {
		if f.d < 0 {
			return &fluenterrors.ValidationError{
				Field:   "pool." + f.field,
				Message: "must not be negative",
				Hint:    "use 0 to fall back to the default",
			}
		}
	}
	return nil
}
