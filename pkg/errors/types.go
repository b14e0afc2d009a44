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

// Package errors defines the typed errors shared by the fluent packages.
//
// Request failures keep the engine's error as their cause so callers can
// still use errors.Is against net/http and net/url sentinels. Teardown
// failures are collected rather than returned early; see CloseErrors.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents an invalid configuration value or request field.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ConfigError represents a problem loading a configuration file.
type ConfigError struct {
	// Key is the configuration key or file path involved
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// RequestError wraps a failure reported by the HTTP engine while executing a request.
// The cause is left untouched.
type RequestError struct {
	Method string
	URL    string
	Cause  error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the engine error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *RequestError) ErrorType() string {
	return "request"
}

// IsRetryable reports whether the cause looks transient (a timeout).
func (e *RequestError) IsRetryable() bool {
	var timeout interface{ Timeout() bool }
	if errors.As(e.Cause, &timeout) {
		return timeout.Timeout()
	}
	return false
}

// CloseError records a failure while releasing one resource.
type CloseError struct {
	// Resource names what was being closed, e.g. "pool manager"
	Resource string
	Cause    error
}

// Error implements the error interface.
func (e *CloseError) Error() string {
	return fmt.Sprintf("closing %s: %v", e.Resource, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CloseError) Unwrap() error {
	return e.Cause
}

// CloseErrors is the set of failures collected by a best-effort teardown.
// An empty set means every resource was released.
type CloseErrors []error

// Error implements the error interface.
func (c CloseErrors) Error() string {
	msgs := make([]string, 0, len(c))
	for _, err := range c {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil for an empty set and the joined errors otherwise.
func (c CloseErrors) Err() error {
	if len(c) == 0 {
		return nil
	}
	return errors.Join(c...)
}
