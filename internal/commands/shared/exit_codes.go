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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

// Exit codes for fluent commands
const (
	ExitSuccess       = 0
	ExitRequestFailed = 1
	ExitInvalidUsage  = 2
	ExitHTTPError     = 3 // HTTP status >= 400 with --fail
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewRequestFailedError creates an error for requests that got no response
func NewRequestFailedError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitRequestFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewUsageError creates an error for invalid arguments or configuration
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidUsage,
		Message: msg,
		Cause:   cause,
	}
}

// NewHTTPStatusError creates an error for an HTTP error status
func NewHTTPStatusError(status string) *ExitError {
	return &ExitError{
		Code:    ExitHTTPError,
		Message: "server returned " + status,
	}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitRequestFailed
}

// PrintError writes err, and a suggestion when one is available, to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, "Error:", msg)
	}

	var userErr fluenterrors.UserVisibleError
	if errors.As(err, &userErr) {
		if suggestion := userErr.Suggestion(); suggestion != "" {
			fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
		}
	}
}

// HandleExitError prints err and exits with its exit code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}
