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

	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Usage errors (E001-E099)
	ErrorCodeInvalidUsage  = "E001"
	ErrorCodeInvalidConfig = "E002"
	ErrorCodeInvalidField  = "E003"

	// Transport errors (E100-E199)
	ErrorCodeRequestFailed = "E101"
	ErrorCodeTimeout       = "E102"

	// Response errors (E200-E299)
	ErrorCodeHTTPStatus = "E201"
)

// ErrorCodeFor maps err to a JSON error code. The most specific typed
// error in the chain wins over the exit code.
func ErrorCodeFor(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *fluenterrors.RequestError
	if errors.As(err, &reqErr) && reqErr.IsRetryable() {
		return ErrorCodeTimeout
	}
	var cfgErr *fluenterrors.ConfigError
	if errors.As(err, &cfgErr) {
		return ErrorCodeInvalidConfig
	}
	var valErr *fluenterrors.ValidationError
	if errors.As(err, &valErr) {
		return ErrorCodeInvalidField
	}

	switch ExitCode(err) {
	case ExitInvalidUsage:
		return ErrorCodeInvalidUsage
	case ExitHTTPError:
		return ErrorCodeHTTPStatus
	default:
		return ErrorCodeRequestFailed
	}
}

// JSONErrorFor builds the JSON error entry for err.
func JSONErrorFor(err error) JSONError {
	je := JSONError{
		Code:    ErrorCodeFor(err),
		Message: err.Error(),
	}
	var userErr fluenterrors.UserVisibleError
	if errors.As(err, &userErr) {
		je.Suggestion = userErr.Suggestion()
	}
	return je
}
