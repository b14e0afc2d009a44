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

// Package format renders response bodies for the terminal.
package format

import (
	"bytes"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// maxPrettySize is the largest JSON body that is re-indented (10MB).
const maxPrettySize = 10 * 1024 * 1024

var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// sanitizeANSI removes ANSI escape sequences from a string.
func sanitizeANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// IsJSON reports whether contentType names a JSON media type, including
// +json suffixes such as application/problem+json.
func IsJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// JSON re-indents a JSON document with two spaces.
func JSON(data []byte) (string, error) {
	if len(data) > maxPrettySize {
		return "", fmt.Errorf("output size (%d bytes) exceeds maximum for json format (%d bytes)", len(data), maxPrettySize)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}

// Body renders a decoded response body. On a terminal JSON bodies are
// pretty-printed and escape sequences are stripped. Bodies that fail to
// pretty-print are returned unchanged.
func Body(text, contentType string, isTTY bool) string {
	if !isTTY {
		return text
	}
	if IsJSON(contentType) {
		if pretty, err := JSON([]byte(text)); err == nil {
			return pretty
		}
	}
	return sanitizeANSI(text)
}
