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

package body

import (
	"fmt"
	"io"
	"net/url"
	"strings"
)

var formEscapeFixups = strings.NewReplacer("%2A", "*", "~", "%7E")

// Encode percent-encodes s the way HTML forms do: UTF-8 bytes, spaces
// become '+'. Only letters, digits and ".-*_" are left as is, so '*'
// stays literal and '~' is escaped.
func Encode(s string) string {
	return formEscapeFixups.Replace(url.QueryEscape(s))
}

// Decode reverses Encode.
func Decode(s string) (string, error) {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return "", fmt.Errorf("decoding %q: %w", s, err)
	}
	return out, nil
}

// NullToEmpty renders v as a string, mapping nil to "".
func NullToEmpty(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// EmptyReader returns a body with no content.
func EmptyReader() io.ReadCloser {
	return io.NopCloser(strings.NewReader(""))
}
