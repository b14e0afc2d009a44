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
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultCharset is used whenever a charset name is left empty.
const DefaultCharset = "utf-8"

// lookupEncoding resolves a charset label. UTF-8 returns a nil encoding,
// meaning the bytes pass through untouched.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if n, _ := htmlindex.Name(enc); n == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// ToBytes drains r. A nil reader yields an empty slice.
func ToBytes(r io.Reader) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return b, nil
}

// ToString drains r and decodes it from charsetName into a Go string.
func ToString(r io.Reader, charsetName string) (string, error) {
	b, err := ToBytes(r)
	if err != nil {
		return "", err
	}
	enc, err := lookupEncoding(charsetName)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", charsetName, err)
	}
	return string(out), nil
}

// FromString encodes s into charsetName.
func FromString(s, charsetName string) ([]byte, error) {
	enc, err := lookupEncoding(charsetName)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(s), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", charsetName, err)
	}
	return out, nil
}

// DecodeContent converts a response payload to UTF-8 using the charset of
// contentType, falling back to BOM and HTML meta sniffing.
func DecodeContent(b []byte, contentType string) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	r, err := charset.NewReader(bytes.NewReader(b), contentType)
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding body: %w", err)
	}
	return string(out), nil
}
