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
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Content types produced by this package.
const (
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeMultipart   = "multipart/form-data"
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeJSON        = "application/json"
	ContentTypeJSONPatch   = "application/json-patch+json"
	ContentTypeTextPlain   = "text/plain"
	sniffLen               = 3072
)

// Mode controls which part headers a multipart body carries.
type Mode int

const (
	// ModeBrowserCompatible writes only Content-Disposition for text
	// fields, like HTML forms submitted by browsers.
	ModeBrowserCompatible Mode = iota
	// ModeStrict writes Content-Type on every part.
	ModeStrict
)

func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "browser-compatible"
}

// ParseMode maps "strict" and "browser" (or "browser-compatible") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "strict":
		return ModeStrict, nil
	case "", "browser", "browser-compatible", "browser_compatible":
		return ModeBrowserCompatible, nil
	}
	return ModeBrowserCompatible, fmt.Errorf("unknown multipart mode %q", s)
}

type partKind int

const (
	textPart partKind = iota
	pathPart
	readerPart
	bytesPart
)

type part struct {
	kind        partKind
	name        string
	value       string
	contentType string
	fileName    string
	path        string
	reader      io.Reader
	data        []byte
}

func (p part) isFile() bool { return p.kind != textPart }

// Multipart accumulates form fields and files. Builder methods return the
// receiver so calls chain; it is not safe for concurrent use.
type Multipart struct {
	parts       []part
	charset     string
	contentType string
	mode        Mode
	forced      bool
}

// NewMultipart returns an empty form in browser-compatible mode.
func NewMultipart() *Multipart {
	return &Multipart{charset: DefaultCharset, contentType: ContentTypeMultipart}
}

// Field adds a text field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.parts = append(m.parts, part{kind: textPart, name: name, value: value})
	return m
}

// FieldWithType adds a text field carrying an explicit content type.
func (m *Multipart) FieldWithType(name, value, contentType string) *Multipart {
	m.parts = append(m.parts, part{kind: textPart, name: name, value: value, contentType: contentType})
	return m
}

// Fields adds one text field per value under the same name.
func (m *Multipart) Fields(name string, values []any) *Multipart {
	for _, v := range values {
		m.Field(name, NullToEmpty(v))
	}
	return m
}

// File attaches the file at path. It is opened when the body is encoded.
func (m *Multipart) File(name, path string) *Multipart {
	return m.FileWithType(name, path, "")
}

// FileWithType attaches the file at path with an explicit content type.
func (m *Multipart) FileWithType(name, path, contentType string) *Multipart {
	m.parts = append(m.parts, part{
		kind:        pathPart,
		name:        name,
		path:        path,
		fileName:    filepath.Base(path),
		contentType: contentType,
	})
	return m
}

// Reader attaches a stream as a file part.
func (m *Multipart) Reader(name string, r io.Reader, fileName string) *Multipart {
	return m.ReaderWithType(name, r, fileName, "")
}

// ReaderWithType attaches a stream as a file part with an explicit content type.
func (m *Multipart) ReaderWithType(name string, r io.Reader, fileName, contentType string) *Multipart {
	m.parts = append(m.parts, part{kind: readerPart, name: name, reader: r, fileName: fileName, contentType: contentType})
	return m
}

// Bytes attaches an in-memory payload as a file part.
func (m *Multipart) Bytes(name string, b []byte, fileName string) *Multipart {
	return m.BytesWithType(name, b, fileName, "")
}

// BytesWithType attaches an in-memory payload with an explicit content type.
func (m *Multipart) BytesWithType(name string, b []byte, fileName, contentType string) *Multipart {
	m.parts = append(m.parts, part{kind: bytesPart, name: name, data: b, fileName: fileName, contentType: contentType})
	return m
}

// Charset sets the charset text values are transcoded to.
func (m *Multipart) Charset(name string) *Multipart {
	m.charset = name
	return m
}

// ContentType replaces multipart/form-data as the multipart media type,
// e.g. multipart/mixed. URL-encoded output is unaffected.
func (m *Multipart) ContentType(mimeType string) *Multipart {
	m.contentType = mimeType
	return m
}

// Mode selects browser-compatible or strict part headers.
func (m *Multipart) Mode(mode Mode) *Multipart {
	m.mode = mode
	return m
}

// ForceMultipart encodes as multipart even when no file is attached.
func (m *Multipart) ForceMultipart() *Multipart {
	m.forced = true
	return m
}

// IsMultipart reports whether Encode will produce a multipart body.
func (m *Multipart) IsMultipart() bool {
	if m.forced {
		return true
	}
	for _, p := range m.parts {
		if p.isFile() {
			return true
		}
	}
	return false
}

// Len is the number of parts added so far.
func (m *Multipart) Len() int { return len(m.parts) }

// Encode renders the form. The returned content type carries the charset
// for URL-encoded bodies and the boundary for multipart ones.
func (m *Multipart) Encode() (io.ReadCloser, string, error) {
	if _, err := lookupEncoding(m.charset); err != nil {
		return nil, "", err
	}
	if !m.IsMultipart() {
		return m.encodeURL()
	}
	return m.encodeMultipart()
}

func (m *Multipart) charsetName() string {
	if m.charset == "" {
		return DefaultCharset
	}
	return m.charset
}

func (m *Multipart) encodeURL() (io.ReadCloser, string, error) {
	var buf strings.Builder
	for i, p := range m.parts {
		name, err := FromString(p.name, m.charset)
		if err != nil {
			return nil, "", err
		}
		value, err := FromString(p.value, m.charset)
		if err != nil {
			return nil, "", err
		}
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(Encode(string(name)))
		buf.WriteByte('=')
		buf.WriteString(Encode(string(value)))
	}
	contentType := ContentTypeForm + "; charset=" + strings.ToUpper(m.charsetName())
	return io.NopCloser(strings.NewReader(buf.String())), contentType, nil
}

// openFiles opens every path part up front so a missing file fails
// Encode instead of surfacing mid-stream.
func (m *Multipart) openFiles() (map[int]*os.File, error) {
	files := make(map[int]*os.File)
	for i, p := range m.parts {
		if p.kind != pathPart {
			continue
		}
		f, err := os.Open(p.path)
		if err != nil {
			closeFiles(files)
			return nil, fmt.Errorf("opening form file %q: %w", p.name, err)
		}
		files[i] = f
	}
	return files, nil
}

func closeFiles(files map[int]*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func (m *Multipart) encodeMultipart() (io.ReadCloser, string, error) {
	files, err := m.openFiles()
	if err != nil {
		return nil, "", err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := fmt.Sprintf("%s; boundary=%s", m.contentType, mw.Boundary())

	go func() {
		defer closeFiles(files)
		err := m.writeParts(mw, files)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, contentType, nil
}

func (m *Multipart) writeParts(mw *multipart.Writer, files map[int]*os.File) error {
	for i, p := range m.parts {
		var err error
		switch p.kind {
		case textPart:
			err = m.writeText(mw, p)
		case pathPart:
			err = m.writeFile(mw, p, files[i])
		case readerPart:
			err = m.writeFile(mw, p, p.reader)
		case bytesPart:
			err = m.writeFile(mw, p, bytes.NewReader(p.data))
		}
		if err != nil {
			return fmt.Errorf("writing part %q: %w", p.name, err)
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (m *Multipart) writeText(mw *multipart.Writer, p part) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.name)))

	switch {
	case p.contentType != "":
		h.Set("Content-Type", p.contentType)
	case m.mode == ModeStrict:
		h.Set("Content-Type", ContentTypeTextPlain+"; charset="+strings.ToUpper(m.charsetName()))
	}

	value, err := FromString(p.value, m.charset)
	if err != nil {
		return err
	}
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(value)
	return err
}

func (m *Multipart) writeFile(mw *multipart.Writer, p part, r io.Reader) error {
	if r == nil {
		r = EmptyReader()
	}
	contentType := p.contentType
	if contentType == "" {
		var err error
		contentType, r, err = sniff(r)
		if err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(p.name), escapeQuotes(p.fileName)))
	h.Set("Content-Type", contentType)

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

// sniff detects the media type from the head of r and returns a reader
// that still yields the full stream.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]
	rest := io.MultiReader(bytes.NewReader(head), r)
	if n == 0 {
		return ContentTypeOctetStream, rest, nil
	}
	mt := mimetype.Detect(head)
	if mt == nil || mt.String() == "" {
		return ContentTypeOctetStream, rest, nil
	}
	return mt.String(), rest, nil
}
