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

package request

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tombee/fluent/pkg/body"
	"github.com/tombee/fluent/pkg/httpclient"
)

// buildRequest turns the positional arguments and flags into a request.
func buildRequest(cmd *cobra.Command, method, rawURL string, opts *options) (*httpclient.Request, error) {
	req := httpclient.NewRequest(method, rawURL)

	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", h)
		}
		req.WithHeader(name, strings.TrimSpace(value))
	}

	for _, q := range opts.query {
		name, value, err := splitPair("query", q)
		if err != nil {
			return nil, err
		}
		req.WithQuery(name, value)
	}

	for _, p := range opts.params {
		name, value, err := splitPair("param", p)
		if err != nil {
			return nil, err
		}
		req.WithRouteParam(name, value)
	}

	if opts.user != "" {
		user, pass, _ := strings.Cut(opts.user, ":")
		req.WithBasicAuth(user, pass)
	}

	switch {
	case opts.data != "":
		data, err := readData(cmd.InOrStdin(), opts.data)
		if err != nil {
			return nil, err
		}
		req.WithBytes(data)
		req.ContentType = dataContentType(data, opts.contentType)
	case len(opts.form) > 0:
		form, err := buildForm(opts)
		if err != nil {
			return nil, err
		}
		req.WithForm(form)
	}

	return req, nil
}

func splitPair(kind, s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid %s %q, want name=value", kind, s)
	}
	return name, value, nil
}

// readData resolves the --data value: @- reads stdin, @path reads a file
// and anything else is used literally.
func readData(stdin io.Reader, data string) ([]byte, error) {
	switch {
	case data == "@-":
		return body.ToBytes(stdin)
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("reading --data file: %w", err)
		}
		return b, nil
	default:
		return []byte(data), nil
	}
}

// dataContentType picks the --data content type: the explicit flag, JSON
// when the payload parses as JSON, plain text otherwise.
func dataContentType(data []byte, explicit string) string {
	switch {
	case explicit != "":
		return explicit
	case json.Valid(data):
		return body.ContentTypeJSON
	default:
		return body.ContentTypeTextPlain + "; charset=utf-8"
	}
}

// buildForm parses -F values. name=@path attaches a file and an optional
// ;type=mime suffix sets its content type.
func buildForm(opts *options) (*body.Multipart, error) {
	mode, err := body.ParseMode(opts.formMode)
	if err != nil {
		return nil, err
	}
	form := body.NewMultipart().Mode(mode)
	if opts.charset != "" {
		form.Charset(opts.charset)
	}

	for _, f := range opts.form {
		name, value, err := splitPair("form field", f)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(value, "@") {
			form.Field(name, value)
			continue
		}

		path, params, _ := strings.Cut(value[1:], ";")
		contentType := ""
		if t, ok := strings.CutPrefix(params, "type="); ok {
			contentType = t
		}
		if path == "" {
			return nil, fmt.Errorf("invalid form file %q", f)
		}
		form.FileWithType(name, path, contentType)
	}
	return form, nil
}
