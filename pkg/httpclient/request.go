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
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tombee/fluent/pkg/body"
	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

// BasicAuth holds credentials sent with the Authorization header.
type BasicAuth struct {
	Username string
	Password string
}

// Request describes one call before it is turned into an *http.Request.
// The zero Method means GET.
type Request struct {
	Method      string
	URL         string
	Header      http.Header
	Query       url.Values
	RouteParams map[string]string
	Body        io.Reader
	ContentType string
	BasicAuth   *BasicAuth

	jsonValue any
	hasJSON   bool
	form      *body.Multipart
	patch     *body.JSONPatch
}

// NewRequest returns a request for method and rawURL. The URL may contain
// {name} placeholders filled from RouteParams.
func NewRequest(method, rawURL string) *Request {
	return &Request{
		Method: method,
		URL:    rawURL,
		Header: make(http.Header),
		Query:  make(url.Values),
	}
}

// WithHeader adds a header value.
func (r *Request) WithHeader(key, value string) *Request {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Add(key, value)
	return r
}

// WithQuery adds a query parameter. Repeated keys are kept.
func (r *Request) WithQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Add(key, value)
	return r
}

// WithRouteParam sets the value substituted for {name} in the URL.
func (r *Request) WithRouteParam(name, value string) *Request {
	if r.RouteParams == nil {
		r.RouteParams = make(map[string]string)
	}
	r.RouteParams[name] = value
	return r
}

// WithBasicAuth sets basic credentials.
func (r *Request) WithBasicAuth(username, password string) *Request {
	r.BasicAuth = &BasicAuth{Username: username, Password: password}
	return r
}

// WithBody sets a raw body and its content type.
func (r *Request) WithBody(rd io.Reader, contentType string) *Request {
	r.resetBody()
	r.Body = rd
	r.ContentType = contentType
	return r
}

// WithString sets a UTF-8 text/plain body.
func (r *Request) WithString(s string) *Request {
	return r.WithBody(strings.NewReader(s), body.ContentTypeTextPlain+"; charset=utf-8")
}

// WithBytes sets an application/octet-stream body.
func (r *Request) WithBytes(b []byte) *Request {
	return r.WithBody(bytes.NewReader(b), body.ContentTypeOctetStream)
}

// WithJSON sets a JSON body. v is marshalled with the client's object
// mapper when the request is sent.
func (r *Request) WithJSON(v any) *Request {
	r.resetBody()
	r.jsonValue = v
	r.hasJSON = true
	r.ContentType = body.ContentTypeJSON
	return r
}

// WithForm sets a form body, URL-encoded or multipart depending on its parts.
func (r *Request) WithForm(form *body.Multipart) *Request {
	r.resetBody()
	r.form = form
	return r
}

// WithJSONPatch sets an RFC 6902 patch body.
func (r *Request) WithJSONPatch(patch *body.JSONPatch) *Request {
	r.resetBody()
	r.patch = patch
	r.ContentType = body.ContentTypeJSONPatch
	return r
}

func (r *Request) resetBody() {
	r.Body = nil
	r.jsonValue = nil
	r.hasJSON = false
	r.form = nil
	r.patch = nil
	r.ContentType = ""
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// resolveURL fills route placeholders and merges query parameters.
func (r *Request) resolveURL() (string, error) {
	raw := r.URL
	for name, value := range r.RouteParams {
		placeholder := "{" + name + "}"
		if !strings.Contains(raw, placeholder) {
			return "", &fluenterrors.ValidationError{
				Field:   "route_params." + name,
				Message: fmt.Sprintf("no {%s} placeholder in URL", name),
			}
		}
		raw = strings.ReplaceAll(raw, placeholder, url.PathEscape(value))
	}

	if len(r.Query) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, values := range r.Query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// payload returns the body reader and its content type.
func (r *Request) payload(mapper body.ObjectMapper) (io.Reader, string, error) {
	switch {
	case r.hasJSON:
		data, err := mapper.Marshal(r.jsonValue)
		if err != nil {
			return nil, "", fmt.Errorf("encoding JSON body: %w", err)
		}
		return bytes.NewReader(data), r.ContentType, nil
	case r.patch != nil:
		return r.patch.Encode()
	case r.form != nil:
		rc, contentType, err := r.form.Encode()
		if err != nil {
			return nil, "", err
		}
		if r.form.IsMultipart() {
			return rc, contentType, nil
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), contentType, nil
	default:
		return r.Body, r.ContentType, nil
	}
}

// build turns r into an *http.Request bound to ctx.
func (r *Request) build(ctx context.Context, mapper body.ObjectMapper) (*http.Request, error) {
	target, err := r.resolveURL()
	if err != nil {
		return nil, err
	}

	rd, contentType, err := r.payload(mapper)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, r.method(), target, rd)
	if err != nil {
		if c, ok := rd.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.BasicAuth != nil {
		req.SetBasicAuth(r.BasicAuth.Username, r.BasicAuth.Password)
	}
	return req, nil
}
