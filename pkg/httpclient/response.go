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
	"io"
	"net/http"

	"github.com/tombee/fluent/pkg/body"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Request    *http.Request

	cookies []*http.Cookie
	mapper  body.ObjectMapper
}

func newResponse(resp *http.Response, data []byte, mapper body.ObjectMapper) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		Request:    resp.Request,
		cookies:    resp.Cookies(),
		mapper:     body.MapperOrDefault(mapper),
	}
}

// Text decodes the body using the charset named by the Content-Type
// header, or sniffed from the content when none is given.
func (r *Response) Text() (string, error) {
	return body.DecodeContent(r.Body, r.Header.Get("Content-Type"))
}

// String returns the decoded body, or the raw bytes when the charset
// is unknown.
func (r *Response) String() string {
	s, err := r.Text()
	if err != nil {
		return string(r.Body)
	}
	return s
}

// Bytes returns the raw body.
func (r *Response) Bytes() []byte { return r.Body }

// Reader returns a fresh reader over the body.
func (r *Response) Reader() io.Reader { return bytes.NewReader(r.Body) }

// Decode unmarshals the body into v with the client's object mapper.
func (r *Response) Decode(v any) error {
	return body.MapperOrDefault(r.mapper).Unmarshal(r.Body, v)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Cookies returns the cookies set by the response.
func (r *Response) Cookies() []*http.Cookie { return r.cookies }
