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
	"context"
	"io"
	"net/http"
	neturl "net/url"

	fluenterrors "github.com/tombee/fluent/pkg/errors"
)

// Do sends r and reads the whole response body.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	resp, err := c.Stream(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.requestError(r, err)
	}
	return newResponse(resp, data, c.mapper), nil
}

// Stream sends r and returns the raw response. The caller must close
// its body.
func (c *Client) Stream(ctx context.Context, r *Request) (*http.Response, error) {
	req, err := r.build(ctx, c.mapper)
	if err != nil {
		return nil, c.requestError(r, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.requestError(r, err)
	}
	return resp, nil
}

func (c *Client) requestError(r *Request, err error) error {
	target := r.URL
	if u, perr := neturl.Parse(r.URL); perr == nil {
		target = sanitizeURL(u)
	}
	return &fluenterrors.RequestError{
		Method: r.method(),
		URL:    target,
		Cause:  err,
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodGet, url))
}

// Head sends a HEAD request.
func (c *Client) Head(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodHead, url))
}

// Options sends an OPTIONS request.
func (c *Client) Options(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodOptions, url))
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodDelete, url))
}

// Post sends a POST request with the given body.
func (c *Client) Post(ctx context.Context, url string, body io.Reader, contentType string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPost, url).WithBody(body, contentType))
}

// Put sends a PUT request with the given body.
func (c *Client) Put(ctx context.Context, url string, body io.Reader, contentType string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPut, url).WithBody(body, contentType))
}

// Patch sends a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, url string, body io.Reader, contentType string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPatch, url).WithBody(body, contentType))
}
