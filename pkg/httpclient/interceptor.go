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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"golang.org/x/oauth2"
)

// Interceptor inspects or mutates an outbound request before it is sent.
// Returning an error aborts the request.
type Interceptor interface {
	Intercept(req *http.Request) error
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(req *http.Request) error

// Intercept calls f(req).
func (f InterceptorFunc) Intercept(req *http.Request) error {
	return f(req)
}

// InterceptorError reports which interceptor rejected a request.
type InterceptorError struct {
	Index int
	Cause error
}

func (e *InterceptorError) Error() string {
	return fmt.Sprintf("interceptor %d: %v", e.Index, e.Cause)
}

func (e *InterceptorError) Unwrap() error {
	return e.Cause
}

// interceptorTransport runs interceptors, in order, on a clone of every
// request.
type interceptorTransport struct {
	base         http.RoundTripper
	interceptors []Interceptor
}

func newInterceptorTransport(base http.RoundTripper, interceptors []Interceptor) *interceptorTransport {
	return &interceptorTransport{
		base:         base,
		interceptors: append([]Interceptor(nil), interceptors...),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *interceptorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for i, ic := range t.interceptors {
		if ic == nil {
			continue
		}
		if err := ic.Intercept(r); err != nil {
			if r.Body != nil {
				_ = r.Body.Close()
			}
			return nil, &InterceptorError{Index: i, Cause: err}
		}
	}
	return t.base.RoundTrip(r)
}

// CloseIdleConnections forwards to the wrapped transport.
func (t *interceptorTransport) CloseIdleConnections() {
	closeIdle(t.base)
}

// HeaderInterceptor sets key to value on every request.
func HeaderInterceptor(key, value string) Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		req.Header.Set(key, value)
		return nil
	})
}

// BasicAuthInterceptor sets HTTP basic credentials on every request.
func BasicAuthInterceptor(username, password string) Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		req.SetBasicAuth(username, password)
		return nil
	})
}

// OAuth2Interceptor sets a bearer token obtained from ts. Wrap ts in
// oauth2.ReuseTokenSource to cache tokens between requests.
func OAuth2Interceptor(ts oauth2.TokenSource) Interceptor {
	return InterceptorFunc(func(req *http.Request) error {
		tok, err := ts.Token()
		if err != nil {
			return fmt.Errorf("failed to obtain oauth2 token: %w", err)
		}
		tok.SetAuthHeader(req)
		return nil
	})
}

// emptyPayloadHash is the SHA-256 of an empty body.
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// SigV4Interceptor signs every request with AWS Signature Version 4.
func SigV4Interceptor(creds aws.CredentialsProvider, region, service string) Interceptor {
	signer := v4.NewSigner()
	return InterceptorFunc(func(req *http.Request) error {
		ctx := req.Context()

		c, err := creds.Retrieve(ctx)
		if err != nil {
			return fmt.Errorf("unable to resolve AWS credentials: %w", err)
		}

		payloadHash, err := hashPayload(req)
		if err != nil {
			return err
		}
		req.Header.Set("X-Amz-Content-Sha256", payloadHash)

		if err := signer.SignHTTP(ctx, c, req, payloadHash, service, region, time.Now()); err != nil {
			return fmt.Errorf("failed to sign request: %w", err)
		}
		return nil
	})
}

// hashPayload computes the SHA-256 of the request body without consuming
// it. A body without GetBody is buffered so it can still be sent.
func hashPayload(req *http.Request) (string, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return emptyPayloadHash, nil
	}

	var data []byte
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return "", fmt.Errorf("failed to read request body: %w", err)
		}
		data, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read request body: %w", err)
		}
	} else {
		var err error
		data, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
