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
	"fmt"
	"io"
	"net/http"

	fluentlog "github.com/tombee/fluent/internal/log"
	fluenterrors "github.com/tombee/fluent/pkg/errors"
	"github.com/tombee/fluent/pkg/pool"
)

// Resource names used in close errors and metrics.
const (
	resourceClient  = "http client"
	resourceManager = "pool manager"
	resourceMonitor = "idle monitor"
)

// tryDo calls fn on resource unless it is the zero value. Errors and
// panics are returned rather than propagated.
func tryDo[T comparable](resource T, fn func(T) error) (err error) {
	var zero T
	if resource == zero {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(resource)
}

// Close releases everything the client owns, best effort and in order:
// the engine client's transport chain, the pool manager, then the idle
// monitor. A failing step never prevents the next one. The collected
// errors are returned, and the slice is empty when all steps succeeded.
// Closing an already closed client returns no errors.
func (c *Client) Close() []error {
	errs := make([]error, 0, 3)
	collect := func(resource string, err error) {
		if err == nil {
			return
		}
		recordCloseError(resource)
		c.logger.Warn("failed to close resource",
			fluentlog.ResourceKey, resource,
			"error", err.Error(),
		)
		errs = append(errs, &fluenterrors.CloseError{Resource: resource, Cause: err})
	}

	collect(resourceClient, tryDo(c.httpClient, closeHTTPClient))
	collect(resourceManager, tryDo(c.manager, (*pool.Manager).Close))
	collect(resourceMonitor, tryDo(c.monitor, (*pool.IdleMonitor).Stop))

	return errs
}

// closeHTTPClient drops idle connections and closes the transport when
// it is an io.Closer.
func closeHTTPClient(hc *http.Client) error {
	hc.CloseIdleConnections()
	if closer, ok := hc.Transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
