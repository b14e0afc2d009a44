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
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tombee/fluent/internal/cli/format"
	"github.com/tombee/fluent/internal/commands/shared"
	"github.com/tombee/fluent/internal/jq"
	"github.com/tombee/fluent/pkg/httpclient"
)

// responseJSON is the --json output of a request.
type responseJSON struct {
	shared.JSONResponse
	Status     string              `json:"status"`
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       any                 `json:"body,omitempty"`
}

// writeResponse prints resp according to the output flags.
func writeResponse(ctx context.Context, w io.Writer, resp *httpclient.Response, opts *options) error {
	if shared.GetJSON() {
		return writeJSON(w, resp)
	}

	if opts.include {
		writeHead(w, resp)
	}

	if opts.jq != "" {
		results, err := jq.NewExecutor(0, 0).ExecuteJSON(ctx, opts.jq, resp.Bytes(), opts.raw)
		if err != nil {
			return shared.NewUsageError("jq filter failed", err)
		}
		for _, r := range results {
			if _, err := fmt.Fprintln(w, string(r)); err != nil {
				return err
			}
		}
		return nil
	}

	tty := format.IsTTY(w)
	text := format.Body(resp.String(), resp.Header.Get("Content-Type"), tty)
	if _, err := io.WriteString(w, text); err != nil {
		return err
	}
	if tty && text != "" && !strings.HasSuffix(text, "\n") {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// writeHead prints the status line and headers sorted by name.
func writeHead(w io.Writer, resp *httpclient.Response) {
	fmt.Fprintln(w, resp.Status)
	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			fmt.Fprintf(w, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, resp *httpclient.Response) error {
	out := responseJSON{
		JSONResponse: shared.NewJSONResponse("request", resp.StatusCode < http.StatusBadRequest),
		Status:       resp.Status,
		StatusCode:   resp.StatusCode,
		Headers:      resp.Header,
	}
	if len(resp.Body) > 0 {
		if json.Valid(resp.Body) {
			out.Body = json.RawMessage(resp.Body)
		} else {
			out.Body = resp.String()
		}
	}
	return shared.EmitJSON(w, out)
}
