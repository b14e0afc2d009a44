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

// Package encode implements the encode command, which form-URL-encodes
// or decodes strings.
package encode

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/fluent/internal/commands/shared"
	"github.com/tombee/fluent/pkg/body"
)

type result struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type encodeResponse struct {
	shared.JSONResponse
	Results []result `json:"results"`
}

// NewCommand creates the encode command.
func NewCommand() *cobra.Command {
	var decode bool

	cmd := &cobra.Command{
		Use:   "encode STRING...",
		Short: "URL-encode strings for query strings and form bodies",
		Long: `Encode each argument as it would appear in a query string or an
application/x-www-form-urlencoded body. Spaces become '+'.

With --decode, reverse the encoding.`,
		Example: `  fluent encode "a b&c"
  fluent encode --decode "a+b%26c"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, decode)
		},
	}

	cmd.Flags().BoolVar(&decode, "decode", false, "Decode instead of encode")
	return cmd
}

func run(cmd *cobra.Command, args []string, decode bool) error {
	results := make([]result, 0, len(args))
	for _, arg := range args {
		out := body.Encode(arg)
		if decode {
			var err error
			out, err = body.Decode(arg)
			if err != nil {
				return shared.NewUsageError("invalid encoded string", err)
			}
		}
		results = append(results, result{Input: arg, Output: out})
	}

	w := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(w, encodeResponse{
			JSONResponse: shared.NewJSONResponse("encode", true),
			Results:      results,
		})
	}

	for _, r := range results {
		if _, err := fmt.Fprintln(w, r.Output); err != nil {
			return err
		}
	}
	return nil
}
