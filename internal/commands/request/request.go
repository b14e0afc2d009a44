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

// Package request implements `fluent request` and the verb shortcuts
// (get, post, put, patch, delete, head, options).
package request

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/fluent/internal/commands/completion"
	"github.com/tombee/fluent/internal/commands/shared"
	"github.com/tombee/fluent/internal/tracing"
	"github.com/tombee/fluent/pkg/httpclient"
)

// options holds the per-command flag values.
type options struct {
	headers     []string
	query       []string
	params      []string
	data        string
	form        []string
	formMode    string
	charset     string
	contentType string
	user        string

	noRedirects  bool
	maxRedirects int
	noCookies    bool
	timeout      time.Duration
	retries      int
	insecure     bool
	userAgent    string

	proxy         string
	proxyUser     string
	proxyPassword string
	systemProxy   bool

	bearer             string
	oauth2TokenURL     string
	oauth2ClientID     string
	oauth2ClientSecret string
	oauth2Scopes       []string
	awsService         string
	awsRegion          string
	awsVerify          bool

	jq      string
	raw     bool
	include bool
	fail    bool
	trace   bool
}

// NewCommand creates the generic `request METHOD URL` command.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "request METHOD URL",
		Short: "Send an HTTP request",
		Long: `Send an HTTP request and print the response body.

Configuration is read from --config (default: ~/.config/fluent/config.yaml),
then FLUENT_* environment variables, then flags.

URL placeholders such as {id} are filled from --param id=42.`,
		Example: `  fluent request GET https://api.example.com/users/{id} --param id=42
  fluent request POST https://api.example.com/items -d '{"name":"widget"}'
  fluent request PUT https://api.example.com/upload -F title=Q3 -F report=@report.pdf`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.CompleteMethods,
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			if !validMethod(method) {
				return reportFailure(cmd, shared.NewUsageError(fmt.Sprintf("invalid method %q", args[0]), nil))
			}
			return run(cmd, method, args[1], opts)
		},
	}
	addFlags(cmd, opts)
	return cmd
}

// NewVerbCommands creates one shortcut command per HTTP verb.
func NewVerbCommands() []*cobra.Command {
	verbs := []struct {
		method string
		body   bool
	}{
		{http.MethodGet, false},
		{http.MethodHead, false},
		{http.MethodOptions, false},
		{http.MethodDelete, false},
		{http.MethodPost, true},
		{http.MethodPut, true},
		{http.MethodPatch, true},
	}

	cmds := make([]*cobra.Command, 0, len(verbs))
	for _, v := range verbs {
		cmds = append(cmds, newVerbCommand(v.method, v.body))
	}
	return cmds
}

func newVerbCommand(method string, withBody bool) *cobra.Command {
	opts := &options{}
	name := strings.ToLower(method)
	short := fmt.Sprintf("Send a %s request", method)
	if withBody {
		short += " with a body"
	}

	cmd := &cobra.Command{
		Use:   name + " URL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			"group": "verbs",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, method, args[0], opts)
		},
	}
	addFlags(cmd, opts)
	return cmd
}

func validMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions, http.MethodTrace, http.MethodConnect:
		return true
	}
	return false
}

func addFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()

	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	f.StringArrayVar(&opts.query, "query", nil, "Query parameter as name=value (repeatable)")
	f.StringArrayVar(&opts.params, "param", nil, "Route parameter filling {name} in the URL (repeatable)")
	f.StringVarP(&opts.data, "data", "d", "", "Request body; @file reads a file, @- reads stdin")
	f.StringArrayVarP(&opts.form, "form", "F", nil, "Form field name=value or file name=@path[;type=mime] (repeatable)")
	f.StringVar(&opts.formMode, "form-mode", "browser", "Multipart part headers: browser or strict")
	f.StringVar(&opts.charset, "charset", "", "Charset for form fields (default utf-8)")
	f.StringVar(&opts.contentType, "content-type", "", "Content type of --data (default: detected)")
	f.StringVarP(&opts.user, "user", "u", "", "Basic auth credentials as user:password")

	f.BoolVar(&opts.noRedirects, "no-redirects", false, "Return 3xx responses instead of following them")
	f.IntVar(&opts.maxRedirects, "max-redirects", 0, "Maximum redirects to follow")
	f.BoolVar(&opts.noCookies, "no-cookies", false, "Disable the cookie jar")
	f.DurationVar(&opts.timeout, "timeout", 0, "Total request timeout, e.g. 30s")
	f.IntVar(&opts.retries, "retries", 0, "Retry attempts for transient failures")
	f.BoolVarP(&opts.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	f.StringVarP(&opts.userAgent, "user-agent", "A", "", "User-Agent header")

	f.StringVar(&opts.proxy, "proxy", "", "Proxy URL, e.g. http://proxy:3128")
	f.StringVar(&opts.proxyUser, "proxy-user", "", "Proxy username")
	f.StringVar(&opts.proxyPassword, "proxy-password", "", "Proxy password")
	f.BoolVar(&opts.systemProxy, "system-proxy", false, "Use HTTP_PROXY, HTTPS_PROXY and NO_PROXY")

	f.StringVar(&opts.bearer, "bearer", "", "Bearer token sent in the Authorization header")
	f.StringVar(&opts.oauth2TokenURL, "oauth2-token-url", "", "OAuth2 client credentials token endpoint")
	f.StringVar(&opts.oauth2ClientID, "oauth2-client-id", "", "OAuth2 client ID")
	f.StringVar(&opts.oauth2ClientSecret, "oauth2-client-secret", "", "OAuth2 client secret")
	f.StringSliceVar(&opts.oauth2Scopes, "oauth2-scope", nil, "OAuth2 scopes (repeatable or comma separated)")
	f.StringVar(&opts.awsService, "aws-sigv4", "", "Sign with AWS SigV4 for the named service, e.g. execute-api")
	f.StringVar(&opts.awsRegion, "aws-region", "", "AWS region for SigV4 (default: from the AWS config)")
	f.BoolVar(&opts.awsVerify, "aws-verify", false, "Check AWS credentials with STS before sending")

	f.StringVar(&opts.jq, "jq", "", "Filter a JSON response with a jq expression")
	f.BoolVarP(&opts.raw, "raw", "r", false, "Print jq string results without quotes")
	f.BoolVarP(&opts.include, "include", "i", false, "Print the status line and response headers")
	f.BoolVar(&opts.fail, "fail", false, "Exit with code 3 on HTTP status >= 400")
	f.BoolVar(&opts.trace, "trace", false, "Log an OpenTelemetry span per request on stderr")

	_ = cmd.RegisterFlagCompletionFunc("form-mode", completion.CompleteFormModes)
	_ = cmd.RegisterFlagCompletionFunc("charset", completion.CompleteCharsets)
	_ = cmd.RegisterFlagCompletionFunc("content-type", completion.CompleteContentTypes)
	_ = cmd.RegisterFlagCompletionFunc("aws-sigv4", completion.CompleteAWSServices)

	cmd.MarkFlagsMutuallyExclusive("data", "form")
	cmd.MarkFlagsMutuallyExclusive("proxy", "system-proxy")
}

// run sends one request and writes the response.
func run(cmd *cobra.Command, method, rawURL string, opts *options) error {
	ctx := cmd.Context()
	logger := shared.NewLogger(cmd.ErrOrStderr())

	if err := validateOptions(opts); err != nil {
		return reportFailure(cmd, err)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return reportFailure(cmd, shared.NewUsageError("invalid configuration", err))
	}
	cfg.Logger = logger

	interceptors, err := authInterceptors(ctx, opts, logger)
	if err != nil {
		return reportFailure(cmd, shared.NewUsageError("invalid authentication settings", err))
	}
	cfg.Interceptors = append(cfg.Interceptors, interceptors...)

	if opts.trace {
		version, _, _ := shared.GetVersion()
		provider := tracing.NewProvider(tracing.Config{
			ServiceName:    "fluent",
			ServiceVersion: version,
			SampleRate:     1,
		}, logger)
		defer func() { _ = provider.Shutdown(context.WithoutCancel(ctx)) }()
		cfg.Tracing = true
		cfg.TracerProvider = provider
	}

	client, err := httpclient.New(cfg)
	if err != nil {
		return reportFailure(cmd, shared.NewUsageError("invalid configuration", err))
	}
	defer func() {
		for _, cerr := range client.Close() {
			logger.Warn("cleanup failed", "error", cerr.Error())
		}
	}()

	req, err := buildRequest(cmd, method, rawURL, opts)
	if err != nil {
		return reportFailure(cmd, shared.NewUsageError("invalid request", err))
	}

	spinner := shared.NewSpinner(cmd.ErrOrStderr())
	if !shared.GetQuiet() && !shared.GetJSON() {
		spinner.Start(method + " " + httpclient.RedactURL(rawURL))
	}
	resp, err := client.Do(ctx, req)
	spinner.Stop()
	if err != nil {
		return reportFailure(cmd, shared.NewRequestFailedError("request failed", err))
	}

	if err := writeResponse(ctx, cmd.OutOrStdout(), resp, opts); err != nil {
		return err
	}

	if opts.fail && resp.StatusCode >= http.StatusBadRequest {
		return shared.NewHTTPStatusError(resp.Status)
	}
	return nil
}

// reportFailure writes the --json error envelope for err and returns it.
func reportFailure(cmd *cobra.Command, err error) error {
	if shared.GetJSON() {
		_ = shared.EmitJSONError(cmd.OutOrStdout(), "request", []shared.JSONError{shared.JSONErrorFor(err)})
	}
	return err
}
