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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/tombee/fluent/internal/commands/shared"
	"github.com/tombee/fluent/pkg/body"
	"github.com/tombee/fluent/pkg/httpclient"
)

// awsVerifyTimeout bounds the STS credential check.
const awsVerifyTimeout = 5 * time.Second

func validateOptions(opts *options) error {
	if _, err := body.ParseMode(opts.formMode); err != nil {
		return shared.NewUsageError("invalid --form-mode", err)
	}
	if opts.oauth2TokenURL != "" && opts.oauth2ClientID == "" {
		return shared.NewUsageError("--oauth2-token-url requires --oauth2-client-id", nil)
	}
	if opts.bearer != "" && opts.oauth2TokenURL != "" {
		return shared.NewUsageError("--bearer and --oauth2-token-url are mutually exclusive", nil)
	}
	if opts.awsVerify && opts.awsService == "" {
		return shared.NewUsageError("--aws-verify requires --aws-sigv4", nil)
	}
	return nil
}

// loadConfig reads the config file and environment, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (httpclient.Config, error) {
	cfg, err := httpclient.LoadConfig(shared.ConfigFile())
	if err != nil {
		return httpclient.Config{}, err
	}

	flags := cmd.Flags()
	if opts.noRedirects {
		cfg.FollowRedirects = false
	}
	if flags.Changed("max-redirects") {
		cfg.MaxRedirects = opts.maxRedirects
	}
	if opts.noCookies {
		cfg.CookieManagement = false
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("retries") {
		cfg.RetryAttempts = opts.retries
	}
	if opts.insecure {
		cfg.Pool.TLSInsecureSkipVerify = true
	}
	if opts.userAgent != "" {
		cfg.UserAgent = opts.userAgent
	}

	if opts.proxy != "" {
		cfg.Proxy = &httpclient.ProxyConfig{URL: opts.proxy}
		cfg.UseSystemProperties = false
	}
	if opts.systemProxy {
		cfg.Proxy = nil
		cfg.UseSystemProperties = true
	}
	if cfg.Proxy != nil {
		if opts.proxyUser != "" {
			cfg.Proxy.Username = opts.proxyUser
		}
		if opts.proxyPassword != "" {
			cfg.Proxy.Password = opts.proxyPassword
		}
	}

	cfg.Monitor.Enabled = false
	return cfg, nil
}

// authInterceptors builds the interceptors for the auth flags, in the
// order bearer or OAuth2 first, then SigV4, so the signature covers the
// final headers.
func authInterceptors(ctx context.Context, opts *options, logger *slog.Logger) ([]httpclient.Interceptor, error) {
	var out []httpclient.Interceptor

	switch {
	case opts.bearer != "":
		out = append(out, httpclient.OAuth2Interceptor(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.bearer,
			TokenType:   "Bearer",
		})))
	case opts.oauth2TokenURL != "":
		cc := &clientcredentials.Config{
			ClientID:     opts.oauth2ClientID,
			ClientSecret: opts.oauth2ClientSecret,
			TokenURL:     opts.oauth2TokenURL,
			Scopes:       opts.oauth2Scopes,
		}
		out = append(out, httpclient.OAuth2Interceptor(cc.TokenSource(ctx)))
	}

	if opts.awsService != "" {
		ic, err := sigV4Interceptor(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, ic)
	}
	return out, nil
}

func sigV4Interceptor(ctx context.Context, opts *options, logger *slog.Logger) (httpclient.Interceptor, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.awsRegion != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.awsRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, errors.New("no AWS region: set --aws-region or AWS_REGION")
	}

	if opts.awsVerify {
		if err := verifyAWSCredentials(ctx, awsCfg, logger); err != nil {
			return nil, err
		}
	}

	return httpclient.SigV4Interceptor(awsCfg.Credentials, awsCfg.Region, opts.awsService), nil
}

// verifyAWSCredentials calls STS GetCallerIdentity to check the
// credentials before any request is signed with them.
func verifyAWSCredentials(ctx context.Context, awsCfg aws.Config, logger *slog.Logger) error {
	verifyCtx, cancel := context.WithTimeout(ctx, awsVerifyTimeout)
	defer cancel()

	out, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(verifyCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("AWS credential validation failed: %w", err)
	}
	logger.Debug("aws credentials verified", "arn", aws.ToString(out.Arn))
	return nil
}
