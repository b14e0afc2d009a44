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

package completion

import (
	"strings"

	"github.com/spf13/cobra"
)

// CompleteMethods completes the METHOD argument of the request command.
func CompleteMethods(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{
			"GET\tRetrieve a resource",
			"HEAD\tHeaders only",
			"POST\tCreate or submit",
			"PUT\tReplace a resource",
			"PATCH\tPartially update a resource",
			"DELETE\tRemove a resource",
			"OPTIONS\tDescribe allowed methods",
		}, strings.ToUpper(toComplete)), cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteFormModes provides completion for --form-mode.
func CompleteFormModes(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{
			"browser\tOnly Content-Disposition on text parts",
			"strict\tContent-Type on every part",
		}, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteCharsets provides completion for --charset.
func CompleteCharsets(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{"utf-8", "iso-8859-1", "windows-1252", "shift_jis", "euc-kr", "gbk"}, toComplete),
			cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteContentTypes provides completion for --content-type.
func CompleteContentTypes(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{
			"application/json",
			"application/xml",
			"application/x-www-form-urlencoded",
			"application/octet-stream",
			"text/plain",
		}, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteAWSServices provides completion for --aws-sigv4.
func CompleteAWSServices(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{
			"execute-api\tAPI Gateway",
			"lambda\tLambda function URLs",
			"s3\tS3",
			"es\tOpenSearch",
			"sts\tSecurity Token Service",
		}, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// SafeCompletionWrapper returns an empty list instead of panicking.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}

// filterPrefix keeps candidates whose value (before any tab
// description) starts with prefix.
func filterPrefix(candidates []string, prefix string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		value, _, _ := strings.Cut(c, "\t")
		if strings.HasPrefix(value, prefix) {
			out = append(out, c)
		}
	}
	return out
}
