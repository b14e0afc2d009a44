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

package tracing

// Config holds local tracing settings.
type Config struct {
	// ServiceName identifies this process in span resources.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// SampleRate is the fraction of root spans recorded (0.0 - 1.0).
	// Child spans follow their parent's decision.
	SampleRate float64
}

// DefaultConfig records every trace.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "fluent",
		ServiceVersion: "unknown",
		SampleRate:     1.0,
	}
}
