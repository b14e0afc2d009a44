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

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorrelationID(t *testing.T) {
	id1 := NewCorrelationID()
	id2 := NewCorrelationID()

	assert.True(t, id1.IsValid())
	assert.Len(t, id1.String(), 36)
	assert.NotEqual(t, id1, id2)
}

func TestCorrelationID_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		id    CorrelationID
		valid bool
	}{
		{"valid lowercase", "550e8400-e29b-41d4-a716-446655440000", true},
		{"valid uppercase", "550E8400-E29B-41D4-A716-446655440000", true},
		{"empty", "", false},
		{"no dashes", "550e8400e29b41d4a716446655440000", false},
		{"too short", "550e8400-e29b-41d4-a716", false},
		{"bad chars", "zzze8400-e29b-41d4-a716-446655440000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.id.IsValid())
		})
	}
}

func TestToContext_FromContextOrEmpty(t *testing.T) {
	assert.Empty(t, FromContextOrEmpty(context.Background()))

	id := NewCorrelationID()
	ctx := ToContext(context.Background(), id)
	assert.Equal(t, id, FromContextOrEmpty(ctx))
}

func TestInjectIntoRequest(t *testing.T) {
	id := NewCorrelationID()
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req = req.WithContext(ToContext(req.Context(), id))

	InjectIntoRequest(req)
	assert.Equal(t, id.String(), req.Header.Get(HeaderCorrelationID))
}

func TestInjectIntoRequest_KeepsExistingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set(HeaderCorrelationID, "caller-supplied")
	req = req.WithContext(ToContext(req.Context(), NewCorrelationID()))

	InjectIntoRequest(req)
	assert.Equal(t, "caller-supplied", req.Header.Get(HeaderCorrelationID))
}

func TestInjectIntoRequest_NoID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	InjectIntoRequest(req)
	require.Empty(t, req.Header.Get(HeaderCorrelationID))
}
