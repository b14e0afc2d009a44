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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return recorder, tp
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartClientSpan_Success(t *testing.T) {
	recorder, tp := newRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://api.example.com/items", nil)

	_, span := StartClientSpan(context.Background(), tp, req, "http://api.example.com/items")
	EndClientSpan(span, &http.Response{StatusCode: http.StatusCreated}, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "HTTP POST", s.Name())
	assert.Equal(t, trace.SpanKindClient, s.SpanKind())
	assert.Equal(t, codes.Unset, s.Status().Code)

	v, ok := attrValue(s.Attributes(), "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusCreated), v.AsInt64())

	v, ok = attrValue(s.Attributes(), "server.address")
	require.True(t, ok)
	assert.Equal(t, "api.example.com", v.AsString())
}

func TestEndClientSpan_ErrorStatus(t *testing.T) {
	recorder, tp := newRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

	_, span := StartClientSpan(context.Background(), tp, req, "http://example.com")
	EndClientSpan(span, &http.Response{StatusCode: http.StatusBadGateway}, nil)

	_, span = StartClientSpan(context.Background(), tp, req, "http://example.com")
	EndClientSpan(span, nil, errors.New("connection refused"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "connection refused", spans[1].Status().Description)
}

func TestInjectHTTPHeaders(t *testing.T) {
	_, tp := newRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

	ctx, span := StartClientSpan(context.Background(), tp, req, "http://example.com")
	defer span.End()

	InjectHTTPHeaders(ctx, req)
	traceparent := req.Header.Get("traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestInjectHTTPHeaders_NoSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	InjectHTTPHeaders(context.Background(), req)
	assert.Empty(t, req.Header.Get("traceparent"))
}
