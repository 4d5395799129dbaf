package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	return fields
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := New("not-a-level")
	assert.Equal(t, "info", log.GetLevel().String())
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	log.WithContext(ctx).Info("hello")

	fields := decodeLine(t, &buf)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "hello", fields["message"])
	assert.Contains(t, fields, "timestamp")
}

func TestGeneration_LogsLengthOnly(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)

	log.Generation(context.Background(), "direct", 42, 1500*time.Millisecond, errors.New("upstream 503"))

	fields := decodeLine(t, &buf)
	assert.Equal(t, "warning", fields["level"])
	assert.Equal(t, float64(42), fields["transcript_len"])
	assert.Equal(t, float64(1500), fields["duration_ms"])
	assert.Equal(t, "upstream 503", fields["error"])
	assert.NotContains(t, fields, "transcript")
}

func TestHTTPRequest_ErrorStatusWarns(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)

	log.HTTPRequest(context.Background(), "POST", "/api/generate", "test", "10.0.0.1", 500, time.Second)

	fields := decodeLine(t, &buf)
	assert.Equal(t, "warning", fields["level"])
	assert.Equal(t, float64(500), fields["status_code"])
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
