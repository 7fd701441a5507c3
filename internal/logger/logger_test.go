package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := defaultLogger
	var buf bytes.Buffer
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { defaultLogger = prev })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestWithFieldsAddsAttributes(t *testing.T) {
	buf := captureJSON(t)

	WithFields("subject", "booking.created", "size", 42).Info("Published message")

	record := lastRecord(t, buf)
	assert.Equal(t, "booking.created", record["subject"])
	assert.Equal(t, float64(42), record["size"])
}

func TestWithContextAddsRequestFields(t *testing.T) {
	buf := captureJSON(t)
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "u1")

	WithContext(ctx).Info("Request failed")

	record := lastRecord(t, buf)
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "u1", record["user_id"])
}
