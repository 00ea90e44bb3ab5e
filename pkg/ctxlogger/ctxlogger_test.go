package ctxlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ContextHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := AppendCtx(context.Background(), slog.String("request_id", "r1"))
	ctx = AppendCtx(ctx, slog.String("room_id", "ABC123"))
	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "r1", record["request_id"])
	assert.Equal(t, "ABC123", record["room_id"])
}

func TestAppendCtxDoesNotShareParentSlice(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	left := AppendCtx(parent, slog.String("b", "2"))
	right := AppendCtx(parent, slog.String("c", "3"))

	assert.Len(t, parent.Value(slogFields), 1)
	assert.Equal(t, "b", left.Value(slogFields).([]slog.Attr)[1].Key)
	assert.Equal(t, "c", right.Value(slogFields).([]slog.Attr)[1].Key)
}
