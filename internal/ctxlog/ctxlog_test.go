package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Info("hello")
	assert.Contains(t, out.String(), "hello")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Same(t, slog.Default(), logger)
}

func TestWith_AddsAttributes(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&out, nil)))
	ctx = With(ctx, "stage", "echo")

	FromContext(ctx).Info("message")
	assert.Contains(t, out.String(), "stage=echo")
}
