package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()
	require.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_CarriesAttributes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	// --- Act ---
	ctx, logger := With(ctx, "run_id", "abc")
	FromContext(ctx).Info("hello")

	// --- Assert ---
	require.NotNil(t, logger)
	assert.Contains(t, buf.String(), "run_id=abc")
	assert.Contains(t, buf.String(), "msg=hello")
}
