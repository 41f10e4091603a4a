package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := build(&buf, "lgs-tracker", "production", "warn")

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn().Str("user_id", "u1").Msg("kept")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "lgs-tracker", line["app"])
	assert.Equal(t, "production", line["env"])
	assert.Equal(t, "u1", line["user_id"])
}

func TestBuildUnknownLevelDefaultsToInfo(t *testing.T) {
	logger := build(&bytes.Buffer{}, "app", "test", "chatty")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := build(&buf, "app", "test", "debug")

	ctx := IntoContext(context.Background(), logger)
	FromContext(ctx).Debug().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	assert.Equal(t, zerolog.Disabled, FromContext(context.Background()).GetLevel())
}

func TestFromContextFallsBackToZerologContext(t *testing.T) {
	var buf bytes.Buffer
	logger := build(&buf, "app", "test", "info")

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Info().Msg("attached by zerolog")
	assert.Contains(t, buf.String(), "attached by zerolog")
}
