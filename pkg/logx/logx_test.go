package logx_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/marcodd23/go-txscope/pkg/configx"
	"github.com/marcodd23/go-txscope/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(level string) configx.BaseConfig {
	return configx.BaseConfig{
		Name:        "txscope-test",
		Environment: "prod",
		Version:     "1.2.3",
		Logging:     &configx.LoggingConfig{Level: level},
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestZeroLogWrapperWritesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewZeroLogWrapper(&buf, testConfig("info"))

	logger.LogError(context.Background(), "release failed", errors.New("broken pipe"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "release failed", entry["message"])
	assert.Equal(t, "ERROR", entry["severity"])
	assert.Equal(t, "txscope-test", entry["service"])
	assert.Equal(t, "broken pipe", entry["error"])
}

func TestZeroLogWrapperHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewZeroLogWrapper(&buf, testConfig("warn"))

	logger.LogDebug(context.Background(), "hidden")
	logger.LogInfo(context.Background(), "hidden too")
	assert.Zero(t, buf.Len())

	logger.LogWarning(context.Background(), "shown")
	assert.Equal(t, "WARNING", decodeLine(t, &buf)["severity"])
}

func TestContextFieldsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewZeroLogWrapper(&buf, testConfig("debug"))

	ctx := logx.ContextWithField(context.Background(), "scope", "abc")
	ctx = logx.ContextWithField(ctx, "route", "/health/db")
	logger.LogDebug(ctx, "borrowed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "abc", entry["scope"])
	assert.Equal(t, "/health/db", entry["route"])
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { logx.SetLogger(nil) })

	assert.IsType(t, &logx.DefaultLogger{}, logx.GetLogger())

	var buf bytes.Buffer
	wrapper := logx.NewZeroLogWrapper(&buf, testConfig("info"))
	logx.SetLogger(wrapper)
	assert.Same(t, wrapper, logx.GetLogger())

	logx.SetLogger(nil)
	assert.IsType(t, &logx.DefaultLogger{}, logx.GetLogger())
}

func TestZeroLogWrapperPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewZeroLogWrapper(&buf, testConfig("info"))

	assert.Panics(t, func() { logger.LogPanic(context.Background(), "pool not initialized") })
}
