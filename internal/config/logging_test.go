package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLogLevel_DefaultsToInfo(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelInfo, ResolveLogLevel(false, false))
}

func TestResolveLogLevel_Verbose(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, ResolveLogLevel(true, false))
}

func TestResolveLogLevel_Quiet(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelError, ResolveLogLevel(false, true))
}

func TestResolveLogLevel_VerboseWinsOverQuiet(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, ResolveLogLevel(true, true))
}

func TestResolveLogLevel_EnvOverridesAll(t *testing.T) {
	os.Setenv("GOMEMORI_DEBUG", "1")
	defer os.Unsetenv("GOMEMORI_DEBUG")
	assert.Equal(t, slog.LevelDebug, ResolveLogLevel(false, true))
}

func TestResolveLogFormat_DefaultsToText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "text", ResolveLogFormat())
}

func TestResolveLogFormat_JSONFromEnv(t *testing.T) {
	os.Setenv("GOMEMORI_LOG_FORMAT", "JSON")
	defer os.Unsetenv("GOMEMORI_LOG_FORMAT")
	assert.Equal(t, "json", ResolveLogFormat())
}

func TestSetupLoggingWithWriter_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	SetupLoggingWithWriter(slog.LevelInfo, "json", &buf)
	slog.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestNewLogger_SetsComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	SetupLoggingWithWriter(slog.LevelInfo, "json", &buf)
	NewLogger("stage").Info("running")
	assert.Contains(t, buf.String(), `"component":"stage"`)
}
