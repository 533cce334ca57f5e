package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := Bind(fs)

	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "", opts.DebugLogPath)
	assert.Equal(t, defaultSVGMaxWidth, opts.SVGMaxWidth)
	assert.Equal(t, "info", opts.LogLevel)

	level, err := opts.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestBindParsesProvidedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := Bind(fs)

	require.NoError(t, fs.Parse([]string{
		"--debug-log", "/tmp/session.log",
		"--svg-max-width", "120",
		"--log-level", "debug",
	}))

	assert.Equal(t, "/tmp/session.log", opts.DebugLogPath)
	assert.Equal(t, 120, opts.SVGMaxWidth)

	level, err := opts.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLevelRejectsUnknownValue(t *testing.T) {
	opts := &Options{LogLevel: "verbose"}
	_, err := opts.Level()
	assert.Error(t, err)
}
