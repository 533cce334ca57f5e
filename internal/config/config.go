// Package config binds the debugger's command-line flags to a typed
// options struct, the way cli/main.go binds opal's flags directly into
// local variables rather than through a generic config-file loader.
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"
)

// Options holds every flag the debugger binary accepts, beyond the
// positional engine argv.
type Options struct {
	// DebugLogPath overrides the default temp-file location of the
	// persisted debug log. Empty means "let the engine package choose".
	DebugLogPath string
	// SVGMaxWidth bounds the konfig normalizer's rendered line width.
	SVGMaxWidth int
	// LogLevel is the raw flag value; call Level to parse it.
	LogLevel string
}

// defaultSVGMaxWidth matches the width engine.Start falls back to when
// given none, so a user who never touches the flag gets the same width
// either way.
const defaultSVGMaxWidth = 80

// Bind registers this package's flags on fs and returns the Options they
// populate once fs.Parse has run. fs is typically a cobra.Command's
// Flags() or PersistentFlags().
func Bind(fs *pflag.FlagSet) *Options {
	opts := &Options{}
	fs.StringVar(&opts.DebugLogPath, "debug-log", "", "Path to write the session debug log (default: a generated temp file)")
	fs.IntVar(&opts.SVGMaxWidth, "svg-max-width", defaultSVGMaxWidth, "Column budget for configuration line wrapping")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	return opts
}

// Level parses LogLevel into an slog.Level, using slog's own textual
// level parsing so "debug"/"info"/"warn"/"error" (any case) are accepted
// exactly as slog's handlers would accept them from JSON or text config.
func (o *Options) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q: %w", o.LogLevel, err)
	}
	return level, nil
}
