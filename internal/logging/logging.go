// Package logging builds the zap logger used for progress messages and
// diagnostics. Everything goes to stderr so stdout stays free for command
// output such as the printed mapping table.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// JSON selects structured JSON lines instead of console text.
	JSON bool
	// Verbosity 0 logs info and above, 1 or more adds debug messages.
	Verbosity int
	// Output defaults to stderr.
	Output zapcore.WriteSyncer
}

// LevelFor maps a -v count to a zap level.
func LevelFor(verbosity int) zapcore.Level {
	if verbosity > 0 {
		return zapcore.DebugLevel
	}

	return zapcore.InfoLevel
}

// New builds a logger from opts.
func New(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	var enc zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(consoleConfig())
	}

	return zap.New(zapcore.NewCore(enc, out, LevelFor(opts.Verbosity)))
}

// consoleConfig produces one calm line per entry: level, message, fields.
func consoleConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}
