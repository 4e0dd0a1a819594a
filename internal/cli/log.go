// Package cli implements the collage-mcp command-line interface.
//
// # Commands
//
//   - mcp: Serve the collage tools over MCP on stdio
//   - serve: Serve the HTTP API
//   - generate: Build a batch of collages from files on disk
//   - templates: List templates and draw their wireframes
//
// # Logging
//
// Logs go to stderr so that stdout stays free for MCP traffic. --verbose
// (-v) or COLLAGE_MCP_LOG_LEVEL=debug enables debug output. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevelEnv overrides the log level when --verbose is not given.
const LogLevelEnv = "COLLAGE_MCP_LOG_LEVEL"

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel picks debug for verbose runs, else the level named by
// LogLevelEnv, else info.
func logLevel(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	if v := strings.TrimSpace(os.Getenv(LogLevelEnv)); v != "" {
		if level, err := log.ParseLevel(v); err == nil {
			return level
		}
	}
	return log.InfoLevel
}

// progress logs the elapsed time of an operation when it is done.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered 20 collages (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
