// Package logger provides the shared structured logger for Signpost.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.Mutex
	base zerolog.Logger
	set  bool
)

// Init configures the shared logger. Level is one of debug, info, warn,
// error; anything else falls back to warn. Pretty enables console-friendly
// output for interactive use.
func Init(level string, output io.Writer, pretty bool) {
	mu.Lock()
	defer mu.Unlock()

	lvl := zerolog.WarnLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	if output == nil {
		output = os.Stderr
	}
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	base = zerolog.New(output).Level(lvl).With().Timestamp().Str("service", "signpost").Logger()
	set = true
}

// Get returns the shared logger, initializing it from the SIGNPOST_LOG
// environment variable on first use. Logging is quiet (warn and above)
// unless SIGNPOST_LOG raises the level.
func Get() *zerolog.Logger {
	mu.Lock()
	initialized := set
	mu.Unlock()

	if !initialized {
		Init(os.Getenv("SIGNPOST_LOG"), os.Stderr, false)
	}
	return &base
}
