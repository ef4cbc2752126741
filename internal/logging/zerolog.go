// Package logging implements ghapi.Logger on top of zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const maskedValue = "[MASKED]"

// Field names whose values are never written.
var sensitiveKeys = []string{"token", "authorization", "password", "secret"}

// Options configures New.
type Options struct {
	Level  string
	Format string
	// Color enables ANSI colors in console format.
	Color bool
	// Out defaults to stderr.
	Out io.Writer
}

// Logger adapts a zerolog.Logger to ghapi.Logger.
type Logger struct {
	zlog zerolog.Logger
}

var _ ghapi.Logger = (*Logger)(nil)

// New creates a Logger. Level is one of debug, info, warn or error; format is
// console or json.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", constants.LogFormatConsole:
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    !opts.Color,
		}
	case constants.LogFormatJSON:
	default:
		return nil, fmt.Errorf("%w: %q (expected %s or %s)",
			constants.ErrInvalidLogFormat, opts.Format, constants.LogFormatConsole, constants.LogFormatJSON)
	}

	return &Logger{zlog: zerolog.New(out).Level(level).With().Timestamp().Logger()}, nil
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(zlog zerolog.Logger) *Logger {
	return &Logger{zlog: zlog}
}

// ParseLevel parses a level name. Empty means the CLI default.
func ParseLevel(name string) (zerolog.Level, error) {
	if strings.TrimSpace(name) == "" {
		name = constants.DefaultLogLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return level, nil
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd())) // #nosec G115 -- file descriptors fit in int
}

// Zerolog returns the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.zlog.Debug().Fields(mask(fields)).Msg(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.zlog.Info().Fields(mask(fields)).Msg(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.zlog.Warn().Fields(mask(fields)).Msg(msg)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.zlog.Error().Fields(mask(fields)).Msg(msg)
}

// mask replaces the values of credential-like fields.
func mask(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return fields
	}

	out := make(map[string]interface{}, len(fields))

	for key, value := range fields {
		if isSensitive(key) {
			value = maskedValue
		}

		out[key] = value
	}

	return out
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}

	return false
}
