// Package logging owns the process-wide zerolog logger. Every line carries
// the service name; service code adds module and request_id through Module.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const service = "vacai"

var Logger zerolog.Logger

type Config struct {
	Level  zerolog.Level
	Output io.Writer
	// Pretty switches to the colored console writer for local runs.
	Pretty bool
}

func DefaultConfig() Config {
	return Config{Level: zerolog.InfoLevel, Output: os.Stderr}
}

func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.Kitchen}
	}
	Logger = zerolog.New(out).Level(cfg.Level).With().Timestamp().Str("service", service).Logger()
}

// ParseLevel accepts zerolog level names plus "warning"; anything else is info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Module returns a child logger tagged with module and, when set, request_id.
func Module(name, requestID string) zerolog.Logger {
	ctx := Logger.With().Str("module", strings.ToLower(name))
	if requestID = strings.TrimSpace(requestID); requestID != "" {
		ctx = ctx.Str("request_id", requestID)
	}
	return ctx.Logger()
}

func Info() *zerolog.Event  { return Logger.Info() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Error() *zerolog.Event { return Logger.Error() }

func init() {
	Init(DefaultConfig())
}
