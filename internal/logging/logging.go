// Package logging builds the application logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/taskflow/internal/model"
)

// New returns a logger writing to stderr.
func New(cfg model.LogConfig) (zerolog.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w. The "console" format is
// human readable and includes the caller; anything else emits JSON lines.
func NewWithWriter(cfg model.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	if cfg.Format == "console" {
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(out).Level(level).With().Timestamp().Caller().Logger(), nil
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
