// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options 日志配置。
type Options struct {
	Level string
	// Suppress lists message substrings that are dropped regardless of level.
	Suppress []string
	Out      io.Writer
	// JSON disables the console writer.
	JSON bool
}

type suppressHook struct {
	patterns []string
}

func (h suppressHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	for _, p := range h.patterns {
		if strings.Contains(msg, p) {
			e.Discard()
			return
		}
	}
}

// Setup installs the global logger and returns it.
func Setup(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(out).With().Timestamp().Logger()
	var patterns []string
	for _, p := range opts.Suppress {
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) > 0 {
		logger = logger.Hook(suppressHook{patterns: patterns})
	}
	log.Logger = logger
	return logger
}
