// Copyright 2026 The gitwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging is a thin wrapper around zerolog used throughout gitwire.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger struct {
	l zerolog.Logger
}

// New builds a console logger at the given level. Unknown levels fall back
// to info.
func New(level string) *Logger {
	return NewWithWriter(level, os.Stderr)
}

func NewWithWriter(level string, w io.Writer) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
	return &Logger{l: l}
}

// Discard returns a logger that writes nothing. Used by tests.
func Discard() *Logger {
	return &Logger{l: zerolog.Nop()}
}

func (l *Logger) Debugf(format string, args ...any) { l.l.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.l.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.l.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.l.Error().Msgf(format, args...) }

// WithField returns a logger annotating every message with key=value.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{l: l.l.With().Str(key, value).Logger()}
}
