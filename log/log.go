// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a small structured-logging facade: a minimal Logger
// interface, a level filter that wraps one, and a Helper that adds
// printf-style convenience methods on top. Log itself is backed by logrus.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Level is a log severity, ordered least to most severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every log call eventually reaches: a level
// and a sequence of alternating key/value pairs.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// logrusLogger adapts a *logrus.Logger to the Logger interface.
type logrusLogger struct {
	entry *logrus.Logger
}

// NewStdLogger returns a Logger that writes to w via logrus's default
// text formatter.
func NewStdLogger(w io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(w)
	return &logrusLogger{entry: l}
}

func (l *logrusLogger) Log(level Level, keyvals ...interface{}) error {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	entry := l.entry.WithFields(fields)
	switch level {
	case LevelDebug:
		entry.Debug()
	case LevelInfo:
		entry.Info()
	case LevelWarn:
		entry.Warn()
	case LevelError:
		entry.Error()
	case LevelFatal:
		entry.Error() // never os.Exit from inside a library call
	}
	return nil
}
