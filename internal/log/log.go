// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log provides the small leveled-logging facade used across the
// har module. It is intentionally minimal: a Logger writes key/value
// pairs, a Filter drops entries below a configured level, and a Helper
// adds printf-style convenience methods on top of a Logger.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

// Severities, from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
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
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal logging sink. keyvals is an alternating
// key/value list, e.g. Log(LevelWarn, "msg", "set mismatch", "set", name).
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes each entry as a single line to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes plain lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := fmt.Sprintf("%s level=%s", time.Now().Format(time.RFC3339), level)
	for i := 0; i < len(keyvals); i += 2 {
		var v interface{}
		if i+1 < len(keyvals) {
			v = keyvals[i+1]
		}
		buf += fmt.Sprintf(" %v=%v", keyvals[i], v)
	}
	_, err := fmt.Fprintln(l.w, buf)
	return err
}

// Option configures a Filter.
type Option func(*Filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(level Level) Option {
	return func(f *Filter) { f.level = level }
}

// Filter wraps a Logger and drops entries below a minimum level.
type Filter struct {
	logger Logger
	level  Level
}

// NewFilter returns a Logger that forwards to next only when the entry's
// level is at or above the configured FilterLevel (LevelDebug if unset).
func NewFilter(next Logger, opts ...Option) Logger {
	f := &Filter{logger: next}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods around a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	_ = h.logger.Log(level, "msg", msg)
}

// Debug logs msg at LevelDebug.
func (h *Helper) Debug(msg string) { h.log(LevelDebug, msg) }

// Debugf logs a formatted message at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }

// Info logs msg at LevelInfo.
func (h *Helper) Info(msg string) { h.log(LevelInfo, msg) }

// Infof logs a formatted message at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) { h.log(LevelInfo, format, args...) }

// Warn logs msg at LevelWarn.
func (h *Helper) Warn(msg string) { h.log(LevelWarn, msg) }

// Warnf logs a formatted message at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) { h.log(LevelWarn, format, args...) }

// Error logs msg at LevelError.
func (h *Helper) Error(msg string) { h.log(LevelError, msg) }

// Errorf logs a formatted message at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }

// Default is a filtered stdout logger at LevelError, used whenever a
// component is not given an explicit logger.
func Default() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stdout), FilterLevel(LevelError)))
}
