// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"io"
	"time"

	"github.com/gogama/fetchx/config"
	"github.com/gogama/fetchx/request"
	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger writing to w. Pretty output uses
// the console writer; an unknown level falls back to info.
func NewLogger(c config.LogConfig, w io.Writer) zerolog.Logger {
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	return l.Level(level)
}

// LogHandlers returns a handler group which logs a dispatch to logger:
// each attempt at debug level, each retry at warn level, and the
// outcome at debug level on success or error level on failure. Every
// entry carries the execution ID.
func LogHandlers(logger zerolog.Logger) *HandlerGroup {
	g := &HandlerGroup{}
	g.PushBack(BeforeAttempt, HandlerFunc(func(_ Event, e *request.Execution) {
		logger.Debug().
			Str("id", e.ID).
			Int("attempt", e.Attempt).
			Str("method", e.Current.Method).
			Str("url", e.Current.URL).
			Dur("timeout", e.Current.Timeout).
			Msg("attempt")
	}))
	g.PushBack(BeforeRetryWait, HandlerFunc(func(_ Event, e *request.Execution) {
		ev := logger.Warn().
			Str("id", e.ID).
			Int("attempt", e.Attempt).
			Str("url", e.Current.URL)
		if wait, ok := e.Value(RetryWaitKey).(time.Duration); ok {
			ev = ev.Dur("wait", wait)
		}
		outcome(ev, e).Msg("retrying")
	}))
	g.PushBack(AfterExecutionEnd, HandlerFunc(func(_ Event, e *request.Execution) {
		ev := logger.Debug()
		if e.Err != nil || !e.OK() {
			ev = logger.Error()
		}
		ev = ev.
			Str("id", e.ID).
			Int("attempts", e.Attempt+1).
			Dur("duration", e.Duration())
		if e.Current != nil {
			ev = ev.Str("url", e.Current.URL)
		}
		outcome(ev, e).Msg("fetch done")
	}))
	return g
}

func outcome(ev *zerolog.Event, e *request.Execution) *zerolog.Event {
	if e.Response != nil {
		ev = ev.Int("status", e.Response.Status)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	return ev
}
