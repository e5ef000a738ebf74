// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"time"

	"github.com/gogama/fetchx/transient"
)

// An Execution represents the state of a single dispatch.
//
// When a dispatch starts, an Execution is created for it. The
// Execution is updated as the dispatch progresses (for example when a
// response becomes available, or when a retry is needed) and is
// discarded when the dispatch settles.
//
// Retry and timeout policies and event handlers may set values on an
// Execution using its SetValue method and read them back using Value.
// They should treat the exported fields as read-only, except that
// BeforeAttempt handlers may make reasonable changes to Current before
// it is sent.
type Execution struct {
	// ID uniquely identifies the dispatch, for example in logs.
	ID string

	// Request is the prepared request template. It is never nil and
	// never changes during the dispatch.
	Request *Request

	// Start is the start time of the dispatch.
	Start time.Time

	// End is the end time of the dispatch. It contains the zero value
	// until the dispatch settles.
	End time.Time

	// Attempt is the zero-based number of the current attempt. It is
	// zero on the initial attempt, one on the first retry, and so on.
	Attempt int

	// AttemptTimeouts counts the attempts that ended in a timeout.
	AttemptTimeouts int

	// Current is the request sent by the current attempt: a copy of
	// Request with magic variables expanded and the attempt timeout
	// applied.
	Current *Request

	// Response is the response received by the most recent attempt. It
	// is nil if the most recent attempt ended in error, or while an
	// attempt is underway.
	Response *Response

	// Err is the error returned by the most recent attempt, or nil.
	Err error

	data context.Context
}

// StatusCode returns the status code of the response from the most
// recent attempt, or 0 if there is no response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.Status
}

// OK reports whether the most recent attempt produced a successful
// (2XX or 304) response.
func (e *Execution) OK() bool {
	return e.Response != nil && e.Response.OK
}

// Duration returns the duration of the execution so far, or its total
// duration once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently contains a timeout error.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution. The key must follow the same rules as the key parameter
// of context.WithValue.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
