// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, StatusCode, and Before, and the
// built-in deciders Budget, NotOK, HangUp, Unreachable and OtherErr; or
// implement your own Decider. Use DeciderFunc to compose deciders
// logically using DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(e *request.Execution) bool

// HangUpRetries is the number of retries DefaultDecider allows after
// the server hangs up without a response. A server that hangs up twice
// in a row rarely answers a third time.
const HangUpRetries = 1

// RetryableStatusCodes are the HTTP status codes DefaultDecider treats
// as transient.
var RetryableStatusCodes = []int{408, 409, 425, 500, 502, 503, 504}

// DefaultDecider is the retry decider used by DefaultPolicy. Within the
// request's retry budget (Request.Retries) it retries:
//
// • a non-OK response whose status is one of RetryableStatusCodes;
//
// • a hang-up, but only up to HangUpRetries times;
//
// • any other error, except an Unreachable one, which is never retried.
var DefaultDecider = Budget.And(
	NotOK.And(StatusCode(RetryableStatusCodes...)).
		Or(HangUp.And(Times(HangUpRetries))).
		Or(OtherErr))

// Budget is a decider which allows retries while the execution attempt
// index is less than the request's Retries field.
var Budget DeciderFunc = budget

// NotOK is a decider which returns true if the most recent attempt
// received a response that is not OK (neither 2XX nor 304).
var NotOK DeciderFunc = notOK

// HangUp is a decider which returns true if the most recent attempt
// failed because the server hung up without responding.
var HangUp DeciderFunc = category(transient.HangUp)

// Unreachable is a decider which returns true if the most recent
// attempt failed because the server could not be reached at all.
var Unreachable DeciderFunc = category(transient.Unreachable)

// OtherErr is a decider which returns true if the most recent attempt
// ended in an error which is neither a hang-up nor Unreachable.
var OtherErr DeciderFunc = otherErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current execution state.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries
// regardless of the request's own retry budget.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the start of the dispatch.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// HTTP response status code. If the most recent attempt received a
// response and its status code is contained in the list ss, the
// decider returns true.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func budget(e *request.Execution) bool {
	return e.Request != nil && e.Attempt < e.Request.Retries
}

func notOK(e *request.Execution) bool {
	return e.Response != nil && !e.Response.OK
}

func category(c transient.Category) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Err != nil && transient.Categorize(e.Err) == c
	}
}

func otherErr(e *request.Execution) bool {
	if e.Err == nil {
		return false
	}
	switch transient.Categorize(e.Err) {
	case transient.HangUp, transient.Unreachable:
		return false
	default:
		return true
	}
}
