// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"time"

	"github.com/gogama/fetchx/decode"
	"github.com/gogama/fetchx/macro"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/retry"
	"github.com/gogama/fetchx/timeout"
	"github.com/google/uuid"
)

var emptyHandlers = HandlerGroup{}

var errNilResponse = errors.New("fetchx: transport returned neither response nor error")

// A Dispatcher runs the attempt and retry loop of a dispatch over any
// Transport. Its zero value is a valid configuration.
//
// The zero value uses retry.DefaultPolicy as the retry policy,
// timeout.DefaultPolicy as the timeout policy, no event handlers, and
// does not expand magic variables.
//
// A Dispatcher is safe for concurrent use by multiple goroutines. Each
// dispatch has its own execution state; dispatches share nothing but
// the Dispatcher's configuration.
type Dispatcher struct {
	// RetryPolicy decides when to retry failed attempts and how long
	// to wait after a failed attempt before retrying.
	//
	// If RetryPolicy is nil, retry.DefaultPolicy is used.
	RetryPolicy retry.Policy
	// TimeoutPolicy sets the timeout of each attempt on the request
	// the attempt sends. The transport enforces it.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during a dispatch.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Substitute enables magic variable expansion. When true, the URL
	// and the referer header are expanded afresh from the original
	// request on every attempt.
	Substitute bool
	// Expander expands magic variables when Substitute is true. If
	// nil, the package-level macro.Expand is used.
	Expander *macro.Expander
}

// Dispatch dispatches r over t with a zero Dispatcher, except that
// magic variables are expanded if substitute is true.
func Dispatch(ctx context.Context, r *request.Request, t Transport, substitute bool) (*request.Response, error) {
	d := Dispatcher{Substitute: substitute}
	return d.Dispatch(ctx, r, t)
}

// Dispatch prepares r, then sends it over t until an attempt succeeds
// or the retry policy gives up.
//
// The request is prepared once with request.Prepare; r itself is not
// modified. Each attempt sends a copy of the prepared request. Only one
// attempt is in flight at a time, and between attempts Dispatch waits
// for the backoff chosen by the retry policy. If ctx is done during the
// wait, the dispatch ends at once with the context's error.
//
// If the final attempt produced an OK response (2XX or 304), that
// response is returned after final touches by decode.Finish. Otherwise
// the returned response is nil and the error is an *Error holding the
// final attempt's request and response. A final response which is not
// OK is reported as a *StatusError cause.
func (d *Dispatcher) Dispatch(ctx context.Context, r *request.Request, t Transport) (*request.Response, error) {
	if t == nil {
		panic("fetchx: nil transport")
	}

	p, err := request.Prepare(r)
	if err != nil {
		return nil, newError(r, nil, err)
	}

	e := &request.Execution{
		ID:      uuid.NewString(),
		Request: p,
	}

	timeoutPolicy := d.TimeoutPolicy
	if timeoutPolicy == nil {
		timeoutPolicy = timeout.DefaultPolicy
	}

	retryPolicy := d.RetryPolicy
	if retryPolicy == nil {
		retryPolicy = retry.DefaultPolicy
	}

	handlers := d.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(BeforeExecutionStart, e)
	e.Start = time.Now()

RetryLoop:
	for {
		d.attempt(ctx, e, t, handlers, timeoutPolicy)
		if e.Timeout() {
			e.AttemptTimeouts++
			handlers.run(AfterAttemptTimeout, e)
		}
		handlers.run(AfterAttempt, e)
		if e.OK() || !retryPolicy.Decide(e) {
			break
		}

		wait := retryPolicy.Wait(e)
		e.SetValue(RetryWaitKey, wait)
		handlers.run(BeforeRetryWait, e)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			e.Err = ctx.Err()
			break RetryLoop
		}
		e.Attempt++
	}

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, e)

	if e.Err == nil && e.OK() {
		decode.Finish(e.Response, e.Current)
		return e.Response, nil
	}
	err = e.Err
	if err == nil {
		err = &StatusError{Status: e.Response.Status, StatusText: e.Response.StatusText}
	}
	return nil, newError(e.Current, e.Response, err)
}

func (d *Dispatcher) attempt(ctx context.Context, e *request.Execution, t Transport, handlers *HandlerGroup, timeoutPolicy timeout.Policy) {
	cur := e.Request.Clone()
	if d.Substitute {
		expand := macro.Expand
		if d.Expander != nil {
			expand = d.Expander.Expand
		}
		cur.URL = expand(e.Request.URL)
		if ref := e.Request.Header.Get("referer"); ref != "" {
			cur.Header.Set("referer", expand(ref))
		}
	}
	e.Current = cur
	// The timeout policy sees the outcome of the previous attempt.
	cur.Timeout = timeoutPolicy.Timeout(e)
	e.Response, e.Err = nil, nil
	handlers.run(BeforeAttempt, e)

	resp, err := t.Do(ctx, e.Current)
	switch {
	case err != nil:
		e.Response, e.Err = nil, err
	case resp == nil:
		e.Response, e.Err = nil, errNilResponse
	default:
		e.Response, e.Err = resp, nil
	}
}
