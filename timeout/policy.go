// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/fetchx/request"
)

// A Policy decides the timeout of each attempt in a dispatch. The
// dispatch engine copies the decided value into the attempt's request,
// and the transport enforces it.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next attempt.
	//
	// Parameter e contains the current state of the dispatch. On the
	// first attempt, e.Err is nil; on a retry, e.Err and e.Response
	// describe the attempt that just failed.
	Timeout(e *request.Execution) time.Duration
}

// DefaultPolicy is the default timeout policy, FromRequest.
var DefaultPolicy Policy = FromRequest

// FromRequest is a built-in timeout policy that uses the request's own
// Timeout field, or request.DefaultTimeout if that is zero.
var FromRequest Policy = fromRequest{}

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value for every
// attempt, whatever the request says.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Parameter usual is the timeout of an initial attempt, and of any
// retry where the preceding attempt did not time out. Parameter after
// holds the timeouts to use after the first, second, and later
// consecutive timeouts; the last value repeats.
//
// Use Adaptive when a site usually answers quickly but goes through
// bursts of slowness during which the usual timeout never succeeds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	if !e.Timeout() {
		return p[0]
	}

	i := e.AttemptTimeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}

type fromRequest struct{}

func (fromRequest) Timeout(e *request.Execution) time.Duration {
	if e.Request == nil || e.Request.Timeout <= 0 {
		return request.DefaultTimeout
	}
	return e.Request.Timeout
}
