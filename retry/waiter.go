// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogama/fetchx/request"
)

// A Waiter specifies how long to wait before retrying a failed attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines. The dispatch engine only calls the Waiter after the
// policy Decider returned true.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as waiters.
type WaiterFunc func(e *request.Execution) time.Duration

// Wait returns f(e).
func (f WaiterFunc) Wait(e *request.Execution) time.Duration {
	return f(e)
}

// DefaultWaiter is the default retry wait policy. It waits one second
// after the first failed attempt and doubles the wait after each
// further failure, up to five seconds:
//
//	1s, 2s, 4s, 5s, 5s, ...
var DefaultWaiter = Exponential(1*time.Second, 5*time.Second)

// Fixed constructs a Waiter that always waits d.
func Fixed(d time.Duration) Waiter {
	return WaiterFunc(func(*request.Execution) time.Duration {
		return d
	})
}

// Exponential constructs a Waiter which waits base after the initial
// attempt and doubles the wait for every further attempt, never
// exceeding max:
//
//	wait := min(base * 2**attempt, max)
//
// Base must be positive and max must be at least base.
func Exponential(base, max time.Duration) Waiter {
	if base <= 0 {
		panic("fetchx/retry: base must be positive")
	}
	if max < base {
		panic("fetchx/retry: max must be at least base")
	}
	return WaiterFunc(func(e *request.Execution) time.Duration {
		return backoff(base, max, e.Attempt)
	})
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max || d <= 0 {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Jittered wraps w with "full jitter": each wait is a random duration
// between zero and the wait w would have chosen. Spreading retries
// out keeps many fetchers that failed together from retrying together.
//
// The random sequence is seeded with seed, so a fixed seed gives
// reproducible waits.
func Jittered(w Waiter, seed int64) Waiter {
	if w == nil {
		panic("fetchx/retry: nil waiter")
	}
	j := &jitter{w: w, rand: rand.New(rand.NewSource(seed))}
	return WaiterFunc(j.wait)
}

type jitter struct {
	w    Waiter
	mu   sync.Mutex
	rand *rand.Rand
}

func (j *jitter) wait(e *request.Execution) time.Duration {
	ceil := j.w.Wait(e)
	if ceil <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return time.Duration(j.rand.Int63n(int64(ceil) + 1))
}

// RetryAfter wraps w so that a retry-after header on the failed
// response, in seconds or as an HTTP date, is honoured when it asks for
// no more than max. Otherwise, and when there is no usable header, the
// wait is chosen by w.
func RetryAfter(w Waiter, max time.Duration) Waiter {
	if w == nil {
		panic("fetchx/retry: nil waiter")
	}
	return WaiterFunc(func(e *request.Execution) time.Duration {
		if d, ok := retryAfter(e.Response, time.Now()); ok && d <= max {
			return d
		}
		return w.Wait(e)
	})
}

func retryAfter(resp *request.Response, now time.Time) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	v := strings.TrimSpace(resp.Header.Get("retry-after"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	d := t.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}
