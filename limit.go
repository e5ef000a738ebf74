// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiters paces attempts per host. The zero value with a
// non-positive limit lets everything through.
type hostLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (l *hostLimiters) wait(ctx context.Context, host string, limit rate.Limit, burst int) error {
	if limit <= 0 || limit == rate.Inf {
		return nil
	}
	if burst < 1 {
		burst = 1
	}

	l.mu.Lock()
	lim, ok := l.limiters[host]
	if !ok {
		if l.limiters == nil {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(limit, burst)
		l.limiters[host] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}
