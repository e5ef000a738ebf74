// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"

	"github.com/gogama/fetchx/request"
)

// A Transport makes one attempt: it sends a request and returns the
// normalized response, or fails.
//
// Do must return either a non-nil Response or a non-nil error. A
// response with a non-OK status is not an error; the dispatcher decides
// what to do with it. Do should give up when ctx is done, and should
// enforce r.Timeout.
//
// A Transport must be safe for concurrent use by multiple goroutines.
type Transport interface {
	Do(ctx context.Context, r *request.Request) (*request.Response, error)
}

// The TransportFunc type is an adapter to allow the use of ordinary
// functions as transports.
type TransportFunc func(ctx context.Context, r *request.Request) (*request.Response, error)

// Do calls f(ctx, r).
func (f TransportFunc) Do(ctx context.Context, r *request.Request) (*request.Response, error) {
	return f(ctx, r)
}
