// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the policies deciding whether a failed attempt
// in a dispatch is retried, and how long to wait before retrying.
//
// A Policy is composed of a decision-maker, Decider, and a wait time
// calculator, Waiter. DefaultPolicy retries within the request's own
// retry budget and backs off exponentially from one second to five.
// Both halves can be replaced:
//
//	decider := retry.Budget.
//	               And(retry.Before(time.Minute)).
//	               And(retry.StatusCode(429, 503).Or(retry.OtherErr))
//	waiter := retry.Jittered(retry.Exponential(250*time.Millisecond, 2*time.Second), time.Now().UnixNano())
//	policy := retry.NewPolicy(decider, retry.RetryAfter(waiter, 30*time.Second))
package retry
