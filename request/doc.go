// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Request (one logical fetch
intent), Response (the normalized result of one attempt) and Execution
(the state of one dispatch).

A Request is a template rather than a one-shot message. A dispatch may
make several attempts from the same Request, and each attempt sends a
copy in which magic variables such as {ts} have been re-expanded:

	r := request.New("GET", "https://example.com/feed?ts={ts}", nil)
	r.Retries = 3
	r.Header.Set("Accept", "application/json")
	resp, err := fetcher.Fetch(ctx, r)
	...

Header keys are case-insensitive and stored lower-cased. Prepare
normalizes a Request before dispatch: it applies defaults, folds Data
into the query string of GET and HEAD requests, and encodes Data into
Body for other methods.

Execution is the input type for callbacks invoked during a dispatch:
timeout policies, retry policies and event handlers. You will typically
not allocate Execution instances yourself.
*/
package request
