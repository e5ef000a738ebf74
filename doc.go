// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package fetchx fetches web resources the way a browser would, with
retries, and hands back decoded bodies.

Create a Fetcher to begin making requests.

	f := &fetchx.Fetcher{}
	resp, err := f.Get(ctx, "https://www.example.com")
	...
	resp, err := f.Post(ctx, "https://www.example.com/upload",
		"application/json", map[string]int{"id": 123})
	...
	resp, err := f.PostForm(ctx, "http://example.com/form",
		url.Values{"key": {"Value"}, "id": {"123"}})

The response body is decoded according to its content type: text in
any charset becomes a UTF-8 string, JSON and XML become generic values,
and everything else stays a byte slice. Force a shape with
Request.ResponseType:

	r := request.New("GET", "https://api.example.com/items?t={ts}", nil)
	r.ResponseType = request.JSON
	r.Retries = 3
	resp, err := f.Fetch(ctx, r)

With Fetcher.Substitute set, magic variables such as {ts}, {rand} and
{date:YYYYMMDD} in the URL and referer are expanded afresh on every
attempt.

For control over retry decisions and timing, create a custom retry
policy using components from package retry:

	retryWaiter := retry.Jittered(retry.Exponential(250*time.Millisecond, 5*time.Second), time.Now().UnixNano())
	f := &fetchx.Fetcher{
		Dispatcher: fetchx.Dispatcher{
			RetryPolicy: retry.NewPolicy(retry.DefaultDecider, retryWaiter),
		},
	}

For control over individual attempt timeouts, set a timeout policy
from package timeout:

	f.TimeoutPolicy = timeout.Adaptive(5*time.Second, 20*time.Second)

To hook into the details of a dispatch, install a handler into the
appropriate handler chain. LogHandlers returns a ready-made group that
logs to a zerolog logger.

	handlers := fetchx.LogHandlers(logger)
	handlers.PushBack(fetchx.BeforeAttempt, fetchx.HandlerFunc(
		func(_ fetchx.Event, e *request.Execution) {
			metrics.Attempts.Inc()
		}))
	f.Handlers = handlers

The retry loop itself does not depend on HTTP. A Dispatcher sends
requests over any Transport, which makes it easy to test or to reuse
with another protocol.

Package fetchx provides basic interfaces for each method of the
fetcher (Doer, Getter, Header, Poster, FormPoster, and IdleCloser); a
combined interface that composes all the basic methods (Executor); and
utility functions for working with a Doer (Inflate, Get, Head, Post,
and PostForm).
*/
package fetchx
