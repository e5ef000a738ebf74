// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
)

// HangUpMessage replaces the transport's own wording when a dispatch
// fails because the server hung up without responding.
const HangUpMessage = "server closed the connection without sending a response"

// An Error is returned by a dispatch which did not produce a successful
// response.
//
// The caller can inspect the request actually sent by the final attempt,
// after magic variable expansion, and the final response, if there was
// one.
type Error struct {
	// Op is the method of the request in net/http style, for example
	// "Get" or "Post".
	Op string
	// URL is the URL of the final attempt.
	URL string
	// Request is the request sent by the final attempt. It is nil only
	// if the request could not be prepared.
	Request *request.Request
	// Response is the response to the final attempt, or nil if the
	// final attempt ended in error.
	Response *request.Response
	// Err is the cause. A final response that is not OK gives a
	// *StatusError.
	Err error
}

func newError(r *request.Request, resp *request.Response, err error) *Error {
	e := &Error{
		Request:  r,
		Response: resp,
		Err:      unwrapURLError(err),
	}
	if r != nil {
		e.Op = op(r.Method)
		e.URL = r.URL
	} else {
		e.Op = op("")
	}
	return e
}

func (e *Error) Error() string {
	if transient.Categorize(e.Err) == transient.HangUp {
		return fmt.Sprintf("%s %q: %s", e.Op, e.URL, HangUpMessage)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the final attempt timed out.
func (e *Error) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// A StatusError reports a final response whose status is not OK.
type StatusError struct {
	Status     int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Status, e.StatusText)
}

// unwrapURLError removes the *url.Error layers net/http adds, since
// Error already carries the operation and URL.
func unwrapURLError(err error) error {
	for {
		ue, ok := err.(*url.Error)
		if !ok {
			return err
		}
		err = ue.Err
	}
}

// op is lifted from net/http/client.go.
func op(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
