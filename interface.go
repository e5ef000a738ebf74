// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"net/url"

	"github.com/gogama/fetchx/request"
)

// Doer is the interface that wraps the basic Fetch method.
//
// Fetch dispatches a request and returns the final response (or error).
// Fetcher implements the Doer interface, and any other Doer
// implementation must behave substantially the same as Fetcher.Fetch.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Fetch(ctx context.Context, r *request.Request) (*request.Response, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Get fetches the specified URL with a GET request. Fetcher implements
// the Getter interface, and any other Getter implementation must behave
// substantially the same as Fetcher.Get.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(ctx context.Context, url string) (*request.Response, error)
}

// Header is the interface that wraps the basic Head method.
//
// Head fetches the specified URL with a HEAD request. Fetcher
// implements the Header interface, and any other Header implementation
// must behave substantially the same as Fetcher.Head.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(ctx context.Context, url string) (*request.Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Post sends a POST request with the given content type and body to the
// specified URL. The body may be nil, or any value request.Request.Data
// accepts.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
//
// PostForm sends a POST request to the specified URL with data's keys
// and values URL-encoded as the body, and the content type set to
// application/x-www-form-urlencoded.
//
// Any Doer can be used to emulate a FormPoster via the PostForm
// function.
type FormPoster interface {
	PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any connections which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Fetch, Get, Head,
// Post, PostForm, and CloseIdleConnections methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Header
	Poster
	FormPoster
	IdleCloser
}

// Get uses the specified Doer to issue a GET to the specified URL.
func Get(ctx context.Context, d Doer, url string) (*request.Response, error) {
	return d.Fetch(ctx, request.New("GET", url, nil))
}

// Head uses the specified Doer to issue a HEAD to the specified URL.
func Head(ctx context.Context, d Doer, url string) (*request.Response, error) {
	return d.Fetch(ctx, request.New("HEAD", url, nil))
}

// Post uses the specified Doer to issue a POST to the specified URL.
//
// If contentType is not empty, it is sent as the content-type header.
// The body is encoded as described on request.Request.Data.
func Post(ctx context.Context, d Doer, url, contentType string, body interface{}) (*request.Response, error) {
	r := request.New("POST", url, body)
	if contentType != "" {
		r.Header.Set("content-type", contentType)
	}
	return d.Fetch(ctx, r)
}

// PostForm uses the specified Doer to issue a POST to the specified URL,
// with data's keys and values URL-encoded as the request body.
func PostForm(ctx context.Context, d Doer, url string, data url.Values) (*request.Response, error) {
	return Post(ctx, d, url, "application/x-www-form-urlencoded", data.Encode())
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("fetchx: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Fetch(ctx context.Context, r *request.Request) (*request.Response, error) {
	return i.doer.Fetch(ctx, r)
}

func (i inflated) Get(ctx context.Context, url string) (*request.Response, error) {
	return Get(ctx, i.doer, url)
}

func (i inflated) Head(ctx context.Context, url string) (*request.Response, error) {
	return Head(ctx, i.doer, url)
}

func (i inflated) Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error) {
	return Post(ctx, i.doer, url, contentType, body)
}

func (i inflated) PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error) {
	return PostForm(ctx, i.doer, url, data)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
