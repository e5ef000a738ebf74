// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/base64"
	"errors"
	"fmt"
	urlpkg "net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// A Type names the shape of a decoded response body.
type Type string

const (
	// Auto is the zero Type. On a Request it means the response type
	// is decided from the response content type.
	Auto Type = ""
	// Text means the body is decoded to a string.
	Text Type = "text"
	// JSON means the body is decoded to a JSON value (map, slice,
	// string, float64, bool or nil). XML bodies are converted to the
	// equivalent JSON value.
	JSON Type = "json"
	// Buffer means the body is the raw response bytes.
	Buffer Type = "buffer"
)

const (
	// DefaultMethod is the method used when Request.Method is empty.
	DefaultMethod = "GET"
	// DefaultTimeout is the attempt timeout used when Request.Timeout
	// is zero.
	DefaultTimeout = 30 * time.Second
	// NoRetries is a Retries value asking for a single attempt even
	// when a fetcher supplies a default retry budget. Prepare turns it
	// into zero.
	NoRetries = -1
)

// A Request contains one logical fetch intent for execution by a
// fetcher.
//
// A Request is a template: a dispatch may make several attempts from
// it, and each attempt is sent from a copy so that magic variables in
// URL and the referer header can be re-expanded on every attempt.
type Request struct {
	// URL is the URL to fetch. It may contain magic variables such as
	// {ts} or {rand} when variable substitution is enabled.
	URL string

	// Method specifies the HTTP method. An empty string means GET.
	Method string

	// Header contains the request header fields. Keys are lower-cased
	// during preparation; when two keys fold to the same name the last
	// one wins.
	Header Header

	// Cookies contains raw Set-Cookie style strings, for example
	// "sid=abc; Path=/; HttpOnly". Only the name=value pair of each is
	// sent.
	Cookies []string

	// Data is the request payload. For GET and HEAD it is folded into
	// the query string. Otherwise it is encoded into Body: url.Values
	// and string maps become a form body if the content type is
	// application/x-www-form-urlencoded; string, []byte and io.Reader
	// are sent verbatim; any other value is encoded as JSON.
	Data interface{}

	// Body is the encoded request body. It is set by Prepare from Data
	// and should not normally be set directly.
	Body []byte

	// Timeout is the timeout of a single attempt. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Retries is the maximum number of additional attempts made after
	// the first one fails retryably. A fetcher replaces zero with its
	// own default; use NoRetries to rule out retries entirely.
	Retries int

	// Proxy optionally routes the request through a forward proxy.
	Proxy *Proxy

	// ResponseType forces the decoded response type. Auto (the zero
	// value) lets the response content type decide.
	ResponseType Type

	// ResponseCharset forces the charset used to decode a text
	// response. When empty, the charset is taken from the response
	// content type or detected from the body.
	ResponseCharset string
}

// New returns a new Request given a method, URL and optional data.
func New(method, url string, data interface{}) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(Header),
		Data:   data,
	}
}

// Prepare returns a normalized copy of r, ready to be dispatched. The
// original is not modified.
//
// Prepare applies defaults (GET method, empty header, 30 second
// timeout), lower-cases header keys, validates the method, and encodes
// Data either into the URL query (GET and HEAD) or into Body.
func Prepare(r *Request) (*Request, error) {
	if r == nil {
		return nil, errors.New("fetchx/request: nil request")
	}
	p := r.Clone()
	if p.Method == "" {
		p.Method = DefaultMethod
	}
	p.Method = strings.ToUpper(p.Method)
	if !validMethod(p.Method) {
		return nil, fmt.Errorf("fetchx/request: invalid method %q", r.Method)
	}
	if p.Header == nil {
		p.Header = make(Header)
	}
	p.Header.normalize()
	if p.Cookies == nil {
		p.Cookies = []string{}
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.URL == "" {
		return nil, errors.New("fetchx/request: empty URL")
	}
	if p.Data == nil {
		return p, nil
	}
	if p.Method == "GET" || p.Method == "HEAD" {
		q, err := queryString(p.Data)
		if err != nil {
			return nil, err
		}
		p.URL = appendQuery(p.URL, q)
		p.Data = nil
		return p, nil
	}
	b, contentType, err := encodeBody(p.Data, p.Header.Get("content-type"))
	if err != nil {
		return nil, err
	}
	p.Body = b
	if contentType != "" && !p.Header.Has("content-type") {
		p.Header.Set("content-type", contentType)
	}
	return p, nil
}

// Clone returns a copy of r whose header, cookies and body can be
// changed without affecting r. Data and Proxy are shared.
func (r *Request) Clone() *Request {
	r2 := new(Request)
	*r2 = *r
	r2.Header = r.Header.Clone()
	if r.Cookies != nil {
		r2.Cookies = append([]string(nil), r.Cookies...)
	}
	if r.Body != nil {
		r2.Body = append([]byte(nil), r.Body...)
	}
	return r2
}

// Host returns the host of the request URL, or "" if the URL does not
// parse.
func (r *Request) Host() string {
	u, err := urlpkg.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// SetBasicAuth sets the request's authorization header to use HTTP
// Basic Authentication with the provided username and password.
func (r *Request) SetBasicAuth(username, password string) {
	if r.Header == nil {
		r.Header = make(Header)
	}
	r.Header.Set("authorization", "Basic "+basicAuth(username, password))
}

// basicAuth is lifted from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

func validMethod(method string) bool {
	return len(method) > 0 && strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
