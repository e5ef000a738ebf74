// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"
	"fmt"
)

// A Response is the normalized result of one attempt.
//
// A fresh Response is produced by every attempt. Only the Response of
// the final attempt of a dispatch is returned to the caller.
type Response struct {
	// OK is true if Status is 2XX or 304.
	OK bool

	// Status is the HTTP status code, for example 200.
	Status int

	// StatusText is the reason phrase, for example "OK".
	StatusText string

	// URL is the final URL the response was received from, after any
	// redirects, with user information removed.
	URL string

	// Header contains the response header fields with lower-cased
	// keys.
	Header Header

	// Cookies contains the raw Set-Cookie values of the response.
	Cookies []string

	// Type is the shape of Data: Text, JSON or Buffer. It is never
	// Auto.
	Type Type

	// Data is the decoded body: a string for Text, the decoded JSON
	// value for JSON, and []byte for Buffer.
	Data interface{}

	// Body is the raw response body as received.
	Body []byte
}

// IsOK reports whether status counts as a successful response.
func IsOK(status int) bool {
	return status >= 200 && status < 300 || status == 304
}

// Text returns Data as a string. Buffer data is converted verbatim and
// JSON data is re-encoded.
func (r *Response) Text() string {
	switch x := r.Data.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case nil:
		if r.Type == JSON {
			return "null"
		}
		return ""
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Unmarshal stores the JSON form of the response into v. For Text and
// Buffer responses the body is parsed as JSON.
func (r *Response) Unmarshal(v interface{}) error {
	var b []byte
	switch x := r.Data.(type) {
	case string:
		b = []byte(x)
	case []byte:
		b = x
	default:
		var err error
		b, err = json.Marshal(x)
		if err != nil {
			return err
		}
	}
	return json.Unmarshal(b, v)
}
