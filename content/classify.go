// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package content classifies a response body from its headers.
package content

import (
	"strings"

	"github.com/gogama/fetchx/request"
)

// DefaultContentType is assumed when neither the response content-type
// nor the request accept header say anything.
const DefaultContentType = "text/plain; charset=UTF-8"

// A Descriptor is the classification of a response body.
//
// For "application/json; charset=utf-8", Prefix is "application", Type
// is "json" and Charset is "utf-8". All fields are lower case. Charset
// is empty if the content type carries no charset parameter.
type Descriptor struct {
	Prefix  string
	Type    string
	Charset string
}

// Classify describes a response body using the response content-type
// header. If the response has none, the first media range of the
// request's accept header stands in for it, and if that is missing too,
// DefaultContentType is used.
//
// Structured syntax suffixes for JSON are folded, so
// "application/problem+json" has Type "json".
func Classify(responseHeader, requestHeader request.Header) Descriptor {
	ct := strings.TrimSpace(responseHeader.Get("content-type"))
	if ct == "" {
		ct = firstMediaRange(requestHeader.Get("accept"))
	}
	if ct == "" {
		ct = DefaultContentType
	}
	return Parse(ct)
}

// Parse splits a single media type into a Descriptor.
func Parse(contentType string) Descriptor {
	var d Descriptor
	params := strings.Split(contentType, ";")
	full := strings.ToLower(strings.TrimSpace(params[0]))
	if i := strings.IndexByte(full, '/'); i >= 0 {
		d.Prefix, d.Type = strings.TrimSpace(full[:i]), strings.TrimSpace(full[i+1:])
	} else {
		d.Prefix = full
	}
	if strings.HasSuffix(d.Type, "+json") {
		d.Type = "json"
	}
	for _, p := range params[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "charset") {
			continue
		}
		d.Charset = strings.ToLower(strings.Trim(strings.TrimSpace(v), `"'`))
		break
	}
	return d
}

// IsJSON reports whether the request's accept header asks for JSON
// first.
func IsJSON(requestHeader request.Header) bool {
	a := firstMediaRange(requestHeader.Get("accept"))
	return a != "" && Parse(a).Type == "json"
}

func firstMediaRange(accept string) string {
	first, _, _ := strings.Cut(accept, ",")
	return strings.TrimSpace(first)
}
