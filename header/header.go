// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package header makes request headers look like a browser's.
package header

import (
	"net/http"
	"strings"

	"github.com/gogama/fetchx/request"
)

// Names whose browser spelling is not simple dash title case.
var special = map[string]string{
	"content-md5":               "Content-MD5",
	"dnt":                       "DNT",
	"etag":                      "ETag",
	"te":                        "TE",
	"www-authenticate":          "WWW-Authenticate",
	"x-dns-prefetch-control":    "X-DNS-Prefetch-Control",
	"x-att-deviceid":            "X-ATT-DeviceId",
	"x-csrf-token":              "X-CSRF-Token",
	"x-ua-compatible":           "X-UA-Compatible",
	"x-uidh":                    "X-UIDH",
	"x-xss-protection":          "X-XSS-Protection",
	"x-wap-profile":             "X-Wap-Profile",
	"x-webkit-csp":              "X-WebKit-CSP",
	"x-request-id":              "X-Request-ID",
	"x-correlation-id":          "X-Correlation-ID",
	"strict-transport-security": "Strict-Transport-Security",
}

// Canonical returns the spelling a browser uses for a header name, for
// example "User-Agent" for "user-agent" and "DNT" for "dnt".
func Canonical(name string) string {
	lower := strings.ToLower(name)
	if s, ok := special[lower]; ok {
		return s
	}
	b := []byte(lower)
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		upper = c == '-'
	}
	return string(b)
}

// HTTP converts h to a net/http header whose keys are spelled by
// Canonical. The keys are set directly on the map, so net/http writes
// them exactly as spelled.
func HTTP(h request.Header) http.Header {
	hh := make(http.Header, len(h))
	for k, v := range h {
		c := Canonical(k)
		hh[c] = append(hh[c], v...)
	}
	return hh
}
