// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"testing"

	"github.com/gogama/fetchx/request"

	"github.com/stretchr/testify/assert"
)

func header(kv ...string) request.Header {
	h := request.Header{}
	for i := 0; i < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		resp   request.Header
		req    request.Header
		expect Descriptor
	}{
		{
			name:   "response content type",
			resp:   header("Content-Type", "application/json; charset=UTF-8"),
			expect: Descriptor{Prefix: "application", Type: "json", Charset: "utf-8"},
		},
		{
			name:   "mixed case key",
			resp:   request.Header{"Content-TYPE": {"text/html"}},
			expect: Descriptor{Prefix: "text", Type: "html"},
		},
		{
			name:   "accept fallback",
			req:    header("accept", "application/json, text/plain, */*"),
			expect: Descriptor{Prefix: "application", Type: "json"},
		},
		{
			name:   "response wins over accept",
			resp:   header("content-type", "text/xml"),
			req:    header("accept", "application/json"),
			expect: Descriptor{Prefix: "text", Type: "xml"},
		},
		{
			name:   "default",
			expect: Descriptor{Prefix: "text", Type: "plain", Charset: "utf-8"},
		},
		{
			name:   "wildcard accept",
			req:    header("Accept", "*/*"),
			expect: Descriptor{Prefix: "*", Type: "*"},
		},
		{
			name:   "quoted charset",
			resp:   header("content-type", `text/html; foo=bar; Charset="GBK"`),
			expect: Descriptor{Prefix: "text", Type: "html", Charset: "gbk"},
		},
		{
			name:   "json suffix",
			resp:   header("content-type", "application/problem+json"),
			expect: Descriptor{Prefix: "application", Type: "json"},
		},
		{
			name:   "octet stream",
			resp:   header("content-type", "application/octet-stream"),
			expect: Descriptor{Prefix: "application", Type: "octet-stream"},
		},
		{
			name:   "no slash",
			resp:   header("content-type", "garbage"),
			expect: Descriptor{Prefix: "garbage"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expect, Classify(testCase.resp, testCase.req))
		})
	}
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON(header("accept", "application/json")))
	assert.True(t, IsJSON(header("Accept", "application/ld+json;q=0.9, text/html")))
	assert.False(t, IsJSON(header("accept", "text/html, application/json")))
	assert.False(t, IsJSON(nil))
}
