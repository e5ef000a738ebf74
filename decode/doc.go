// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package decode turns raw response bytes into a typed value.

A body is decoded according to its content.Descriptor and the request
that produced it. If the request forces a response type, the body is
decoded to that type or an error wrapping ErrDecoding is returned. In
auto-detect mode the body is decoded on a best-effort basis: text and
application bodies are converted to text using the declared or detected
charset and then parsed as JSON or XML when their type says so, and any
failure along the way quietly yields the raw bytes instead. Set
Decoder.Strict to surface those failures.

XML bodies are converted to the equivalent JSON value: attributes are
merged into their element and the root element is unwrapped, so
<root><foo>Hello</foo></root> becomes {"foo":"Hello"}.

Charset detection is delegated to a Detector. Two are provided: General,
and EastAsian which is preferred when the request's accept-language
names Chinese, Japanese or Korean.
*/
package decode
