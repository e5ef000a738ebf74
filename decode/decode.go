// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gogama/fetchx/content"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
	"github.com/tidwall/gjson"
)

// A Decoder converts raw response bodies to typed values.
//
// The zero value is ready to use: it is lenient in auto-detect mode and
// detects charsets with General or EastAsian.
type Decoder struct {
	// Strict makes auto-detect failures visible. When false, a body
	// that cannot be decoded in auto-detect mode is returned as Buffer
	// and no error is reported.
	Strict bool

	// General and EastAsian override the package-level detectors of
	// the same name when non-nil.
	General   Detector
	EastAsian Detector
}

// DefaultDecoder is the Decoder used by the package-level Decode.
var DefaultDecoder = &Decoder{}

// Decode decodes raw using DefaultDecoder.
func Decode(raw []byte, d content.Descriptor, r *request.Request) (request.Type, interface{}, error) {
	return DefaultDecoder.Decode(raw, d, r)
}

// Decode converts raw into a value of the returned type: a string for
// Text, a JSON value for JSON, or raw itself for Buffer.
//
// If r forces Buffer, or r does not force a type and d is an
// octet-stream, raw is returned as is. If r forces Text or JSON, raw is
// converted to text using r.ResponseCharset, d.Charset, or a detected
// charset, in that order; for JSON the text is then parsed as JSON, or
// as XML if d.Type is "xml". Failures in forced mode return an error
// matching ErrDecoding.
//
// Otherwise Decode is in auto-detect mode, described in the package
// documentation. An empty raw always decodes to empty Text unless
// Buffer applies.
func (dec *Decoder) Decode(raw []byte, d content.Descriptor, r *request.Request) (request.Type, interface{}, error) {
	forced := request.Auto
	if r != nil {
		forced = r.ResponseType
	}
	switch forced {
	case request.Buffer:
		return request.Buffer, raw, nil
	case request.Text, request.JSON:
		return dec.forced(raw, d, r, forced)
	case request.Auto:
		if d.Type == "octet-stream" {
			return request.Buffer, raw, nil
		}
		return dec.auto(raw, d, r)
	default:
		return "", nil, fmt.Errorf("fetchx/decode: unknown response type %q", forced)
	}
}

func (dec *Decoder) forced(raw []byte, d content.Descriptor, r *request.Request, t request.Type) (request.Type, interface{}, error) {
	if len(raw) == 0 {
		return request.Text, "", nil
	}
	text, err := dec.text(raw, d, r)
	if err != nil {
		return "", nil, err
	}
	if t == request.Text {
		return request.Text, text, nil
	}
	v, err := structured(text, d.Type)
	if err != nil {
		return "", nil, err
	}
	return request.JSON, v, nil
}

func (dec *Decoder) auto(raw []byte, d content.Descriptor, r *request.Request) (t request.Type, data interface{}, err error) {
	switch d.Prefix {
	case "text", "application", "*":
	default:
		return request.Buffer, raw, nil
	}
	if len(raw) == 0 {
		return request.Text, "", nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %w: %v", ErrDecoding, transient.ErrBody, p)
			t, data = "", nil
		}
		if err != nil && !dec.Strict {
			t, data, err = request.Buffer, raw, nil
		}
	}()

	text, err := dec.text(raw, d, r)
	if err != nil {
		return "", nil, err
	}
	switch d.Type {
	case "json", "xml":
		v, err := structured(text, d.Type)
		if err != nil {
			return "", nil, err
		}
		return request.JSON, v, nil
	default:
		return request.Text, text, nil
	}
}

func (dec *Decoder) text(raw []byte, d content.Descriptor, r *request.Request) (string, error) {
	cs := d.Charset
	if r != nil && r.ResponseCharset != "" {
		cs = r.ResponseCharset
	}
	if cs == "" {
		var err error
		cs, err = dec.detector(r).Detect(raw)
		if err != nil {
			return "", &Error{Err: err}
		}
	}
	return Convert(raw, cs)
}

func (dec *Decoder) detector(r *request.Request) Detector {
	if r != nil && IsEastAsian(r.Header.Get("accept-language")) {
		if dec.EastAsian != nil {
			return dec.EastAsian
		}
		return EastAsian
	}
	if dec.General != nil {
		return dec.General
	}
	return General
}

func structured(text, typ string) (interface{}, error) {
	if typ == "xml" {
		return XML(text)
	}
	return JSON(text)
}

// JSON parses text as a JSON value.
func JSON(text string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, newSyntaxError("json", text, err)
	}
	return v, nil
}

// Finish applies the final touches to a successful response before it
// is handed to the caller. Text data is trimmed of surrounding white
// space, and if the request's accept header asks for JSON and the text
// is valid JSON, the response is upgraded to JSON. Finish never fails;
// text that is not JSON stays text.
func Finish(resp *request.Response, r *request.Request) {
	if resp == nil || resp.Type != request.Text {
		return
	}
	s, ok := resp.Data.(string)
	if !ok {
		return
	}
	s = strings.TrimSpace(s)
	resp.Data = s
	if r == nil || !content.IsJSON(r.Header) || !gjson.Valid(s) {
		return
	}
	if v, err := JSON(s); err == nil {
		resp.Type = request.JSON
		resp.Data = v
	}
}
