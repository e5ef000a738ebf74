// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	urlpkg "net/url"
	"sort"
	"strings"
)

const badBodyTypeMsg = "fetchx/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

const formContentType = "application/x-www-form-urlencoded"

// BodyBytes converts a generic body parameter to a byte slice for use
// as a request body.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. A reader is read to the end, and closed
// if it implements io.Closer. Any other type produces an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

// formValues converts the object-like data types into url.Values. The
// second return value is false if data is not object-like.
func formValues(data interface{}) (urlpkg.Values, bool) {
	switch x := data.(type) {
	case urlpkg.Values:
		return x, true
	case map[string][]string:
		return urlpkg.Values(x), true
	case map[string]string:
		v := make(urlpkg.Values, len(x))
		for k, s := range x {
			v.Set(k, s)
		}
		return v, true
	case map[string]interface{}:
		v := make(urlpkg.Values, len(x))
		for k, i := range x {
			switch y := i.(type) {
			case []string:
				v[k] = append(v[k], y...)
			case []interface{}:
				for _, z := range y {
					v.Add(k, fmt.Sprint(z))
				}
			case nil:
				v.Set(k, "")
			default:
				v.Set(k, fmt.Sprint(y))
			}
		}
		return v, true
	default:
		return nil, false
	}
}

// queryString converts data into a query string, without a leading
// separator.
func queryString(data interface{}) (string, error) {
	if v, ok := formValues(data); ok {
		return v.Encode(), nil
	}
	var s string
	switch x := data.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case io.Reader:
		b, err := BodyBytes(x)
		if err != nil {
			return "", err
		}
		s = string(b)
	default:
		s = fmt.Sprint(x)
	}
	return strings.TrimLeft(s, "?&"), nil
}

func appendQuery(url, q string) string {
	if q == "" {
		return url
	}
	frag := ""
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url, frag = url[:i], url[i:]
	}
	switch {
	case !strings.Contains(url, "?"):
		url += "?"
	case !strings.HasSuffix(url, "?") && !strings.HasSuffix(url, "&"):
		url += "&"
	}
	return url + q + frag
}

// encodeBody encodes data for a request with a body. The returned
// content type is the one implied by the encoding, or "" if the
// encoding implies none.
func encodeBody(data interface{}, contentType string) ([]byte, string, error) {
	switch data.(type) {
	case string, []byte, io.Reader:
		b, err := BodyBytes(data)
		return b, "", err
	}
	if v, ok := formValues(data); ok && isForm(contentType) {
		return []byte(formEncode(v)), "", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("fetchx/request: encoding data: %w", err)
	}
	return b, "application/json", nil
}

func isForm(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(contentType), formContentType)
	}
	return mt == formContentType
}

// formEncode writes v in form encoding, escaping values but leaving
// keys verbatim. Keys are sorted.
func formEncode(v urlpkg.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		for _, s := range v[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(urlpkg.QueryEscape(s))
		}
	}
	return sb.String()
}
