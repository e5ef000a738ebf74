// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"sort"
	"strings"
)

// A Header represents the key-value pairs of a request or response
// header.
//
// Unlike http.Header, keys are stored lower-cased rather than in MIME
// canonical form, so a Header key is exactly the name a crawler wrote
// or a server sent, folded to lower case. All methods fold the key
// passed to them, so lookups are case-insensitive regardless of how the
// header was stored.
type Header map[string][]string

// Get returns the first value associated with key, or "" if there is
// none.
func (h Header) Get(key string) string {
	v := h.Values(key)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values associated with key. The returned slice
// is not a copy.
func (h Header) Values(key string) []string {
	v, _ := h.lookup(key)
	return v
}

// Has reports whether h contains key.
func (h Header) Has(key string) bool {
	_, ok := h.lookup(key)
	return ok
}

// lookup finds key even if h was built as a map literal with keys that
// are not lower-cased.
func (h Header) lookup(key string) ([]string, bool) {
	if h == nil {
		return nil, false
	}
	k := fold(key)
	if v, ok := h[k]; ok {
		return v, true
	}
	for k2, v := range h {
		if strings.EqualFold(k2, k) {
			return v, true
		}
	}
	return nil, false
}

// Set sets the header entry associated with key to the single element
// value, replacing any existing values.
func (h Header) Set(key, value string) {
	h.Del(key)
	h[fold(key)] = []string{value}
}

// Add appends value to the values associated with key.
func (h Header) Add(key, value string) {
	k := fold(key)
	v, _ := h.lookup(k)
	h.Del(k)
	h[k] = append(v, value)
}

// Del deletes the values associated with key, however the key is
// cased.
func (h Header) Del(key string) {
	k := fold(key)
	for k2 := range h {
		if strings.EqualFold(k2, k) {
			delete(h, k2)
		}
	}
}

// Clone returns a deep copy of h, or nil if h is nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	h2 := make(Header, len(h))
	for k, v := range h {
		v2 := make([]string, len(v))
		copy(v2, v)
		h2[k] = v2
	}
	return h2
}

// FromHTTP converts a net/http header into a Header, folding every key
// to lower case. When two keys fold to the same name, their values are
// merged.
func FromHTTP(hh http.Header) Header {
	h := make(Header, len(hh))
	for k, v := range hh {
		k = fold(k)
		h[k] = append(h[k], v...)
	}
	return h
}

// normalize folds every key of h to lower case in place. When two keys
// collide after folding, their values are merged in the byte order of
// the original keys, so "ACCEPT" comes before "Accept" and "accept".
func (h Header) normalize() {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	merged := make(Header, len(h))
	for _, k := range keys {
		f := fold(k)
		merged[f] = append(merged[f], h[k]...)
	}
	for k := range h {
		delete(h, k)
	}
	for k, v := range merged {
		h[k] = v
	}
}

func fold(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
