// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"net/http"
	"strings"
)

// Cookie serializes Set-Cookie style strings into a cookie request
// header value. Only the name=value pair of each string is kept, so
// "sid=abc; Path=/; HttpOnly" contributes "sid=abc". Strings without a
// name=value pair are skipped.
func Cookie(setCookies []string) string {
	pairs := make([]string, 0, len(setCookies))
	for _, s := range setCookies {
		if c, err := http.ParseSetCookie(s); err == nil {
			pairs = append(pairs, c.Name+"="+c.Value)
			continue
		}
		// Lenient fallback for values net/http rejects, such as those
		// containing spaces.
		first, _, _ := strings.Cut(s, ";")
		name, value, ok := strings.Cut(first, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		pairs = append(pairs, name+"="+strings.TrimSpace(value))
	}
	return strings.Join(pairs, "; ")
}
