// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"fmt"
	"strings"

	"github.com/gogama/fetchx/request"
	"golang.org/x/text/language"
)

const (
	// DefaultUserAgent is a desktop Chrome user agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	// DefaultAccept is the accept header a browser sends for a page.
	DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	// DefaultLocale is the locale used when a Profile has none.
	DefaultLocale = "en-US"
)

// A Profile describes the browser a fetcher pretends to be. Empty
// fields take the package defaults.
type Profile struct {
	UserAgent string
	// Locale is a BCP 47 tag such as "zh-CN" or "en_GB", used to
	// build the accept-language header.
	Locale string
	Accept string
}

// Apply sets the user-agent, accept and accept-language headers of h,
// except those h already has.
func (p Profile) Apply(h request.Header) {
	if !h.Has("user-agent") {
		h.Set("user-agent", or(p.UserAgent, DefaultUserAgent))
	}
	if !h.Has("accept") {
		h.Set("accept", or(p.Accept, DefaultAccept))
	}
	if !h.Has("accept-language") {
		al, err := AcceptLanguage(or(p.Locale, DefaultLocale))
		if err != nil {
			al, _ = AcceptLanguage(DefaultLocale)
		}
		h.Set("accept-language", al)
	}
}

// AcceptLanguage builds the accept-language header a browser set to
// locale would send. The locale is followed by its base language and
// then English, each with a lower weight:
//
//	zh-CN  ->  zh-CN,zh;q=0.9,en;q=0.8
//	en-US  ->  en-US,en;q=0.9
//	fr     ->  fr,en;q=0.9
func AcceptLanguage(locale string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("fetchx/header: bad locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	parts := []string{tag.String()}
	weight := 9
	if b := base.String(); b != tag.String() {
		parts = append(parts, fmt.Sprintf("%s;q=0.%d", b, weight))
		weight--
	}
	if base.String() != "en" {
		parts = append(parts, fmt.Sprintf("en;q=0.%d", weight))
	}
	return strings.Join(parts, ","), nil
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
