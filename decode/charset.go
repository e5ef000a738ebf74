// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/language"
)

// A Detector guesses the charset of a body. The returned name need not
// be canonical, but it must be a label Convert understands.
//
// Implementations of Detector must be safe for concurrent use by
// multiple goroutines.
type Detector interface {
	Detect(raw []byte) (string, error)
}

// The DetectorFunc type is an adapter to allow the use of ordinary
// functions as charset detectors.
type DetectorFunc func(raw []byte) (string, error)

// Detect calls f(raw).
func (f DetectorFunc) Detect(raw []byte) (string, error) {
	return f(raw)
}

// General detects the charset of any body. Valid UTF-8 is always
// reported as UTF-8; anything else goes to the statistical detector.
var General Detector = DetectorFunc(detectGeneral)

// EastAsian is like General except that, when the statistical detector
// finds any Chinese, Japanese or Korean candidate at all, the best such
// candidate wins over a higher rated Western one. Short CJK texts are
// often misread as single-byte Western charsets otherwise.
var EastAsian Detector = DetectorFunc(detectEastAsian)

var errNotDetected = errors.New("no charset candidate")

var eastAsianCharsets = map[string]bool{
	"Big5":        true,
	"EUC-JP":      true,
	"EUC-KR":      true,
	"GB-18030":    true,
	"ISO-2022-CN": true,
	"ISO-2022-JP": true,
	"ISO-2022-KR": true,
	"Shift_JIS":   true,
}

func detectGeneral(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return "utf-8", nil
	}
	r, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return "", err
	}
	return r.Charset, nil
}

func detectEastAsian(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return "utf-8", nil
	}
	all, err := chardet.NewTextDetector().DetectAll(raw)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", errNotDetected
	}
	for _, r := range all {
		if eastAsianCharsets[r.Charset] {
			return r.Charset, nil
		}
	}
	return all[0].Charset, nil
}

// IsEastAsian reports whether the most preferred language of an
// accept-language header value is Chinese, Japanese or Korean.
func IsEastAsian(acceptLanguage string) bool {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return false
	}
	base, _ := tags[0].Base()
	switch base.String() {
	case "zh", "ja", "ko":
		return true
	default:
		return false
	}
}

// Detector names that the WHATWG label table does not know.
var aliases = map[string]string{
	"gb-18030": "gb18030",
}

// Convert decodes raw from the named charset to a UTF-8 string. Labels
// are matched case-insensitively against the WHATWG encoding label
// table, so "latin1", "Shift_JIS" and "GB2312" all work. A leading
// byte order mark is dropped.
func Convert(raw []byte, label string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if a, ok := aliases[l]; ok {
		l = a
	}
	enc, name := charset.Lookup(l)
	if enc == nil {
		return "", &Error{Charset: label, Err: errNoCharset}
	}
	b, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &Error{Charset: name, Err: err}
	}
	return strings.TrimPrefix(string(b), "\ufeff"), nil
}
