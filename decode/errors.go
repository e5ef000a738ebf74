// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"errors"
	"fmt"

	"github.com/gogama/fetchx/transient"
)

// ErrDecoding is matched by every error this package returns, so
// callers can test errors.Is(err, decode.ErrDecoding). The errors also
// match transient.ErrBody.
var ErrDecoding = errors.New("fetchx/decode: decoding error")

var (
	errNoCharset = errors.New("unsupported charset")
	errNoRoot    = errors.New("no root element")
)

// An Error reports a body which could not be converted to text.
type Error struct {
	// Charset is the charset that was attempted. It is empty if no
	// charset could be detected.
	Charset string
	Err     error
}

func (e *Error) Error() string {
	if e.Charset == "" {
		return "fetchx/decode: cannot detect charset: " + e.Err.Error()
	}
	return fmt.Sprintf("fetchx/decode: cannot decode body as %q: %v", e.Charset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return isDecoding(target) }

// A SyntaxError reports text which could not be parsed as JSON or XML.
type SyntaxError struct {
	// Format is "json" or "xml".
	Format string
	// Preview is the start of the offending text: at most
	// PreviewLength runes followed by "..." if it was cut.
	Preview string
	Err     error
}

// PreviewLength is the number of runes of offending text a SyntaxError
// keeps.
const PreviewLength = 29

func newSyntaxError(format, text string, err error) *SyntaxError {
	return &SyntaxError{Format: format, Preview: preview(text), Err: err}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("fetchx/decode: invalid %s %q: %v", e.Format, e.Preview, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Is(target error) bool { return isDecoding(target) }

func isDecoding(target error) bool {
	return target == ErrDecoding || target == transient.ErrBody
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewLength {
		return text
	}
	return string(r[:PreviewLength]) + "..."
}
