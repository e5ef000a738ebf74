// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"bytes"
	"errors"
	"io"

	"github.com/clbanning/mxj/v2"
)

func init() {
	// Attributes become plain keys of their element.
	mxj.SetAttrPrefix("")
	// Text reaching the XML parser is already UTF-8, whatever the
	// prolog says.
	mxj.XmlCharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
}

// XML parses an XML document into the equivalent JSON value. The root
// element is unwrapped, so the result has the shape the same data would
// have had as JSON.
func XML(text string) (interface{}, error) {
	m, err := mxj.NewMapXml(bytes.TrimSpace([]byte(text)))
	if errors.Is(err, io.EOF) {
		// Input with no element at all runs the parser off the end.
		err = errNoRoot
	}
	if err != nil {
		return nil, newSyntaxError("xml", text, err)
	}
	if len(m) == 1 {
		for _, v := range m {
			return v, nil
		}
	}
	return map[string]interface{}(m), nil
}
