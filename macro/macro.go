// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package macro expands magic variables in URL and header templates.

Recognized variables:

	{ts}          current Unix time in seconds
	{ms}          current Unix time in milliseconds
	{date}        current date as YYYY-MM-DD
	{date:<fmt>}  current time formatted with Moment-style tokens
	{rand}        a fresh random number in [0,1) for every occurrence

Any other text, including unknown {names}, is left untouched.
*/
package macro

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var variable = regexp.MustCompile(`\{(ts|ms|date|rand)(?::([^{}]*))?\}`)

// An Expander expands magic variables using its own time and random
// sources. The zero value uses the wall clock and math/rand.
type Expander struct {
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
	// Rand returns a random number in [0,1). If nil, rand.Float64 is
	// used.
	Rand func() float64
}

var defaultExpander = &Expander{}

// Expand expands the magic variables in s using the wall clock and
// math/rand.
func Expand(s string) string {
	return defaultExpander.Expand(s)
}

// Has reports whether s contains at least one magic variable.
func Has(s string) bool {
	return variable.MatchString(s)
}

// Expand expands the magic variables in s. The clock is read once, so
// every time variable in s refers to the same instant.
func (x *Expander) Expand(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	now := x.now()
	return variable.ReplaceAllStringFunc(s, func(m string) string {
		sub := variable.FindStringSubmatch(m)
		name, arg := sub[1], sub[2]
		hasArg := strings.Contains(m, ":")
		switch name {
		case "ts":
			if hasArg {
				return m
			}
			return strconv.FormatInt(now.Unix(), 10)
		case "ms":
			if hasArg {
				return m
			}
			return strconv.FormatInt(now.UnixMilli(), 10)
		case "date":
			if !hasArg {
				return now.Format("2006-01-02")
			}
			return Format(now, arg)
		case "rand":
			if hasArg {
				return m
			}
			return strconv.FormatFloat(x.rand(), 'f', -1, 64)
		}
		return m
	})
}

func (x *Expander) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}
	return time.Now()
}

func (x *Expander) rand() float64 {
	if x.Rand != nil {
		return x.Rand()
	}
	return rand.Float64()
}
