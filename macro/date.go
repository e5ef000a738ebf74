// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package macro

import (
	"strconv"
	"strings"
	"time"
)

// tokens are matched longest first.
var tokens = []string{
	"YYYY", "SSS", "MM", "DD", "HH", "hh", "mm", "ss", "YY", "ZZ",
	"M", "D", "H", "h", "m", "s", "A", "a", "Z", "X", "x",
}

// Format formats t with a Moment-style format string, for example
// "YYYYMMDD" or "YYYY-MM-DD HH:mm:ss". Text inside square brackets is
// copied literally, as is any character which is not part of a token.
func Format(t time.Time, format string) string {
	var sb strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if j := strings.IndexByte(format[i:], ']'); j > 0 {
				sb.WriteString(format[i+1 : i+j])
				i += j + 1
				continue
			}
		}
		tok := ""
		for _, k := range tokens {
			if strings.HasPrefix(format[i:], k) {
				tok = k
				break
			}
		}
		if tok == "" {
			sb.WriteByte(format[i])
			i++
			continue
		}
		sb.WriteString(formatToken(t, tok))
		i += len(tok)
	}
	return sb.String()
}

func formatToken(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return t.Format("2006")
	case "YY":
		return t.Format("06")
	case "MM":
		return t.Format("01")
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DD":
		return t.Format("02")
	case "D":
		return strconv.Itoa(t.Day())
	case "HH":
		return t.Format("15")
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return t.Format("03")
	case "h":
		return t.Format("3")
	case "mm":
		return t.Format("04")
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return t.Format("05")
	case "s":
		return strconv.Itoa(t.Second())
	case "SSS":
		return t.Format(".000")[1:]
	case "A":
		return t.Format("PM")
	case "a":
		return t.Format("pm")
	case "Z":
		return t.Format("-07:00")
	case "ZZ":
		return t.Format("-0700")
	case "X":
		return strconv.FormatInt(t.Unix(), 10)
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return tok
}
