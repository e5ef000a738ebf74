// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize.
//
// The categories Not, Timeout and ConnReset leave the retry decision to
// the retry budget. HangUp is transient but unlikely to clear up after
// the first retry. Unreachable is never transient.
type Category int

const (
	// Not indicates an error with no particular transience signature.
	// Whether it is retried depends only on the remaining retry budget.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout method that reports true.
	Timeout
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	ConnReset
	// HangUp indicates the remote host closed the connection without
	// sending any response, for example when a keep-alive connection
	// is dropped by the server just as a request is written to it.
	//
	// Categorize returns HangUp if the error or any of its wrapped
	// causes is io.EOF, io.ErrUnexpectedEOF or ErrHangUp, unless the
	// error also matches ErrBody.
	HangUp
	// Unreachable indicates the request could not reach a server which
	// is willing to serve it: the connection was refused, the host name
	// did not resolve, the network or host is unreachable, or the
	// redirect limit was exceeded. Retrying does not help.
	Unreachable
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnReset",
	"HangUp",
	"Unreachable",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(?)"
	}
	return categoryNames[c]
}

var (
	// ErrHangUp is returned by transports which detect that the server
	// closed the connection without sending a response.
	ErrHangUp = errors.New("socket hang up")

	// ErrTooManyRedirects is returned by transports which stop following
	// redirects after reaching their limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBody is matched by errors about a response body the server did
	// send but which could not be read in full or decoded. Such errors
	// are categorized Not, even when they wrap io.EOF or
	// io.ErrUnexpectedEOF, unless they are timeouts.
	ErrBody = errors.New("bad response body")
)

// Categorize returns the transience category of the given error. A nil
// error produces Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Timeouts take precedence
// over every other category, so a DNS lookup that timed out is a
// Timeout, not Unreachable.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, ErrBody) {
		return Not
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Unreachable
	}

	if errors.Is(err, ErrTooManyRedirects) {
		return Unreachable
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return Unreachable
		case syscall.ECONNRESET:
			return ConnReset
		}
	}

	if errors.Is(err, ErrHangUp) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return HangUp
	}

	// net/http reports a connection closed before any response byte
	// as a bare "EOF" string on some paths.
	if fromNetwork(err) && strings.HasSuffix(err.Error(), ": EOF") {
		return HangUp
	}

	return Not
}

// Terminal reports whether err can never succeed on retry.
func Terminal(err error) bool {
	return Categorize(err) == Unreachable
}

func fromNetwork(err error) bool {
	var urlErr *url.Error
	var opErr *net.OpError
	return errors.As(err, &urlErr) || errors.As(err, &opErr)
}

type hasTimeout interface {
	Timeout() bool
}
