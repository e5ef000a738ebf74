// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transient classifies errors returned by a fetch attempt into
categories used by the retry deciders: Not, Timeout, ConnReset, HangUp
and Unreachable.
*/
package transient
