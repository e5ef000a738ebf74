// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Dispatcher to extend it with
// custom functionality.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// dispatch starts.
	//
	// When the Dispatcher fires BeforeExecutionStart, the execution's
	// ID and prepared Request are set, and nothing else.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs before each
	// attempt.
	//
	// When the Dispatcher fires BeforeAttempt, the execution's Current
	// field is set to the request that WILL BE sent after all
	// BeforeAttempt handlers have finished: a copy of the prepared
	// request with magic variables expanded and the attempt timeout
	// set. Handlers may modify Current.
	BeforeAttempt
	// AfterAttemptTimeout identifies the event that occurs after an
	// attempt failed because of a timeout error.
	//
	// When the Dispatcher fires AfterAttemptTimeout, the execution's
	// error field is set to the timeout error, and its attempt timeout
	// counter has been incremented.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after an attempt
	// is concluded, regardless of whether it concluded successfully or
	// not.
	//
	// When the Dispatcher fires AfterAttempt, exactly one of the
	// execution's response and error fields is non-nil.
	//
	// AfterAttempt fires on every attempt and runs before the retry
	// policy is consulted for a retry decision.
	AfterAttempt
	// BeforeRetryWait identifies the event that occurs after the retry
	// policy decided to retry and before the backoff wait starts.
	//
	// When the Dispatcher fires BeforeRetryWait, the execution still
	// describes the failed attempt, and the wait duration is stored
	// under the key RetryWaitKey.
	BeforeRetryWait
	// AfterExecutionEnd identifies the event that occurs after the
	// dispatch ends.
	//
	// When the Dispatcher fires AfterExecutionEnd, the execution is in
	// the same state it was in after the final attempt EXCEPT that the
	// end time is set, and the error field may hold the context error
	// if the dispatch was abandoned during a backoff wait.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

type retryWaitKey struct{}

// RetryWaitKey is the execution value key under which the Dispatcher
// stores the time.Duration of the coming backoff wait.
var RetryWaitKey interface{} = retryWaitKey{}

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"BeforeRetryWait",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in a
// dispatch, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		AfterAttemptTimeout,
		AfterAttempt,
		BeforeRetryWait,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
