// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/fetchx/macro"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/retry"
	"github.com/gogama/fetchx/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastRetry = retry.NewPolicy(retry.DefaultDecider, retry.Fixed(time.Millisecond))

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("nil transport", func(t *testing.T) {
		d := &Dispatcher{}
		assert.PanicsWithValue(t, "fetchx: nil transport", func() {
			_, _ = d.Dispatch(context.Background(), request.New("GET", "http://x", nil), nil)
		})
	})
	t.Run("prepare error", func(t *testing.T) {
		m := newMockTransport(t)
		d := &Dispatcher{}
		resp, err := d.Dispatch(context.Background(), &request.Request{Method: "GE T", URL: "http://x"}, m)
		assert.Nil(t, resp)
		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "Ge t", fe.Op)
		assert.EqualError(t, fe.Err, `fetchx/request: invalid method "GE T"`)
		m.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	})
	t.Run("happy path", testDispatchHappyPath)
	t.Run("status retry", testDispatchStatusRetry)
	t.Run("budget exhausted", testDispatchBudgetExhausted)
	t.Run("hang-up", testDispatchHangUp)
	t.Run("unreachable", testDispatchUnreachable)
	t.Run("not retryable status", testDispatchNotRetryableStatus)
	t.Run("nil response", testDispatchNilResponse)
	t.Run("timeout", testDispatchTimeout)
	t.Run("cancel during wait", testDispatchCancelDuringWait)
	t.Run("substitution", testDispatchSubstitution)
	t.Run("no substitution", testDispatchNoSubstitution)
	t.Run("events", testDispatchEvents)
	t.Run("finish", testDispatchFinish)
}

func testDispatchHappyPath(t *testing.T) {
	t.Parallel()
	ok := &request.Response{OK: true, Status: 200, Type: request.Buffer, Data: []byte("x")}
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
		return r.Method == "GET" && r.URL == "http://x/y" && r.Timeout == request.DefaultTimeout
	})).Return(ok, nil).Once()
	resp, err := Dispatch(context.Background(), &request.Request{URL: "http://x/y"}, m, false)
	require.NoError(t, err)
	assert.Same(t, ok, resp)
	m.AssertExpectations(t)
}

func testDispatchStatusRetry(t *testing.T) {
	t.Parallel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).Return(&request.Response{Status: 503}, nil).Twice()
	m.On("Do", mock.Anything, mock.Anything).Return(&request.Response{OK: true, Status: 200}, nil).Once()
	d := &Dispatcher{RetryPolicy: fastRetry}
	resp, err := d.Dispatch(context.Background(), &request.Request{URL: "http://x", Retries: 3}, m)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	m.AssertNumberOfCalls(t, "Do", 3)
}

func testDispatchBudgetExhausted(t *testing.T) {
	t.Parallel()
	for retries := 0; retries < 4; retries++ {
		m := newMockTransport(t)
		last := &request.Response{Status: 500, StatusText: "Internal Server Error"}
		m.On("Do", mock.Anything, mock.Anything).Return(last, nil)
		d := &Dispatcher{RetryPolicy: fastRetry}
		resp, err := d.Dispatch(context.Background(), &request.Request{URL: "http://x/z", Retries: retries}, m)
		assert.Nil(t, resp)
		m.AssertNumberOfCalls(t, "Do", retries+1)
		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Same(t, last, fe.Response)
		assert.Equal(t, "http://x/z", fe.URL)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 500, se.Status)
		assert.EqualError(t, err, `Get "http://x/z": unexpected status 500 Internal Server Error`)
	}
}

func testDispatchHangUp(t *testing.T) {
	t.Parallel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).Return(nil, &url.Error{Op: "Post", URL: "http://x", Err: io.EOF})
	d := &Dispatcher{RetryPolicy: fastRetry}
	_, err := d.Dispatch(context.Background(), &request.Request{Method: "POST", URL: "http://x", Retries: 5}, m)
	m.AssertNumberOfCalls(t, "Do", 2)
	require.Error(t, err)
	assert.Equal(t, `Post "http://x": `+HangUpMessage, err.Error())
	assert.ErrorIs(t, err, io.EOF)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Same(t, io.EOF, fe.Err)
}

func testDispatchUnreachable(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		err  error
	}{
		{"DNS", &net.DNSError{Err: "no such host", Name: "nowhere.invalid"}},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			m := newMockTransport(t)
			m.On("Do", mock.Anything, mock.Anything).Return(nil, testCase.err)
			d := &Dispatcher{RetryPolicy: fastRetry}
			_, err := d.Dispatch(context.Background(), &request.Request{URL: "http://nowhere.invalid", Retries: 5}, m)
			m.AssertNumberOfCalls(t, "Do", 1)
			assert.ErrorIs(t, err, testCase.err)
		})
	}
}

func testDispatchNotRetryableStatus(t *testing.T) {
	t.Parallel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).Return(&request.Response{Status: 404, StatusText: "Not Found"}, nil)
	d := &Dispatcher{RetryPolicy: fastRetry}
	_, err := d.Dispatch(context.Background(), &request.Request{URL: "http://x", Retries: 5}, m)
	m.AssertNumberOfCalls(t, "Do", 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Status)
}

func testDispatchNilResponse(t *testing.T) {
	t.Parallel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).Return(nil, nil)
	d := &Dispatcher{RetryPolicy: fastRetry}
	_, err := d.Dispatch(context.Background(), &request.Request{URL: "http://x", Retries: 1}, m)
	m.AssertNumberOfCalls(t, "Do", 2)
	assert.ErrorIs(t, err, errNilResponse)
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func testDispatchTimeout(t *testing.T) {
	t.Parallel()
	var timeouts []time.Duration
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			timeouts = append(timeouts, args.Get(1).(*request.Request).Timeout)
		}).
		Return(nil, timeoutErr{})
	var afterTimeout int
	handlers := &HandlerGroup{}
	handlers.PushBack(AfterAttemptTimeout, HandlerFunc(func(_ Event, e *request.Execution) {
		afterTimeout++
		assert.Equal(t, afterTimeout, e.AttemptTimeouts)
	}))
	d := &Dispatcher{
		RetryPolicy:   fastRetry,
		TimeoutPolicy: timeout.Adaptive(time.Second, 3*time.Second),
		Handlers:      handlers,
	}
	_, err := d.Dispatch(context.Background(), &request.Request{URL: "http://x", Retries: 2}, m)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Timeout())
	assert.Equal(t, 3, afterTimeout)
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second, 3 * time.Second}, timeouts)
}

func testDispatchCancelDuringWait(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).Return(&request.Response{Status: 503}, nil)
	handlers := &HandlerGroup{}
	handlers.PushBack(BeforeRetryWait, HandlerFunc(func(_ Event, e *request.Execution) {
		assert.Equal(t, time.Hour, e.Value(RetryWaitKey))
		cancel()
	}))
	d := &Dispatcher{
		RetryPolicy: retry.NewPolicy(retry.DefaultDecider, retry.Fixed(time.Hour)),
		Handlers:    handlers,
	}
	start := time.Now()
	_, err := d.Dispatch(ctx, &request.Request{URL: "http://x", Retries: 3}, m)
	assert.Less(t, time.Since(start), time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	m.AssertNumberOfCalls(t, "Do", 1)
}

func testDispatchSubstitution(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	clock := time.Unix(1700000000, 0)
	x := &macro.Expander{
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
		Rand: func() float64 { return 0.5 },
	}
	var urls, referers []string
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			r := args.Get(1).(*request.Request)
			urls = append(urls, r.URL)
			referers = append(referers, r.Header.Get("referer"))
		}).
		Return(&request.Response{Status: 502}, nil)
	r := request.New("GET", "http://x/?t={ts}&r={rand}", nil)
	r.Header.Set("Referer", "http://x/{ts}")
	r.Retries = 1
	d := &Dispatcher{RetryPolicy: fastRetry, Substitute: true, Expander: x}
	_, err := d.Dispatch(context.Background(), r, m)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{
		"http://x/?t=1700000001&r=0.5",
		"http://x/?t=1700000003&r=0.5",
	}, urls)
	assert.Equal(t, []string{"http://x/1700000002", "http://x/1700000004"}, referers)
	assert.Equal(t, "http://x/?t=1700000003&r=0.5", fe.URL)
	assert.Equal(t, "http://x/?t={ts}&r={rand}", r.URL, "original must not change")
}

func testDispatchNoSubstitution(t *testing.T) {
	t.Parallel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
		return r.URL == "http://x/{ts}"
	})).Return(&request.Response{OK: true, Status: 204}, nil).Once()
	_, err := Dispatch(context.Background(), request.New("GET", "http://x/{ts}", nil), m, false)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func testDispatchEvents(t *testing.T) {
	t.Parallel()
	var got []Event
	var ids []string
	handlers := &HandlerGroup{}
	for _, evt := range Events() {
		handlers.PushBack(evt, HandlerFunc(func(evt Event, e *request.Execution) {
			got = append(got, evt)
			ids = append(ids, e.ID)
		}))
	}
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	m.On("Do", mock.Anything, mock.Anything).Return(&request.Response{OK: true, Status: 200}, nil).Once()
	d := &Dispatcher{RetryPolicy: fastRetry, Handlers: handlers}
	_, err := d.Dispatch(context.Background(), &request.Request{URL: "http://x", Retries: 1}, m)
	require.NoError(t, err)
	assert.Equal(t, []Event{
		BeforeExecutionStart,
		BeforeAttempt, AfterAttempt, BeforeRetryWait,
		BeforeAttempt, AfterAttempt,
		AfterExecutionEnd,
	}, got)
	require.NotEmpty(t, ids[0])
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func testDispatchFinish(t *testing.T) {
	t.Parallel()
	m := newMockTransport(t)
	m.On("Do", mock.Anything, mock.Anything).
		Return(&request.Response{OK: true, Status: 200, Type: request.Text, Data: "  {\"a\":[1,2]}\n"}, nil)
	r := request.New("GET", "http://x", nil)
	r.Header.Set("Accept", "application/json")
	resp, err := Dispatch(context.Background(), r, m, false)
	require.NoError(t, err)
	assert.Equal(t, request.JSON, resp.Type)
	assert.Equal(t, map[string]interface{}{"a": []interface{}{1.0, 2.0}}, resp.Data)
}

type mockTransport struct {
	mock.Mock
}

func newMockTransport(t *testing.T) *mockTransport {
	m := &mockTransport{}
	m.Test(t)
	return m
}

func (m *mockTransport) Do(ctx context.Context, r *request.Request) (*request.Response, error) {
	args := m.Called(ctx, r)
	resp := args.Get(0)
	err := args.Error(1)
	if resp == nil {
		return nil, err
	}
	return resp.(*request.Response), err
}
