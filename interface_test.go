// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"net/url"
	"testing"

	"github.com/gogama/fetchx/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGet(t *testing.T) {
	expected := &request.Response{}
	m := newMockDoer(t)
	m.On("Fetch", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
		return r.Method == "GET" && r.URL == "foo"
	})).Return(expected, nil).Once()
	resp, err := Get(context.Background(), m, "foo")
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestHead(t *testing.T) {
	expected := &request.Response{}
	m := newMockDoer(t)
	m.On("Fetch", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
		return r.Method == "HEAD" && r.URL == "bar"
	})).Return(expected, nil).Once()
	resp, err := Head(context.Background(), m, "bar")
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestPost(t *testing.T) {
	t.Run("content type", func(t *testing.T) {
		expected := &request.Response{}
		m := newMockDoer(t)
		m.On("Fetch", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
			return r.Method == "POST" && r.URL == "baz" &&
				r.Header.Get("Content-Type") == "ham" &&
				r.Data == "eggs"
		})).Return(expected, nil).Once()
		resp, err := Post(context.Background(), m, "baz", "ham", "eggs")
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("no content type", func(t *testing.T) {
		m := newMockDoer(t)
		m.On("Fetch", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
			return !r.Header.Has("content-type")
		})).Return(&request.Response{}, nil).Once()
		_, err := Post(context.Background(), m, "baz", "", map[string]int{"a": 1})
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
}

func TestPostForm(t *testing.T) {
	expected := &request.Response{}
	m := newMockDoer(t)
	m.On("Fetch", mock.Anything, mock.MatchedBy(func(r *request.Request) bool {
		return r.Method == "POST" && r.URL == "poster boy" &&
			r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" &&
			r.Data == "a=1"
	})).Return(expected, nil).Once()
	resp, err := PostForm(context.Background(), m, "poster boy", url.Values{"a": {"1"}})
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestInflate(t *testing.T) {
	ctx := context.Background()
	t.Run("Inflate", func(t *testing.T) {
		t.Run("nil doer", func(t *testing.T) {
			assert.PanicsWithValue(t, "fetchx: nil doer", func() {
				Inflate(nil)
			})
		})
		t.Run("already an Executor", func(t *testing.T) {
			f := &Fetcher{}
			x := Inflate(f)
			assert.Same(t, f, x)
		})
		t.Run("not yet an Executor", func(t *testing.T) {
			m := newMockDoer(t)
			x := Inflate(m)
			assert.NotSame(t, m, x)
		})
	})
	expected := &request.Response{}
	t.Run("Fetch", func(t *testing.T) {
		r := request.New("PUT", "http://www.randomcollections.com/widgets/1", "foo")
		m := newMockDoer(t)
		m.On("Fetch", ctx, r).Return(expected, nil).Once()
		resp, err := Inflate(m).Fetch(ctx, r)
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("Get", func(t *testing.T) {
		m := newMockDoer(t)
		m.On("Fetch", ctx, mock.MatchedBy(func(r *request.Request) bool {
			return r.Method == "GET" && r.URL == "bar"
		})).Return(expected, nil).Once()
		resp, err := Inflate(m).Get(ctx, "bar")
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("Head", func(t *testing.T) {
		m := newMockDoer(t)
		m.On("Fetch", ctx, mock.MatchedBy(func(r *request.Request) bool {
			return r.Method == "HEAD" && r.URL == "baz"
		})).Return(expected, nil).Once()
		resp, err := Inflate(m).Head(ctx, "baz")
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("Post", func(t *testing.T) {
		m := newMockDoer(t)
		m.On("Fetch", ctx, mock.MatchedBy(func(r *request.Request) bool {
			return r.Method == "POST" && r.URL == "ham" &&
				r.Header.Get("Content-Type") == "eggs" &&
				r.Data == nil
		})).Return(expected, nil).Once()
		resp, err := Inflate(m).Post(ctx, "ham", "eggs", nil)
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("PostForm", func(t *testing.T) {
		m := newMockDoer(t)
		m.On("Fetch", ctx, mock.MatchedBy(func(r *request.Request) bool {
			return r.Method == "POST" && r.URL == "form" &&
				r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" &&
				r.Data == "x=y"
		})).Return(expected, nil).Once()
		resp, err := Inflate(m).PostForm(ctx, "form", url.Values{"x": []string{"y"}})
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("CloseIdleConnections", func(t *testing.T) {
		t.Run("Doer does not implement IdleCloser", func(t *testing.T) {
			m := newMockDoer(t)
			Inflate(m).CloseIdleConnections()
			m.AssertNotCalled(t, "CloseIdleConnections")
		})
		t.Run("Doer implements IdleCloser", func(t *testing.T) {
			m := newMockDoerWithCloseIdleConnections(t)
			m.On("CloseIdleConnections").Once()
			Inflate(m).CloseIdleConnections()
			m.AssertExpectations(t)
		})
	})
}

type mockDoer struct {
	mock.Mock
}

func newMockDoer(t *testing.T) *mockDoer {
	m := &mockDoer{}
	m.Test(t)
	return m
}

func (m *mockDoer) Fetch(ctx context.Context, r *request.Request) (*request.Response, error) {
	args := m.Called(ctx, r)
	resp := args.Get(0)
	err := args.Error(1)
	if resp == nil {
		return nil, err
	}
	return resp.(*request.Response), err
}

type mockDoerWithCloseIdleConnections struct {
	mockDoer
}

func newMockDoerWithCloseIdleConnections(t *testing.T) *mockDoerWithCloseIdleConnections {
	m := &mockDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}
