// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package agent

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Client(t *testing.T) {
	var p Pool
	direct, err := p.Client(nil)
	require.NoError(t, err)
	again, err := p.Client(nil)
	require.NoError(t, err)
	assert.Same(t, direct, again)
	assert.Equal(t, 0, p.Len())

	px1, _ := request.ParseProxy("http://10.0.0.1:8080")
	px2, _ := request.ParseProxy("socks5://u:p@10.0.0.2")
	c1, err := p.Client(px1)
	require.NoError(t, err)
	c2, err := p.Client(px2)
	require.NoError(t, err)
	assert.NotSame(t, c1, c2)
	assert.NotSame(t, direct, c1)
	same, _ := request.ParseProxy("10.0.0.1:8080")
	c3, err := p.Client(same)
	require.NoError(t, err)
	assert.Same(t, c1, c3)
	assert.Equal(t, 2, p.Len())

	p.CloseIdleConnections()
}

func TestPool_Client_Concurrent(t *testing.T) {
	var p Pool
	px, _ := request.ParseProxy("http://proxy.local:3128")
	var wg sync.WaitGroup
	clients := make([]*http.Client, 32)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := p.Client(px)
			assert.NoError(t, err)
			clients[i] = c
		}(i)
	}
	wg.Wait()
	for _, c := range clients {
		assert.Same(t, clients[0], c)
	}
	assert.Equal(t, 1, p.Len())
}

func TestPool_Client_BadProtocol(t *testing.T) {
	var p Pool
	_, err := p.Client(&request.Proxy{Protocol: "ftp", Host: "x", Port: 21})
	assert.EqualError(t, err, `fetchx/agent: unsupported proxy protocol "ftp"`)
	assert.Equal(t, 0, p.Len())
}

func TestPool_HTTPProxy(t *testing.T) {
	var seen string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.String()
		_, _ = io.WriteString(w, "via proxy")
	}))
	defer proxySrv.Close()

	port, _ := strconv.Atoi(proxySrv.URL[strings.LastIndexByte(proxySrv.URL, ':')+1:])
	var p Pool
	c, err := p.Client(&request.Proxy{Protocol: "http", Host: "127.0.0.1", Port: port})
	require.NoError(t, err)
	resp, err := c.Get("http://example.invalid/page")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "via proxy", string(b))
	assert.Equal(t, "http://example.invalid/page", seen)
}

func TestPool_Redirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		if n > 0 {
			http.Redirect(w, r, "/?n="+strconv.Itoa(n-1), http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	testCases := []struct {
		max  int
		hops int
		ok   bool
	}{
		{0, 10, true},
		{0, 11, false},
		{2, 2, true},
		{2, 3, false},
		{-1, 0, true},
		{-1, 1, false},
	}
	for _, testCase := range testCases {
		t.Run(strconv.Itoa(testCase.max)+"/"+strconv.Itoa(testCase.hops), func(t *testing.T) {
			p := Pool{MaxRedirects: testCase.max}
			c, err := p.Client(nil)
			require.NoError(t, err)
			resp, err := c.Get(srv.URL + "/?n=" + strconv.Itoa(testCase.hops))
			if testCase.ok {
				require.NoError(t, err)
				_ = resp.Body.Close()
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)
			} else {
				assert.True(t, errors.Is(err, transient.ErrTooManyRedirects))
				assert.Equal(t, transient.Unreachable, transient.Categorize(err))
			}
		})
	}
}

func TestPool_TLS(t *testing.T) {
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Proto)
	}))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	defer srv.Close()

	tlsConfig := srv.Client().Transport.(*http.Transport).TLSClientConfig
	for _, disable := range []bool{false, true} {
		p := Pool{TLSClientConfig: tlsConfig, DisableHTTP2: disable}
		c, err := p.Client(nil)
		require.NoError(t, err)
		resp, err := c.Get(srv.URL)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if disable {
			assert.Equal(t, "HTTP/1.1", string(b))
		} else {
			assert.Equal(t, "HTTP/2.0", string(b))
		}
	}
}
