// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package agent pools the HTTP clients a fetcher sends requests through.

A Pool holds one client for direct connections and one client per
distinct proxy URL. Clients are created on first use and never evicted,
so connections to a proxy are reused by every request sent through it.
*/
package agent

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxRedirects is the redirect limit used when
// Pool.MaxRedirects is zero.
const DefaultMaxRedirects = 10

// A Pool is a set of HTTP clients keyed by proxy. The zero value is
// ready to use. A Pool is safe for concurrent use by multiple
// goroutines.
//
// Configuration fields must not be changed after the first call to
// Client.
type Pool struct {
	// MaxRedirects is the number of redirects a client follows before
	// failing with transient.ErrTooManyRedirects. Zero means
	// DefaultMaxRedirects; a negative value disables redirects.
	MaxRedirects int

	// TLSClientConfig, if not nil, is used by every transport the pool
	// creates.
	TLSClientConfig *tls.Config

	// DisableHTTP2 turns off HTTP/2 negotiation over TLS.
	DisableHTTP2 bool

	mu      sync.RWMutex
	direct  *http.Client
	proxies map[string]*http.Client
	group   singleflight.Group
}

// Client returns the client for requests sent through px, or the
// direct client if px is nil. The client for a given proxy URL is
// created once and shared by all callers.
func (p *Pool) Client(px *request.Proxy) (*http.Client, error) {
	key := ""
	if px != nil {
		key = px.String()
	}

	p.mu.RLock()
	c := p.lookup(key)
	p.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		p.mu.RLock()
		c := p.lookup(key)
		p.mu.RUnlock()
		if c != nil {
			return c, nil
		}

		t, err := p.newTransport(px)
		if err != nil {
			return nil, err
		}
		c = &http.Client{
			Transport:     t,
			CheckRedirect: p.checkRedirect,
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if key == "" {
			p.direct = c
		} else {
			if p.proxies == nil {
				p.proxies = make(map[string]*http.Client)
			}
			p.proxies[key] = c
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Client), nil
}

// Len returns the number of proxy clients in the pool, not counting
// the direct client.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.proxies)
}

// CloseIdleConnections closes the idle connections of every client in
// the pool.
func (p *Pool) CloseIdleConnections() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.direct != nil {
		p.direct.CloseIdleConnections()
	}
	for _, c := range p.proxies {
		c.CloseIdleConnections()
	}
}

func (p *Pool) lookup(key string) *http.Client {
	if key == "" {
		return p.direct
	}
	return p.proxies[key]
}

func (p *Pool) checkRedirect(_ *http.Request, via []*http.Request) error {
	max := p.MaxRedirects
	if max == 0 {
		max = DefaultMaxRedirects
	}
	if len(via) > max {
		return transient.ErrTooManyRedirects
	}
	return nil
}

var dialer = &net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
}

func (p *Pool) newTransport(px *request.Proxy) (*http.Transport, error) {
	t := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if p.TLSClientConfig != nil {
		t.TLSClientConfig = p.TLSClientConfig.Clone()
	}

	if px != nil {
		switch px.Protocol {
		case "http", "https":
			t.Proxy = http.ProxyURL(px.URL())
		case "socks5", "socks5h":
			d, err := proxy.FromURL(px.URL(), proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("fetchx/agent: proxy %s: %w", px, err)
			}
			t.DialContext = contextDialer(d)
		default:
			return nil, fmt.Errorf("fetchx/agent: unsupported proxy protocol %q", px.Protocol)
		}
	}

	if !p.DisableHTTP2 {
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, fmt.Errorf("fetchx/agent: %w", err)
		}
	}
	return t, nil
}

func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return d.Dial(network, addr)
	}
}
