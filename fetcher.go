// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogama/fetchx/agent"
	"github.com/gogama/fetchx/config"
	"github.com/gogama/fetchx/content"
	"github.com/gogama/fetchx/decode"
	"github.com/gogama/fetchx/header"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/retry"
	"github.com/gogama/fetchx/transient"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// A Fetcher fetches URLs the way a browser would, with retries. Its
// zero value is a valid configuration.
//
// On top of the Dispatcher's retry loop, a Fetcher sends every attempt
// over HTTP through a pooled client, adding:
//
// • browser-like user-agent, accept and accept-language headers, with
// header names spelled the way browsers spell them;
//
// • a cookie header built from the request's Cookies;
//
// • per-proxy connection reuse through Agents;
//
// • optional per-host rate limiting; and
//
// • response classification and decoding through Decoder.
//
// Fetchers hold pooled connections, so they should be reused instead of
// created as needed. A Fetcher is safe for concurrent use by multiple
// goroutines. Its fields must not be changed while it is in use.
type Fetcher struct {
	Dispatcher

	// Agents holds the HTTP clients attempts are sent through. If nil,
	// a pool with default settings is created on first use.
	Agents *agent.Pool
	// Decoder decodes response bodies. If nil, decode.DefaultDecoder is
	// used.
	Decoder *decode.Decoder
	// Profile is the browser the fetcher impersonates.
	Profile header.Profile
	// Proxy is used by requests that do not name their own proxy.
	Proxy *request.Proxy
	// Retries is the retry budget of requests whose own Retries is
	// zero. A request that must not be retried sets its Retries to
	// request.NoRetries.
	Retries int
	// Timeout is the attempt timeout of requests whose own Timeout is
	// zero. If it is also zero, request.DefaultTimeout applies.
	Timeout time.Duration
	// HostRate limits the attempts sent to any one host per second.
	// Zero means no limit.
	HostRate rate.Limit
	// HostBurst is the burst size of the per-host limit. Values below
	// one are treated as one.
	HostBurst int

	agentsOnce sync.Once
	agents     *agent.Pool
	limiters   hostLimiters
}

// New builds a Fetcher from c. Attempts, retries and failures are
// logged to logger.
func New(c config.Config, logger zerolog.Logger) (*Fetcher, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var px *request.Proxy
	if c.Proxy != "" {
		var err error
		if px, err = request.ParseProxy(c.Proxy); err != nil {
			return nil, err
		}
	}
	var policy retry.Policy
	if c.RetryAfter > 0 {
		policy = retry.NewPolicy(retry.DefaultDecider, retry.RetryAfter(retry.DefaultWaiter, c.RetryAfter))
	}
	return &Fetcher{
		Dispatcher: Dispatcher{
			RetryPolicy: policy,
			Handlers:    LogHandlers(logger),
			Substitute:  c.Substitute,
		},
		Agents: &agent.Pool{
			MaxRedirects: c.Redirects,
			DisableHTTP2: !c.HTTP2,
		},
		Decoder: &decode.Decoder{Strict: c.Strict},
		Profile: header.Profile{
			UserAgent: c.Browser.UserAgent,
			Locale:    c.Browser.Locale,
			Accept:    c.Browser.Accept,
		},
		Proxy:     px,
		Retries:   c.Retries,
		Timeout:   c.Timeout,
		HostRate:  rate.Limit(c.Host.Rate),
		HostBurst: c.Host.Burst,
	}, nil
}

// Fetch dispatches r over HTTP and returns the final response, following
// the policies of the embedded Dispatcher. See Dispatcher.Dispatch for
// the meaning of the results.
func (f *Fetcher) Fetch(ctx context.Context, r *request.Request) (*request.Response, error) {
	if r != nil && (r.Retries == 0 && f.Retries > 0 || r.Timeout == 0 && f.Timeout > 0) {
		r = r.Clone()
		if r.Retries == 0 {
			r.Retries = f.Retries
		}
		if r.Timeout == 0 {
			r.Timeout = f.Timeout
		}
	}
	return f.Dispatch(ctx, r, f.Transport())
}

// Transport returns the HTTP transport the fetcher dispatches over. It
// can be used with other Dispatchers.
func (f *Fetcher) Transport() Transport {
	return TransportFunc(f.send)
}

// Get issues a GET to the specified URL.
//
// To fetch with custom headers, use request.New and Fetcher.Fetch.
func (f *Fetcher) Get(ctx context.Context, url string) (*request.Response, error) {
	return Get(ctx, f, url)
}

// Head issues a HEAD to the specified URL.
func (f *Fetcher) Head(ctx context.Context, url string) (*request.Response, error) {
	return Head(ctx, f, url)
}

// Post issues a POST to the specified URL. The body may be any value
// request.Request.Data accepts.
func (f *Fetcher) Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error) {
	return Post(ctx, f, url, contentType, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body.
func (f *Fetcher) PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error) {
	return PostForm(ctx, f, url, data)
}

// CloseIdleConnections closes the idle connections of every pooled
// client.
func (f *Fetcher) CloseIdleConnections() {
	f.pool().CloseIdleConnections()
}

func (f *Fetcher) pool() *agent.Pool {
	if f.Agents != nil {
		return f.Agents
	}
	f.agentsOnce.Do(func() {
		f.agents = &agent.Pool{}
	})
	return f.agents
}

func (f *Fetcher) decoder() *decode.Decoder {
	if f.Decoder != nil {
		return f.Decoder
	}
	return decode.DefaultDecoder
}

// send makes one HTTP attempt.
func (f *Fetcher) send(ctx context.Context, r *request.Request) (*request.Response, error) {
	px := r.Proxy
	if px == nil {
		px = f.Proxy
	}
	client, err := f.pool().Client(px)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	if err = f.limiters.wait(ctx, r.Host(), f.HostRate, f.HostBurst); err != nil {
		return nil, err
	}

	h := r.Header.Clone()
	if h == nil {
		h = request.Header{}
	}
	f.Profile.Apply(h)
	if c := header.Cookie(r.Cookies); c != "" {
		if prev := h.Get("cookie"); prev != "" {
			c = prev + "; " + c
		}
		h.Set("cookie", c)
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	if host := h.Get("host"); host != "" {
		hr.Host = host
		h.Del("host")
	}
	hr.Header = header.HTTP(h)

	resp, err := client.Do(hr)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// The server did respond, so a short body is not a hang-up.
		return nil, fmt.Errorf("fetchx: reading body: %w: %w", transient.ErrBody, err)
	}

	out := &request.Response{
		OK:         request.IsOK(resp.StatusCode),
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		URL:        finalURL(resp, r.URL),
		Header:     request.FromHTTP(resp.Header),
		Cookies:    resp.Header.Values("Set-Cookie"),
		Body:       raw,
	}
	sent := *r
	sent.Header = h
	desc := content.Classify(out.Header, h)
	out.Type, out.Data, err = f.decoder().Decode(raw, desc, &sent)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func statusText(resp *http.Response) string {
	s := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// finalURL is the URL the response came from, without user
// information.
func finalURL(resp *http.Response, fallback string) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return fallback
	}
	u := *resp.Request.URL
	u.User = nil
	return u.String()
}
