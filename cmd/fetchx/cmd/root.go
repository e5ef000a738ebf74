// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cmd implements the fetchx command line tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/config"
	"github.com/gogama/fetchx/request"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// flagKeys maps the flags that mirror settings to their config keys.
var flagKeys = map[string]string{
	"retries":     "retries",
	"timeout":     "timeout",
	"substitute":  "substitute",
	"strict":      "strict",
	"proxy":       "proxy",
	"redirects":   "redirects",
	"http2":       "http2",
	"retry-after": "retryafter",
	"user-agent":  "browser.useragent",
	"locale":      "browser.locale",
	"accept":      "browser.accept",
	"host-rate":   "host.rate",
	"host-burst":  "host.burst",
	"log-level":   "log.level",
	"pretty":      "log.pretty",
}

type options struct {
	config   string
	method   string
	headers  []string
	cookies  []string
	data     string
	form     bool
	respType string
	charset  string
	path     string
	include  bool
}

// Execute runs the root command against the process arguments.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd(os.Stdout, os.Stderr, os.Environ).ExecuteContext(ctx)
}

func newRootCmd(out, errOut io.Writer, environ func() []string) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		SilenceUsage:  true,
		SilenceErrors: true,
		Use:           "fetchx [flags] <url>",
		Short:         "Fetch a URL like a browser, with retries",
		Long: `Fetch a URL with browser-like headers, retrying transient failures,
and print the decoded body.

Settings are read from built-in defaults, then the --config file, then
FETCHX_* environment variables, then flags.`,
		Example: `  fetchx https://example.com
  fetchx -X POST -d '{"q":"go"}' -H 'Accept: application/json' https://api.example.com/search
  fetchx --substitute --path data.items.0 'https://api.example.com/feed?t={ts}'

  # Example configuration file:
  retries: 3
  timeout: 10s
  browser:
    locale: zh-CN
  host:
    rate: 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Loader{
				File:     opts.config,
				Environ:  environ,
				Flags:    cmd.Flags(),
				FlagKeys: flagKeys,
			}.Load()
			if err != nil {
				return err
			}
			logger := fetchx.NewLogger(c.Log, errOut)
			f, err := fetchx.New(*c, logger)
			if err != nil {
				return err
			}
			defer f.CloseIdleConnections()

			r, err := opts.request(args[0])
			if err != nil {
				return err
			}
			resp, err := f.Fetch(cmd.Context(), r)
			if err != nil {
				return err
			}
			return opts.print(out, resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "", "YAML settings file")
	flags.StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, `Request header as "Name: value" (repeatable)`)
	flags.StringArrayVarP(&opts.cookies, "cookie", "b", nil, "Cookie as a Set-Cookie style string (repeatable)")
	flags.StringVarP(&opts.data, "data", "d", "", "Request data; JSON is sent as a JSON body, anything else verbatim")
	flags.BoolVar(&opts.form, "form", false, "Send data as application/x-www-form-urlencoded")
	flags.StringVar(&opts.respType, "type", "auto", "Response type: auto, text, json or buffer")
	flags.StringVar(&opts.charset, "charset", "", "Force the response charset")
	flags.StringVar(&opts.path, "path", "", "Print only the value at this JSON path")
	flags.BoolVarP(&opts.include, "include", "i", false, "Print the status line and response headers")

	flags.Int("retries", 0, "Retry budget")
	flags.Duration("timeout", 0, "Attempt timeout")
	flags.Bool("substitute", false, "Expand {ts}, {ms}, {date} and {rand} in the URL and referer")
	flags.Bool("strict", false, "Fail instead of falling back to raw bytes when decoding fails")
	flags.String("proxy", "", "Proxy URL, for example socks5://127.0.0.1:1080")
	flags.Int("redirects", 0, "Redirects to follow; negative disables redirects")
	flags.Bool("http2", true, "Negotiate HTTP/2 over TLS")
	flags.Duration("retry-after", 0, "Longest retry-after header wait to honour; 0 ignores the header")
	flags.String("user-agent", "", "User agent")
	flags.String("locale", "", "Locale the accept-language header is derived from")
	flags.String("accept", "", "Default accept header")
	flags.Float64("host-rate", 0, "Attempts per second per host; 0 is unlimited")
	flags.Int("host-burst", 0, "Burst size of the per-host rate")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("pretty", false, "Human-readable logs")

	return cmd
}

func (o *options) request(url string) (*request.Request, error) {
	var data interface{}
	if o.data != "" {
		data = o.data
		if !o.form && gjson.Valid(o.data) {
			data = gjson.Parse(o.data).Value()
		}
	}
	r := request.New(o.method, url, data)
	for _, h := range o.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		r.Header.Add(name, strings.TrimSpace(value))
	}
	if o.form {
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
	}
	r.Cookies = o.cookies
	switch t := request.Type(strings.ToLower(o.respType)); t {
	case "auto":
		r.ResponseType = request.Auto
	case request.Auto, request.Text, request.JSON, request.Buffer:
		r.ResponseType = t
	default:
		return nil, fmt.Errorf("invalid response type %q", o.respType)
	}
	r.ResponseCharset = o.charset
	return r, nil
}

func (o *options) print(w io.Writer, resp *request.Response) error {
	if o.include {
		fmt.Fprintf(w, "%d %s\n", resp.Status, resp.StatusText)
		names := make([]string, 0, len(resp.Header))
		for name := range resp.Header {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, v := range resp.Header[name] {
				fmt.Fprintf(w, "%s: %s\n", name, v)
			}
		}
		fmt.Fprintln(w)
	}

	if o.path != "" {
		res := gjson.Get(resp.Text(), o.path)
		if !res.Exists() {
			return fmt.Errorf("path %q not found in response", o.path)
		}
		_, err := fmt.Fprintln(w, res.String())
		return err
	}

	if resp.Type == request.Buffer {
		_, err := w.Write(resp.Body)
		return err
	}
	_, err := fmt.Fprintln(w, resp.Text())
	return err
}
