// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads fetcher settings.

Settings are layered, later layers overriding earlier ones:

 1. built-in defaults (Defaults)
 2. an optional YAML file
 3. environment variables prefixed with FETCHX_, where FETCHX_HOST_RATE
    sets host.rate
 4. command line flags that were explicitly set
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "FETCHX_"

// Config holds the settings of a fetcher.
type Config struct {
	// Retries is the default retry budget of requests that do not set
	// their own.
	Retries int `koanf:"retries"`
	// Timeout is the default attempt timeout of requests that do not
	// set their own.
	Timeout time.Duration `koanf:"timeout"`
	// Substitute enables magic variable expansion in URLs and the
	// referer header.
	Substitute bool `koanf:"substitute"`
	// Strict makes auto-detect decoding failures visible.
	Strict bool `koanf:"strict"`
	// Proxy is the default proxy, in any form request.ParseProxy
	// accepts. Empty means direct connections.
	Proxy string `koanf:"proxy"`
	// Redirects is the number of redirects followed per attempt.
	Redirects int `koanf:"redirects"`
	// HTTP2 enables HTTP/2 over TLS.
	HTTP2 bool `koanf:"http2"`
	// RetryAfter is the longest retry-after header wait honoured
	// between attempts. Zero ignores the header.
	RetryAfter time.Duration `koanf:"retryafter"`

	Browser BrowserConfig `koanf:"browser"`
	Host    HostConfig    `koanf:"host"`
	Log     LogConfig     `koanf:"log"`
}

// BrowserConfig describes the browser a fetcher impersonates.
type BrowserConfig struct {
	UserAgent string `koanf:"useragent"`
	Locale    string `koanf:"locale"`
	Accept    string `koanf:"accept"`
}

// HostConfig limits the rate of attempts sent to any one host.
type HostConfig struct {
	// Rate is the sustained number of attempts per second per host.
	// Zero means unlimited.
	Rate float64 `koanf:"rate"`
	// Burst is the number of attempts a host may receive at once.
	Burst int `koanf:"burst"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// Defaults returns the built-in default settings, keyed by koanf path.
func Defaults() map[string]any {
	return map[string]any{
		"retries":    0,
		"timeout":    "30s",
		"substitute": false,
		"strict":     false,
		"proxy":      "",
		"redirects":  10,
		"http2":      true,
		"retryafter": "0s",

		"browser.useragent": "",
		"browser.locale":    "en-US",
		"browser.accept":    "",

		"host.rate":  0,
		"host.burst": 1,

		"log.level":  "info",
		"log.pretty": false,
	}
}

// A Loader loads a Config from its layers. The zero Loader reads only
// the defaults and the process environment.
type Loader struct {
	// File is the path of a YAML settings file. Empty means none. A
	// named file that cannot be read is an error.
	File string

	// Environ returns the environment as "KEY=value" strings. Nil
	// means os.Environ.
	Environ func() []string

	// Flags are command line flags to apply last. Only flags listed in
	// FlagKeys are read, and only if they were set or the key has no
	// value from an earlier layer.
	Flags *pflag.FlagSet
	// FlagKeys maps flag names to koanf paths, for example
	// "user-agent" to "browser.useragent".
	FlagKeys map[string]string
}

// Load loads a Config with no file and no flags.
func Load() (*Config, error) {
	return Loader{}.Load()
}

// Load reads every layer, then validates the result.
func (l Loader) Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("fetchx/config: defaults: %w", err)
	}

	if l.File != "" {
		if err := k.Load(file.Provider(l.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("fetchx/config: %s: %w", l.File, err)
		}
	}

	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		EnvironFunc:   environ,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("fetchx/config: environment: %w", err)
	}

	if l.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(l.Flags, ".", k, l.flagKey), nil); err != nil {
			return nil, fmt.Errorf("fetchx/config: flags: %w", err)
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("fetchx/config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func envKey(k, v string) (string, any) {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", "."), v
}

func (l Loader) flagKey(f *pflag.Flag) (string, interface{}) {
	key, ok := l.FlagKeys[f.Name]
	if !ok {
		return "", nil
	}
	return key, posflag.FlagVal(l.Flags, f)
}

// Validate checks that c is usable.
func (c *Config) Validate() error {
	switch {
	case c.Retries < 0:
		return fmt.Errorf("fetchx/config: retries must not be negative, got %d", c.Retries)
	case c.Timeout < 0:
		return fmt.Errorf("fetchx/config: timeout must not be negative, got %s", c.Timeout)
	case c.RetryAfter < 0:
		return fmt.Errorf("fetchx/config: retryafter must not be negative, got %s", c.RetryAfter)
	case c.Host.Rate < 0:
		return fmt.Errorf("fetchx/config: host.rate must not be negative, got %g", c.Host.Rate)
	case c.Host.Rate > 0 && c.Host.Burst < 1:
		return fmt.Errorf("fetchx/config: host.burst must be at least 1, got %d", c.Host.Burst)
	}
	return nil
}
