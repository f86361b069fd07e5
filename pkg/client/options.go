package client

import (
	"net/http"
	"time"
)

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient routes calls through hc, e.g. one with a custom transport
// or TLS setup. A nil hc keeps the default client with a 30s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger receives retry and failure diagnostics. Nil keeps the silent
// default.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetryMax bounds how often a call is repeated after a network error or
// a 5xx answer; 4xx answers are never retried. Zero disables retries and
// negative values are ignored. Default 3.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

// WithRetryWait sets the backoff window: the first retry waits min, each
// later one doubles up to max, with jitter. The pair is ignored unless
// 0 < min <= max.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 && max >= min {
			c.retryWaitMin = min
			c.retryWaitMax = max
		}
	}
}

// WithUserAgent replaces the "lexclock-go-client/<Version>" User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}
