package newsapi

import (
	"net/http"
	"time"
)

type Option func(*Config)

func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.apiKey = apiKey
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithPageSize(n int) Option {
	return func(c *Config) {
		c.pageSize = n
	}
}

func WithHTTPClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

// WithClock overrides the time source used for the default date window.
func WithClock(fn func() time.Time) Option {
	return func(c *Config) {
		c.clock = fn
	}
}
