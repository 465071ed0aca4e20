package client

import "net/http"

// Config holds optional transport settings for the OpenAI binding.
type Config struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(c *Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}
