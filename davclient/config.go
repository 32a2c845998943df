package davclient

import (
	"net/http"
	"time"

	"github.com/xxxsen/cardpub/digest"
)

const (
	defaultUserAgent = "cardpub/1.0"
)

var (
	defaultHttpClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
		},
	}
)

type config struct {
	cred        digest.Credentials
	verbose     bool
	userAgent   string
	httpClient  *http.Client
	nonceSource func() (string, error)
}

type Option func(c *config)

func WithAuth(username string, password string) Option {
	return func(c *config) {
		c.cred = digest.Credentials{Username: username, Password: password}
	}
}

// WithVerbose logs every protocol step: challenge, hashes, request options,
// response headers and truncated bodies.
func WithVerbose(v bool) Option {
	return func(c *config) {
		c.verbose = v
	}
}

func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

func WithHttpClient(cli *http.Client) Option {
	return func(c *config) {
		c.httpClient = cli
	}
}

func WithNonceSource(fn func() (string, error)) Option {
	return func(c *config) {
		c.nonceSource = fn
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		userAgent:   defaultUserAgent,
		httpClient:  defaultHttpClient,
		nonceSource: digest.NewClientNonce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
