package server

import (
	"github.com/xxxsen/cardpub/davclient"
	"github.com/xxxsen/cardpub/publish"
)

type config struct {
	userMap     map[string]string
	factory     davclient.Factory
	publishOpts []publish.Option
	uploadLimit int64
}

type Option func(c *config)

func WithUser(m map[string]string) Option {
	return func(c *config) {
		c.userMap = m
	}
}

// WithClientFactory sets how a request gets its webdav client, every request
// builds a new one so digest sessions are never shared.
func WithClientFactory(f davclient.Factory) Option {
	return func(c *config) {
		c.factory = f
	}
}

func WithPublishOption(opts ...publish.Option) Option {
	return func(c *config) {
		c.publishOpts = append(c.publishOpts, opts...)
	}
}

func WithUploadLimit(l int64) Option {
	return func(c *config) {
		c.uploadLimit = l
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		uploadLimit: 32 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
