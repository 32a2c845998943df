package davserver

import "github.com/xxxsen/cardpub/auth"

type config struct {
	root     string
	prefix   string
	users    map[string]string
	authOpts []auth.Option
}

type Option func(c *config)

// WithRoot serves a local directory, an empty root keeps everything in memory.
func WithRoot(root string) Option {
	return func(c *config) {
		c.root = root
	}
}

func WithPrefix(p string) Option {
	return func(c *config) {
		c.prefix = p
	}
}

func WithUser(m map[string]string) Option {
	return func(c *config) {
		c.users = m
	}
}

func WithAuthOption(opts ...auth.Option) Option {
	return func(c *config) {
		c.authOpts = append(c.authOpts, opts...)
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
