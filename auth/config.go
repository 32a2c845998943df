package auth

import "time"

type config struct {
	realm    string
	nonceTTL time.Duration
	qop      bool
	opaque   bool
	now      func() time.Time
}

type Option func(c *config)

func WithRealm(r string) Option {
	return func(c *config) {
		c.realm = r
	}
}

func WithNonceTTL(t time.Duration) Option {
	return func(c *config) {
		c.nonceTTL = t
	}
}

// WithLegacy drops qop from challenges, clients fall back to MD5(HA1:nonce:HA2).
func WithLegacy(v bool) Option {
	return func(c *config) {
		c.qop = !v
	}
}

func WithOpaque(v bool) Option {
	return func(c *config) {
		c.opaque = v
	}
}

func withClock(fn func() time.Time) Option {
	return func(c *config) {
		c.now = fn
	}
}
