package publish

import (
	"time"

	"github.com/xxxsen/cardpub/cacheapi"
	"github.com/xxxsen/cardpub/davclient"
)

type config struct {
	Thread        int
	RetryTimes    int
	RetryInterval time.Duration
	QPS           float64
	Burst         int
	SkipUnchanged bool
	AllowTypes    []string
	ListCache     cacheapi.ICache[string, *davclient.Listing]
}

type Option func(*config)

func WithThread(t int) Option {
	return func(c *config) {
		c.Thread = t
	}
}

// WithRetry sets how many extra attempts a transient upload failure gets,
// 0 disables retry.
func WithRetry(times int, interval time.Duration) Option {
	return func(c *config) {
		c.RetryTimes = times
		c.RetryInterval = interval
	}
}

// WithRateLimit bounds uploads per second over all workers, qps <= 0 disables it.
func WithRateLimit(qps float64, burst int) Option {
	return func(c *config) {
		c.QPS = qps
		c.Burst = burst
	}
}

func WithSkipUnchanged(v bool) Option {
	return func(c *config) {
		c.SkipUnchanged = v
	}
}

// WithAllowTypes sets the accepted mime prefixes, eg: "image/", "application/pdf".
func WithAllowTypes(ts ...string) Option {
	return func(c *config) {
		c.AllowTypes = ts
	}
}

func WithListCache(ca cacheapi.ICache[string, *davclient.Listing]) Option {
	return func(c *config) {
		c.ListCache = ca
	}
}
