package cmd

import (
	"fmt"
	"time"

	"github.com/xxxsen/cardpub/cacheapi"
	cachewrap "github.com/xxxsen/cardpub/cacheapi/adaptor"
	"github.com/xxxsen/cardpub/config"
	"github.com/xxxsen/cardpub/davclient"
	"github.com/xxxsen/cardpub/publish"
)

func buildListCache(cc *config.CacheConfig) (cacheapi.ICache[string, *davclient.Listing], error) {
	ttl := time.Duration(cc.TTL) * time.Second
	switch cc.Kind {
	case "none":
		return cacheapi.Nop[string, *davclient.Listing](), nil
	case "ristretto":
		return cachewrap.NewRistrettoCache[string, *davclient.Listing](cc.Size, ttl)
	case "lru", "":
		return cachewrap.NewExpirableLruCache[string, *davclient.Listing](int(cc.Size), ttl), nil
	}
	return nil, fmt.Errorf("unknown cache kind:%s", cc.Kind)
}

func buildPublishOptions(pc *config.PublishConfig) ([]publish.Option, error) {
	ca, err := buildListCache(&pc.ListCache)
	if err != nil {
		return nil, err
	}
	return []publish.Option{
		publish.WithThread(pc.Thread),
		publish.WithRetry(pc.RetryTimes, time.Duration(pc.RetryInterval)*time.Millisecond),
		publish.WithRateLimit(pc.QPS, pc.Burst),
		publish.WithSkipUnchanged(pc.SkipUnchanged),
		publish.WithAllowTypes(pc.AllowTypes...),
		publish.WithListCache(ca),
	}, nil
}
