package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

var ErrUnsupportedLogLevel = errors.New("unsupported log level")

// logger.Init只认这几个级别, 其它值会直接panic
var supportedLogLevels = map[string]struct{}{
	"":      {},
	"panic": {},
	"fatal": {},
	"warn":  {},
	"info":  {},
	"debug": {},
}

type WebdavConfig struct {
	Server    string `json:"server"`
	User      string `json:"user"`
	Password  string `json:"password"`
	Verbose   bool   `json:"verbose"`
	UserAgent string `json:"user_agent"`
	Timeout   int64  `json:"timeout"` //单次操作超时, 秒, 0表示不限制
}

type CacheConfig struct {
	Kind string `json:"kind"` // lru / ristretto / none
	Size int64  `json:"size"`
	TTL  int64  `json:"ttl"` //秒
}

type PublishConfig struct {
	Thread        int         `json:"thread"`
	RetryTimes    int         `json:"retry_times"`
	RetryInterval int64       `json:"retry_interval"` //毫秒
	QPS           float64     `json:"qps"`
	Burst         int         `json:"burst"`
	SkipUnchanged bool        `json:"skip_unchanged"`
	AllowTypes    []string    `json:"allow_types"`
	ListCache     CacheConfig `json:"list_cache"`
}

type ServerConfig struct {
	Bind        string            `json:"bind"`
	UserInfo    map[string]string `json:"user_info"`
	UploadLimit int64             `json:"upload_limit"`
}

type DevDavConfig struct {
	Bind     string            `json:"bind"`
	Root     string            `json:"root"`
	Prefix   string            `json:"prefix"`
	Realm    string            `json:"realm"`
	NonceTTL int64             `json:"nonce_ttl"` //秒
	Legacy   bool              `json:"legacy"`
	UserInfo map[string]string `json:"user_info"`
}

type Config struct {
	LogInfo logger.LogConfig `json:"log_info"`
	Webdav  WebdavConfig     `json:"webdav"`
	Publish PublishConfig    `json:"publish"`
	Server  ServerConfig     `json:"server"`
	DevDav  DevDavConfig     `json:"devdav"`
}

func defaultConfig() *Config {
	return &Config{
		LogInfo: logger.LogConfig{
			Level:   "info",
			Console: true,
		},
		Publish: PublishConfig{
			Thread:        4,
			RetryTimes:    3,
			RetryInterval: 2000,
			SkipUnchanged: true,
			AllowTypes:    []string{"image/"},
			ListCache: CacheConfig{
				Kind: "lru",
				Size: 256,
				TTL:  60,
			},
		},
		Server: ServerConfig{
			Bind:        ":9901",
			UploadLimit: 32 * 1024 * 1024,
		},
		DevDav: DevDavConfig{
			Bind:     ":9902",
			Prefix:   "/dav",
			Realm:    "cardpub",
			NonceTTL: 300,
		},
	}
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := defaultConfig()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode json failed, err:%w", err)
	}
	if _, ok := supportedLogLevels[strings.ToLower(c.LogInfo.Level)]; !ok {
		return nil, fmt.Errorf("%w, level:%s", ErrUnsupportedLogLevel, c.LogInfo.Level)
	}
	return c, nil
}
