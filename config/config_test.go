package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	f := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(f, []byte(`{
	"log_info": {"level": "debug", "console": true},
	"webdav": {"server": "https://dav.example.com/dav", "user": "admin", "password": "secret", "timeout": 30},
	"publish": {"thread": 8, "list_cache": {"kind": "ristretto"}},
	"server": {"user_info": {"api": "key"}}
}`), 0644))
	c, err := Parse(f)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogInfo.Level)
	assert.Equal(t, "https://dav.example.com/dav", c.Webdav.Server)
	assert.Equal(t, "admin", c.Webdav.User)
	assert.Equal(t, int64(30), c.Webdav.Timeout)
	assert.Equal(t, 8, c.Publish.Thread)
	// 未配置的字段保持默认值
	assert.Equal(t, 3, c.Publish.RetryTimes)
	assert.True(t, c.Publish.SkipUnchanged)
	assert.Equal(t, []string{"image/"}, c.Publish.AllowTypes)
	assert.Equal(t, "ristretto", c.Publish.ListCache.Kind)
	assert.Equal(t, int64(256), c.Publish.ListCache.Size)
	assert.Equal(t, ":9901", c.Server.Bind)
	assert.Equal(t, "key", c.Server.UserInfo["api"])
	assert.Equal(t, "/dav", c.DevDav.Prefix)
}

func TestParseError(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	f := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(f, []byte("{bad"), 0644))
	_, err = Parse(f)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level string
		ok    bool
	}{
		{"debug", true},
		{"WARN", true},
		{"", true},
		{"error", false},
		{"inf", false},
	}
	for _, tst := range tests {
		f := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(f, []byte(`{"log_info":{"level":"`+tst.level+`"}}`), 0644))
		_, err := Parse(f)
		if tst.ok {
			assert.NoError(t, err, "level:%s", tst.level)
			continue
		}
		assert.ErrorIs(t, err, ErrUnsupportedLogLevel, "level:%s", tst.level)
	}
}
