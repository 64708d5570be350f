package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, DefaultUserAgent, cfg.Browser.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Navigation.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Navigation.SelectorTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Navigation.IdleTime)
	assert.Equal(t, 100, cfg.Scroll.Step)
	assert.Equal(t, 3000, cfg.Scroll.MaxDistance)
	assert.Equal(t, 2*time.Second, cfg.Scroll.Settle)
	assert.Equal(t, 2, cfg.Extract.OverFetchFactor)
	assert.Equal(t, models.DefaultHostFragment, cfg.Crawl.HostFragment)
	assert.Equal(t, models.DefaultMaxResults, cfg.Crawl.DefaultMaxResults)
	assert.Equal(t, "youtube-videos.json", cfg.Output.Path)
	assert.Equal(t, "@every 6h", cfg.Refresh.Schedule)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.Rotation.MaxSize)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
browser:
  headless: false
  stealth: false
navigation:
  timeout: 45s
scroll:
  step: 250
  settle: 500ms
extract:
  over_fetch_factor: 3
headers:
  Accept-Language: de-DE
batch:
  delay: 1m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Browser.Stealth)
	assert.Equal(t, 45*time.Second, cfg.Navigation.Timeout)
	assert.Equal(t, 250, cfg.Scroll.Step)
	assert.Equal(t, 500*time.Millisecond, cfg.Scroll.Settle)
	assert.Equal(t, 3, cfg.Extract.OverFetchFactor)
	assert.Equal(t, time.Minute, cfg.Batch.Delay)
	assert.Equal(t, "de-DE", cfg.Headers["accept-language"], "viper 将键转换为小写")

	nav := cfg.NavigationOptions()
	assert.Equal(t, 45*time.Second, nav.Timeout)
	scroll := cfg.ScrollOptions()
	assert.Equal(t, 250, scroll.Step)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CHANNELCRAWL_SCROLL_MAX_DISTANCE", "6000")
	t.Setenv("CHANNELCRAWL_BROWSER_HEADLESS", "false")

	cfg, err := LoadConfig(writeConfig(t, "scroll:\n  max_distance: 4000\n"))
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Scroll.MaxDistance)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("配置文件不存在", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		var cerr *models.ConfigError
		assert.True(t, errors.As(err, &cerr))
	})

	t.Run("取值非法", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "extract:\n  over_fetch_factor: 0\n"))
		assert.Error(t, err)
	})

	t.Run("YAML格式错误", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "scroll: [unclosed\n"))
		assert.Error(t, err)
	})
}

func TestConfig_Conversions(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "resource:\n  min_free_memory_mb: 128\n"))
	require.NoError(t, err)

	assert.NotNil(t, cfg.NewLauncher())

	lc := cfg.LogConfig()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "logs", lc.LogDir)

	mc := cfg.MetadataFetcherConfig(nil)
	assert.Equal(t, "https://www.youtube.com", mc.BaseURL)
	assert.Equal(t, DefaultUserAgent, mc.UserAgent)

	snap := cfg.Snapshot()
	assert.Equal(t, models.DefaultHostFragment, snap["host_fragment"])
}
