package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀,例如 CHANNELCRAWL_BROWSER_HEADLESS=false
const EnvPrefix = "CHANNELCRAWL"

// Config 应用程序配置
type Config struct {
	Browser    BrowserConfig     `mapstructure:"browser"`
	Navigation NavigationConfig  `mapstructure:"navigation"`
	Scroll     ScrollConfig      `mapstructure:"scroll"`
	Extract    ExtractConfig     `mapstructure:"extract"`
	Crawl      CrawlConfig       `mapstructure:"crawl"`
	Output     OutputConfig      `mapstructure:"output"`
	Resource   ResourceConfig    `mapstructure:"resource"`
	Headers    map[string]string `mapstructure:"headers"`
	Refresh    RefreshConfig     `mapstructure:"refresh"`
	Batch      BatchConfig       `mapstructure:"batch"`
	Metadata   MetadataConfig    `mapstructure:"metadata"`
	Logging    LoggingConfig     `mapstructure:"logging"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	Headless  bool   `mapstructure:"headless"`
	Bin       string `mapstructure:"bin"`
	UserAgent string `mapstructure:"user_agent"`
	Stealth   bool   `mapstructure:"stealth"`
}

// NavigationConfig 导航等待配置
type NavigationConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	SelectorTimeout time.Duration `mapstructure:"selector_timeout"`
	IdleTime        time.Duration `mapstructure:"idle_time"`
}

// ScrollConfig 滚动配置
type ScrollConfig struct {
	Step        int           `mapstructure:"step"`
	Interval    time.Duration `mapstructure:"interval"`
	MaxDistance int           `mapstructure:"max_distance"`
	Settle      time.Duration `mapstructure:"settle"`
}

// ExtractConfig 提取配置
type ExtractConfig struct {
	OverFetchFactor int `mapstructure:"over_fetch_factor"`
}

// CrawlConfig 爬取请求默认值
type CrawlConfig struct {
	HostFragment      string `mapstructure:"host_fragment"`
	DefaultMaxResults int    `mapstructure:"default_max_results"`
	MinResults        int    `mapstructure:"min_results"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Path      string `mapstructure:"path"`
	ReportDir string `mapstructure:"report_dir"`
}

// ResourceConfig 启动前资源检查配置
type ResourceConfig struct {
	MinFreeMemoryMB  int `mapstructure:"min_free_memory_mb"`
	CPULoadThreshold int `mapstructure:"cpu_load_threshold"`
}

// RefreshConfig 定时刷新配置
type RefreshConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// BatchConfig 批量爬取配置
type BatchConfig struct {
	Delay           time.Duration `mapstructure:"delay"`
	ContinueOnError bool          `mapstructure:"continue_on_error"`
}

// MetadataConfig 静态元数据抓取配置
type MetadataConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Parallelism int           `mapstructure:"parallelism"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
//
// configPath 为空时依次搜索 ./configs, . 和 ~/.channelcrawl 下的 config.yaml,
// 找不到配置文件时使用默认值。环境变量优先于配置文件。
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".channelcrawl"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.user_agent", DefaultUserAgent)
	v.SetDefault("browser.stealth", true)

	nav := crawlers.DefaultNavigationOptions()
	v.SetDefault("navigation.timeout", nav.Timeout)
	v.SetDefault("navigation.selector_timeout", nav.SelectorTimeout)
	v.SetDefault("navigation.idle_time", nav.IdleTime)

	scroll := crawlers.DefaultScrollOptions()
	v.SetDefault("scroll.step", scroll.Step)
	v.SetDefault("scroll.interval", scroll.Interval)
	v.SetDefault("scroll.max_distance", scroll.MaxDistance)
	v.SetDefault("scroll.settle", scroll.Settle)

	v.SetDefault("extract.over_fetch_factor", crawlers.DefaultOverFetchFactor)

	v.SetDefault("crawl.host_fragment", models.DefaultHostFragment)
	v.SetDefault("crawl.default_max_results", models.DefaultMaxResults)
	v.SetDefault("crawl.min_results", 0)

	v.SetDefault("output.path", "youtube-videos.json")
	v.SetDefault("output.report_dir", "")

	v.SetDefault("resource.min_free_memory_mb", 256)
	v.SetDefault("resource.cpu_load_threshold", 90)

	v.SetDefault("headers", map[string]string{})

	v.SetDefault("refresh.schedule", "@every 6h")

	v.SetDefault("batch.delay", 5*time.Second)
	v.SetDefault("batch.continue_on_error", true)

	v.SetDefault("metadata.base_url", "https://www.youtube.com")
	v.SetDefault("metadata.timeout", 15*time.Second)
	v.SetDefault("metadata.parallelism", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// Validate 检查配置取值范围
func (c *Config) Validate() error {
	switch {
	case c.Navigation.Timeout <= 0:
		return fmt.Errorf("navigation.timeout 必须大于0")
	case c.Navigation.SelectorTimeout <= 0:
		return fmt.Errorf("navigation.selector_timeout 必须大于0")
	case c.Scroll.Step <= 0:
		return fmt.Errorf("scroll.step 必须大于0,当前值: %d", c.Scroll.Step)
	case c.Scroll.MaxDistance <= 0:
		return fmt.Errorf("scroll.max_distance 必须大于0,当前值: %d", c.Scroll.MaxDistance)
	case c.Extract.OverFetchFactor < 1:
		return fmt.Errorf("extract.over_fetch_factor 必须至少为1,当前值: %d", c.Extract.OverFetchFactor)
	case c.Crawl.DefaultMaxResults <= 0:
		return fmt.Errorf("crawl.default_max_results 必须为正整数,当前值: %d", c.Crawl.DefaultMaxResults)
	case c.Batch.Delay < 0:
		return fmt.Errorf("batch.delay 不能为负数")
	}
	return nil
}

// NavigationOptions 转换为导航器参数
func (c *Config) NavigationOptions() crawlers.NavigationOptions {
	return crawlers.NavigationOptions{
		Timeout:         c.Navigation.Timeout,
		SelectorTimeout: c.Navigation.SelectorTimeout,
		IdleTime:        c.Navigation.IdleTime,
	}
}

// ScrollOptions 转换为滚动参数
func (c *Config) ScrollOptions() crawlers.ScrollOptions {
	return crawlers.ScrollOptions{
		Step:        c.Scroll.Step,
		Interval:    c.Scroll.Interval,
		MaxDistance: c.Scroll.MaxDistance,
		Settle:      c.Scroll.Settle,
	}
}

// LogConfig 转换为日志参数
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// NewLauncher 根据浏览器和资源配置创建 go-rod 启动器
func (c *Config) NewLauncher() *crawlers.RodLauncher {
	monitor := crawlers.NewResourceMonitor(crawlers.ResourceMonitorConfig{
		MinFreeMemory:    uint64(c.Resource.MinFreeMemoryMB) * 1024 * 1024,
		CPULoadThreshold: c.Resource.CPULoadThreshold,
	})
	return crawlers.NewRodLauncher(crawlers.RodLauncherConfig{
		Headless: c.Browser.Headless,
		Bin:      c.Browser.Bin,
		Monitor:  monitor,
	})
}

// MetadataFetcherConfig 转换为元数据抓取参数
func (c *Config) MetadataFetcherConfig(headers models.HeaderProvider) crawlers.MetadataFetcherConfig {
	return crawlers.MetadataFetcherConfig{
		BaseURL:     c.Metadata.BaseURL,
		Timeout:     c.Metadata.Timeout,
		Parallelism: c.Metadata.Parallelism,
		UserAgent:   c.Browser.UserAgent,
		Headers:     headers,
	}
}

// Snapshot 返回写入报告的配置快照
func (c *Config) Snapshot() map[string]any {
	return map[string]any{
		"headless":          c.Browser.Headless,
		"stealth":           c.Browser.Stealth,
		"navigation":        c.Navigation.Timeout.String(),
		"selector_timeout":  c.Navigation.SelectorTimeout.String(),
		"scroll_step":       c.Scroll.Step,
		"scroll_max":        c.Scroll.MaxDistance,
		"over_fetch_factor": c.Extract.OverFetchFactor,
		"host_fragment":     c.Crawl.HostFragment,
	}
}
