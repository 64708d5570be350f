package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/core"
	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string
	headers    []string
	headless   bool
	reportDir  string

	// 爬取参数
	outputPath   string
	printSnippet bool
	minResults   int
)

// appConfig 由 PersistentPreRunE 加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "channelcrawl [channelUrl] [maxVideos]",
	Short: "YouTube频道视频爬取工具",
	Long: `ChannelCrawl - 基于无头浏览器的YouTube频道视频爬取工具

打开频道的视频列表页,滚动触发懒加载,从页面DOM中提取视频信息,
规范化为去重、有序且数量受限的视频列表:
  • 无需API密钥
  • 自动滚动加载
  • 视频ID/缩略图/播放量规范化
  • 批量爬取和定时刷新
  • 离线DOM快照诊断

示例:
  channelcrawl https://www.youtube.com/@channel/videos 5
  channelcrawl https://www.youtube.com/@channel/videos 10 -o videos.json --snippet
  channelcrawl https://www.youtube.com/@channel/videos -H "Accept-Language: de-DE"

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := config.LogConfig()
		if logLevel != "" {
			logConfig.Level = logLevel
		} else if verbose {
			logConfig.Level = "debug"
		}
		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if cmd.Flags().Changed("headless") {
			config.Browser.Headless = headless
		}
		if !cmd.Flags().Changed("report") {
			reportDir = config.Output.ReportDir
		}

		appConfig = config
		return nil
	},
	RunE: runCrawl,
}

// runCrawl 单频道爬取
func runCrawl(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	req, err := ParseCrawlArgs(args, appConfig.Crawl.DefaultMaxResults, appConfig.Crawl.HostFragment)
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err, usage())
	}
	req.MinResults = appConfig.Crawl.MinResults
	if cmd.Flags().Changed("min-results") {
		req.MinResults = minResults
	}
	if !cmd.Flags().Changed("output") {
		outputPath = appConfig.Output.Path
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	crawler, err := newCrawler()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reporter := utils.NewReporter(out, reportDir)

	fmt.Fprintf(out, "🚀 开始爬取频道: %s\n", req.TargetURL)
	fmt.Fprintf(out, "📊 最多获取 %d 个视频\n\n", req.MaxResults)

	started := time.Now()
	result, crawlErr := crawler.Crawl(ctx, req)

	report := models.NewCrawlReport(req, result, crawlErr, started)
	report.Config = appConfig.Snapshot()
	defer func() {
		if _, err := reporter.WriteReport(report); err != nil {
			utils.Warnf("保存报告失败: %v", err)
		}
	}()

	if crawlErr != nil {
		return describeCrawlError(crawlErr)
	}

	fmt.Fprintf(out, "✅ 找到 %d 个视频\n\n", len(result.Videos))
	if len(result.Videos) == 0 {
		fmt.Fprintln(out, "⚠️  未找到视频,页面结构可能已变化")
		return nil
	}

	reporter.PrintVideos(result.Videos)
	if printSnippet {
		fmt.Fprintln(out, "📝 复制以下内容到站点配置:")
		fmt.Fprintln(out)
		reporter.PrintSnippet(result.Videos)
	}

	if err := reporter.WriteVideos(outputPath, result.Videos); err != nil {
		return fmt.Errorf("保存结果失败: %w", err)
	}
	report.Output = outputPath
	fmt.Fprintf(out, "💾 视频数据已保存到: %s\n", outputPath)
	reporter.PrintDuration(result.Duration)
	utils.Info("✨ 爬取任务完成!")
	return nil
}

// newCrawler 根据配置和命令行头部创建爬取器
func newCrawler() (*core.Crawler, error) {
	hm, err := newHeaderManager()
	if err != nil {
		return nil, err
	}
	pageOpts, err := hm.PageOptions(appConfig.Browser.Stealth)
	if err != nil {
		return nil, fmt.Errorf("HTTP头部验证失败: %w", err)
	}
	utils.Debugf("生效的HTTP头部: %v", hm.GetSafeHeaders())

	return core.NewCrawlerFromConfig(appConfig, appConfig.NewLauncher(), pageOpts), nil
}

func newHeaderManager() (*core.HeaderManager, error) {
	hm, err := core.NewHeaderManager(appConfig.Browser.UserAgent, appConfig.Headers, headers)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}
	return hm, nil
}

// describeCrawlError 为常见失败类别附加排查提示
func describeCrawlError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("爬取已取消: %w", err)
	case errors.Is(err, models.ErrBrowserLaunch):
		return fmt.Errorf("%w\n💡 请确认已安装Chromium,或在配置中设置 browser.bin (可运行 scripts/verify_setup.go 检查)", err)
	case errors.Is(err, models.ErrSelectorNotFound):
		return fmt.Errorf("%w\n💡 页面可能显示了同意弹窗或结构已变化,可保存页面后使用 'channelcrawl extract --snapshot' 诊断", err)
	case errors.Is(err, models.ErrNavigationTimeout):
		return fmt.Errorf("%w\n💡 可在配置中增大 navigation.timeout", err)
	}
	return fmt.Errorf("爬取失败: %w", err)
}

// signalContext 在收到 Ctrl+C 或 SIGTERM 时取消,浏览器随之释放
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ChannelCrawl %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "构建时间: %s\n", BuildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "浏览器驱动: go-rod (Chromium revision %d)\n", crawlers.DefaultBrowserRevision())
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式 (等同于 --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "无头浏览器模式")
	rootCmd.PersistentFlags().StringVar(&reportDir, "report", "", "爬取报告输出目录 (为空则不生成)")

	// 爬取参数
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "youtube-videos.json", "输出JSON文件路径")
	rootCmd.Flags().BoolVar(&printSnippet, "snippet", false, "打印可粘贴到站点配置的 featuredVideos 片段")
	rootCmd.Flags().IntVar(&minResults, "min-results", 0, "至少需要的视频数量,不足时以错误退出")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(formatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 错误: %v\n", err)
		os.Exit(1)
	}
}
