package main

import (
	"fmt"

	"github.com/RecoveryAshes/ChannelCrawl/internal/core"
	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	snapshotPath   string
	snapshotBase   string
	snapshotMax    int
	snapshotOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract --snapshot page.html",
	Short: "对保存的页面DOM运行提取和规范化,用于离线诊断选择器",
	Long: `读取浏览器中保存的频道页面 (开发者工具中复制的 outerHTML 或"另存为"),
用与在线爬取相同的选择器和规范化逻辑提取视频,不启动浏览器。

示例:
  channelcrawl extract --snapshot channel.html -n 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotPath == "" {
			return fmt.Errorf("必须使用 --snapshot 指定页面文件")
		}
		page, err := crawlers.LoadSnapshotPage(snapshotPath, snapshotBase)
		if err != nil {
			return err
		}

		scroll := appConfig.ScrollOptions()
		scroll.Settle = 0
		crawler := core.NewCrawler(core.CrawlerOptions{
			Launcher:        &crawlers.SnapshotLauncher{Page: page},
			Navigation:      appConfig.NavigationOptions(),
			Scroll:          scroll,
			OverFetchFactor: appConfig.Extract.OverFetchFactor,
		})

		out := cmd.OutOrStdout()
		result, err := crawler.Crawl(cmd.Context(), models.CrawlRequest{TargetURL: snapshotBase, MaxResults: snapshotMax})
		if err != nil {
			return describeCrawlError(err)
		}

		fmt.Fprintf(out, "🔍 快照: %s\n", snapshotPath)
		fmt.Fprintf(out, "📦 原始条目: %d | 保留: %d | 丢弃: %d | 重复: %d\n\n",
			result.RawCount, len(result.Videos), result.Dropped, result.Duplicates)

		reporter := utils.NewReporter(out, "")
		if len(result.Videos) == 0 {
			fmt.Fprintln(out, "⚠️  未提取到有效视频,请检查选择器:")
			for _, sel := range []string{crawlers.ItemContainerSelector, crawlers.TitleLinkSelector,
				crawlers.ThumbnailSelector, crawlers.MetadataSelector} {
				fmt.Fprintf(out, "   - %s\n", sel)
			}
			return nil
		}
		reporter.PrintVideos(result.Videos)

		if snapshotOutput != "" {
			if err := reporter.WriteVideos(snapshotOutput, result.Videos); err != nil {
				return fmt.Errorf("保存结果失败: %w", err)
			}
			fmt.Fprintf(out, "💾 视频数据已保存到: %s\n", snapshotOutput)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "保存的页面HTML文件 (必需)")
	extractCmd.Flags().StringVar(&snapshotBase, "base-url", "https://www.youtube.com/", "解析相对链接使用的基础URL")
	extractCmd.Flags().IntVarP(&snapshotMax, "max", "n", models.DefaultMaxResults, "视频数量上限")
	extractCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "输出JSON文件路径 (为空则只打印)")
}
