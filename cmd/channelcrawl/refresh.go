package main

import (
	"fmt"

	"github.com/RecoveryAshes/ChannelCrawl/internal/core"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	refreshSchedule    string
	refreshOutput      string
	refreshSkipInitial bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [channelUrl] [maxVideos]",
	Short: "按计划定时重新爬取频道并覆盖输出文件",
	Long: `按 cron 表达式或 @every 描述符定时爬取,成功且非空时覆盖输出文件。
上一次爬取尚未结束时跳过本次;失败时保留旧文件。按 Ctrl+C 停止。

示例:
  channelcrawl refresh https://www.youtube.com/@channel/videos 5 --schedule "@every 6h"
  channelcrawl refresh https://www.youtube.com/@channel/videos --schedule "0 */4 * * *"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := ParseCrawlArgs(args, appConfig.Crawl.DefaultMaxResults, appConfig.Crawl.HostFragment)
		if err != nil {
			return fmt.Errorf("%w\n\n%s", err, usage())
		}
		if !cmd.Flags().Changed("schedule") {
			refreshSchedule = appConfig.Refresh.Schedule
		}
		if !cmd.Flags().Changed("output") {
			refreshOutput = appConfig.Output.Path
		}

		crawler, err := newCrawler()
		if err != nil {
			return err
		}
		r, err := core.NewRefresher(crawler, utils.NewReporter(cmd.OutOrStdout(), reportDir), req, refreshOutput, refreshSchedule)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "🕒 定时刷新 %s -> %s (%s),按 Ctrl+C 停止\n", req.TargetURL, refreshOutput, refreshSchedule)
		return r.Run(ctx, !refreshSkipInitial)
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshSchedule, "schedule", "@every 6h", "刷新计划 (cron 表达式或 @every/@daily 等)")
	refreshCmd.Flags().StringVarP(&refreshOutput, "output", "o", "youtube-videos.json", "输出JSON文件路径")
	refreshCmd.Flags().BoolVar(&refreshSkipInitial, "skip-initial", false, "启动时不立即执行一次")
}
