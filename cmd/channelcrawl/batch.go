package main

import (
	"fmt"

	"github.com/RecoveryAshes/ChannelCrawl/internal/core"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	urlFile         string
	batchOutputDir  string
	batchMax        int
	batchDelay      string
	continueOnError bool
)

var batchCmd = &cobra.Command{
	Use:   "batch -f channels.txt",
	Short: "按顺序批量爬取多个频道",
	Long: `从文件读取频道URL (每行一个,# 开头为注释),依次爬取,
每个频道的结果保存为输出目录下独立的JSON文件。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateURLFile(urlFile); err != nil {
			return err
		}
		urls, err := utils.ReadURLsFromFile(urlFile)
		if err != nil {
			return fmt.Errorf("读取URL文件失败: %w", err)
		}

		opts := core.BatchOptions{
			OutputDir:     batchOutputDir,
			MaxResults:    appConfig.Crawl.DefaultMaxResults,
			Delay:         appConfig.Batch.Delay,
			ContinueOnErr: appConfig.Batch.ContinueOnError,
			Progress:      cmd.ErrOrStderr(),
		}
		if cmd.Flags().Changed("max") {
			opts.MaxResults = batchMax
		}
		if cmd.Flags().Changed("delay") {
			d, err := parseDelay(batchDelay)
			if err != nil {
				return err
			}
			opts.Delay = d
		}
		if cmd.Flags().Changed("continue-on-error") {
			opts.ContinueOnErr = continueOnError
		}

		crawler, err := newCrawler()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		bc := core.NewBatchCrawler(crawler, utils.NewReporter(cmd.OutOrStdout(), reportDir), opts)
		summary, err := bc.CrawlBatch(ctx, urls)
		if err != nil {
			return fmt.Errorf("批量爬取中断: %w", err)
		}
		if summary.SuccessCount == 0 && summary.FailCount > 0 {
			return fmt.Errorf("所有频道爬取失败 (%d个)", summary.FailCount)
		}

		utils.Info("✨ 批量爬取任务完成!")
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含频道URL列表的文件路径 (必需)")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output", "o", "output", "输出目录")
	batchCmd.Flags().IntVarP(&batchMax, "max", "n", 5, "每个频道的视频数量上限")
	batchCmd.Flags().StringVar(&batchDelay, "delay", "5s", "频道之间的等待时间 (如 5s, 1m)")
	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")
}
