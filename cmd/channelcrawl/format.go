package main

import (
	"fmt"
	"io"
	"os"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/normalize"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	formatFile          string
	formatOutput        string
	formatResolveTitles bool
)

var formatCmd = &cobra.Command{
	Use:   "format [-f urls.txt]",
	Short: "将视频链接整理为站点配置格式 (无需浏览器)",
	Long: `读取视频链接 (每行一个,支持 watch?v=、youtu.be/ 和 /embed/ 格式),
生成规范的缩略图和观看链接,并打印 featuredVideos 片段。
未指定 -f 时从标准输入读取,以 Ctrl+D 结束。

--resolve-titles 会静态请求每个视频的观看页,读取 og:title 作为标题。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if formatFile != "" {
			f, err := os.Open(formatFile)
			if err != nil {
				return fmt.Errorf("打开URL文件失败: %w", err)
			}
			defer f.Close()
			in = f
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "📹 粘贴视频链接 (每行一个),完成后按 Ctrl+D")
		}

		lines, err := utils.ReadURLs(in, false)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		videos, invalid := normalize.FromURLs(lines)
		for _, u := range invalid {
			fmt.Fprintf(out, "✗ 无效链接: %s\n", u)
		}
		for _, v := range videos {
			fmt.Fprintf(out, "✓ 已添加: %s\n", v.ID)
		}
		if len(videos) == 0 {
			fmt.Fprintln(out, "\n⚠️  没有找到有效的视频链接")
			return nil
		}
		fmt.Fprintf(out, "\n✅ 共 %d 个视频\n\n", len(videos))

		if formatResolveTitles {
			hm, err := newHeaderManager()
			if err != nil {
				return err
			}
			fetcher := crawlers.NewMetadataFetcher(appConfig.MetadataFetcherConfig(hm))

			ids := make([]string, 0, len(videos))
			for _, v := range videos {
				ids = append(ids, v.ID)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			bar := utils.NewProgressBar(len(ids), "获取标题", cmd.ErrOrStderr())
			titles, err := fetcher.FetchTitles(ctx, ids, func() { _ = bar.Add(1) })
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("获取标题中断: %w", err)
			}
			for i := range videos {
				if title := titles[videos[i].ID]; title != "" {
					videos[i].Title = title
				}
			}
			fmt.Fprintf(out, "📝 已获取 %d/%d 个标题\n\n", len(titles), len(videos))
		}

		reporter := utils.NewReporter(out, "")
		fmt.Fprintln(out, "📝 复制以下内容到站点配置:")
		fmt.Fprintln(out)
		reporter.PrintSnippet(videos)

		if formatOutput != "" {
			if err := reporter.WriteVideos(formatOutput, videos); err != nil {
				return fmt.Errorf("保存结果失败: %w", err)
			}
			fmt.Fprintf(out, "💾 视频数据已保存到: %s\n", formatOutput)
		}
		return nil
	},
}

func init() {
	formatCmd.Flags().StringVarP(&formatFile, "url-file", "f", "", "包含视频链接的文件 (默认读取标准输入)")
	formatCmd.Flags().StringVarP(&formatOutput, "output", "o", "", "输出JSON文件路径")
	formatCmd.Flags().BoolVar(&formatResolveTitles, "resolve-titles", false, "静态抓取观看页获取视频标题")
}
