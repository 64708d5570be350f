package core

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// ChannelCrawler 执行单次频道爬取,*Crawler 实现该接口
type ChannelCrawler interface {
	Crawl(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error)
}

// BatchOptions 批量爬取参数
type BatchOptions struct {
	OutputDir     string
	MaxResults    int
	Delay         time.Duration
	ContinueOnErr bool
	Progress      io.Writer // 为nil时不显示进度条
}

// BatchCrawler 批量爬取器,按顺序逐个爬取频道
type BatchCrawler struct {
	crawler  ChannelCrawler
	reporter *utils.Reporter
	opts     BatchOptions
}

// BatchResult 单个频道的爬取结果
type BatchResult struct {
	URL         string
	Success     bool
	Error       error
	Videos      int
	Output      string
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary 批量爬取摘要
type BatchSummary struct {
	TotalURLs     int
	SuccessCount  int
	FailCount     int
	SkippedCount  int
	TotalVideos   int
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchCrawler 创建批量爬取器
func NewBatchCrawler(crawler ChannelCrawler, reporter *utils.Reporter, opts BatchOptions) *BatchCrawler {
	return &BatchCrawler{
		crawler:  crawler,
		reporter: reporter,
		opts:     opts,
	}
}

// CrawlBatch 批量爬取URL列表
//
// 每个频道的结果写入 OutputDir 下独立的JSON文件。ctx 取消时停止处理剩余URL,
// 返回已完成部分的摘要和 ctx 的错误。
func (bc *BatchCrawler) CrawlBatch(ctx context.Context, urls []string) (*BatchSummary, error) {
	utils.Infof("🚀 开始批量爬取: %d个频道", len(urls))

	summary := &BatchSummary{
		TotalURLs: len(urls),
		Results:   make([]BatchResult, 0, len(urls)),
	}
	startTime := time.Now()

	var bar *progressbar.ProgressBar
	if bc.opts.Progress != nil {
		bar = utils.NewProgressBar(len(urls), "批量爬取", bc.opts.Progress)
	}

	var runErr error
	for i, targetURL := range urls {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		utils.Infof("==================== [%d/%d] %s ====================", i+1, len(urls), targetURL)

		result := bc.crawlSingleURL(ctx, targetURL)
		summary.Results = append(summary.Results, result)
		if bar != nil {
			_ = bar.Add(1)
		}

		if result.Success {
			summary.SuccessCount++
			summary.TotalVideos += result.Videos
		} else {
			summary.FailCount++
			utils.Errorf("❌ 爬取失败: %v", result.Error)
			if !bc.opts.ContinueOnErr {
				utils.Warn("批量爬取中止 (continue_on_error=false)")
				break
			}
		}

		if i < len(urls)-1 && bc.opts.Delay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个频道...", bc.opts.Delay.Seconds())
			select {
			case <-ctx.Done():
			case <-time.After(bc.opts.Delay):
			}
		}
	}

	summary.SkippedCount = summary.TotalURLs - len(summary.Results)
	summary.TotalDuration = time.Since(startTime).Seconds()
	bc.printSummary(summary)

	return summary, runErr
}

// crawlSingleURL 爬取单个频道并写入输出文件
func (bc *BatchCrawler) crawlSingleURL(ctx context.Context, targetURL string) (result BatchResult) {
	result = BatchResult{URL: targetURL, ProcessedAt: time.Now()}
	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime).Seconds() }()

	req := models.CrawlRequest{TargetURL: targetURL, MaxResults: bc.opts.MaxResults}
	res, err := bc.crawler.Crawl(ctx, req)
	if err != nil {
		result.Error = err
		bc.writeReport(req, nil, err, startTime)
		return result
	}

	output := filepath.Join(bc.opts.OutputDir, OutputName(targetURL))
	if err := bc.reporter.WriteVideos(output, res.Videos); err != nil {
		result.Error = fmt.Errorf("保存结果失败: %w", err)
		return result
	}
	bc.writeReport(req, res, nil, startTime)

	result.Success = true
	result.Videos = len(res.Videos)
	result.Output = output
	return result
}

func (bc *BatchCrawler) writeReport(req models.CrawlRequest, res *models.CrawlResult, err error, started time.Time) {
	report := models.NewCrawlReport(req, res, err, started)
	if _, werr := bc.reporter.WriteReport(report); werr != nil {
		utils.Warnf("保存报告失败: %v", werr)
	}
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// OutputName 根据频道URL生成输出文件名
//
// https://www.youtube.com/@chan/videos -> chan.json
// https://www.youtube.com/channel/UC123/videos -> channel_UC123.json
func OutputName(targetURL string) string {
	name := ""
	if u, err := url.Parse(targetURL); err == nil {
		segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if n := len(segments); n > 1 && segments[n-1] == "videos" {
			segments = segments[:n-1]
		}
		name = strings.TrimPrefix(strings.Join(segments, "_"), "@")
		if name == "" {
			name = u.Host
		}
	}
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "_.")
	if name == "" {
		name = "channel"
	}
	return name + ".json"
}

// printSummary 打印批量爬取摘要
func (bc *BatchCrawler) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("📊 批量爬取摘要")
	utils.Info("==================================================")
	utils.Infof("总频道数: %d", summary.TotalURLs)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	if summary.SkippedCount > 0 {
		utils.Infof("⏭️  未处理: %d", summary.SkippedCount)
	}
	utils.Infof("🎬 视频总数: %d", summary.TotalVideos)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("失败的频道:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.URL, result.Error)
			}
		}
	}
}
