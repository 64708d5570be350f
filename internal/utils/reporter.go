package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 负责把爬取结果写入文件和终端
type Reporter struct {
	out       io.Writer
	reportDir string
}

// NewReporter 创建报告生成器,reportDir 为空时不生成报告文件
func NewReporter(out io.Writer, reportDir string) *Reporter {
	return &Reporter{
		out:       out,
		reportDir: reportDir,
	}
}

// WriteVideos 将视频列表以JSON数组写入文件
func (r *Reporter) WriteVideos(path string, videos []models.VideoRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if videos == nil {
		videos = []models.VideoRecord{}
	}
	if err := saveJSON(path, videos); err != nil {
		return err
	}
	Debugf("保存视频列表: %s (%d条)", path, len(videos))
	return nil
}

// WriteReport 在报告目录中保存一次爬取的报告,返回报告路径
func (r *Reporter) WriteReport(report *models.CrawlReport) (string, error) {
	if r.reportDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(r.reportDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	name := report.RunID
	if name == "" {
		name = report.StartTime.Format("20060102-150405")
	}
	path := filepath.Join(r.reportDir, "crawl_report_"+name+".json")
	if err := saveJSON(path, report); err != nil {
		return "", err
	}
	Infof("✅ 报告已生成: %s", path)
	return path, nil
}

// PrintVideos 打印每条记录的摘要
func (r *Reporter) PrintVideos(videos []models.VideoRecord) {
	for i, v := range videos {
		views := v.Views
		if views == "" {
			views = "N/A"
		}
		fmt.Fprintf(r.out, "%d. %s\n", i+1, v.Title)
		fmt.Fprintf(r.out, "   Views: %s | ID: %s\n", views, v.ID)
		fmt.Fprintf(r.out, "   URL: %s\n\n", v.URL)
	}
}

// PrintSnippet 打印可直接粘贴到站点配置中的 featuredVideos 片段
func (r *Reporter) PrintSnippet(videos []models.VideoRecord) {
	fmt.Fprintln(r.out, "featuredVideos: [")
	for i, v := range videos {
		title := v.Title
		if title == "" {
			title = models.PlaceholderTitle
		}
		fmt.Fprintln(r.out, "  {")
		fmt.Fprintf(r.out, "    id: %q,\n", v.ID)
		fmt.Fprintf(r.out, "    title: \"%s\",\n", strings.ReplaceAll(title, `"`, `\"`))
		fmt.Fprintf(r.out, "    thumbnail: %q,\n", v.ThumbnailURL)
		fmt.Fprintf(r.out, "    url: %q,\n", v.URL)
		if i < len(videos)-1 {
			fmt.Fprintln(r.out, "  },")
		} else {
			fmt.Fprintln(r.out, "  }")
		}
	}
	fmt.Fprintln(r.out, "],")
}

// PrintDuration 打印耗时
func (r *Reporter) PrintDuration(d time.Duration) {
	fmt.Fprintf(r.out, "⏱️  总耗时: %.2f秒\n", d.Seconds())
}

func saveJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
