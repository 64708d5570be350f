package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
)

// ParseCrawlArgs 解析位置参数 [channelUrl] [maxVideos] 为爬取请求
//
// 校验在启动浏览器之前完成: URL必须包含 hostFragment,数量必须为正整数。
func ParseCrawlArgs(args []string, defaultMax int, hostFragment string) (models.CrawlRequest, error) {
	if len(args) == 0 {
		return models.CrawlRequest{}, fmt.Errorf("缺少频道URL")
	}

	req := models.CrawlRequest{
		TargetURL:  strings.TrimSpace(args[0]),
		MaxResults: defaultMax,
	}
	if hostFragment != "" && !strings.Contains(req.TargetURL, hostFragment) {
		return req, fmt.Errorf("无效的频道URL %q: 必须包含 %s", req.TargetURL, hostFragment)
	}

	if len(args) > 1 {
		n, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || n <= 0 {
			return req, fmt.Errorf("视频数量必须为正整数,当前值: %q", args[1])
		}
		req.MaxResults = n
	}

	req = req.WithDefaults()
	if err := req.Validate(hostFragment); err != nil {
		return req, err
	}
	return req, nil
}

// ValidateURLFile 验证URL文件路径
func ValidateURLFile(path string) error {
	if path == "" {
		return fmt.Errorf("URL文件路径不能为空 (使用 -f 指定)")
	}
	return nil
}

// usage 命令行用法提示
func usage() string {
	return "用法: channelcrawl [channelUrl] [maxVideos]\n\n示例:\n  channelcrawl https://www.youtube.com/@channel/videos 5"
}

// parseDelay 解析时间间隔,纯数字按秒处理
func parseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("延迟不能为负数: %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("无效的延迟 %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("延迟不能为负数: %s", s)
	}
	return d, nil
}
