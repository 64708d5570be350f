package core

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers/crawlertest"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crawlFunc 让普通函数实现 ChannelCrawler
type crawlFunc func(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error)

func (f crawlFunc) Crawl(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
	return f(ctx, req)
}

func TestBatchCrawler_CrawlBatch(t *testing.T) {
	dir := t.TempDir()
	l := &crawlertest.Launcher{Page: &crawlertest.Page{Items: crawlertest.Videos("a", "b", "c")}}

	var progress bytes.Buffer
	bc := NewBatchCrawler(testCrawler(l), utils.NewReporter(&bytes.Buffer{}, filepath.Join(dir, "reports")), BatchOptions{
		OutputDir:     dir,
		MaxResults:    2,
		ContinueOnErr: true,
		Progress:      &progress,
	})

	urls := []string{
		"https://www.youtube.com/@first/videos",
		"https://vimeo.com/not-a-channel",
		"https://www.youtube.com/@second/videos",
	}
	summary, err := bc.CrawlBatch(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalURLs)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailCount)
	assert.Equal(t, 4, summary.TotalVideos)
	assert.ErrorIs(t, summary.Results[1].Error, models.ErrInvalidRequest)
	assert.Equal(t, 2, l.Launches(), "无效请求不启动浏览器")

	data, err := os.ReadFile(filepath.Join(dir, "first.json"))
	require.NoError(t, err)
	var videos []models.VideoRecord
	require.NoError(t, json.Unmarshal(data, &videos))
	assert.Len(t, videos, 2)
	assert.FileExists(t, filepath.Join(dir, "second.json"))

	reports, err := filepath.Glob(filepath.Join(dir, "reports", "crawl_report_*.json"))
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestBatchCrawler_StopOnError(t *testing.T) {
	calls := 0
	crawler := crawlFunc(func(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
		calls++
		return nil, &models.CrawlError{Kind: models.KindNavigationTimeout, URL: req.TargetURL}
	})

	bc := NewBatchCrawler(crawler, utils.NewReporter(&bytes.Buffer{}, ""), BatchOptions{OutputDir: t.TempDir()})
	summary, err := bc.CrawlBatch(context.Background(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, summary.FailCount)
	assert.Equal(t, 2, summary.SkippedCount)
}

func TestBatchCrawler_CanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	crawler := crawlFunc(func(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
		cancel()
		return &models.CrawlResult{}, nil
	})

	bc := NewBatchCrawler(crawler, utils.NewReporter(&bytes.Buffer{}, ""), BatchOptions{
		OutputDir: t.TempDir(),
		Delay:     time.Hour,
	})

	start := time.Now()
	summary, err := bc.CrawlBatch(ctx, []string{"https://www.youtube.com/@a", "https://www.youtube.com/@b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 1, summary.SkippedCount)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/@chan/videos", "chan.json"},
		{"https://www.youtube.com/@chan", "chan.json"},
		{"https://www.youtube.com/channel/UC123/videos", "channel_UC123.json"},
		{"https://www.youtube.com/", "www.youtube.com.json"},
		{"https://www.youtube.com/@我的频道/videos", "channel.json"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputName(tt.url))
		})
	}
}
