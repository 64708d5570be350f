package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/normalize"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"间隔描述符", "@every 6h", false},
		{"每日描述符", "@daily", false},
		{"五段表达式", "0 */6 * * *", false},
		{"空表达式", "  ", true},
		{"六段表达式", "0 0 */6 * * *", true},
		{"非法表达式", "every six hours", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedule(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSchedule(%q) 错误 = %v, 期望错误 = %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestRefresher_Next(t *testing.T) {
	r, err := NewRefresher(nil, nil, models.CrawlRequest{}, "out.json", "@every 6h")
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(6*time.Hour), r.Next(now))
}

func TestRefresher_RunOnce(t *testing.T) {
	output := filepath.Join(t.TempDir(), "videos.json")
	reporter := utils.NewReporter(&bytes.Buffer{}, "")
	req := models.CrawlRequest{TargetURL: channelURL, MaxResults: 2}

	var next func() (*models.CrawlResult, error)
	crawler := crawlFunc(func(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
		return next()
	})

	r, err := NewRefresher(crawler, reporter, req, output, "@hourly")
	require.NoError(t, err)

	t.Run("成功时写入文件", func(t *testing.T) {
		next = func() (*models.CrawlResult, error) {
			return &models.CrawlResult{Videos: []models.VideoRecord{normalize.FromID("a")}}, nil
		}
		ran, err := r.RunOnce(context.Background())
		require.NoError(t, err)
		assert.True(t, ran)
		assert.FileExists(t, output)
	})

	before, err := os.ReadFile(output)
	require.NoError(t, err)

	t.Run("失败时保留旧文件", func(t *testing.T) {
		next = func() (*models.CrawlResult, error) {
			return nil, &models.CrawlError{Kind: models.KindSelectorNotFound, Err: errors.New("consent wall")}
		}
		_, err := r.RunOnce(context.Background())
		require.ErrorIs(t, err, models.ErrSelectorNotFound)

		after, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("空结果时保留旧文件", func(t *testing.T) {
		next = func() (*models.CrawlResult, error) {
			return &models.CrawlResult{Videos: []models.VideoRecord{}}, nil
		}
		_, err := r.RunOnce(context.Background())
		require.NoError(t, err)

		after, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	assert.Equal(t, int64(3), r.Runs())
}

func TestRefresher_SkipsOverlappingRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	crawler := crawlFunc(func(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
		close(started)
		<-release
		return &models.CrawlResult{}, nil
	})

	r, err := NewRefresher(crawler, utils.NewReporter(&bytes.Buffer{}, ""), models.CrawlRequest{TargetURL: channelURL},
		filepath.Join(t.TempDir(), "v.json"), "@hourly")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.RunOnce(context.Background())
	}()
	<-started

	ran, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, int64(1), r.Skipped())

	close(release)
	<-done
	assert.Equal(t, int64(1), r.Runs())
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	output := filepath.Join(t.TempDir(), "v.json")

	crawler := crawlFunc(func(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
		defer cancel()
		return &models.CrawlResult{Videos: []models.VideoRecord{normalize.FromID("z")}}, nil
	})
	r, err := NewRefresher(crawler, utils.NewReporter(&bytes.Buffer{}, ""), models.CrawlRequest{TargetURL: channelURL},
		output, "@every 1h")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx, true) }()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run 未在取消后返回")
	}
	assert.FileExists(t, output)
	assert.Equal(t, int64(1), r.Runs())
}
