package crawlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers/crawlertest"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSession_ReleasesOnEveryPath(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(*crawlers.Session) error
		wantErr error
	}{
		{"成功", func(*crawlers.Session) error { return nil }, nil},
		{"返回错误", func(*crawlers.Session) error { return boom }, boom},
		{"panic", func(*crawlers.Session) error { panic("crash") }, models.ErrBrowserCrashed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &crawlertest.Page{}
			launcher := &crawlertest.Launcher{Page: page}

			err := crawlers.WithSession(context.Background(), launcher, crawlers.PageOptions{}, tt.fn)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 1, launcher.Launches())
			assert.Equal(t, 1, launcher.Closes())
			assert.Equal(t, 1, page.Closes())
		})
	}
}

func TestAcquireSession_Failures(t *testing.T) {
	t.Run("启动失败", func(t *testing.T) {
		launcher := &crawlertest.Launcher{LaunchErr: errors.New("no chrome")}
		_, err := crawlers.AcquireSession(context.Background(), launcher, crawlers.PageOptions{})
		require.ErrorIs(t, err, models.ErrBrowserLaunch)
		assert.Equal(t, 0, launcher.Closes())
	})

	t.Run("创建页面失败时关闭浏览器", func(t *testing.T) {
		launcher := &crawlertest.Launcher{Page: &crawlertest.Page{}, PageErr: errors.New("target crashed")}
		_, err := crawlers.AcquireSession(context.Background(), launcher, crawlers.PageOptions{})
		require.ErrorIs(t, err, models.ErrBrowserLaunch)
		assert.Equal(t, 1, launcher.Closes())
	})
}

func TestSession_ReleaseIsIdempotent(t *testing.T) {
	page := &crawlertest.Page{}
	launcher := &crawlertest.Launcher{Page: page}
	opts := crawlers.PageOptions{UserAgent: "UA", Headers: map[string]string{"Accept-Language": "en-US"}}

	s, err := crawlers.AcquireSession(context.Background(), launcher, opts)
	require.NoError(t, err)
	assert.Equal(t, opts, page.Options)

	require.NoError(t, s.Release())
	require.NoError(t, s.Release())
	assert.Equal(t, 1, launcher.Closes())
	assert.Equal(t, 1, page.Closes())
}
