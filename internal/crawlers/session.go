package crawlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
)

// PageOptions 新建页面时应用的上下文设置
type PageOptions struct {
	UserAgent string
	Headers   map[string]string
	Stealth   bool
}

// Launcher 启动浏览器进程,是唯一允许创建进程的组件
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser 一个已启动的浏览器进程
type Browser interface {
	NewPage(ctx context.Context, opts PageOptions) (Page, error)

	// Close 终止浏览器进程并清理临时目录
	Close() error
}

// Session 一次爬取独占的浏览器和页面
type Session struct {
	browser Browser
	page    Page

	once       sync.Once
	releaseErr error
}

// AcquireSession 启动浏览器并创建唯一的页面
func AcquireSession(ctx context.Context, launcher Launcher, opts PageOptions) (*Session, error) {
	browser, err := launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrBrowserLaunch, err)
	}

	page, err := browser.NewPage(ctx, opts)
	if err != nil {
		if cerr := browser.Close(); cerr != nil {
			utils.Warnf("关闭浏览器失败: %v", cerr)
		}
		return nil, fmt.Errorf("%w: 创建页面失败: %w", models.ErrBrowserLaunch, err)
	}

	return &Session{browser: browser, page: page}, nil
}

// Page 返回会话的页面
func (s *Session) Page() Page {
	return s.page
}

// Release 关闭页面并终止浏览器,多次调用只生效一次
func (s *Session) Release() error {
	s.once.Do(func() {
		if err := s.page.Close(); err != nil {
			utils.Debugf("关闭页面失败: %v", err)
		}
		s.releaseErr = s.browser.Close()
		if s.releaseErr != nil {
			utils.Warnf("终止浏览器失败: %v", s.releaseErr)
		} else {
			utils.Debugf("浏览器已关闭")
		}
	})
	return s.releaseErr
}

// WithSession 在会话内执行 fn,无论成功、出错、超时还是panic都会释放会话
func WithSession(ctx context.Context, launcher Launcher, opts PageOptions, fn func(*Session) error) (err error) {
	session, err := AcquireSession(ctx, launcher, opts)
	if err != nil {
		return err
	}
	defer session.Release()

	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("浏览器操作panic: %v", r)
			err = fmt.Errorf("%w: %v", models.ErrBrowserCrashed, r)
		}
	}()

	return fn(session)
}
