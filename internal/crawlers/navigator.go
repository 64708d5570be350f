package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
)

// NavigationOptions 导航等待参数
type NavigationOptions struct {
	Timeout         time.Duration // 加载及网络空闲的总时限
	SelectorTimeout time.Duration // 等待视频容器出现的时限
	IdleTime        time.Duration // 无请求持续多久视为空闲
}

// DefaultNavigationOptions 默认导航参数
func DefaultNavigationOptions() NavigationOptions {
	return NavigationOptions{
		Timeout:         30 * time.Second,
		SelectorTimeout: 15 * time.Second,
		IdleTime:        500 * time.Millisecond,
	}
}

// Navigator 打开目标页面并等待其就绪
type Navigator struct {
	opts     NavigationOptions
	selector string
}

// NewNavigator 创建导航器,等待的容器选择器固定为 ItemContainerSelector
func NewNavigator(opts NavigationOptions) *Navigator {
	def := DefaultNavigationOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = def.SelectorTimeout
	}
	return &Navigator{opts: opts, selector: ItemContainerSelector}
}

// Navigate 加载页面,等待网络空闲和视频容器出现,两个等待都是硬时限且不重试
func (n *Navigator) Navigate(ctx context.Context, page Page, url string) error {
	start := time.Now()

	loadCtx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	err := page.Navigate(loadCtx, url, n.opts.IdleTime)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %s 未在 %v 内完成加载: %w", models.ErrNavigationTimeout, url, n.opts.Timeout, err)
	}
	utils.Debugf("页面网络已空闲: %s (%v)", url, time.Since(start).Round(time.Millisecond))

	selCtx, cancel := context.WithTimeout(ctx, n.opts.SelectorTimeout)
	err = page.WaitSelector(selCtx, n.selector)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %q 未在 %v 内出现: %w", models.ErrSelectorNotFound, n.selector, n.opts.SelectorTimeout, err)
	}

	utils.Debugf("视频容器已出现: %s (%v)", n.selector, time.Since(start).Round(time.Millisecond))
	return nil
}
