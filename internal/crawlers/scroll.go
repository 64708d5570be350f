package crawlers

import (
	"context"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
)

// ScrollOptions 滚动加载参数
type ScrollOptions struct {
	Step        int           // 每次滚动的像素
	Interval    time.Duration // 两次滚动的间隔
	MaxDistance int           // 累计滚动距离上限
	Settle      time.Duration // 滚动结束后等待懒加载完成的时长
}

// DefaultScrollOptions 默认滚动参数
func DefaultScrollOptions() ScrollOptions {
	return ScrollOptions{
		Step:        100,
		Interval:    100 * time.Millisecond,
		MaxDistance: 3000,
		Settle:      2 * time.Second,
	}
}

// 滚动结束原因
const (
	ScrollStopBottom   = "bottom"
	ScrollStopCap      = "cap"
	ScrollStopError    = "error"
	ScrollStopCanceled = "canceled"
)

// ScrollStats 一次滚动的统计
type ScrollStats struct {
	Steps       int
	Distance    int
	FinalHeight int
	StopReason  string
}

// ScrollDriver 逐步滚动页面以触发懒加载
type ScrollDriver struct {
	opts ScrollOptions
}

// NewScrollDriver 创建滚动驱动器
func NewScrollDriver(opts ScrollOptions) *ScrollDriver {
	def := DefaultScrollOptions()
	if opts.Step <= 0 {
		opts.Step = def.Step
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = def.MaxDistance
	}
	return &ScrollDriver{opts: opts}
}

// ExpandContent 向下滚动直到到达底部且高度不再增长,或累计距离达到上限,然后等待 Settle
//
// 只有累计距离追上页面高度后才判断到底,因此高度很大且从不增长的页面会一直滚到 MaxDistance。
// 尽力而为: 任何错误只会提前结束滚动,不会让爬取失败。
func (d *ScrollDriver) ExpandContent(ctx context.Context, page Page) ScrollStats {
	var stats ScrollStats
	prevHeight := 0

	ticker := time.NewTicker(max(d.opts.Interval, time.Millisecond))
	defer ticker.Stop()

	for stats.StopReason == "" {
		if err := page.ScrollBy(ctx, d.opts.Step); err != nil {
			utils.Debugf("滚动失败,提前结束: %v", err)
			stats.StopReason = ScrollStopError
			break
		}
		stats.Steps++
		stats.Distance += d.opts.Step

		height, err := page.ScrollHeight(ctx)
		if err != nil {
			utils.Debugf("读取页面高度失败,提前结束: %v", err)
			stats.StopReason = ScrollStopError
			break
		}
		stats.FinalHeight = height

		switch {
		case stats.Distance >= d.opts.MaxDistance:
			stats.StopReason = ScrollStopCap
		case stats.Distance >= height && height <= prevHeight:
			stats.StopReason = ScrollStopBottom
		default:
			prevHeight = height
			select {
			case <-ctx.Done():
				stats.StopReason = ScrollStopCanceled
			case <-ticker.C:
			}
		}
	}

	if stats.StopReason == ScrollStopCanceled || ctx.Err() != nil {
		return stats
	}

	if d.opts.Settle > 0 {
		timer := time.NewTimer(d.opts.Settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			stats.StopReason = ScrollStopCanceled
		case <-timer.C:
		}
	}

	utils.Debugf("滚动结束: 步数=%d, 距离=%d, 高度=%d, 原因=%s",
		stats.Steps, stats.Distance, stats.FinalHeight, stats.StopReason)
	return stats
}
