package crawlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers/crawlertest"
	"github.com/stretchr/testify/assert"
)

func fastScroll() crawlers.ScrollOptions {
	return crawlers.ScrollOptions{
		Step:        100,
		Interval:    time.Millisecond,
		MaxDistance: 3000,
		Settle:      time.Millisecond,
	}
}

func TestScrollDriver_ExpandContent(t *testing.T) {
	tests := []struct {
		name       string
		page       *crawlertest.Page
		wantSteps  int
		wantReason string
	}{
		{
			name:       "高度不变时到底停止",
			page:       &crawlertest.Page{Heights: []int{500}},
			wantSteps:  5,
			wantReason: crawlers.ScrollStopBottom,
		},
		{
			name:       "高度增长时继续",
			page:       &crawlertest.Page{Heights: []int{200, 400, 400, 400}},
			wantSteps:  4,
			wantReason: crawlers.ScrollStopBottom,
		},
		{
			name:       "无限增长时在上限停止",
			page:       &crawlertest.Page{Heights: growing(100, 100000)},
			wantSteps:  30,
			wantReason: crawlers.ScrollStopCap,
		},
		{
			name:       "高页面高度不变时滚到上限",
			page:       &crawlertest.Page{Heights: []int{8000}},
			wantSteps:  30,
			wantReason: crawlers.ScrollStopCap,
		},
		{
			name:       "空页面立即停止",
			page:       &crawlertest.Page{},
			wantSteps:  1,
			wantReason: crawlers.ScrollStopBottom,
		},
		{
			name:       "滚动出错提前结束",
			page:       &crawlertest.Page{ScrollErr: errBoom},
			wantSteps:  0,
			wantReason: crawlers.ScrollStopError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := crawlers.NewScrollDriver(fastScroll()).ExpandContent(context.Background(), tt.page)
			assert.Equal(t, tt.wantSteps, stats.Steps)
			assert.Equal(t, tt.wantReason, stats.StopReason)
			assert.LessOrEqual(t, stats.Distance, 3000)
		})
	}
}

func TestScrollDriver_HonoursCancellation(t *testing.T) {
	opts := fastScroll()
	opts.Interval = 20 * time.Millisecond
	opts.Settle = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	stats := crawlers.NewScrollDriver(opts).ExpandContent(ctx, &crawlertest.Page{Heights: growing(10000, 100)})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, crawlers.ScrollStopCanceled, stats.StopReason)
}

func TestScrollDriver_WaitsSettle(t *testing.T) {
	opts := fastScroll()
	opts.Settle = 30 * time.Millisecond

	start := time.Now()
	crawlers.NewScrollDriver(opts).ExpandContent(context.Background(), &crawlertest.Page{Heights: []int{100}})
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

// growing 返回从 start 开始每次增加 step 的高度序列
func growing(start, step int) []int {
	out := make([]int, 64)
	for i := range out {
		out[i] = start + i*step
	}
	return out
}
