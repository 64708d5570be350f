// Package crawlertest 提供可编排的浏览器伪实现,供测试使用
package crawlertest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
)

// Launcher 记录启动和关闭次数的伪启动器
type Launcher struct {
	Page      *Page
	LaunchErr error
	PageErr   error

	launches atomic.Int32
	closes   atomic.Int32
}

// Launches 成功启动的次数
func (l *Launcher) Launches() int { return int(l.launches.Load()) }

// Closes 浏览器被关闭的次数
func (l *Launcher) Closes() int { return int(l.closes.Load()) }

func (l *Launcher) Launch(ctx context.Context) (crawlers.Browser, error) {
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	l.launches.Add(1)
	return &browser{l: l}, nil
}

type browser struct {
	l *Launcher
}

func (b *browser) NewPage(ctx context.Context, opts crawlers.PageOptions) (crawlers.Page, error) {
	if b.l.PageErr != nil {
		return nil, b.l.PageErr
	}
	b.l.Page.mu.Lock()
	b.l.Page.Options = opts
	b.l.Page.mu.Unlock()
	return b.l.Page, nil
}

func (b *browser) Close() error {
	b.l.closes.Add(1)
	return nil
}

// Page 可编排的页面
type Page struct {
	mu sync.Mutex

	Options crawlers.PageOptions

	NavigateErr   error
	NavigateBlock bool // 阻塞直到ctx结束
	SelectorErr   error
	SelectorBlock bool
	PanicOnWait   bool

	// Heights 第n次滚动后读取到的高度,用尽后重复最后一个
	Heights   []int
	ScrollErr error

	Items       []crawlers.Element
	ElementsErr error

	scrolls     int
	navigatedTo string
	closes      int
}

// Scrolls 已执行的滚动次数
func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// NavigatedTo 最近一次导航的URL
func (p *Page) NavigatedTo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigatedTo
}

// Closes 页面被关闭的次数
func (p *Page) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

func (p *Page) Navigate(ctx context.Context, url string, idle time.Duration) error {
	p.mu.Lock()
	p.navigatedTo = url
	p.mu.Unlock()
	if p.NavigateBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.NavigateErr
}

func (p *Page) WaitSelector(ctx context.Context, selector string) error {
	if p.PanicOnWait {
		panic("page crashed")
	}
	if p.SelectorBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.SelectorErr
}

func (p *Page) ScrollBy(ctx context.Context, dy int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScrollErr != nil {
		return p.ScrollErr
	}
	p.scrolls++
	return nil
}

func (p *Page) ScrollHeight(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Heights) == 0 {
		return 0, nil
	}
	i := min(max(p.scrolls-1, 0), len(p.Heights)-1)
	return p.Heights[i], nil
}

func (p *Page) Elements(ctx context.Context, selector string) ([]crawlers.Element, error) {
	if p.ElementsErr != nil {
		return nil, p.ElementsErr
	}
	return p.Items, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	return nil
}

// Element 以选择器为键返回固定值
type Element struct {
	Hrefs map[string]string
	Attrs map[string]string // "selector|name" -> value
	Texts map[string]string
	Err   error
	Panic bool
}

func (e *Element) Href(ctx context.Context, selector string) (string, error) {
	if e.Panic {
		panic("detached node")
	}
	if e.Err != nil {
		return "", e.Err
	}
	return e.Hrefs[selector], nil
}

func (e *Element) Attr(ctx context.Context, selector, name string) (string, error) {
	return e.Attrs[selector+"|"+name], nil
}

func (e *Element) Text(ctx context.Context, selector string) (string, error) {
	return e.Texts[selector], nil
}

// Video 构造一个完整的视频条目,id 为空时没有链接
func Video(id, title, views string) *Element {
	el := &Element{
		Hrefs: map[string]string{},
		Attrs: map[string]string{
			crawlers.TitleLinkSelector + "|title": title,
			crawlers.ThumbnailSelector + "|src":   "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
		},
		Texts: map[string]string{crawlers.MetadataSelector: views},
	}
	if id != "" {
		el.Hrefs[crawlers.TitleLinkSelector] = "https://www.youtube.com/watch?v=" + id
	}
	return el
}

// Videos 按顺序构造多个条目
func Videos(ids ...string) []crawlers.Element {
	out := make([]crawlers.Element, 0, len(ids))
	for _, id := range ids {
		out = append(out, Video(id, "Video "+id, "1,000 views"))
	}
	return out
}
