package crawlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrSelectorMissing 快照中不存在选择器对应的元素
var ErrSelectorMissing = errors.New("快照中不存在该元素")

// SnapshotPage 基于已保存HTML的只读页面
//
// 用于离线诊断选择器是否失效,也作为测试中的页面实现。
type SnapshotPage struct {
	doc  *goquery.Document
	base *url.URL

	mu       sync.Mutex
	height   int
	position int
	closed   bool
}

// NewSnapshotPage 解析HTML快照,baseURL 用于把相对链接解析为绝对地址
func NewSnapshotPage(r io.Reader, baseURL string) (*SnapshotPage, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析HTML快照失败: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("无效的基准URL: %w", err)
	}

	return &SnapshotPage{
		doc:  goquery.NewDocumentFromNode(root),
		base: base,
	}, nil
}

// LoadSnapshotPage 从文件读取HTML快照
func LoadSnapshotPage(path, baseURL string) (*SnapshotPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开快照文件失败: %w", err)
	}
	defer f.Close()
	return NewSnapshotPage(f, baseURL)
}

// SetHeight 设置模拟的文档高度
func (p *SnapshotPage) SetHeight(h int) {
	p.mu.Lock()
	p.height = h
	p.mu.Unlock()
}

// Navigate 快照已加载完毕,只检查上下文
func (p *SnapshotPage) Navigate(ctx context.Context, _ string, _ time.Duration) error {
	return ctx.Err()
}

// WaitSelector 快照是静态的,不存在即失败
func (p *SnapshotPage) WaitSelector(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrSelectorMissing, selector)
	}
	return nil
}

func (p *SnapshotPage) ScrollBy(ctx context.Context, dy int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.position += dy
	p.mu.Unlock()
	return nil
}

func (p *SnapshotPage) ScrollHeight(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height, nil
}

func (p *SnapshotPage) Elements(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &snapshotElement{sel: s, base: p.base})
	})
	return out, nil
}

func (p *SnapshotPage) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Closed 页面是否已关闭
func (p *SnapshotPage) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type snapshotElement struct {
	sel  *goquery.Selection
	base *url.URL
}

func (e *snapshotElement) target(selector string) *goquery.Selection {
	if selector == "" {
		return e.sel
	}
	return e.sel.Find(selector).First()
}

func (e *snapshotElement) Href(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	href, ok := e.target(selector).Attr("href")
	if !ok || href == "" {
		return "", nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href, nil
	}
	return e.base.ResolveReference(ref).String(), nil
}

func (e *snapshotElement) Attr(ctx context.Context, selector, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, _ := e.target(selector).Attr(name)
	return v, nil
}

func (e *snapshotElement) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(e.target(selector).Text()), nil
}

// SnapshotLauncher 把快照页面包装为 Launcher,使完整的爬取流程可以离线运行
type SnapshotLauncher struct {
	Page *SnapshotPage
}

// Launch 返回持有快照页面的伪浏览器
func (l *SnapshotLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &snapshotBrowser{page: l.Page}, nil
}

type snapshotBrowser struct {
	page *SnapshotPage
}

func (b *snapshotBrowser) NewPage(_ context.Context, _ PageOptions) (Page, error) {
	return b.page, nil
}

func (b *snapshotBrowser) Close() error {
	return nil
}
