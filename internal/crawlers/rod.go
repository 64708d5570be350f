package crawlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// 长连接类请求不计入网络空闲判断
var idleExcludedTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeWebSocket,
	proto.NetworkResourceTypeEventSource,
	proto.NetworkResourceTypeMedia,
}

// RodLauncherConfig 浏览器启动配置
type RodLauncherConfig struct {
	Headless bool
	Bin      string // 为空时由 launcher 查找或下载
	Monitor  *ResourceMonitor
}

// RodLauncher 基于 go-rod 启动无头 Chromium
type RodLauncher struct {
	config RodLauncherConfig
}

// NewRodLauncher 创建启动器
func NewRodLauncher(config RodLauncherConfig) *RodLauncher {
	return &RodLauncher{config: config}
}

// DefaultBrowserRevision 未指定 browser.bin 时 launcher 下载的 Chromium 版本
func DefaultBrowserRevision() int {
	return launcher.RevisionDefault
}

// LookupBrowser 返回本机可用的浏览器路径
func LookupBrowser() (string, bool) {
	return launcher.LookPath()
}

// Launch 以固定的沙箱参数启动浏览器
func (r *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	if r.config.Monitor != nil {
		if err := r.config.Monitor.CheckLaunch(); err != nil {
			return nil, err
		}
	}

	l := launcher.New().
		Context(ctx).
		Headless(r.config.Headless).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if r.config.Bin != "" {
		l = l.Bin(r.config.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	utils.Debugf("浏览器已启动: %s", controlURL)
	return &rodBrowser{browser: browser, launcher: l}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (b *rodBrowser) NewPage(ctx context.Context, opts PageOptions) (Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if opts.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, err
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("设置User-Agent失败: %w", err)
		}
	}

	if len(opts.Headers) > 0 {
		headers := make(proto.NetworkHeaders, len(opts.Headers))
		for name, value := range opts.Headers {
			headers[name] = gson.New(value)
		}
		page.EnableDomain(&proto.NetworkEnable{})
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: headers}).Call(page); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("设置HTTP头部失败: %w", err)
		}
	}

	return &rodPage{page: page}, nil
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string, idle time.Duration) error {
	page := p.page.Context(ctx)

	// 必须在导航之前注册,否则会错过首批请求
	waitIdle := page.WaitRequestIdle(idle, nil, nil, idleExcludedTypes)
	if err := page.Navigate(url); err != nil {
		return err
	}
	waitIdle()
	return ctx.Err()
}

func (p *rodPage) WaitSelector(ctx context.Context, selector string) error {
	_, err := p.page.Context(ctx).Element(selector)
	return err
}

func (p *rodPage) ScrollBy(ctx context.Context, dy int) error {
	_, err := p.page.Context(ctx).Eval(`(dy) => window.scrollBy(0, dy)`, dy)
	return err
}

func (p *rodPage) ScrollHeight(ctx context.Context) (int, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) Elements(ctx context.Context, selector string) ([]Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodElement struct {
	el *rod.Element
}

// target 返回 selector 对应的子元素,不存在时返回 nil
func (e *rodElement) target(ctx context.Context, selector string) (*rod.Element, error) {
	el := e.el.Context(ctx)
	if selector == "" {
		return el, nil
	}
	has, child, err := el.Has(selector)
	if err != nil || !has {
		return nil, err
	}
	return child, nil
}

func (e *rodElement) Href(ctx context.Context, selector string) (string, error) {
	t, err := e.target(ctx, selector)
	if err != nil || t == nil {
		return "", err
	}
	// href 属性(property)已由浏览器解析为绝对地址
	v, err := t.Property("href")
	if err != nil || v.Nil() {
		return "", err
	}
	return v.Str(), nil
}

func (e *rodElement) Attr(ctx context.Context, selector, name string) (string, error) {
	t, err := e.target(ctx, selector)
	if err != nil || t == nil {
		return "", err
	}
	v, err := t.Attribute(name)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (e *rodElement) Text(ctx context.Context, selector string) (string, error) {
	t, err := e.target(ctx, selector)
	if err != nil || t == nil {
		return "", err
	}
	text, err := t.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
