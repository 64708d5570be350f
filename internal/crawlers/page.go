package crawlers

import (
	"context"
	"time"
)

// Page 一次爬取所使用的页面能力
//
// 实现包括基于 go-rod 的真实浏览器页面和基于 goquery 的静态快照页面。
type Page interface {
	// Navigate 发起加载并等待网络空闲 idle 时长,受 ctx 截止时间约束
	Navigate(ctx context.Context, url string, idle time.Duration) error

	// WaitSelector 等待选择器对应的元素出现
	WaitSelector(ctx context.Context, selector string) error

	// ScrollBy 将视口向下滚动 dy 像素
	ScrollBy(ctx context.Context, dy int) error

	// ScrollHeight 返回当前文档的可滚动高度
	ScrollHeight(ctx context.Context) (int, error)

	// Elements 按文档顺序返回匹配的元素,不等待
	Elements(ctx context.Context, selector string) ([]Element, error)

	Close() error
}

// Element 页面中的单个元素
//
// selector 为空时作用于元素自身;子元素不存在时返回空字符串而不是错误。
type Element interface {
	// Href 返回链接的绝对地址
	Href(ctx context.Context, selector string) (string, error)

	// Attr 返回属性值
	Attr(ctx context.Context, selector, name string) (string, error)

	// Text 返回去除首尾空白的文本内容
	Text(ctx context.Context, selector string) (string, error)
}
