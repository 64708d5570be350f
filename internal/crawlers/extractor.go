package crawlers

import (
	"context"
	"fmt"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
)

// DefaultOverFetchFactor 读取的原始条目数为请求数的倍数,用于抵消之后被丢弃的条目
const DefaultOverFetchFactor = 2

// Extractor 从已渲染的页面读取原始条目
type Extractor struct {
	overFetch int
}

// NewExtractor 创建提取器,factor 小于1时使用默认倍数
func NewExtractor(factor int) *Extractor {
	if factor < 1 {
		factor = DefaultOverFetchFactor
	}
	return &Extractor{overFetch: factor}
}

// Extract 按文档顺序读取最多 limit×倍数 个条目
//
// 单个条目失败只会被跳过;没有任何容器时返回空切片而不是错误。
func (x *Extractor) Extract(ctx context.Context, page Page, limit int) ([]models.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrExtractionFailure, err)
	}

	elements, err := page.Elements(ctx, ItemContainerSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: 查询 %q 失败: %w", models.ErrExtractionFailure, ItemContainerSelector, err)
	}

	bound := limit * x.overFetch
	if len(elements) > bound {
		elements = elements[:bound]
	}

	items := make([]models.RawItem, 0, len(elements))
	for i, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrExtractionFailure, err)
		}

		item, err := extractItem(ctx, el)
		if err != nil {
			utils.Warnf("跳过第 %d 个条目: %v", i+1, err)
			continue
		}
		items = append(items, item)
	}

	utils.Debugf("提取条目: 容器=%d, 成功=%d", len(elements), len(items))
	return items, nil
}

// extractItem 读取单个条目的各字段,缺失的子元素得到空字符串
func extractItem(ctx context.Context, el Element) (item models.RawItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("读取条目panic: %v", r)
		}
	}()

	if item.ItemURL, err = el.Href(ctx, TitleLinkSelector); err != nil {
		return item, fmt.Errorf("读取链接失败: %w", err)
	}

	if item.TitleText, err = el.Attr(ctx, TitleLinkSelector, "title"); err != nil {
		return item, fmt.Errorf("读取标题失败: %w", err)
	}
	if item.TitleText == "" {
		if item.TitleText, err = el.Text(ctx, TitleLinkSelector); err != nil {
			return item, fmt.Errorf("读取标题文本失败: %w", err)
		}
	}

	if item.ThumbnailURL, err = el.Attr(ctx, ThumbnailSelector, "src"); err != nil {
		return item, fmt.Errorf("读取缩略图失败: %w", err)
	}

	if item.MetadataText, err = el.Text(ctx, MetadataSelector); err != nil {
		return item, fmt.Errorf("读取元数据失败: %w", err)
	}

	return item, nil
}
