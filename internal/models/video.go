package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaxResults 默认返回的视频数量上限
	DefaultMaxResults = 5

	// DefaultHostFragment 目标URL必须包含的主机片段
	DefaultHostFragment = "youtube.com"

	// PlaceholderTitle 无法获得标题时写入记录的占位标题
	PlaceholderTitle = "Your Video Title Here"
)

// CrawlRequest 单次频道爬取请求
type CrawlRequest struct {
	// TargetURL 频道视频列表页的绝对URL
	TargetURL string `json:"target_url"`

	// MaxResults 最终结果数量上限 (0 表示使用默认值)
	MaxResults int `json:"max_results"`

	// MinResults 调用方要求的最少结果数,不足时返回 ExtractionEmpty (0 表示不要求)
	MinResults int `json:"min_results,omitempty"`
}

// WithDefaults 返回填充默认值后的请求副本
func (r CrawlRequest) WithDefaults() CrawlRequest {
	r.TargetURL = strings.TrimSpace(r.TargetURL)
	if r.MaxResults == 0 {
		r.MaxResults = DefaultMaxResults
	}
	return r
}

// Validate 校验请求,失败时返回包装了 ErrInvalidRequest 的错误
func (r CrawlRequest) Validate(hostFragment string) error {
	if err := ValidateURL(r.TargetURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if hostFragment != "" && !strings.Contains(r.TargetURL, hostFragment) {
		return fmt.Errorf("%w: URL必须包含 %q", ErrInvalidRequest, hostFragment)
	}
	if r.MaxResults <= 0 {
		return fmt.Errorf("%w: 结果数量必须为正整数,当前值: %d", ErrInvalidRequest, r.MaxResults)
	}
	if r.MinResults < 0 || r.MinResults > r.MaxResults {
		return fmt.Errorf("%w: 最少结果数必须在0-%d之间,当前值: %d", ErrInvalidRequest, r.MaxResults, r.MinResults)
	}
	return nil
}

// RawItem 从DOM中读取的原始条目,只在一次爬取内部存在
type RawItem struct {
	ItemURL      string
	TitleText    string
	ThumbnailURL string
	MetadataText string
}

// VideoRecord 规范化后的视频记录
type VideoRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	URL          string `json:"url"`
	Views        string `json:"views,omitempty"`
}

// Valid 记录是否满足输出要求 (id/title/url 均非空)
func (v VideoRecord) Valid() bool {
	return v.ID != "" && v.Title != "" && v.URL != ""
}

// CrawlResult 一次成功爬取的结果
type CrawlResult struct {
	RunID     string        `json:"run_id"`
	TargetURL string        `json:"target_url"`
	Videos    []VideoRecord `json:"videos"`

	// 统计信息
	RawCount   int           `json:"raw_count"`
	Dropped    int           `json:"dropped"`
	Duplicates int           `json:"duplicates"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// IDs 按顺序返回结果中的视频ID
func (r *CrawlResult) IDs() []string {
	ids := make([]string, 0, len(r.Videos))
	for _, v := range r.Videos {
		ids = append(ids, v.ID)
	}
	return ids
}
