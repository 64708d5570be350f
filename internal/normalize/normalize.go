// Package normalize 将DOM中读取的原始条目转换为规范化的视频记录
//
// 包内函数均为纯函数,不做任何I/O,可被并发调用。
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
)

const (
	thumbnailTemplate = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
	watchURLPrefix    = "https://www.youtube.com/watch?v="
)

var (
	watchIDPattern = regexp.MustCompile(`/watch\?v=([^&]+)`)

	// 宽松匹配: 任意位置的 v= 参数、短链接、嵌入链接
	looseIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[?&]v=([^&#]+)`),
		regexp.MustCompile(`youtu\.be/([^?&#/]+)`),
		regexp.MustCompile(`youtube\.com/embed/([^?&#/]+)`),
	}
)

// ExtractID 从观看链接中提取视频ID,无匹配时返回空字符串
func ExtractID(rawURL string) string {
	m := watchIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractIDLoose 兼容 watch、youtu.be 和 embed 三种链接格式
func ExtractIDLoose(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	for _, p := range looseIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// CanonicalThumbnail 根据ID生成高清缩略图地址,ID为空时返回空字符串
func CanonicalThumbnail(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(thumbnailTemplate, id)
}

// CanonicalWatchURL 根据ID生成观看地址,ID为空时返回空字符串
func CanonicalWatchURL(id string) string {
	if id == "" {
		return ""
	}
	return watchURLPrefix + id
}

// Record 将一个原始条目规范化为视频记录
//
// ID无法提取时返回的记录 ID 为空,由调用方丢弃。
func Record(raw models.RawItem) models.VideoRecord {
	id := ExtractID(raw.ItemURL)

	thumb := CanonicalThumbnail(id)
	if thumb == "" {
		thumb = strings.TrimSpace(raw.ThumbnailURL)
	}

	var views string
	if strings.TrimSpace(raw.MetadataText) != "" {
		views = FormatViewCount(raw.MetadataText)
	}

	return models.VideoRecord{
		ID:           id,
		Title:        strings.TrimSpace(DecodeEntities(raw.TitleText)),
		ThumbnailURL: thumb,
		URL:          CanonicalWatchURL(id),
		Views:        views,
	}
}

// FromID 仅凭ID构造记录,标题为 models.PlaceholderTitle,由调用方替换
func FromID(id string) models.VideoRecord {
	return models.VideoRecord{
		ID:           id,
		Title:        models.PlaceholderTitle,
		ThumbnailURL: CanonicalThumbnail(id),
		URL:          CanonicalWatchURL(id),
	}
}

// FromURLs 将任意格式的视频链接转换为记录,按首次出现去重
//
// 无法识别的链接按原样返回在 invalid 中。
func FromURLs(urls []string) (records []models.VideoRecord, invalid []string) {
	records = make([]models.VideoRecord, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		id := ExtractIDLoose(u)
		if id == "" {
			invalid = append(invalid, u)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		records = append(records, FromID(id))
	}
	return records, invalid
}
