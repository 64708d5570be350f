package normalize

import (
	"testing"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"带时间参数", "https://site/watch?v=abc123&t=5", "abc123"},
		{"标准链接", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"相对链接", "/watch?v=xyz", "xyz"},
		{"缺少v参数", "https://site/watch", ""},
		{"短视频链接", "https://www.youtube.com/shorts/abc", ""},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractID(tt.url))
		})
	}
}

func TestExtractIDLoose(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"标准链接", "https://www.youtube.com/watch?v=abc&list=PL1", "abc"},
		{"v参数不在首位", "https://www.youtube.com/watch?feature=share&v=def", "def"},
		{"短链接", "https://youtu.be/ghi?si=xyz", "ghi"},
		{"嵌入链接", "https://www.youtube.com/embed/jkl?start=10", "jkl"},
		{"首尾空白", "  https://youtu.be/mno  ", "mno"},
		{"无效链接", "https://example.com/video", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIDLoose(tt.url))
		})
	}
}

func TestCanonicalURLs(t *testing.T) {
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", CanonicalThumbnail("abc"))
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", CanonicalWatchURL("abc"))
	assert.Empty(t, CanonicalThumbnail(""))
	assert.Empty(t, CanonicalWatchURL(""))
}

func TestFormatViewCount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1,234,567 views", "1.2M"},
		{"850 views", "850"},
		{"", "0"},
		{"No views", "0"},
		{"1.2M views", "1.2M"},
		{"15K views", "15K"},
		{"3B views", "3B"},
		{"1,500 views", "1.5K"},
		{"1000", "1.0K"},
		{"999", "999"},
		{"2,000,000", "2.0M"},
		{"1,250 views", "1.3K"},
		{"1,750 views", "1.8K"},
		{"2,250 views", "2.3K"},
		{"1,250,000 views", "1.3M"},
		{"1,150 views", "1.1K"},
		{"1,050 views", "1.1K"},
		{"1,450 views", "1.4K"},
		{"1,150,000 views", "1.1M"},
		{"999,950 views", "1000.0K"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatViewCount(tt.raw))
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"It&#8217;s great &amp; fun", "It's great & fun"},
		{"&#8220;Quoted&#8221;", `"Quoted"`},
		{"a &#8211; b &#8212; c", "a – b — c"},
		{"Wait&#8230;", "Wait..."},
		{"&lt;tag&gt;", "<tag>"},
		{"a&nbsp;b", "a b"},
		{"&#39;single&#8216;", "'single'"},
		{"&quot;q&quot;", `"q"`},
		{"plain text", "plain text"},
		{"&amp;lt;", "&lt;"},
		{"&copy; untouched", "&copy; untouched"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeEntities(tt.in))
		})
	}
}

func TestRecord(t *testing.T) {
	t.Run("完整条目", func(t *testing.T) {
		rec := Record(models.RawItem{
			ItemURL:      "https://www.youtube.com/watch?v=abc&pp=1",
			TitleText:    "  Tom &amp; Jerry  ",
			ThumbnailURL: "https://i.ytimg.com/vi/abc/hqdefault.jpg",
			MetadataText: "12,345 views",
		})
		assert.Equal(t, models.VideoRecord{
			ID:           "abc",
			Title:        "Tom & Jerry",
			ThumbnailURL: "https://img.youtube.com/vi/abc/maxresdefault.jpg",
			URL:          "https://www.youtube.com/watch?v=abc",
			Views:        "12.3K",
		}, rec)
		assert.True(t, rec.Valid())
	})

	t.Run("缺少ID时使用原始缩略图", func(t *testing.T) {
		rec := Record(models.RawItem{
			ItemURL:      "https://www.youtube.com/shorts/xyz",
			TitleText:    "Short",
			ThumbnailURL: "https://i.ytimg.com/vi/xyz/hq.jpg",
		})
		assert.Empty(t, rec.ID)
		assert.Empty(t, rec.URL)
		assert.Equal(t, "https://i.ytimg.com/vi/xyz/hq.jpg", rec.ThumbnailURL)
		assert.False(t, rec.Valid())
	})

	t.Run("没有元数据时省略播放量", func(t *testing.T) {
		rec := Record(models.RawItem{ItemURL: "/watch?v=q", TitleText: "t", MetadataText: "  "})
		assert.Empty(t, rec.Views)
	})
}

func TestFromID(t *testing.T) {
	rec := FromID("abc")
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", rec.URL)
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", rec.ThumbnailURL)
	assert.Equal(t, models.PlaceholderTitle, rec.Title)
	assert.True(t, rec.Valid())
}

func TestFromURLs(t *testing.T) {
	records, invalid := FromURLs([]string{
		"https://www.youtube.com/watch?v=abc&t=10",
		"https://youtu.be/def?si=x",
		"https://www.youtube.com/embed/ghi",
		"https://youtu.be/abc",
		"https://example.com/video",
	})

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
		assert.True(t, r.Valid(), "记录 %s 应包含ID、标题和链接", r.ID)
	}
	assert.Equal(t, []string{"abc", "def", "ghi"}, ids)
	assert.Equal(t, []string{"https://example.com/video"}, invalid)
}
