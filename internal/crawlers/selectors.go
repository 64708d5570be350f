package crawlers

// 频道页面的DOM选择器
//
// 页面结构变化时只需修改这里;容器选择器失效会以 SelectorNotFound 报出。
const (
	// ItemContainerSelector 单个视频条目
	ItemContainerSelector = "ytd-rich-item-renderer"

	// TitleLinkSelector 条目内的标题链接,带 href 和 title 属性
	TitleLinkSelector = "#video-title-link"

	// ThumbnailSelector 条目内的缩略图
	ThumbnailSelector = "img"

	// MetadataSelector 元数据行中的文本,第一个为播放量
	MetadataSelector = "#metadata-line span"
)
