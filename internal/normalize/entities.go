package normalize

import "strings"

// entityReplacer 固定的字符引用替换表,不是通用的HTML解码器
var entityReplacer = strings.NewReplacer(
	"&#8217;", "'",
	"&#8216;", "'",
	"&#39;", "'",
	"&#8211;", "–",
	"&#8212;", "—",
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&quot;", `"`,
	"&#8230;", "...",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
)

// DecodeEntities 替换常见的字符引用
func DecodeEntities(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return entityReplacer.Replace(text)
}
