package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

// MetadataFetcherConfig 静态元数据抓取配置
type MetadataFetcherConfig struct {
	BaseURL     string // 默认 https://www.youtube.com
	Timeout     time.Duration
	Parallelism int
	UserAgent   string
	Headers     models.HeaderProvider
}

// MetadataFetcher 不启动浏览器,通过观看页的 og:title 获取视频标题
type MetadataFetcher struct {
	config MetadataFetcherConfig
}

// NewMetadataFetcher 创建元数据抓取器
func NewMetadataFetcher(config MetadataFetcherConfig) *MetadataFetcher {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.youtube.com"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.Parallelism < 1 {
		config.Parallelism = 2
	}
	return &MetadataFetcher{config: config}
}

// FetchTitles 并发抓取每个ID的标题,onDone 在每个请求结束时调用(可为nil)
//
// 单个ID失败只记录日志,结果中不包含该ID。
func (f *MetadataFetcher) FetchTitles(ctx context.Context, ids []string, onDone func()) (map[string]string, error) {
	c := colly.NewCollector(
		colly.Async(true),
		colly.AllowURLRevisit(),
	)
	c.SetClient(&http.Client{Timeout: f.config.Timeout})
	c.SetRequestTimeout(f.config.Timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: f.config.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("设置并发限制失败: %w", err)
	}

	var extra http.Header
	if f.config.Headers != nil {
		h, err := f.config.Headers.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		extra = h
	}

	var (
		mu     sync.Mutex
		titles = make(map[string]string, len(ids))
	)
	done := func() {
		if onDone != nil {
			onDone()
		}
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			done()
			return
		}
		for name, values := range extra {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
		if f.config.UserAgent != "" {
			r.Headers.Set("User-Agent", f.config.UserAgent)
		}
		r.Headers.Set("Accept-Encoding", "gzip, deflate, br")
		utils.Debugf("请求元数据: %s", r.URL)
	})

	c.OnResponse(func(r *colly.Response) {
		defer done()
		id := r.Request.URL.Query().Get("v")

		body := r.Body
		if enc := r.Headers.Get("Content-Encoding"); enc != "" {
			if decoded, err := decompressResponse(enc, r.Body); err != nil {
				utils.Debugf("解压响应失败 [%s] (编码=%s),使用原始内容: %v", r.Request.URL, enc, err)
			} else {
				body = decoded
			}
		}

		title, err := parseTitle(body)
		if err != nil || title == "" {
			utils.Warnf("未找到标题 [%s]: %v", id, err)
			return
		}
		mu.Lock()
		titles[id] = title
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		defer done()
		utils.Warnf("抓取元数据失败 [%s]: %v", r.Request.URL, err)
	})

	for _, id := range ids {
		if err := c.Visit(f.config.BaseURL + "/watch?v=" + id); err != nil {
			utils.Warnf("无法请求 %s: %v", id, err)
			done()
		}
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return titles, err
	}
	return titles, nil
}

// parseTitle 优先读取 og:title,其次读取 <title> 并去掉站点后缀
func parseTitle(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("解析HTML失败: %w", err)
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og), nil
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.TrimSpace(strings.TrimSuffix(title, "- YouTube")), nil
}

// decompressResponse 根据Content-Encoding解压响应体,支持 gzip, deflate, br
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	var reader io.Reader
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(body))
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(bytes.NewReader(body))
	case "", "identity":
		return body, nil
	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", contentEncoding, err)
	}
	return decompressed, nil
}
