package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/normalize"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/rs/zerolog"
)

// State 一次爬取所处的阶段
type State string

const (
	StateIdle        State = "Idle"
	StateLaunching   State = "Launching"
	StateNavigating  State = "Navigating"
	StateExpanding   State = "Expanding"
	StateExtracting  State = "Extracting"
	StateNormalizing State = "Normalizing"
	StateDone        State = "Done"
	StateFailed      State = "Failed"
)

// fallbackKind 错误链中没有可识别的哨兵时 (例如浏览器崩溃) 按阶段归类
func (s State) fallbackKind() models.ErrorKind {
	switch s {
	case StateIdle:
		return models.KindInvalidRequest
	case StateLaunching:
		return models.KindBrowserLaunchFailure
	case StateNavigating:
		return models.KindNavigationTimeout
	case StateNormalizing:
		return models.KindExtractionEmpty
	default:
		return models.KindExtractionFailure
	}
}

// CrawlerOptions 爬取器依赖和参数
type CrawlerOptions struct {
	Launcher        crawlers.Launcher
	Page            crawlers.PageOptions
	Navigation      crawlers.NavigationOptions
	Scroll          crawlers.ScrollOptions
	OverFetchFactor int
	HostFragment    string
}

// Crawler 频道爬取协调器
//
// 创建后不可变,可被多个goroutine同时使用;每次 Crawl 独占一个浏览器会话。
type Crawler struct {
	launcher     crawlers.Launcher
	pageOptions  crawlers.PageOptions
	navigator    *crawlers.Navigator
	scroller     *crawlers.ScrollDriver
	extractor    *crawlers.Extractor
	hostFragment string
}

// NewCrawler 创建爬取器
func NewCrawler(opts CrawlerOptions) *Crawler {
	return &Crawler{
		launcher:     opts.Launcher,
		pageOptions:  opts.Page,
		navigator:    crawlers.NewNavigator(opts.Navigation),
		scroller:     crawlers.NewScrollDriver(opts.Scroll),
		extractor:    crawlers.NewExtractor(opts.OverFetchFactor),
		hostFragment: opts.HostFragment,
	}
}

// NewCrawlerFromConfig 根据配置创建爬取器
func NewCrawlerFromConfig(cfg *Config, launcher crawlers.Launcher, page crawlers.PageOptions) *Crawler {
	return NewCrawler(CrawlerOptions{
		Launcher:        launcher,
		Page:            page,
		Navigation:      cfg.NavigationOptions(),
		Scroll:          cfg.ScrollOptions(),
		OverFetchFactor: cfg.Extract.OverFetchFactor,
		HostFragment:    cfg.Crawl.HostFragment,
	})
}

// Crawl 执行一次频道爬取
//
// 执行流程:
//  1. 校验请求 (不启动浏览器)
//  2. 启动浏览器并打开页面
//  3. 导航并等待视频容器出现
//  4. 滚动触发懒加载
//  5. 提取原始条目
//  6. 规范化、去重并截断到 MaxResults
//
// 任何路径都会释放浏览器;失败时返回 *models.CrawlError,不返回部分结果。
func (c *Crawler) Crawl(ctx context.Context, req models.CrawlRequest) (*models.CrawlResult, error) {
	req = req.WithDefaults()
	runID := models.NewRunID()
	logger := utils.With(map[string]string{"run_id": runID, "url": req.TargetURL})

	if err := req.Validate(c.hostFragment); err != nil {
		return nil, c.fail(logger, StateIdle, req, runID, err)
	}

	started := time.Now()
	logger.Info().Int("max_results", req.MaxResults).Msg("🚀 开始爬取频道")

	state := StateLaunching
	var raw []models.RawItem

	err := crawlers.WithSession(ctx, c.launcher, c.pageOptions, func(s *crawlers.Session) error {
		page := s.Page()

		state = StateNavigating
		logger.Debug().Str("state", string(state)).Msg("导航到频道页面")
		if err := c.navigator.Navigate(ctx, page, req.TargetURL); err != nil {
			return err
		}

		state = StateExpanding
		stats := c.scroller.ExpandContent(ctx, page)
		logger.Debug().
			Str("state", string(state)).
			Int("steps", stats.Steps).
			Int("distance", stats.Distance).
			Int("height", stats.FinalHeight).
			Str("stop", stats.StopReason).
			Msg("滚动完成")

		state = StateExtracting
		items, err := c.extractor.Extract(ctx, page, req.MaxResults)
		if err != nil {
			return err
		}
		raw = items
		return nil
	})
	if err != nil {
		return nil, c.fail(logger, state, req, runID, err)
	}

	state = StateNormalizing
	videos, dropped, duplicates := collect(raw, req.MaxResults)
	if len(videos) == 0 {
		logger.Warn().Int("raw", len(raw)).Msg("⚠️ 未找到视频,页面结构可能已变化")
	}
	if req.MinResults > 0 && len(videos) < req.MinResults {
		err := fmt.Errorf("%w: 需要至少%d条,实际%d条", models.ErrExtractionEmpty, req.MinResults, len(videos))
		return nil, c.fail(logger, state, req, runID, err)
	}

	result := &models.CrawlResult{
		RunID:      runID,
		TargetURL:  req.TargetURL,
		Videos:     videos,
		RawCount:   len(raw),
		Dropped:    dropped,
		Duplicates: duplicates,
		StartedAt:  started,
		Duration:   time.Since(started),
	}

	logger.Info().
		Str("state", string(StateDone)).
		Int("raw", result.RawCount).
		Int("kept", len(videos)).
		Int("dropped", dropped).
		Int("duplicates", duplicates).
		Dur("duration", result.Duration).
		Msg("✅ 爬取完成")

	return result, nil
}

// fail 归类错误并记录失败日志
func (c *Crawler) fail(logger zerolog.Logger, state State, req models.CrawlRequest, runID string, err error) error {
	kind := models.Classify(err, state.fallbackKind())
	logger.Error().
		Err(err).
		Str("state", string(StateFailed)).
		Str("failed_in", string(state)).
		Str("kind", string(kind)).
		Msg("❌ 爬取失败")

	return &models.CrawlError{
		Kind:  kind,
		State: string(state),
		URL:   req.TargetURL,
		RunID: runID,
		Err:   err,
	}
}

// collect 规范化原始条目,丢弃无效记录,按页面顺序去重并截断到 limit
func collect(raw []models.RawItem, limit int) (videos []models.VideoRecord, dropped, duplicates int) {
	videos = make([]models.VideoRecord, 0, min(len(raw), limit))
	seen := make(map[string]struct{}, len(raw))

	for _, item := range raw {
		if len(videos) >= limit {
			break
		}
		rec := normalize.Record(item)
		if !rec.Valid() {
			dropped++
			continue
		}
		if _, ok := seen[rec.ID]; ok {
			duplicates++
			continue
		}
		seen[rec.ID] = struct{}{}
		videos = append(videos, rec)
	}
	return videos, dropped, duplicates
}
