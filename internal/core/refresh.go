package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/robfig/cron/v3"
)

// scheduleParser 支持标准5段表达式和 @every/@daily 等描述符
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule 解析刷新计划表达式
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("刷新计划不能为空")
	}
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("无效的刷新计划 %q: %w", expr, err)
	}
	return sched, nil
}

// Refresher 按计划重新爬取频道并覆盖输出文件
//
// 同一时间最多只有一次爬取在运行,到点时若上一次仍未结束则跳过本次。
// 爬取失败或结果为空时保留旧文件。
type Refresher struct {
	crawler  ChannelCrawler
	reporter *utils.Reporter
	req      models.CrawlRequest
	output   string
	schedule cron.Schedule

	running atomic.Bool
	runs    atomic.Int64
	skipped atomic.Int64
}

// NewRefresher 创建定时刷新器
func NewRefresher(crawler ChannelCrawler, reporter *utils.Reporter, req models.CrawlRequest, output, expr string) (*Refresher, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &Refresher{
		crawler:  crawler,
		reporter: reporter,
		req:      req,
		output:   output,
		schedule: sched,
	}, nil
}

// Next 返回 now 之后的下一次刷新时间
func (r *Refresher) Next(now time.Time) time.Time {
	return r.schedule.Next(now)
}

// Runs 已完成的刷新次数 (含失败)
func (r *Refresher) Runs() int64 { return r.runs.Load() }

// Skipped 因上一次未结束而跳过的次数
func (r *Refresher) Skipped() int64 { return r.skipped.Load() }

// RunOnce 执行一次刷新,上一次仍在运行时直接返回 false
func (r *Refresher) RunOnce(ctx context.Context) (bool, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.skipped.Add(1)
		utils.Warnf("⏭️  上一次刷新仍在进行,跳过本次: %s", r.req.TargetURL)
		return false, nil
	}
	defer r.running.Store(false)
	defer r.runs.Add(1)

	started := time.Now()
	result, err := r.crawler.Crawl(ctx, r.req)
	report := models.NewCrawlReport(r.req, result, err, started)
	defer func() {
		if _, werr := r.reporter.WriteReport(report); werr != nil {
			utils.Warnf("保存报告失败: %v", werr)
		}
	}()

	if err != nil {
		return true, fmt.Errorf("刷新失败,保留旧文件 %s: %w", r.output, err)
	}
	if len(result.Videos) == 0 {
		utils.Warnf("⚠️ 刷新未获取到视频,保留旧文件: %s", r.output)
		return true, nil
	}
	if err := r.reporter.WriteVideos(r.output, result.Videos); err != nil {
		return true, fmt.Errorf("写入刷新结果失败: %w", err)
	}
	report.Output = r.output

	utils.Infof("✅ 已刷新 %d 个视频 -> %s (下次: %s)", len(result.Videos), r.output,
		r.Next(time.Now()).Format(time.RFC3339))
	return true, nil
}

// Run 启动调度直到 ctx 结束,immediate 为 true 时先执行一次
func (r *Refresher) Run(ctx context.Context, immediate bool) error {
	logger := cronLogger{}
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	c.Schedule(r.schedule, cron.FuncJob(func() {
		if _, err := r.RunOnce(ctx); err != nil {
			utils.Errorf("❌ %v", err)
		}
	}))

	utils.Infof("🕒 定时刷新已启动: %s, 下次运行 %s", r.req.TargetURL, r.Next(time.Now()).Format(time.RFC3339))
	c.Start()

	if immediate {
		if _, err := r.RunOnce(ctx); err != nil {
			utils.Errorf("❌ %v", err)
		}
	}

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()

	utils.Infof("定时刷新已停止: 共运行%d次,跳过%d次", r.Runs(), r.Skipped())
	return nil
}

// cronLogger 将 cron 的日志写入 zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	utils.Logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	utils.Logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
