package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	mainLogName  = "channel_crawler.log"
	errorLogName = "channel_crawler_error.log"
)

// Logger 全局日志器,InitLogger 之前不输出任何内容
var Logger = zerolog.Nop()

// LogConfig 日志配置,由 core.Config.LogConfig 生成
type LogConfig struct {
	Level      string
	LogDir     string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
	Console    io.Writer // 为空时写 stderr
}

// rotating 在日志目录下创建按大小轮转的文件
func (c LogConfig) rotating(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(c.LogDir, name),
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// InitLogger 初始化日志: 控制台 + 主日志 + 只含 error 以上级别的错误日志
//
// 级别无法解析时使用 info。
func InitLogger(config LogConfig) error {
	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := config.Console
	if console == nil {
		console = os.Stderr
	}

	writer := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339, NoColor: config.Console != nil},
		config.rotating(mainLogName),
		levelFilter{out: config.rotating(errorLogName), min: zerolog.ErrorLevel},
	)

	Logger = zerolog.New(writer).With().Timestamp().Logger()
	Logger.Debug().Str("level", level.String()).Str("log_dir", config.LogDir).Msg("日志系统初始化完成")
	return nil
}

// levelFilter 只放行 min 及以上级别的日志
type levelFilter struct {
	out io.Writer
	min zerolog.Level
}

// Write 无级别的写入一律丢弃
func (f levelFilter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level == zerolog.NoLevel || level < f.min {
		return len(p), nil
	}
	return f.out.Write(p)
}

// With 返回带有固定字段的子日志器,爬取时用于附加 run_id 和 url
func With(fields map[string]string) zerolog.Logger {
	ctx := Logger.With()
	for k, v := range fields {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}

func Info(msg string) { Logger.Info().Msg(msg) }

func Infof(format string, args ...any) { Logger.Info().Msgf(format, args...) }

func Warn(msg string) { Logger.Warn().Msg(msg) }

func Warnf(format string, args ...any) { Logger.Warn().Msgf(format, args...) }

func Errorf(format string, args ...any) { Logger.Error().Msgf(format, args...) }

func Debugf(format string, args ...any) { Logger.Debug().Msgf(format, args...) }
