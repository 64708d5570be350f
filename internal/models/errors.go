package models

import (
	"errors"
	"fmt"
)

// ErrorKind 爬取失败类别
type ErrorKind string

const (
	KindInvalidRequest       ErrorKind = "InvalidRequest"
	KindBrowserLaunchFailure ErrorKind = "BrowserLaunchFailure"
	KindNavigationTimeout    ErrorKind = "NavigationTimeout"
	KindSelectorNotFound     ErrorKind = "SelectorNotFound"
	KindExtractionEmpty      ErrorKind = "ExtractionEmpty"
	KindExtractionFailure    ErrorKind = "ExtractionFailure"
)

// 哨兵错误,供 errors.Is 判断类别
var (
	ErrInvalidRequest    = errors.New("无效的爬取请求")
	ErrBrowserLaunch     = errors.New("浏览器启动失败")
	ErrNavigationTimeout = errors.New("页面加载超时")
	ErrSelectorNotFound  = errors.New("未找到视频容器元素")
	ErrExtractionEmpty   = errors.New("提取结果不足")
	ErrExtractionFailure = errors.New("DOM提取失败")
	ErrBrowserCrashed    = errors.New("浏览器崩溃")
)

var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{KindInvalidRequest, ErrInvalidRequest},
	{KindBrowserLaunchFailure, ErrBrowserLaunch},
	{KindNavigationTimeout, ErrNavigationTimeout},
	{KindSelectorNotFound, ErrSelectorNotFound},
	{KindExtractionEmpty, ErrExtractionEmpty},
	{KindExtractionFailure, ErrExtractionFailure},
}

// Sentinel 返回类别对应的哨兵错误
func (k ErrorKind) Sentinel() error {
	for _, s := range kindSentinels {
		if s.kind == k {
			return s.err
		}
	}
	return nil
}

// Classify 根据错误链中的哨兵确定类别,找不到时返回 fallback
func Classify(err error, fallback ErrorKind) ErrorKind {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return fallback
}

// CrawlError 带类别和所处状态的爬取错误
type CrawlError struct {
	Kind  ErrorKind
	State string
	URL   string
	RunID string
	Err   error
}

// Error 实现error接口
func (e *CrawlError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s [%s]", e.Kind, e.URL)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Kind, e.URL, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrSelectorNotFound) 等判断按类别生效
func (e *CrawlError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && s == target
}

// KindOf 返回错误的类别,非 CrawlError 返回空字符串
func KindOf(err error) ErrorKind {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
