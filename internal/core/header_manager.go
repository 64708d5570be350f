package core

import (
	"net/http"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/RecoveryAshes/ChannelCrawl/internal/models"
	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent,模拟桌面版Chrome
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// HeaderManager 管理HTTP请求头部的生命周期
// 实现 HeaderProvider 接口
type HeaderManager struct {
	// defaults 系统默认头部 (硬编码)
	defaults http.Header

	// config 来自配置文件 headers 段的头部
	config http.Header

	// cli 从命令行参数解析的头部
	cli http.Header

	validator *utils.HeaderValidator
	redactor  *utils.HeaderRedactor
}

// NewHeaderManager 创建头部管理器
// 参数:
//   - userAgent: 默认User-Agent (为空时使用 DefaultUserAgent)
//   - configHeaders: 配置文件中的头部
//   - cliHeaders: 命令行传递的头部字符串列表 ("Name: Value")
//
// 命令行参数格式错误时返回错误
func NewHeaderManager(userAgent string, configHeaders map[string]string, cliHeaders []string) (*HeaderManager, error) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	hm := &HeaderManager{
		defaults:  getDefaultHeaders(userAgent),
		config:    make(http.Header),
		cli:       make(http.Header),
		validator: utils.NewHeaderValidator(),
		redactor:  utils.NewHeaderRedactor(),
	}

	for name, value := range configHeaders {
		hm.config.Set(name, value)
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	}

	if len(hm.config) > 0 {
		utils.Debugf("已加载%d个配置文件头部: %v", len(hm.config), hm.redactor.Redact(hm.config))
	}

	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
func getDefaultHeaders(userAgent string) http.Header {
	return http.Header{
		"User-Agent":      []string{userAgent},
		"Accept-Language": []string{"en-US,en;q=0.9"},
	}
}

// Validate 验证所有头部的合法性
// 验证顺序: 默认 → 配置 → 命令行
func (hm *HeaderManager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		utils.Errorf("默认头部验证失败: %v", err)
		return err
	}
	if err := hm.validator.Validate(hm.config); err != nil {
		utils.Errorf("配置文件头部验证失败: %v", err)
		return err
	}
	if err := hm.validator.Validate(hm.cli); err != nil {
		utils.Errorf("命令行头部验证失败: %v", err)
		return err
	}

	utils.Debugf("所有HTTP头部验证通过")
	return nil
}

// GetMergedHeaders 按优先级合并头部 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// UserAgent 返回合并后生效的User-Agent
func (hm *HeaderManager) UserAgent() string {
	return hm.GetMergedHeaders().Get("User-Agent")
}

// GetHeaders 实现 HeaderProvider 接口
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.GetMergedHeaders(), nil
}

// PageOptions 返回浏览器页面使用的头部设置,User-Agent 单独传递
func (hm *HeaderManager) PageOptions(stealth bool) (crawlers.PageOptions, error) {
	headers, err := hm.GetHeaders()
	if err != nil {
		return crawlers.PageOptions{}, err
	}
	return crawlers.PageOptions{
		UserAgent: headers.Get("User-Agent"),
		Headers:   models.FlattenHeaders(headers),
		Stealth:   stealth,
	}, nil
}
