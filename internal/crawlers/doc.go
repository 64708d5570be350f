// Package crawlers 提供频道页面爬取所需的浏览器会话、导航、滚动和DOM提取
//
// # 概述
//
// 所有组件都只依赖 Page 和 Element 这两个窄接口。真实浏览器实现基于 go-rod,
// 离线快照实现基于 goquery,测试中可以替换为任意伪实现。
//
// # 核心组件
//
// ## Session (会话)
//
// Launcher 是唯一会创建浏览器进程的组件。WithSession 保证在成功、出错、
// 超时和panic时都只释放一次会话:
//
//	err := WithSession(ctx, NewRodLauncher(cfg), PageOptions{UserAgent: ua}, func(s *Session) error {
//	    return navigator.Navigate(ctx, s.Page(), url)
//	})
//
// ## Navigator (导航器)
//
// 加载页面后依次等待网络空闲和视频容器出现,两者都有独立的硬时限,
// 分别对应 ErrNavigationTimeout 和 ErrSelectorNotFound。
//
// ## ScrollDriver (滚动驱动器)
//
// 每隔 Interval 向下滚动 Step 像素,到达底部且高度不再增长或累计距离达到
// MaxDistance 时停止,然后等待 Settle。滚动从不使爬取失败。
//
// ## Extractor (提取器)
//
// 按文档顺序读取最多 limit×倍数 个条目,单个条目失败只跳过该条目。
// 所有选择器集中定义在 selectors.go。
//
// ## MetadataFetcher (元数据抓取器)
//
// 基于 Colly 的静态抓取,不启动浏览器,按视频ID读取观看页的标题。
//
// ## ResourceMonitor (资源监控器)
//
// 启动浏览器前检查可用内存,低于下限时拒绝启动。
package crawlers
