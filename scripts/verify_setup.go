package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/RecoveryAshes/ChannelCrawl/internal/core"
	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  ChannelCrawl 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	// 检查Go版本
	goVersion := runtime.Version()
	fmt.Printf("✅ Go版本: %s\n", goVersion)
	if strings.HasPrefix(goVersion, "go1.1") || strings.HasPrefix(goVersion, "go1.20") ||
		strings.HasPrefix(goVersion, "go1.21") || strings.HasPrefix(goVersion, "go1.22") {
		fmt.Println("⚠️  警告: 建议使用Go 1.23+版本")
	}

	// 检查操作系统
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 检查浏览器
	if path, ok := crawlers.LookupBrowser(); ok {
		fmt.Printf("✅ 已找到浏览器: %s\n", path)
	} else {
		fmt.Printf("⚠️  未找到本机Chromium - 首次运行时将自动下载 (revision %d)\n", crawlers.DefaultBrowserRevision())
		fmt.Println("   也可在配置中设置 browser.bin 指定浏览器路径")
	}

	// 检查配置
	config, err := core.LoadConfig("")
	if err != nil {
		fmt.Printf("❌ 配置加载失败: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("✅ 配置有效 (导航超时 %v, 滚动上限 %dpx)\n", config.Navigation.Timeout, config.Scroll.MaxDistance)

		// 检查主机内存
		monitor := crawlers.NewResourceMonitor(crawlers.ResourceMonitorConfig{
			MinFreeMemory: uint64(config.Resource.MinFreeMemoryMB) * 1024 * 1024,
		})
		if status, err := monitor.GetMemoryStatus(); err != nil {
			fmt.Printf("⚠️  无法读取内存信息: %v\n", err)
		} else {
			fmt.Printf("✅ 可用内存: %dMB / %dMB (%s)\n",
				status.AvailableMemory/1024/1024, status.TotalMemory/1024/1024, status.MemoryPressure)
		}
		if err := monitor.CheckLaunch(); err != nil {
			fmt.Printf("❌ %v\n", err)
			allOK = false
		}
	}

	// 检查项目结构
	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredPaths := []string{
		"go.mod",
		"cmd/channelcrawl",
		"internal/core",
		"internal/crawlers",
		"internal/normalize",
		"internal/utils",
		"internal/models",
		"configs",
	}

	for _, p := range requiredPaths {
		if _, err := os.Stat(p); err == nil {
			fmt.Printf("✅ %s\n", p)
		} else {
			fmt.Printf("❌ %s 不存在\n", p)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build -o channelcrawl ./cmd/channelcrawl' 构建项目")
		fmt.Println("  2. 运行 './channelcrawl --help' 查看帮助")
		os.Exit(0)
	} else {
		fmt.Println("❌ 环境验证失败,请解决上述问题。")
		os.Exit(1)
	}
}
