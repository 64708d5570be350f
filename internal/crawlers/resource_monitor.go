package crawlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/RecoveryAshes/ChannelCrawl/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ErrInsufficientMemory 可用内存低于启动浏览器所需的下限
var ErrInsufficientMemory = errors.New("可用内存不足")

// ResourceMonitorConfig 资源检查配置
type ResourceMonitorConfig struct {
	MinFreeMemory    uint64 // 启动浏览器所需的最少可用内存(字节),0 表示不检查
	CPULoadThreshold int    // CPU负载警告阈值(%),>= 200 时跳过CPU采样
}

// MemoryStatus 内存状态信息
type MemoryStatus struct {
	TotalMemory     uint64
	AvailableMemory uint64
	MemoryPressure  string // normal, warning, critical, emergency
}

// ResourceMonitor 在启动浏览器前检查主机资源
type ResourceMonitor struct {
	config ResourceMonitorConfig

	virtualMemory func() (*mem.VirtualMemoryStat, error)
	cpuPercent    func(time.Duration, bool) ([]float64, error)
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	return &ResourceMonitor{
		config:        config,
		virtualMemory: mem.VirtualMemory,
		cpuPercent:    cpu.Percent,
	}
}

// GetMemoryStatus 获取当前系统内存状态
func (rm *ResourceMonitor) GetMemoryStatus() (MemoryStatus, error) {
	vm, err := rm.virtualMemory()
	if err != nil {
		return MemoryStatus{}, fmt.Errorf("获取系统内存失败: %w", err)
	}

	var pressure string
	availableMB := vm.Available / (1024 * 1024)
	switch {
	case availableMB < 200:
		pressure = "emergency"
	case availableMB < 300:
		pressure = "critical"
	case availableMB < 500:
		pressure = "warning"
	default:
		pressure = "normal"
	}

	return MemoryStatus{
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
		MemoryPressure:  pressure,
	}, nil
}

// CPUUsage 采样100毫秒内所有核心的平均使用率,失败时返回0
func (rm *ResourceMonitor) CPUUsage() float64 {
	percentages, err := rm.cpuPercent(100*time.Millisecond, false)
	if err != nil || len(percentages) == 0 {
		utils.Logger.Warn().Err(err).Msg("获取CPU使用率失败")
		return 0
	}
	return percentages[0]
}

// CheckLaunch 检查是否有足够资源启动浏览器
//
// 内存不足返回 ErrInsufficientMemory;CPU负载过高只记录警告。
// 无法读取内存信息时放行。
func (rm *ResourceMonitor) CheckLaunch() error {
	status, err := rm.GetMemoryStatus()
	if err != nil {
		utils.Logger.Warn().Err(err).Msg("跳过内存检查")
	} else {
		availableMB := status.AvailableMemory / (1024 * 1024)
		if rm.config.MinFreeMemory > 0 && status.AvailableMemory < rm.config.MinFreeMemory {
			return fmt.Errorf("%w: 当前 %dMB, 需要 %dMB", ErrInsufficientMemory,
				availableMB, rm.config.MinFreeMemory/(1024*1024))
		}
		if status.MemoryPressure != "normal" {
			utils.Logger.Warn().Msgf("内存压力 %s (可用 %dMB)", status.MemoryPressure, availableMB)
		}
	}

	if rm.config.CPULoadThreshold > 0 && rm.config.CPULoadThreshold < 200 {
		if usage := rm.CPUUsage(); usage > float64(rm.config.CPULoadThreshold) {
			utils.Logger.Warn().Msgf("CPU负载过高(当前%.1f%%),浏览器启动可能较慢", usage)
		}
	}
	return nil
}
