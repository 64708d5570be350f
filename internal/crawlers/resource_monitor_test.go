package crawlers

import (
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

func monitorWith(available uint64, minFree uint64) *ResourceMonitor {
	rm := NewResourceMonitor(ResourceMonitorConfig{MinFreeMemory: minFree, CPULoadThreshold: 200})
	rm.virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 8 << 30, Available: available}, nil
	}
	return rm
}

func TestResourceMonitor_CheckLaunch(t *testing.T) {
	tests := []struct {
		name      string
		available uint64
		minFree   uint64
		wantErr   bool
	}{
		{"内存充足", 4 << 30, 512 << 20, false},
		{"内存不足", 100 << 20, 512 << 20, true},
		{"未配置下限", 100 << 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := monitorWith(tt.available, tt.minFree).CheckLaunch()
			if (err != nil) != tt.wantErr {
				t.Fatalf("期望错误=%v, 实际错误=%v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInsufficientMemory) {
				t.Errorf("期望 ErrInsufficientMemory, 实际: %v", err)
			}
		})
	}
}

func TestResourceMonitor_MemoryPressure(t *testing.T) {
	tests := []struct {
		availableMB uint64
		want        string
	}{
		{100, "emergency"},
		{250, "critical"},
		{400, "warning"},
		{2048, "normal"},
	}

	for _, tt := range tests {
		status, err := monitorWith(tt.availableMB<<20, 0).GetMemoryStatus()
		if err != nil {
			t.Fatalf("获取内存状态失败: %v", err)
		}
		if status.MemoryPressure != tt.want {
			t.Errorf("可用%dMB: 期望=%s, 实际=%s", tt.availableMB, tt.want, status.MemoryPressure)
		}
	}
}

func TestResourceMonitor_ReadFailureAllowsLaunch(t *testing.T) {
	rm := NewResourceMonitor(ResourceMonitorConfig{MinFreeMemory: 1 << 30, CPULoadThreshold: 50})
	rm.virtualMemory = func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no /proc") }
	rm.cpuPercent = func(time.Duration, bool) ([]float64, error) { return []float64{99}, nil }

	if err := rm.CheckLaunch(); err != nil {
		t.Errorf("读取失败时应放行, 实际错误: %v", err)
	}
	if got := rm.CPUUsage(); got != 99 {
		t.Errorf("CPUUsage() = %.1f", got)
	}
}
