package fetchers

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceMonitorConfig 资源监控配置
type ResourceMonitorConfig struct {
	SafetyReserveMemory uint64  // 为系统保留的内存(字节)
	TabMemoryUsage      uint64  // 单个标签页平均内存消耗(字节)
	CPULoadThreshold    float64 // CPU使用率阈值(%),>=100 表示不检查
	MaxTabsLimit        int     // 绝对上限
}

// DefaultResourceMonitorConfig 默认配置
func DefaultResourceMonitorConfig() ResourceMonitorConfig {
	return ResourceMonitorConfig{
		SafetyReserveMemory: 512 * 1024 * 1024,
		TabMemoryUsage:      100 * 1024 * 1024,
		CPULoadThreshold:    90,
		MaxTabsLimit:        4,
	}
}

// ResourceMonitor 根据可用内存和CPU负载限制浏览器标签页数量
type ResourceMonitor struct {
	config ResourceMonitorConfig

	availableMemory func() (uint64, error)
	cpuPercent      func() (float64, error)

	mu            sync.Mutex
	cachedMaxTabs int
	lastCacheTime time.Time
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	if config.TabMemoryUsage == 0 {
		config.TabMemoryUsage = 100 * 1024 * 1024
	}
	if config.MaxTabsLimit < 1 {
		config.MaxTabsLimit = 1
	}
	return &ResourceMonitor{
		config: config,
		availableMemory: func() (uint64, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return vm.Available, nil
		},
		cpuPercent: func() (float64, error) {
			// interval为0时与上一次调用比较,不阻塞
			p, err := cpu.Percent(0, false)
			if err != nil {
				return 0, err
			}
			if len(p) == 0 {
				return 0, fmt.Errorf("CPU使用率数据为空")
			}
			return p[0], nil
		},
	}
}

// CalculateMaxTabs 计算当前允许的最大标签页数,结果缓存1秒
func (rm *ResourceMonitor) CalculateMaxTabs() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if time.Since(rm.lastCacheTime) < time.Second && rm.cachedMaxTabs > 0 {
		return rm.cachedMaxTabs
	}

	byMemory := rm.config.MaxTabsLimit
	if avail, err := rm.availableMemory(); err != nil {
		log.Warn().Err(err).Msg("获取系统内存失败,使用配置上限")
	} else if avail > rm.config.SafetyReserveMemory {
		byMemory = int((avail - rm.config.SafetyReserveMemory) / rm.config.TabMemoryUsage)
	} else {
		byMemory = 1
	}

	result := min(byMemory, runtime.NumCPU(), rm.config.MaxTabsLimit)
	if result < 1 {
		result = 1
	}

	rm.cachedMaxTabs = result
	rm.lastCacheTime = time.Now()
	return result
}

// CheckResourceAvailability 检查是否允许再打开标签页
func (rm *ResourceMonitor) CheckResourceAvailability() (canCreate bool, reason string) {
	if avail, err := rm.availableMemory(); err == nil && avail < rm.config.SafetyReserveMemory {
		return false, fmt.Sprintf("内存不足(当前%dMB)", avail/(1024*1024))
	}

	if rm.config.CPULoadThreshold < 100 {
		if usage, err := rm.cpuPercent(); err == nil && usage > rm.config.CPULoadThreshold {
			return false, fmt.Sprintf("CPU负载过高(当前%.1f%%)", usage)
		}
	}
	return true, ""
}
