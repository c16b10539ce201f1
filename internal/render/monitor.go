package render

import (
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitorConfig 资源监控配置
type MonitorConfig struct {
	ReserveMemory  int64 // 安全保留内存(字节)
	SessionMemory  int64 // 单个会话平均内存消耗(字节)
	MaxSessionsCap int   // 绝对最大会话数
}

// Monitor 系统资源监控器
// 在池创建时根据可用内存限制会话数,避免在小内存机器上
// 按配置值直接起满浏览器标签页
type Monitor struct {
	config          MonitorConfig
	availableMemory int64
}

// NewMonitor 创建资源监控器并采样一次系统内存
func NewMonitor(config MonitorConfig) *Monitor {
	if config.SessionMemory == 0 {
		config.SessionMemory = 400 * 1024 * 1024 // 400MB per session
	}
	if config.ReserveMemory == 0 {
		config.ReserveMemory = 1024 * 1024 * 1024 // 1GB
	}
	if config.MaxSessionsCap == 0 {
		config.MaxSessionsCap = 16
	}

	var available int64
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("获取系统内存失败,使用默认值")
		available = 4 * 1024 * 1024 * 1024 // 默认按4GB可用计算
	} else {
		available = int64(vmStat.Available)
		log.Debug().Msgf("系统可用内存: %.2f GB", float64(available)/(1024*1024*1024))
	}

	return &Monitor{
		config:          config,
		availableMemory: available,
	}
}

// CapSessions 计算实际允许的会话数
// 取 min(请求数, 内存允许数, 绝对上限),至少为1
func (m *Monitor) CapSessions(requested int) int {
	byMemory := 1
	surplus := m.availableMemory - m.config.ReserveMemory
	if surplus > m.config.SessionMemory {
		byMemory = int(surplus / m.config.SessionMemory)
	}

	result := requested
	if byMemory < result {
		result = byMemory
	}
	if m.config.MaxSessionsCap < result {
		result = m.config.MaxSessionsCap
	}
	if result < 1 {
		result = 1
	}

	if result < requested {
		log.Warn().Msgf("会话数受资源限制: 请求%d个, 实际%d个", requested, result)
	}

	return result
}
