package models

import (
	"fmt"
	"time"
)

// TaskStatus 提取任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"          // 待执行
	TaskStatusInFlight  TaskStatus = "in-flight"        // 执行中
	TaskStatusSucceeded TaskStatus = "succeeded"        // 成功
	TaskStatusRetryable TaskStatus = "failed-retryable" // 失败,允许重试一次
	TaskStatusDropped   TaskStatus = "dropped"          // 丢弃(终态)
)

// ScrapeConfig 抓取配置
type ScrapeConfig struct {
	MaxWorkers           int      `json:"max_workers" mapstructure:"max_workers"`                         // 渲染会话数/并发上限 (默认:6)
	MaxArticlesPerSource int      `json:"max_articles_per_source" mapstructure:"max_articles_per_source"` // 单来源文章上限 (默认:60)
	WaitTime             int      `json:"wait_time" mapstructure:"wait_time"`                             // 页面渲染等待时间(秒) (默认:3)
	Retries              int      `json:"retries" mapstructure:"retries"`                                 // 提取任务重试次数 (默认:1)
	PageTimeout          int      `json:"page_timeout" mapstructure:"page_timeout"`                       // 单页导航超时(秒) (默认:20)
	BatchTimeout         int      `json:"batch_timeout" mapstructure:"batch_timeout"`                     // 批次总超时(秒), 0表示不限 (默认:600)
	Headless             bool     `json:"headless" mapstructure:"headless"`                               // 无头模式 (默认:true)
	Sources              []string `json:"sources" mapstructure:"sources"`                                 // 来源子集,空表示全部
	MinLinks             int      `json:"min_links" mapstructure:"min_links"`                             // 链接数低于此值触发通用回退选择器 (默认:5)
}

// Validate 验证配置
func (c *ScrapeConfig) Validate() error {
	if c.MaxWorkers < 1 || c.MaxWorkers > 16 {
		return fmt.Errorf("会话数必须在1-16之间")
	}
	if c.MaxArticlesPerSource < 1 || c.MaxArticlesPerSource > 500 {
		return fmt.Errorf("单来源文章上限必须在1-500之间")
	}
	if c.WaitTime < 0 || c.WaitTime > 60 {
		return fmt.Errorf("等待时间必须在0-60秒之间")
	}
	if c.Retries < 0 || c.Retries > 5 {
		return fmt.Errorf("重试次数必须在0-5之间")
	}
	if c.PageTimeout < 1 || c.PageTimeout > 120 {
		return fmt.Errorf("页面超时必须在1-120秒之间")
	}
	if c.BatchTimeout < 0 || c.BatchTimeout > 7200 {
		return fmt.Errorf("批次超时必须在0-7200秒之间")
	}
	return nil
}

// SourceStats 单来源统计
type SourceStats struct {
	LinksFound int `json:"links_found"` // 发现的有效链接数(去重/截断后)
	Attempted  int `json:"attempted"`   // 尝试提取的任务数
	Succeeded  int `json:"succeeded"`   // 成功提取数
	Dropped    int `json:"dropped"`     // 丢弃数(重试耗尽或内容不足)
}

// ScrapeStats 批次统计
type ScrapeStats struct {
	TotalArticles int                    `json:"total_articles"` // 成功文章总数
	TotalLinks    int                    `json:"total_links"`    // 进入第二阶段的链接总数
	PerSource     map[string]SourceStats `json:"per_source"`     // 各来源统计
	FailedURLs    []string               `json:"failed_urls"`    // 丢弃的URL列表
	Duration      float64                `json:"duration"`       // 总耗时(秒)
	TimedOut      bool                   `json:"timed_out"`      // 批次是否因超时提前结束
}

// NewScrapeStats 创建空统计
func NewScrapeStats() *ScrapeStats {
	return &ScrapeStats{
		PerSource:  make(map[string]SourceStats),
		FailedURLs: make([]string, 0),
	}
}

// Clone 深拷贝统计
// 批次超时后仍有工作协程在更新原对象,返回前拷贝一份快照
func (s *ScrapeStats) Clone() *ScrapeStats {
	clone := &ScrapeStats{
		TotalArticles: s.TotalArticles,
		TotalLinks:    s.TotalLinks,
		PerSource:     make(map[string]SourceStats, len(s.PerSource)),
		FailedURLs:    append([]string(nil), s.FailedURLs...),
		Duration:      s.Duration,
		TimedOut:      s.TimedOut,
	}
	for id, st := range s.PerSource {
		clone.PerSource[id] = st
	}
	return clone
}

// ArticlesPerMinute 每分钟文章数
func (s *ScrapeStats) ArticlesPerMinute() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalArticles) / s.Duration * 60
}

// ScrapeRun 一次完整批次的记录(报告用)
type ScrapeRun struct {
	ID         string       `json:"id"` // 批次唯一ID (UUID)
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Config     ScrapeConfig `json:"config"`
	Stats      *ScrapeStats `json:"stats"`
}

// NewScrapeRun 创建批次记录
func NewScrapeRun(config ScrapeConfig) *ScrapeRun {
	return &ScrapeRun{
		ID:        generateID(),
		StartedAt: time.Now(),
		Config:    config,
	}
}
