package models

import (
	"fmt"
	"time"
)

// CrawlConfig 单次抓取的参数
type CrawlConfig struct {
	Depth           int           `json:"depth"`            // 抓取深度 (默认:1)
	WaitTime        time.Duration `json:"wait_time"`        // 渲染后等待时间 (默认:5s)
	Scroll          bool          `json:"scroll"`           // 是否滚动加载
	Headless        bool          `json:"headless"`         // 无头模式 (默认:true)
	StaticChildCap  int           `json:"static_child_cap"` // 静态模式子页面上限 (默认:5)
	RenderChildCap  int           `json:"render_child_cap"` // 渲染模式子页面上限 (默认:10)
	StaticSummary   int           `json:"static_summary"`   // 静态模式摘要长度 (默认:200)
	RenderSummary   int           `json:"render_summary"`   // 渲染模式摘要长度 (默认:300)
	SummaryHeadings int           `json:"summary_headings"` // 渲染模式摘要保留标题数 (默认:5)
	ChildDelay      time.Duration `json:"child_delay"`      // 静态模式子页面间隔 (默认:1s)
}

// DefaultCrawlConfig 默认抓取参数
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		Depth:           1,
		WaitTime:        5 * time.Second,
		Headless:        true,
		StaticChildCap:  5,
		RenderChildCap:  10,
		StaticSummary:   200,
		RenderSummary:   300,
		SummaryHeadings: 5,
		ChildDelay:      time.Second,
	}
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.Depth < 1 || c.Depth > 10 {
		return fmt.Errorf("深度必须在1-10之间")
	}
	if c.WaitTime < 0 || c.WaitTime > 60*time.Second {
		return fmt.Errorf("等待时间必须在0-60秒之间")
	}
	if c.StaticChildCap < 0 || c.RenderChildCap < 0 {
		return fmt.Errorf("子页面上限不能为负数")
	}
	if c.StaticSummary < 0 || c.RenderSummary < 0 {
		return fmt.Errorf("摘要长度不能为负数")
	}
	return nil
}

// ScrapeStatus 抓取结果状态
type ScrapeStatus string

const (
	StatusSuccess ScrapeStatus = "success"
	StatusError   ScrapeStatus = "error"
)

// ScrapeResult 一次抓取(网页或PDF)的结果
type ScrapeResult struct {
	URL        string       `json:"url"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	OutputPath string       `json:"output_path"`
	Status     ScrapeStatus `json:"status"`
	IsPDF      bool         `json:"is_pdf"`
	Error      string       `json:"error,omitempty"`
}

// ScrapeStats 统计信息
type ScrapeStats struct {
	PagesFetched int     `json:"pages_fetched"`
	LinkedPages  int     `json:"linked_pages"`
	Failed       int     `json:"failed"`
	Duration     float64 `json:"duration"` // 秒
}
