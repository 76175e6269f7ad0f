package models

import (
	"encoding/json"
	"time"
)

// BatchItem 批量抓取中单个链接的结果
type BatchItem struct {
	URL        string       `json:"url"`
	Text       string       `json:"text,omitempty"`
	Title      string       `json:"title,omitempty"`
	OutputPath string       `json:"output_path,omitempty"`
	Status     ScrapeStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
	Duration   float64      `json:"duration"` // 秒
}

// BatchReport 批量抓取报告
type BatchReport struct {
	ID             string      `json:"id"`
	BaseURL        string      `json:"base_url,omitempty"`
	Format         string      `json:"format"`
	StartTime      time.Time   `json:"start_time"`
	EndTime        time.Time   `json:"end_time"`
	Duration       float64     `json:"duration"`
	TotalLinks     int         `json:"total_links"`
	ProcessedLinks int         `json:"processed_links"`
	SuccessCount   int         `json:"success_count"`
	FailCount      int         `json:"fail_count"`
	Results        []BatchItem `json:"results"`
}

// NewBatchReport 创建批量报告
func NewBatchReport(baseURL, format string) *BatchReport {
	return &BatchReport{
		ID:        generateID(),
		BaseURL:   baseURL,
		Format:    format,
		StartTime: time.Now(),
		Results:   []BatchItem{},
	}
}

// Record 追加一条结果并更新计数
func (r *BatchReport) Record(item BatchItem) {
	r.Results = append(r.Results, item)
	r.ProcessedLinks++
	if item.Status == StatusSuccess {
		r.SuccessCount++
	} else {
		r.FailCount++
	}
}

// Finish 记录结束时间
func (r *BatchReport) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime).Seconds()
}

// ToJSON 序列化为JSON
func (r *BatchReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
