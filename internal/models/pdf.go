package models

import (
	"net/url"
	"time"
)

// PdfPage PDF单页的提取结果
type PdfPage struct {
	Number  int    `json:"page_number"`
	Text    string `json:"text"`
	IsValid bool   `json:"is_valid_text"`
	Sample  string `json:"sample,omitempty"` // 无效页的前100个字符
}

// PdfRecord PDF文档的提取结果
type PdfRecord struct {
	URL                   string            `json:"url"`
	Domain                string            `json:"domain"`
	Path                  string            `json:"path"`
	Title                 string            `json:"title"`
	ContentType           string            `json:"content_type"`
	Metadata              map[string]string `json:"metadata"`
	PageCount             int               `json:"page_count"`
	Pages                 []PdfPage         `json:"pages"`
	Content               string            `json:"content"`
	ContentExtracted      bool              `json:"content_extracted"`
	ValidTextPages        int               `json:"valid_text_pages"`
	ExtractionSuccessRate float64           `json:"extraction_success_rate"`
	FileSizeBytes         int64             `json:"file_size_bytes"`
	Analysis              *AnalysisResult   `json:"analysis,omitempty"`
	Error                 string            `json:"error,omitempty"`
	Timestamp             time.Time         `json:"timestamp"`
	SourcePath            string            `json:"source_path,omitempty"` // 本地文件来源
}

// NewPdfRecord 创建PDF记录
func NewPdfRecord(pdfURL string) *PdfRecord {
	r := &PdfRecord{
		URL:         pdfURL,
		ContentType: "pdf",
		Metadata:    map[string]string{},
		Pages:       []PdfPage{},
		Timestamp:   time.Now(),
	}
	if u, err := url.Parse(pdfURL); err == nil {
		r.Domain = u.Host
		r.Path = u.Path
	}
	return r
}

// UpdateSuccessRate 根据有效页数重新计算提取成功率
func (r *PdfRecord) UpdateSuccessRate() {
	r.PageCount = len(r.Pages)
	r.ValidTextPages = 0
	for _, p := range r.Pages {
		if p.IsValid {
			r.ValidTextPages++
		}
	}
	if r.PageCount == 0 {
		r.ExtractionSuccessRate = 0
		return
	}
	r.ExtractionSuccessRate = float64(r.ValidTextPages) / float64(r.PageCount)
}

// FileSizeKB 文件大小(KB)
func (r *PdfRecord) FileSizeKB() float64 {
	return float64(r.FileSizeBytes) / 1024
}
