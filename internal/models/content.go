package models

import (
	"net/url"
	"time"
)

// NoTitle 页面没有<title>时的默认标题
const NoTitle = "No title found"

// FetchMode 抓取模式
type FetchMode string

const (
	ModeStatic FetchMode = "static" // 静态HTTP抓取
	ModeRender FetchMode = "render" // 浏览器渲染抓取
)

// ParseFetchMode 解析抓取模式,未知值返回false
func ParseFetchMode(s string) (FetchMode, bool) {
	switch FetchMode(s) {
	case ModeStatic, ModeRender:
		return FetchMode(s), true
	}
	return "", false
}

// Link 页面中的超链接
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"` // 已转换为绝对URL
}

// Heading 标题元素
type Heading struct {
	Level int    `json:"level"` // 1-6
	Text  string `json:"text"`
}

// Image 图片元素
type Image struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Title string `json:"title"`
}

// LinkedPageSummary 子页面摘要
type LinkedPageSummary struct {
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	ContentSummary string    `json:"content_summary"`
	Headings       []Heading `json:"headings,omitempty"`
}

// ContentRecord 单个网页的抓取结果
type ContentRecord struct {
	URL             string              `json:"url"`
	Domain          string              `json:"domain"`
	Path            string              `json:"path"`
	Title           string              `json:"title"`
	MetaDescription string              `json:"meta_description,omitempty"`
	Content         string              `json:"content"`
	Links           []Link              `json:"links"`
	Headings        []Heading           `json:"headings"`
	Images          []Image             `json:"images"`
	Tables          []string            `json:"tables"`      // 原始HTML片段
	CodeBlocks      []string            `json:"code_blocks"` // 去除首尾空白的文本
	LinkedPages     []LinkedPageSummary `json:"linked_pages,omitempty"`
	Analysis        *AnalysisResult     `json:"analysis,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
	ScrapeDepth     int                 `json:"scrape_depth"`
	Rendered        bool                `json:"rendered"`
}

// NewContentRecord 创建记录并从URL解析域名和路径
func NewContentRecord(pageURL string) *ContentRecord {
	r := &ContentRecord{
		URL:        pageURL,
		Title:      NoTitle,
		Links:      []Link{},
		Headings:   []Heading{},
		Images:     []Image{},
		Tables:     []string{},
		CodeBlocks: []string{},
	}
	if u, err := url.Parse(pageURL); err == nil {
		r.Domain = u.Host
		r.Path = u.Path
	}
	return r
}

// HeadingsAt 返回指定级别的标题(文档顺序)
func (r *ContentRecord) HeadingsAt(level int) []Heading {
	var out []Heading
	for _, h := range r.Headings {
		if h.Level == level {
			out = append(out, h)
		}
	}
	return out
}
