// Package output 把抓取记录渲染为 txt/json/html 文件,并把多个已保存的文档合并为一个
package output

import (
	"io"
	"strings"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// 支持的输出格式
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Formats 所有支持的输出格式
var Formats = []string{FormatText, FormatJSON, FormatHTML}

// timeLayout 文件中时间戳的格式
const timeLayout = "2006-01-02T15:04:05"

// Serializer 记录渲染器
type Serializer interface {
	Format() string
	Extension() string
	RenderContent(w io.Writer, r *models.ContentRecord) error
	RenderPDF(w io.Writer, r *models.PdfRecord) error
}

// NewSerializer 按格式名创建渲染器,未知格式退回txt
func NewSerializer(format string) Serializer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return JSONSerializer{}
	case FormatHTML:
		return HTMLSerializer{}
	default:
		return TextSerializer{}
	}
}

// IsSupportedFormat 是否为 txt/json/html
func IsSupportedFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// analysisOrEmpty 缺少分析结果时用零值代替
func analysisOrEmpty(a *models.AnalysisResult) models.AnalysisResult {
	if a == nil {
		return models.AnalysisResult{Sentiment: models.SentimentNeutral}
	}
	return *a
}

// truncateRunes 按字符截断,返回是否发生截断
func truncateRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}
