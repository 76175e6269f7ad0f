package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

const (
	htmlCommonWords  = 20
	pdfOverviewLen   = 2000
	metadataUnknown  = "Unknown"
	successRateAlert = 0.5 // 低于该提取成功率时显示警告
)

const pageStyle = `
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; line-height: 1.6; max-width: 1100px; margin: 0 auto; padding: 20px; color: #333; }
h1 { border-bottom: 2px solid #3498db; padding-bottom: 8px; }
.section { margin-bottom: 30px; padding: 15px 20px; background: #f9f9f9; border-radius: 6px; }
.metadata { color: #666; font-size: 0.9em; }
.content { white-space: normal; }
.analysis { background: #eef6fc; }
.pdf-info { background: #fdf6e3; }
.alert-success { color: #155724; background: #d4edda; padding: 10px; border-radius: 4px; }
.alert-warning { color: #856404; background: #fff3cd; padding: 10px; border-radius: 4px; }
.page { border-top: 1px solid #ddd; padding-top: 10px; margin-top: 10px; }
table { border-collapse: collapse; margin: 10px 0; }
td, th { border: 1px solid #ccc; padding: 4px 8px; }
pre { background: #272822; color: #f8f8f2; padding: 12px; overflow-x: auto; border-radius: 4px; }
`

// HTMLSerializer 生成带内联样式的独立HTML页面
type HTMLSerializer struct{}

func (HTMLSerializer) Format() string    { return FormatHTML }
func (HTMLSerializer) Extension() string { return "html" }

// esc 转义文本并保留换行
func esc(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>\n")
}

func writeHead(bw *bufio.Writer, title string) {
	bw.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	bw.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(bw, "<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n", html.EscapeString(title), pageStyle)
	fmt.Fprintf(bw, "<h1>%s</h1>\n", html.EscapeString(title))
}

func writeTail(bw *bufio.Writer) {
	bw.WriteString("</body>\n</html>\n")
}

// RenderContent 网页记录的HTML视图,表格保留原始HTML
func (HTMLSerializer) RenderContent(w io.Writer, r *models.ContentRecord) error {
	bw := bufio.NewWriter(w)
	writeHead(bw, r.Title)

	bw.WriteString("<div class=\"section metadata\">\n")
	fmt.Fprintf(bw, "<p><strong>URL:</strong> <a href=\"%s\">%s</a></p>\n", html.EscapeString(r.URL), html.EscapeString(r.URL))
	fmt.Fprintf(bw, "<p><strong>Scraped:</strong> %s</p>\n", r.Timestamp.Format(timeLayout))
	fmt.Fprintf(bw, "<p><strong>Depth:</strong> %d</p>\n", r.ScrapeDepth)
	if r.MetaDescription != "" {
		fmt.Fprintf(bw, "<p><strong>Description:</strong> %s</p>\n", html.EscapeString(r.MetaDescription))
	}
	bw.WriteString("</div>\n")

	bw.WriteString("<div class=\"section content\">\n<h2>Content</h2>\n")
	fmt.Fprintf(bw, "<p>%s</p>\n</div>\n", esc(r.Content))

	writeHTMLAnalysis(bw, analysisOrEmpty(r.Analysis))

	if len(r.Headings) > 0 {
		bw.WriteString("<div class=\"section\">\n<h2>Headings</h2>\n<ul>\n")
		for _, h := range r.Headings {
			fmt.Fprintf(bw, "<li>[H%d] %s</li>\n", h.Level, html.EscapeString(h.Text))
		}
		bw.WriteString("</ul>\n</div>\n")
	}

	if len(r.Links) > 0 {
		bw.WriteString("<div class=\"section\">\n<h2>Links</h2>\n<ul>\n")
		for i, l := range r.Links {
			if i >= maxLinks {
				break
			}
			text := l.Text
			if text == "" {
				text = l.Href
			}
			fmt.Fprintf(bw, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(l.Href), html.EscapeString(text))
		}
		bw.WriteString("</ul>\n</div>\n")
	}

	if len(r.Tables) > 0 {
		bw.WriteString("<div class=\"section\">\n<h2>Tables</h2>\n")
		for _, t := range r.Tables {
			bw.WriteString(t)
			bw.WriteString("\n")
		}
		bw.WriteString("</div>\n")
	}

	if len(r.CodeBlocks) > 0 {
		bw.WriteString("<div class=\"section\">\n<h2>Code Blocks</h2>\n")
		for _, c := range r.CodeBlocks {
			fmt.Fprintf(bw, "<pre>%s</pre>\n", html.EscapeString(c))
		}
		bw.WriteString("</div>\n")
	}

	writeTail(bw)
	return bw.Flush()
}

// RenderPDF PDF记录的HTML视图
func (HTMLSerializer) RenderPDF(w io.Writer, r *models.PdfRecord) error {
	bw := bufio.NewWriter(w)
	writeHead(bw, r.Title)

	bw.WriteString("<div class=\"section metadata\">\n")
	fmt.Fprintf(bw, "<p><strong>URL:</strong> <a href=\"%s\">%s</a></p>\n", html.EscapeString(r.URL), html.EscapeString(r.URL))
	fmt.Fprintf(bw, "<p><strong>Scraped:</strong> %s</p>\n", r.Timestamp.Format(timeLayout))
	bw.WriteString("<p><strong>Content Type:</strong> PDF Document</p>\n</div>\n")

	bw.WriteString("<div class=\"section pdf-info\">\n<h2>PDF Information</h2>\n")
	fmt.Fprintf(bw, "<p><strong>Pages:</strong> %d</p>\n", r.PageCount)
	fmt.Fprintf(bw, "<p><strong>File Size:</strong> %.1f KB</p>\n", r.FileSizeKB())
	for _, item := range []struct{ label, key string }{
		{"Author", "author"},
		{"Creator", "creator"},
		{"Producer", "producer"},
		{"Creation Date", "creationdate"},
	} {
		fmt.Fprintf(bw, "<p><strong>%s:</strong> %s</p>\n", item.label, html.EscapeString(metadataValue(r.Metadata, item.key)))
	}
	fmt.Fprintf(bw, "<p><strong>Text Extraction Success:</strong> %.1f%% (%d of %d pages)</p>\n",
		r.ExtractionSuccessRate*100, r.ValidTextPages, r.PageCount)
	if r.ContentExtracted && r.ExtractionSuccessRate >= successRateAlert {
		bw.WriteString("<div class=\"alert-success\">Text was extracted successfully from this PDF.</div>\n")
	} else {
		bw.WriteString("<div class=\"alert-warning\">Text extraction was limited. The PDF may be scanned or image based.</div>\n")
	}
	bw.WriteString("</div>\n")

	bw.WriteString("<div class=\"section content\">\n<h2>Content Overview</h2>\n")
	if r.ContentExtracted {
		overview, cut := truncateRunes(r.Content, pdfOverviewLen)
		if cut {
			overview += "..."
		}
		fmt.Fprintf(bw, "<p>%s</p>\n", esc(overview))
	} else {
		bw.WriteString("<p class=\"alert-warning\">No readable text could be extracted.</p>\n")
	}
	bw.WriteString("</div>\n")

	if r.Analysis != nil {
		writeHTMLAnalysis(bw, *r.Analysis)
	}

	if len(r.Pages) > 0 {
		bw.WriteString("<div class=\"section\">\n<h2>Pages Preview</h2>\n")
		for _, p := range r.Pages {
			fmt.Fprintf(bw, "<div class=\"page\">\n<h3>Page %d</h3>\n", p.Number)
			if p.IsValid {
				fmt.Fprintf(bw, "<p>%s</p>\n", esc(p.Text))
			} else {
				bw.WriteString("<p class=\"alert-warning\">No valid text on this page.</p>\n")
			}
			bw.WriteString("</div>\n")
		}
		bw.WriteString("</div>\n")
	}

	writeTail(bw)
	return bw.Flush()
}

func writeHTMLAnalysis(bw *bufio.Writer, a models.AnalysisResult) {
	bw.WriteString("<div class=\"section analysis\">\n<h2>Analysis</h2>\n")
	fmt.Fprintf(bw, "<p><strong>Word Count:</strong> %d</p>\n", a.WordCount)
	fmt.Fprintf(bw, "<p><strong>Sentence Count:</strong> %d</p>\n", a.SentenceCount)
	fmt.Fprintf(bw, "<p><strong>Reading Time:</strong> %.1f minutes</p>\n", a.ReadingTimeMin)
	fmt.Fprintf(bw, "<p><strong>Sentiment:</strong> %s</p>\n", html.EscapeString(a.Sentiment))
	if len(a.CommonWords) > 0 {
		bw.WriteString("<h3>Common Words</h3>\n<ul>\n")
		for i, wc := range a.CommonWords {
			if i >= htmlCommonWords {
				break
			}
			fmt.Fprintf(bw, "<li>%s: %d</li>\n", html.EscapeString(wc.Word), wc.Count)
		}
		bw.WriteString("</ul>\n")
	}
	bw.WriteString("</div>\n")
}

// metadataValue 大小写不敏感地查找元数据,缺失时返回 Unknown
func metadataValue(meta map[string]string, key string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) && strings.TrimSpace(meta[k]) != "" {
			return meta[k]
		}
	}
	return metadataUnknown
}
