package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// 文本输出的条目上限
const (
	textCommonWords = 10
	maxLinks        = 50
	pagePreviewLen  = 500
)

// TextSerializer 纯文本输出
type TextSerializer struct{}

func (TextSerializer) Format() string    { return FormatText }
func (TextSerializer) Extension() string { return "txt" }

// RenderContent 依次输出头信息、正文、分析、标题和链接
func (TextSerializer) RenderContent(w io.Writer, r *models.ContentRecord) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Title: %s\n", r.Title)
	fmt.Fprintf(bw, "URL: %s\n", r.URL)
	fmt.Fprintf(bw, "Scraped: %s\n", r.Timestamp.Format(timeLayout))
	fmt.Fprintf(bw, "Depth: %d\n", r.ScrapeDepth)

	bw.WriteString("\n=== CONTENT ===\n\n")
	bw.WriteString(r.Content)
	bw.WriteString("\n\n")

	writeTextAnalysis(bw, analysisOrEmpty(r.Analysis))

	bw.WriteString("\n=== HEADINGS ===\n\n")
	for _, h := range r.Headings {
		fmt.Fprintf(bw, "[H%d] %s\n", h.Level, h.Text)
	}

	bw.WriteString("\n=== LINKS ===\n\n")
	for i, l := range r.Links {
		if i >= maxLinks {
			break
		}
		fmt.Fprintf(bw, "- %s: %s\n", l.Text, l.Href)
	}

	return bw.Flush()
}

// RenderPDF 头信息增加页数、大小和提取成功率,随后是元数据、正文、分析和逐页预览
func (TextSerializer) RenderPDF(w io.Writer, r *models.PdfRecord) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Title: %s\n", r.Title)
	fmt.Fprintf(bw, "URL: %s\n", r.URL)
	fmt.Fprintf(bw, "Scraped: %s\n", r.Timestamp.Format(timeLayout))
	bw.WriteString("Content Type: PDF Document\n")
	fmt.Fprintf(bw, "Pages: %d\n", r.PageCount)
	fmt.Fprintf(bw, "File Size: %.1f KB\n", r.FileSizeKB())
	fmt.Fprintf(bw, "Text Extraction Success: %.1f%% (%d of %d pages)\n",
		r.ExtractionSuccessRate*100, r.ValidTextPages, r.PageCount)

	if len(r.Metadata) > 0 {
		bw.WriteString("\n=== PDF METADATA ===\n\n")
		keys := make([]string, 0, len(r.Metadata))
		for k := range r.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := r.Metadata[k]; k != "" && v != "" {
				fmt.Fprintf(bw, "%s: %s\n", k, v)
			}
		}
	}

	bw.WriteString("\n=== CONTENT ===\n\n")
	bw.WriteString(r.Content)
	bw.WriteString("\n\n")

	if r.Analysis != nil {
		writeTextAnalysis(bw, *r.Analysis)
	}

	if len(r.Pages) > 0 {
		bw.WriteString("\n=== PAGES ===\n\n")
		for _, p := range r.Pages {
			fmt.Fprintf(bw, "--- Page %d ---\n", p.Number)
			preview, cut := truncateRunes(p.Text, pagePreviewLen)
			bw.WriteString(preview)
			if cut {
				bw.WriteString("...")
			}
			bw.WriteString("\n\n")
		}
	}

	return bw.Flush()
}

func writeTextAnalysis(bw *bufio.Writer, a models.AnalysisResult) {
	bw.WriteString("=== ANALYSIS ===\n\n")
	fmt.Fprintf(bw, "Word Count: %d\n", a.WordCount)
	fmt.Fprintf(bw, "Sentence Count: %d\n", a.SentenceCount)
	fmt.Fprintf(bw, "Reading Time: %.1f minutes\n", a.ReadingTimeMin)
	fmt.Fprintf(bw, "Sentiment: %s\n\n", a.Sentiment)

	bw.WriteString("Common Words:\n")
	for i, wc := range a.CommonWords {
		if i >= textCommonWords {
			break
		}
		fmt.Fprintf(bw, "- %s: %d\n", wc.Word, wc.Count)
	}
}
