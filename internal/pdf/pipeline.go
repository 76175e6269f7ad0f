// Package pdf 下载并解析PDF文档,逐页判断文本是否可读,生成 PdfRecord。
package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// 记录中使用的固定文案
const (
	InvalidPageText     = "Page contains non-standard characters or encoding issues."
	NoValidTextContent  = "This PDF appears to contain non-standard text encoding or images that cannot be extracted as text."
	ProcessingErrorName = "PDF Processing Error"

	pageTextLimit   = 1000
	pageSampleLimit = 100
)

// DefaultDownloadTimeout PDF下载超时
const DefaultDownloadTimeout = 30 * time.Second

// TextAnalyzer 文本分析器
type TextAnalyzer interface {
	Analyze(text string) models.AnalysisResult
}

// Extractor PDF提取流水线
type Extractor struct {
	client   *http.Client
	decoder  Decoder
	analyzer TextAnalyzer
	headers  models.HeaderProvider
}

// Option 配置项
type Option func(*Extractor)

// WithDecoder 替换解码器
func WithDecoder(d Decoder) Option {
	return func(e *Extractor) { e.decoder = d }
}

// WithHTTPClient 替换下载使用的HTTP客户端
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// WithTimeout 设置下载超时
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.client = &http.Client{Timeout: d} }
}

// WithAnalyzer 设置文本分析器,为nil时不做分析
func WithAnalyzer(a TextAnalyzer) Option {
	return func(e *Extractor) { e.analyzer = a }
}

// WithHeaderProvider 设置下载请求头
func WithHeaderProvider(h models.HeaderProvider) Option {
	return func(e *Extractor) { e.headers = h }
}

// NewExtractor 创建提取器,默认使用 LedongthucDecoder 和30秒下载超时
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		client:  &http.Client{Timeout: DefaultDownloadTimeout},
		decoder: LedongthucDecoder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFromURL 下载并提取PDF。
// 下载失败时返回标题为 "PDF Processing Error" 的记录和 *models.FetchError。
func (e *Extractor) ExtractFromURL(ctx context.Context, pdfURL string) (*models.PdfRecord, error) {
	log.Info().Str("url", pdfURL).Msg("开始提取PDF")

	data, err := e.download(ctx, pdfURL)
	if err != nil {
		rec := models.NewPdfRecord(pdfURL)
		rec.Title = ProcessingErrorName
		rec.Content = fmt.Sprintf("Failed to process PDF: %v", err)
		rec.Error = err.Error()
		log.Error().Err(err).Str("url", pdfURL).Msg("PDF下载失败")
		return rec, err
	}

	return e.ExtractFromBytes(pdfURL, data)
}

// ExtractFromFile 提取本地PDF文件,标题为文件名
func (e *Extractor) ExtractFromFile(filePath string) (*models.PdfRecord, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取PDF文件失败: %w", err)
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	rec, err := e.ExtractFromBytes(fileURL, data)
	rec.SourcePath = filePath
	rec.Title = filepath.Base(filePath)
	return rec, err
}

// ExtractFromBytes 解析已下载的PDF内容
func (e *Extractor) ExtractFromBytes(pdfURL string, data []byte) (*models.PdfRecord, error) {
	rec := models.NewPdfRecord(pdfURL)
	rec.Title = titleFromPath(rec.Path)
	rec.FileSizeBytes = int64(len(data))

	doc, err := e.decoder.Decode(data)
	if err != nil {
		rec.Content = fmt.Sprintf("Error extracting PDF content: %v", err)
		rec.Error = err.Error()
		log.Error().Err(err).Str("url", pdfURL).Msg("PDF解析失败")
		return rec, &models.PdfDecodeError{URL: pdfURL, Err: err}
	}

	for k, v := range doc.Metadata {
		rec.Metadata[k] = v
	}

	var fullText []string
	for i, src := range doc.Pages {
		page := models.PdfPage{Number: i + 1}

		text, err := src.Text()
		switch {
		case err != nil:
			page.Text = fmt.Sprintf("Error extracting text: %v", err)
		case IsValidText(text):
			page.IsValid = true
			page.Text = text
			if short, cut := truncateRunes(text, pageTextLimit); cut {
				page.Text = short + "..."
			}
			fullText = append(fullText, text)
		default:
			page.Text = InvalidPageText
			page.Sample, _ = truncateRunes(text, pageSampleLimit)
		}

		metrics.PDFPages.WithLabelValues(fmt.Sprint(page.IsValid)).Inc()
		rec.Pages = append(rec.Pages, page)
	}
	rec.UpdateSuccessRate()

	if len(fullText) > 0 {
		rec.Content = strings.Join(fullText, "\n\n")
		rec.ContentExtracted = true
	} else {
		rec.Content = NoValidTextContent
	}

	if rec.ContentExtracted && rec.Content != "" && e.analyzer != nil {
		analysis := e.analyzer.Analyze(rec.Content)
		rec.Analysis = &analysis
	}

	log.Info().
		Str("url", pdfURL).
		Int("pages", rec.PageCount).
		Int("valid_pages", rec.ValidTextPages).
		Msg("PDF提取完成")

	return rec, nil
}

func (e *Extractor) download(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, &models.FetchError{URL: pdfURL, Err: err}
	}
	if e.headers != nil {
		if h, err := e.headers.GetHeaders(); err == nil {
			for name, values := range h {
				// 交给Transport处理压缩
				if strings.EqualFold(name, "Accept-Encoding") {
					continue
				}
				for _, v := range values {
					req.Header.Add(name, v)
				}
			}
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &models.FetchError{URL: pdfURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.FetchError{
			URL:        pdfURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %s", resp.Status),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.FetchError{URL: pdfURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("读取响应失败: %w", err)}
	}
	return data, nil
}

func titleFromPath(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	return path.Base(p)
}
