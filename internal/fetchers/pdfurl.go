package fetchers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// pdfContentTypes 视为PDF的Content-Type
var pdfContentTypes = []string{
	"application/pdf",
	"application/x-pdf",
	"application/acrobat",
	"application/vnd.pdf",
	"text/pdf",
	"text/x-pdf",
}

var pdfQueryMarkers = []string{"format=pdf", "file=pdf", "type=pdf"}

// DefaultPDFHeadTimeout HEAD探测超时
const DefaultPDFHeadTimeout = 10 * time.Second

// PDFDetector 判断URL是否指向PDF
type PDFDetector struct {
	client *http.Client
	// DetectPathSegment 为true时路径包含 /pdf/ 也视为PDF
	DetectPathSegment bool
	headers           models.HeaderProvider
}

// NewPDFDetector 创建检测器
func NewPDFDetector(timeout time.Duration, detectPathSegment bool, headers models.HeaderProvider) *PDFDetector {
	if timeout <= 0 {
		timeout = DefaultPDFHeadTimeout
	}
	return &PDFDetector{
		client:            &http.Client{Timeout: timeout},
		DetectPathSegment: detectPathSegment,
		headers:           headers,
	}
}

// IsPDF 依次检查路径后缀、路径片段、查询参数,最后发送HEAD请求检查Content-Type。
// 从不返回错误: HEAD失败时退回到路径后缀判断。
func (d *PDFDetector) IsPDF(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
	}

	path := strings.ToLower(u.Path)
	if strings.HasSuffix(path, ".pdf") {
		return true
	}
	if d.DetectPathSegment && strings.Contains(path, "/pdf/") {
		return true
	}
	query := strings.ToLower(u.RawQuery)
	for _, marker := range pdfQueryMarkers {
		if strings.Contains(query, marker) {
			return true
		}
	}

	contentType, err := d.head(ctx, rawURL)
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("HEAD探测失败,按路径判断")
		return strings.HasSuffix(path, ".pdf")
	}
	contentType = strings.ToLower(contentType)
	for _, ct := range pdfContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

func (d *PDFDetector) head(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	if d.headers != nil {
		if h, err := d.headers.GetHeaders(); err == nil {
			for name, values := range h {
				if len(values) > 0 {
					req.Header.Set(name, values[0])
				}
			}
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return resp.Header.Get("Content-Type"), nil
}
