package fetchers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// DefaultUserAgent 默认User-Agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) WebScraperUI/1.0.0"

// DefaultTimeout 静态请求超时
const DefaultTimeout = 30 * time.Second

// StaticOptions 静态抓取参数
type StaticOptions struct {
	Timeout            time.Duration
	UserAgent          string
	RespectRobots      bool
	InsecureSkipVerify bool
}

// StaticFetcher 基于colly的单次GET抓取,不重试
type StaticFetcher struct {
	base    *colly.Collector
	headers models.HeaderProvider
}

// NewStaticFetcher 创建静态抓取器
func NewStaticFetcher(opts StaticOptions, headers models.HeaderProvider) *StaticFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	// 访问记录由调用方维护,colly自身的去重必须关闭
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = !opts.RespectRobots

	c.SetClient(&http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
		},
		Timeout: opts.Timeout,
	})
	c.SetRequestTimeout(opts.Timeout)

	return &StaticFetcher{base: c, headers: headers}
}

// Mode 返回 static
func (f *StaticFetcher) Mode() models.FetchMode { return models.ModeStatic }

// Close 静态抓取器无需释放资源
func (f *StaticFetcher) Close() error { return nil }

// Fetch 发起一次GET请求。非2xx状态码或网络错误返回 *models.FetchError。
func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) (page *RawPage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(string(models.ModeStatic), start, err) }()

	c := f.base.Clone()

	var (
		result   *RawPage
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		if f.headers == nil {
			return
		}
		headers, err := f.headers.GetHeaders()
		if err != nil {
			log.Warn().Err(err).Msg("获取HTTP头部失败")
			return
		}
		for name, values := range headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body, err := decompressBody(r.Headers.Get("Content-Encoding"), r.Body)
		if err != nil {
			log.Warn().Err(err).Str("url", r.Request.URL.String()).Msg("解压响应失败,使用原始内容")
			body = r.Body
		}
		result = &RawPage{
			URL:         r.Request.URL.String(),
			HTML:        string(body),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &models.FetchError{URL: pageURL, StatusCode: status, Err: err}
		log.Debug().Err(err).Str("url", pageURL).Int("status", status).Msg("爬取错误")
	})

	log.Debug().Str("url", pageURL).Msg("访问")
	visitErr := c.Visit(pageURL)

	switch {
	case fetchErr != nil:
		return nil, fetchErr
	case ctx.Err() != nil:
		return nil, &models.FetchError{URL: pageURL, Err: ctx.Err()}
	case visitErr != nil:
		return nil, &models.FetchError{URL: pageURL, Err: visitErr}
	case result == nil:
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("没有收到响应")}
	}
	return result, nil
}

// decompressBody 根据Content-Encoding解压响应体,支持 gzip, deflate, br。
// colly已自动解压gzip时响应头仍保留gzip,因此先检查gzip魔数。
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "", "identity":
		return body, nil

	default:
		log.Warn().Str("encoding", contentEncoding).Msg("未知的Content-Encoding")
		return body, nil
	}
}
