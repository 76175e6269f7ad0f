package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/analyzer"
	"github.com/RecoveryAshes/webscraper/internal/crawler"
	"github.com/RecoveryAshes/webscraper/internal/fetchers"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/output"
	"github.com/RecoveryAshes/webscraper/internal/pdf"
)

// ScrapeOptions 单次抓取的参数,零值字段使用配置中的值
type ScrapeOptions struct {
	Mode     models.FetchMode
	Depth    int
	WaitTime time.Duration
	Scroll   bool
	Format   string
}

// pdfDetector 判断URL是否指向PDF
type pdfDetector interface {
	IsPDF(ctx context.Context, url string) bool
}

// FetcherFactory 按模式创建抓取器
type FetcherFactory func(mode models.FetchMode, opts fetchers.RenderOptions) (fetchers.Fetcher, error)

// Scraper 单个URL的抓取入口: PDF走PDF流水线,其余按模式抓取后保存
type Scraper struct {
	cfg      *Config
	headers  models.HeaderProvider
	analyzer *analyzer.Analyzer
	store    *output.Store
	detector pdfDetector
	pdf      *pdf.Extractor

	newFetcher FetcherFactory
}

// NewScraper 创建抓取器,输出目录需已存在
func NewScraper(cfg *Config, headers models.HeaderProvider) *Scraper {
	a := analyzer.New()
	s := &Scraper{
		cfg:      cfg,
		headers:  headers,
		analyzer: a,
		store:    output.NewStore(cfg.Output.Dir),
		detector: fetchers.NewPDFDetector(cfg.PDF.DetectTimeout, cfg.PDF.DetectPathSegment, headers),
		pdf: pdf.NewExtractor(
			pdf.WithTimeout(cfg.PDF.DownloadTimeout),
			pdf.WithAnalyzer(a),
			pdf.WithHeaderProvider(headers),
		),
	}
	s.newFetcher = s.buildFetcher
	return s
}

// buildFetcher 渲染模式每次调用都启动新的浏览器会话,由调用方Close
func (s *Scraper) buildFetcher(mode models.FetchMode, opts fetchers.RenderOptions) (fetchers.Fetcher, error) {
	if mode != models.ModeRender {
		return fetchers.NewStaticFetcher(s.cfg.StaticOptions(), s.headers), nil
	}
	if s.cfg.Render.Engine == EngineChromedp {
		return fetchers.NewChromedpFetcher(s.cfg.BrowserOptions(), opts, s.headers)
	}
	return fetchers.LaunchRenderFetcher(s.cfg.BrowserOptions(), opts, s.headers)
}

// resolve 用配置补全未指定的参数
func (s *Scraper) resolve(opts ScrapeOptions) (ScrapeOptions, models.CrawlConfig) {
	crawl := s.cfg.CrawlConfig()
	if opts.Mode == "" {
		opts.Mode = models.FetchMode(s.cfg.Fetch.Mode)
	}
	if opts.Depth > 0 {
		crawl.Depth = opts.Depth
	}
	if opts.WaitTime > 0 {
		crawl.WaitTime = opts.WaitTime
	}
	crawl.Scroll = crawl.Scroll || opts.Scroll
	if opts.Format == "" {
		opts.Format = s.cfg.Output.Format
	}
	return opts, crawl
}

// Scrape 抓取并保存一个URL
func (s *Scraper) Scrape(ctx context.Context, rawURL string, opts ScrapeOptions) (*models.ScrapeResult, error) {
	if err := models.ValidateURL(rawURL); err != nil {
		return failed(rawURL, err), err
	}
	opts, crawl := s.resolve(opts)
	ser := output.NewSerializer(opts.Format)

	if s.detector.IsPDF(ctx, rawURL) {
		log.Info().Msgf("📄 检测到PDF: %s", rawURL)
		rec, err := s.pdf.ExtractFromURL(ctx, rawURL)
		return s.savePDF(rawURL, rec, err, ser)
	}

	renderOpts := s.cfg.RenderOptions()
	renderOpts.WaitTime = crawl.WaitTime
	renderOpts.Scroll = crawl.Scroll

	f, err := s.newFetcher(opts.Mode, renderOpts)
	if err != nil {
		err = fmt.Errorf("创建抓取器失败: %w", err)
		return failed(rawURL, err), err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("关闭抓取器失败")
		}
	}()

	record, err := crawler.NewController(f, crawl, s.analyzer).Crawl(ctx, rawURL, crawl.Depth)
	if err != nil {
		return failed(rawURL, err), err
	}

	path, err := s.store.SaveContent(record, ser)
	if err != nil {
		return failed(rawURL, err), err
	}
	log.Info().Msgf("💾 已保存: %s", path)

	return &models.ScrapeResult{
		URL:        rawURL,
		Title:      record.Title,
		Content:    record.Content,
		OutputPath: path,
		Status:     models.StatusSuccess,
	}, nil
}

// ScrapePDFFile 提取并保存本地PDF文件
func (s *Scraper) ScrapePDFFile(filePath, format string) (*models.ScrapeResult, error) {
	if format == "" {
		format = s.cfg.Output.Format
	}
	rec, err := s.pdf.ExtractFromFile(filePath)
	if rec == nil {
		return failed(filePath, err), err
	}
	return s.savePDF(filePath, rec, err, output.NewSerializer(format))
}

// savePDF 即使提取失败也保存错误记录
func (s *Scraper) savePDF(source string, rec *models.PdfRecord, extractErr error, ser output.Serializer) (*models.ScrapeResult, error) {
	path, err := s.store.SavePDF(rec, ser)
	if err != nil {
		err = errors.Join(extractErr, err)
		return failed(source, err), err
	}
	log.Info().Msgf("💾 已保存: %s", path)

	result := &models.ScrapeResult{
		URL:        source,
		Title:      rec.Title,
		Content:    rec.Content,
		OutputPath: path,
		Status:     models.StatusSuccess,
		IsPDF:      true,
	}
	if extractErr != nil {
		result.Status = models.StatusError
		result.Error = extractErr.Error()
	}
	return result, extractErr
}

func failed(rawURL string, err error) *models.ScrapeResult {
	return &models.ScrapeResult{
		URL:    rawURL,
		Status: models.StatusError,
		Error:  err.Error(),
	}
}
