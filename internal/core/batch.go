package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// 批量抓取文档链接时每个链接的抓取参数
const (
	docsLinkDepth    = 2
	genericLinkDepth = 1
	docsLinkWait     = 10 * time.Second
	genericLinkWait  = 5 * time.Second
)

// pageScraper 单个URL抓取
type pageScraper interface {
	Scrape(ctx context.Context, rawURL string, opts ScrapeOptions) (*models.ScrapeResult, error)
}

// BatchOptions 批量抓取参数
type BatchOptions struct {
	Mode            models.FetchMode
	Format          string
	Delay           time.Duration
	ContinueOnError bool
	Limit           int    // 0表示按站点类型取默认上限
	ReportDir       string // 为空时不写报告
}

// BatchScraper 串行批量抓取器
type BatchScraper struct {
	scraper  pageScraper
	cfg      BatchConfig
	Progress io.Writer // 非nil时输出进度条
}

// NewBatchScraper 创建批量抓取器
func NewBatchScraper(s *Scraper, cfg BatchConfig) *BatchScraper {
	return &BatchScraper{scraper: s, cfg: cfg}
}

// DefaultBatchOptions 从配置得到的批量参数
func (bs *BatchScraper) DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Delay:           bs.cfg.Delay,
		ContinueOnError: bs.cfg.ContinueOnError,
		ReportDir:       bs.cfg.ReportDir,
	}
}

// batchTarget 待抓取的链接
type batchTarget struct {
	url  string
	text string
}

// ScrapeLinks 抓取文档链接提取结果中的链接。
// 文档平台按 modules, submodules, main, other 的优先级取前30个,其他站点按分类顺序取前15个。
func (bs *BatchScraper) ScrapeLinks(ctx context.Context, result *DocLinksResult, opts BatchOptions) (*models.BatchReport, error) {
	var links []models.DocLink
	limit := bs.cfg.GenericLimit
	scrapeOpts := ScrapeOptions{
		Mode:     opts.Mode,
		Format:   opts.Format,
		Depth:    genericLinkDepth,
		WaitTime: genericLinkWait,
		Scroll:   true,
	}
	if result.IsDocPlatform {
		links = result.Structure.Prioritized()
		limit = bs.cfg.DocsLimit
		scrapeOpts.Depth = docsLinkDepth
		scrapeOpts.WaitTime = docsLinkWait
	} else {
		links = result.Structure.Flatten()
	}
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	targets := make([]batchTarget, 0, len(links))
	for _, l := range links {
		targets = append(targets, batchTarget{url: l.URL, text: l.Text})
	}

	utils.Infof("🚀 开始批量抓取: %d个链接 (共提取 %d 个)", len(targets), result.Total)
	return bs.run(ctx, result.URL, targets, scrapeOpts, opts)
}

// ScrapeURLs 按配置参数依次抓取URL列表
func (bs *BatchScraper) ScrapeURLs(ctx context.Context, urls []string, opts BatchOptions) (*models.BatchReport, error) {
	targets := make([]batchTarget, 0, len(urls))
	for _, u := range urls {
		targets = append(targets, batchTarget{url: u})
	}

	utils.Infof("🚀 开始批量抓取: %d个URL", len(urls))
	return bs.run(ctx, "", targets, ScrapeOptions{Mode: opts.Mode, Format: opts.Format}, opts)
}

func (bs *BatchScraper) run(ctx context.Context, baseURL string, targets []batchTarget, scrapeOpts ScrapeOptions, opts BatchOptions) (*models.BatchReport, error) {
	report := models.NewBatchReport(baseURL, scrapeOpts.Format)
	report.TotalLinks = len(targets)

	var bar interface{ Add(int) error }
	if bs.Progress != nil && len(targets) > 0 {
		bar = utils.NewProgressBarTo(bs.Progress, len(targets), "批量抓取")
	}

	var runErr error
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			utils.Warn("批量抓取已取消")
			runErr = err
			break
		}
		utils.Infof("[%d/%d] 目标URL: %s", i+1, len(targets), target.url)

		start := time.Now()
		res, err := bs.scraper.Scrape(ctx, target.url, scrapeOpts)
		item := models.BatchItem{
			URL:      target.url,
			Text:     target.text,
			Status:   models.StatusSuccess,
			Duration: time.Since(start).Seconds(),
		}
		if res != nil {
			item.Title = res.Title
			item.OutputPath = res.OutputPath
		}
		if err != nil {
			item.Status = models.StatusError
			item.Error = err.Error()
		}
		report.Record(item)

		if bar != nil {
			_ = bar.Add(1)
		}

		if err != nil {
			utils.Errorf("❌ 抓取失败: %v", err)
			if !opts.ContinueOnError {
				utils.Warn("批量抓取中止 (--continue-on-error=false)")
				break
			}
		}

		if i < len(targets)-1 && opts.Delay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个URL...", opts.Delay.Seconds())
			if err := sleep(ctx, opts.Delay); err != nil {
				runErr = err
				break
			}
		}
	}

	report.Finish()
	printSummary(report)

	if opts.ReportDir != "" {
		name := fmt.Sprintf("batch_report_%s.json", report.StartTime.Format("20060102_150405"))
		path, err := utils.WriteJSONReport(opts.ReportDir, name, report)
		if err != nil {
			utils.Errorf("写入批量报告失败: %v", err)
		} else {
			utils.Infof("📝 批量报告: %s", path)
		}
	}

	return report, runErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// printSummary 打印批量抓取摘要
func printSummary(report *models.BatchReport) {
	utils.Info("==================================================")
	utils.Info("📊 批量抓取摘要")
	utils.Info("==================================================")
	utils.Infof("总链接数: %d", report.TotalLinks)
	utils.Infof("已处理: %d", report.ProcessedLinks)
	utils.Infof("✅ 成功: %d", report.SuccessCount)
	utils.Infof("❌ 失败: %d", report.FailCount)
	utils.Infof("⏱️  总耗时: %.2f秒", report.Duration)
	utils.Info("==================================================")

	if report.FailCount > 0 {
		utils.Warn("失败的URL:")
		for _, item := range report.Results {
			if item.Status != models.StatusSuccess {
				utils.Warnf("  - %s: %s", item.URL, item.Error)
			}
		}
	}
}
