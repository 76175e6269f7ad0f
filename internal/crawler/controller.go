// Package crawler 实现从种子页面出发的有限深度抓取
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/extract"
	"github.com/RecoveryAshes/webscraper/internal/fetchers"
	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// summarySuffix 摘要截断后追加的后缀
const summarySuffix = "..."

// Analyzer 文本分析
type Analyzer interface {
	Analyze(text string) models.AnalysisResult
}

// Controller 抓取控制器
// 流程: 抓取种子 → 提取 → 分析 → (深度>1时)抓取同域子页面摘要
type Controller struct {
	Fetcher   fetchers.Fetcher
	Extractor *extract.Extractor
	Analyzer  Analyzer

	ChildCap        int           // 子页面数量上限
	SummaryLen      int           // 子页面正文摘要长度(字符)
	SummaryHeadings int           // 子页面摘要保留的标题数,0表示不保留
	ChildDelay      time.Duration // 子页面之间的间隔
}

// NewController 按抓取器的模式选择提取配置、子页面上限和摘要参数
func NewController(f fetchers.Fetcher, cfg models.CrawlConfig, analyzer Analyzer) *Controller {
	c := &Controller{
		Fetcher:   f,
		Extractor: extract.New(extract.ProfileFor(f.Mode())),
		Analyzer:  analyzer,
	}
	if f.Mode() == models.ModeRender {
		c.ChildCap = cfg.RenderChildCap
		c.SummaryLen = cfg.RenderSummary
		c.SummaryHeadings = cfg.SummaryHeadings
	} else {
		c.ChildCap = cfg.StaticChildCap
		c.SummaryLen = cfg.StaticSummary
		c.ChildDelay = cfg.ChildDelay
	}
	return c
}

// Crawl 抓取种子页面。种子抓取失败直接返回错误;子页面失败只记录警告并跳过。
func (c *Controller) Crawl(ctx context.Context, seedURL string, depth int) (*models.ContentRecord, error) {
	crawlID := uuid.NewString()
	visited := NewVisitedSet()
	visited.Add(seedURL)

	log.Debug().Str("crawl_id", crawlID).Str("url", seedURL).Int("depth", depth).
		Str("mode", string(c.Fetcher.Mode())).Msg("开始抓取")

	record, err := c.fetchRecord(ctx, seedURL)
	if err != nil {
		return nil, err
	}
	record.ScrapeDepth = depth
	if record.Content != "" && c.Analyzer != nil {
		analysis := c.Analyzer.Analyze(record.Content)
		record.Analysis = &analysis
	}

	if depth > 1 {
		record.LinkedPages = c.crawlChildren(ctx, record, visited, depth-1)
		log.Debug().Str("crawl_id", crawlID).Int("linked_pages", len(record.LinkedPages)).Msg("子页面抓取完成")
	}

	log.Debug().Str("crawl_id", crawlID).Strs("visited", visited.Order()).Msg("抓取结束")
	return record, nil
}

// fetchRecord 抓取并提取单个页面
func (c *Controller) fetchRecord(ctx context.Context, pageURL string) (*models.ContentRecord, error) {
	raw, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	record, err := c.Extractor.ExtractHTML(raw.HTML, pageURL)
	if err != nil {
		return nil, fmt.Errorf("提取页面内容失败 [%s]: %w", pageURL, err)
	}
	if raw.Rendered && raw.Title != "" {
		record.Title = raw.Title
	}
	record.Rendered = raw.Rendered
	record.Timestamp = time.Now()
	return record, nil
}

// ChildCandidates 从种子链接中选出待抓取的子页面:
// 与种子同域、按规范化URL首次出现去重、排除已访问,最多取ChildCap个
func (c *Controller) ChildCandidates(seed *models.ContentRecord, visited *VisitedSet) []string {
	seen := make(map[string]struct{})
	var candidates []string
	for _, link := range seed.Links {
		if len(candidates) >= c.ChildCap {
			break
		}
		if !extract.SameHost(link.Href, seed.URL) {
			continue
		}
		key := NormalizeURL(link.Href)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if visited.Contains(link.Href) {
			continue
		}
		candidates = append(candidates, link.Href)
	}
	return candidates
}

// crawlChildren 串行抓取子页面并生成摘要。子页面不再向下递归。
func (c *Controller) crawlChildren(ctx context.Context, seed *models.ContentRecord, visited *VisitedSet, remaining int) []models.LinkedPageSummary {
	if remaining <= 0 || c.ChildCap <= 0 {
		return nil
	}

	candidates := c.ChildCandidates(seed, visited)
	summaries := make([]models.LinkedPageSummary, 0, len(candidates))

	for i, childURL := range candidates {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("抓取已取消,停止处理子页面")
			break
		}
		if i > 0 && c.ChildDelay > 0 {
			select {
			case <-ctx.Done():
				return summaries
			case <-time.After(c.ChildDelay):
			}
		}

		// 抓取前标记,失败的URL也不会被再次尝试
		if !visited.Add(childURL) {
			continue
		}

		log.Debug().Str("url", childURL).Msgf("抓取子页面 [%d/%d]", i+1, len(candidates))
		child, err := c.fetchRecord(ctx, childURL)
		if err != nil {
			log.Warn().Err(err).Str("url", childURL).Msg("子页面抓取失败,已跳过")
			continue
		}

		summaries = append(summaries, c.summarize(child))
		metrics.LinkedPages.Inc()
	}
	return summaries
}

func (c *Controller) summarize(child *models.ContentRecord) models.LinkedPageSummary {
	summary := models.LinkedPageSummary{
		URL:            child.URL,
		Title:          child.Title,
		ContentSummary: truncate(child.Content, c.SummaryLen) + summarySuffix,
	}
	if c.SummaryHeadings > 0 && len(child.Headings) > 0 {
		n := min(c.SummaryHeadings, len(child.Headings))
		summary.Headings = append([]models.Heading(nil), child.Headings[:n]...)
	}
	return summary
}

// truncate 按字符截断
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
