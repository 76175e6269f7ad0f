package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/extract"
	"github.com/RecoveryAshes/webscraper/internal/fetchers"
	"github.com/RecoveryAshes/webscraper/internal/linkclass"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// 链接提取的数量限制
const (
	minPerCategory    = 3
	minModuleLinks    = 3
	defaultMaxDocLink = 20
)

// DocLinksOptions 文档链接提取参数
type DocLinksOptions struct {
	Mode     models.FetchMode
	MaxLinks int
	Pattern  string // 可选的URL/文本过滤正则
}

// DocLinksResult 文档链接提取结果
type DocLinksResult struct {
	URL             string              `json:"url"`
	Title           string              `json:"title"`
	MetaDescription string              `json:"meta_description,omitempty"`
	Headings        []models.Heading    `json:"headings,omitempty"`
	IsDocPlatform   bool                `json:"is_doc_platform"`
	Structure       models.DocStructure `json:"structure"`
	Total           int                 `json:"total"`
}

// DocLinks 抓取文档首页并分类其中的链接,不保存页面
type DocLinks struct {
	newFetcher FetcherFactory
	render     fetchers.RenderOptions
	defaults   models.FetchMode
}

// NewDocLinks 使用Scraper的抓取器工厂
func NewDocLinks(s *Scraper) *DocLinks {
	return &DocLinks{
		newFetcher: s.newFetcher,
		render:     s.cfg.RenderOptions(),
		defaults:   models.FetchMode(s.cfg.Fetch.Mode),
	}
}

// Extract 抓取url并返回分类后的站内链接
func (d *DocLinks) Extract(ctx context.Context, pageURL string, opts DocLinksOptions) (*DocLinksResult, error) {
	if err := models.ValidateURL(pageURL); err != nil {
		return nil, err
	}
	if opts.Mode == "" {
		opts.Mode = d.defaults
	}
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = defaultMaxDocLink
	}

	f, err := d.newFetcher(opts.Mode, d.render)
	if err != nil {
		return nil, fmt.Errorf("创建抓取器失败: %w", err)
	}
	defer f.Close()

	page, err := fetchers.GetHTMLContent(ctx, f, pageURL)
	if err != nil {
		return nil, err
	}

	result := &DocLinksResult{
		URL:             pageURL,
		Title:           page.Title,
		MetaDescription: page.MetaDescription,
		Headings:        page.Headings,
		IsDocPlatform:   strings.Contains(strings.ToLower(pageURL), "readthedocs.io"),
	}
	result.Structure = ClassifyPage(pageURL, page.HTML, result.IsDocPlatform, opts)
	result.Total = result.Structure.Total()

	log.Info().Msgf("🔗 提取到 %d 个文档链接 (主页面 %d, 模块 %d, 子模块 %d, 其他 %d)",
		result.Total, len(result.Structure.Main), len(result.Structure.Modules),
		len(result.Structure.Submodules), len(result.Structure.Other))
	return result, nil
}

// ClassifyPage 从页面HTML中提取、过滤并分类链接
func ClassifyPage(pageURL, html string, docPlatform bool, opts DocLinksOptions) models.DocStructure {
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = defaultMaxDocLink
	}
	regular, err := extract.ExtractLinksFromHTML(html, "")
	if err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("提取链接失败")
		regular = nil
	}
	regular = linkclass.MakeAbsolute(regular, pageURL)

	links := regular
	if docPlatform {
		modules := linkclass.ExtractModules(pageURL, html)
		links = linkclass.MergeNew(modules, regular)
	}

	links = linkclass.SameHostOnly(links, pageURL)
	links = linkclass.FilterByPattern(links, opts.Pattern)

	structure := linkclass.Classify(links)

	if docPlatform && len(structure.Modules)+len(structure.Submodules) < minModuleLinks {
		// 侧边栏链接已限定为站内链接,不再应用过滤模式
		log.Debug().Msg("模块链接过少,尝试从侧边栏提取")
		links = linkclass.MergeNew(links, linkclass.SidebarLinks(pageURL, html))
		structure = linkclass.Classify(links)
	}

	perCategory := opts.MaxLinks / 4
	if perCategory < minPerCategory {
		perCategory = minPerCategory
	}
	return structure.Limit(perCategory, opts.MaxLinks)
}
