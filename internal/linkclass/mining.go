package linkclass

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/extract"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// 模块列表所在的内容容器
var contentContainers = []string{
	"div.section",
	"div.document",
	"div#content",
	"div.content",
	"div[role='main']",
}

type layer struct {
	name string
	mine func(doc *goquery.Document, baseURL string) []models.DocLink
}

var miningLayers = []layer{
	{"toctree", mineToctree},
	{"content-list", mineContentList},
	{"sidebar", mineSidebar},
	{"all-anchors", mineAllAnchors},
}

// ExtractModules 从ReadTheDocs页面中挖掘模块链接。
// 依次尝试 toctree、内容区列表、侧边栏、全部链接,返回第一个非空层的结果,按绝对URL去重。
func ExtractModules(baseURL, htmlContent string) []models.DocLink {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return []models.DocLink{}
	}

	for _, l := range miningLayers {
		links := l.mine(doc, baseURL)
		if len(links) == 0 {
			continue
		}
		log.Debug().Str("layer", l.name).Int("count", len(links)).Msg("模块链接挖掘命中")
		return dedupByURL(links)
	}
	return []models.DocLink{}
}

func anchorText(s *goquery.Selection) string {
	return extract.Text(s, "")
}

func mineToctree(doc *goquery.Document, baseURL string) []models.DocLink {
	var links []models.DocLink
	doc.Find("div.toctree-wrapper a.reference[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, models.DocLink{URL: extract.Absolutize(href, baseURL), Text: anchorText(a)})
	})
	return links
}

func mineContentList(doc *goquery.Document, baseURL string) []models.DocLink {
	// 每个存在的容器都扫描,最后再扫整个文档,重复的链接由 dedupByURL 去掉
	containers := make([]*goquery.Selection, 0, len(contentContainers)+1)
	for _, sel := range contentContainers {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			containers = append(containers, s)
		})
	}
	containers = append(containers, doc.Selection)

	var links []models.DocLink
	for _, container := range containers {
		container.Find("li a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			text := anchorText(a)
			lowerHref := strings.ToLower(href)
			if href == "" {
				return
			}
			if strings.Contains(lowerHref, "module") ||
				strings.Contains(strings.ToLower(text), "module") ||
				strings.Contains(lowerHref, ".html") {
				links = append(links, models.DocLink{URL: extract.Absolutize(href, baseURL), Text: text})
			}
		})
	}
	return links
}

func mineSidebar(doc *goquery.Document, baseURL string) []models.DocLink {
	sidebar := doc.Find("div.sphinxsidebar").First()
	if sidebar.Length() == 0 {
		sidebar = doc.Find("nav.wy-nav-side").First()
	}

	var links []models.DocLink
	sidebar.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := anchorText(a)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if strings.Contains(href, ".html") ||
			strings.Contains(strings.ToLower(href), "module") ||
			strings.Contains(strings.ToLower(text), "module") {
			links = append(links, models.DocLink{URL: extract.Absolutize(href, baseURL), Text: text})
		}
	})
	return links
}

func mineAllAnchors(doc *goquery.Document, baseURL string) []models.DocLink {
	var links []models.DocLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		absolute := strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
		if absolute && !strings.Contains(href, baseURL) {
			return
		}
		abs := extract.Absolutize(href, baseURL)
		lower := strings.ToLower(abs)
		if strings.Contains(abs, ".html") || strings.Contains(lower, "module") || strings.Contains(lower, "api") {
			links = append(links, models.DocLink{URL: abs, Text: anchorText(a)})
		}
	})
	return links
}

func dedupByURL(links []models.DocLink) []models.DocLink {
	seen := make(map[string]bool, len(links))
	out := make([]models.DocLink, 0, len(links))
	for _, l := range links {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}
