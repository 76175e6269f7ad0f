package linkclass

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/webscraper/internal/extract"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// MakeAbsolute 将相对链接转换为绝对URL,已有主机名的链接保持不变
func MakeAbsolute(links []models.DocLink, baseURL string) []models.DocLink {
	out := make([]models.DocLink, 0, len(links))
	for _, l := range links {
		if u, err := url.Parse(l.URL); err == nil && u.Host != "" {
			out = append(out, l)
			continue
		}
		out = append(out, models.DocLink{URL: extract.Absolutize(l.URL, baseURL), Text: l.Text})
	}
	return out
}

// FilterByPattern 保留URL或文本包含pattern的链接(忽略大小写的子串匹配)
func FilterByPattern(links []models.DocLink, pattern string) []models.DocLink {
	if pattern == "" {
		return links
	}

	needle := strings.ToLower(pattern)
	out := make([]models.DocLink, 0, len(links))
	for _, l := range links {
		if strings.Contains(strings.ToLower(l.URL), needle) || strings.Contains(strings.ToLower(l.Text), needle) {
			out = append(out, l)
		}
	}
	return out
}

// SameHostOnly 只保留与baseURL同主机的链接
func SameHostOnly(links []models.DocLink, baseURL string) []models.DocLink {
	out := make([]models.DocLink, 0, len(links))
	for _, l := range links {
		if extract.SameHost(l.URL, baseURL) {
			out = append(out, l)
		}
	}
	return out
}

// MergeNew 将extra中URL未出现过的链接追加到links之后
func MergeNew(links, extra []models.DocLink) []models.DocLink {
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		seen[l.URL] = true
	}
	out := append([]models.DocLink{}, links...)
	for _, l := range extra {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}

// SidebarLinks 从 div.sphinxsidebar 或 div.sidebar 中提取站内链接
func SidebarLinks(baseURL, htmlContent string) []models.DocLink {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return []models.DocLink{}
	}

	sidebar := doc.Find("div.sphinxsidebar").First()
	if sidebar.Length() == 0 {
		sidebar = doc.Find("div.sidebar").First()
	}

	links := []models.DocLink{}
	sidebar.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		external := strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
		if external && !strings.HasPrefix(href, baseURL) {
			return
		}
		links = append(links, models.DocLink{URL: extract.Absolutize(href, baseURL), Text: anchorText(a)})
	})
	return links
}
