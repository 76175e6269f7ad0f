package extract

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// Absolutize 将href相对base解析为绝对URL。已是绝对URL时原样返回,解析失败时返回原值。
func Absolutize(href, base string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// SameHost 判断两个URL的主机名是否相同
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Host != "" && ua.Host == ub.Host
}

// ExtractLinksFromHTML 遍历DOM提取所有 a[href]。
// base非空时href被转换为绝对URL;文本为各文本节点去空白后直接拼接。
func ExtractLinksFromHTML(htmlContent, base string) ([]models.DocLink, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	links := []models.DocLink{}
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := attr.Val
				if base != "" {
					href = Absolutize(href, base)
				}
				links = append(links, models.DocLink{URL: href, Text: nodeText(n)})
				break
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)

	return links, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
