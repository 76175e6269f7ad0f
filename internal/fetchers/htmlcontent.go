package fetchers

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// maxHTMLHeadings HTMLContent中保留的标题数量
const maxHTMLHeadings = 10

// HTMLContent 只用于链接提取的轻量抓取结果
type HTMLContent struct {
	URL             string
	HTML            string
	Title           string
	MetaDescription string
	Headings        []models.Heading
}

// GetHTMLContent 抓取页面并取出标题、描述和前10个标题,不做正文提取
func GetHTMLContent(ctx context.Context, f Fetcher, rawURL string) (*HTMLContent, error) {
	raw, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.HTML))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	content := &HTMLContent{
		URL:      raw.URL,
		HTML:     raw.HTML,
		Title:    raw.Title,
		Headings: make([]models.Heading, 0, maxHTMLHeadings),
	}
	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if content.Title == "" {
		content.Title = models.NoTitle
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		content.MetaDescription = strings.TrimSpace(desc)
	}

	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(content.Headings) >= maxHTMLHeadings {
			return false
		}
		content.Headings = append(content.Headings, models.Heading{
			Level: int(goquery.NodeName(s)[1] - '0'),
			Text:  strings.TrimSpace(s.Text()),
		})
		return true
	})

	return content, nil
}
