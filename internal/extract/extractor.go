// Package extract 从已解析的HTML文档中提取结构化字段。
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// Profile 正文选择器配置
type Profile struct {
	Name string
	// Selectors 按优先级排列的正文容器选择器
	Selectors []string
	// JoinAll 为true时取第一个有匹配的选择器的全部匹配元素,否则只取第一个文本非空的匹配
	JoinAll bool
	// Separator 文本节点之间的分隔符
	Separator string
	// Rich 是否提取表格和代码块
	Rich bool
}

var (
	// StaticProfile 静态抓取使用的选择器
	StaticProfile = Profile{
		Name:      "static",
		Selectors: []string{"main", "article", "#content", ".content", "#main", ".main", ".post", ".entry"},
		Separator: " ",
	}

	// RenderedProfile 浏览器渲染后使用的选择器
	RenderedProfile = Profile{
		Name: "rendered",
		Selectors: []string{
			"main", "article", "#content", ".content",
			"#main", ".main", ".post", ".entry",
			"[role='main']", "[role='article']", ".document-content",
			".docContent", "#documentation", ".documentation",
		},
		JoinAll:   true,
		Separator: "\n",
		Rich:      true,
	}
)

// ProfileFor 根据抓取模式选择配置
func ProfileFor(mode models.FetchMode) Profile {
	if mode == models.ModeRender {
		return RenderedProfile
	}
	return StaticProfile
}

// Extractor 页面字段提取器
type Extractor struct {
	profile Profile
}

// New 创建提取器
func New(profile Profile) *Extractor {
	return &Extractor{profile: profile}
}

// Profile 返回当前配置
func (e *Extractor) Profile() Profile {
	return e.profile
}

// ExtractHTML 解析HTML字符串后提取
func (e *Extractor) ExtractHTML(htmlContent, pageURL string) (*models.ContentRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	return e.Extract(doc, pageURL), nil
}

// Extract 提取标题、描述、正文、链接、标题层级和图片。
// 渲染配置下额外提取表格和代码块。分析结果和时间戳由调用方填写。
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) *models.ContentRecord {
	r := models.NewContentRecord(pageURL)

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		r.Title = title
	}
	if desc, ok := doc.Find("meta[name='description']").First().Attr("content"); ok {
		r.MetaDescription = desc
	}

	r.Content = e.content(doc)
	r.Links = Links(doc, pageURL)
	r.Headings = Headings(doc)
	r.Images = Images(doc, pageURL)

	if e.profile.Rich {
		doc.Find("table").Each(func(_ int, s *goquery.Selection) {
			if raw, err := goquery.OuterHtml(s); err == nil {
				r.Tables = append(r.Tables, raw)
			}
		})
		doc.Find("code, pre").Each(func(_ int, s *goquery.Selection) {
			r.CodeBlocks = append(r.CodeBlocks, strings.TrimSpace(s.Text()))
		})
	}

	return r
}

func (e *Extractor) content(doc *goquery.Document) string {
	sep := e.profile.Separator
	for _, selector := range e.profile.Selectors {
		matches := doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}
		if e.profile.JoinAll {
			parts := make([]string, 0, matches.Length())
			matches.Each(func(_ int, s *goquery.Selection) {
				parts = append(parts, Text(s, sep))
			})
			if content := strings.Join(parts, "\n"); strings.TrimSpace(content) != "" {
				return content
			}
			break
		}
		if text := Text(matches.First(), sep); text != "" {
			return text
		}
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	return Text(body.First(), sep)
}

// Links 提取 a[href],跳过空链接、页内锚点和javascript:链接,href转换为绝对URL
func Links(doc *goquery.Document, pageURL string) []models.Link {
	links := []models.Link{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		links = append(links, models.Link{
			Text: strings.TrimSpace(s.Text()),
			Href: Absolutize(href, pageURL),
		})
	})
	return links
}

// Headings 按级别1到6依次提取,同级别内保持文档顺序
func Headings(doc *goquery.Document) []models.Heading {
	headings := []models.Heading{}
	for level := 1; level <= 6; level++ {
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, s *goquery.Selection) {
			headings = append(headings, models.Heading{Level: level, Text: strings.TrimSpace(s.Text())})
		})
	}
	return headings
}

// Images 提取 img[src]
func Images(doc *goquery.Document, pageURL string) []models.Image {
	images := []models.Image{}
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		alt, _ := s.Attr("alt")
		title, _ := s.Attr("title")
		images = append(images, models.Image{Src: Absolutize(src, pageURL), Alt: alt, Title: title})
	})
	return images
}

// Text 收集选区内的文本节点,逐个去除首尾空白后用sep连接。script和style的内容被忽略。
func Text(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
