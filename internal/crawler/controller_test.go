package crawler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/RecoveryAshes/webscraper/internal/analyzer"
	"github.com/RecoveryAshes/webscraper/internal/fetchers"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// fakeFetcher 按URL返回预置页面,并记录每个URL的抓取次数
type fakeFetcher struct {
	mode  models.FetchMode
	pages map[string]string
	calls map[string]int
	order []string
}

func newFakeFetcher(mode models.FetchMode, pages map[string]string) *fakeFetcher {
	return &fakeFetcher{mode: mode, pages: pages, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetchers.RawPage, error) {
	f.calls[url]++
	f.order = append(f.order, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, &models.FetchError{URL: url, StatusCode: 404, Err: fmt.Errorf("not found")}
	}
	return &fetchers.RawPage{URL: url, HTML: html, Rendered: f.mode == models.ModeRender}, nil
}

func (f *fakeFetcher) Mode() models.FetchMode { return f.mode }
func (f *fakeFetcher) Close() error           { return nil }

const seed = "https://docs.example.com/index.html"

func seedHTML(links ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Seed</title></head><body><main><p>Seed page text here.</p>")
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, l)
	}
	b.WriteString("</main></body></html>")
	return b.String()
}

func childHTML(title string) string {
	return "<html><head><title>" + title + "</title></head><body><main><h2>Intro</h2><h3>Part</h3><p>" +
		strings.Repeat("child content ", 40) + "</p></main></body></html>"
}

func staticConfig() models.CrawlConfig {
	cfg := models.DefaultCrawlConfig()
	cfg.ChildDelay = 0
	return cfg
}

func TestController_Crawl(t *testing.T) {
	pages := map[string]string{
		seed: seedHTML(
			"/a.html", "/b.html", "/a.html", "/missing.html",
			"https://other.example.org/x.html", "/index.html", "#top",
		),
		"https://docs.example.com/a.html": childHTML("A"),
		"https://docs.example.com/b.html": childHTML("B"),
	}

	t.Run("深度1不抓取子页面", func(t *testing.T) {
		f := newFakeFetcher(models.ModeStatic, pages)
		c := NewController(f, staticConfig(), analyzer.New())

		record, err := c.Crawl(context.Background(), seed, 1)
		if err != nil {
			t.Fatalf("Crawl() 错误 = %v", err)
		}
		if len(record.LinkedPages) != 0 {
			t.Errorf("len(LinkedPages) = %d, 期望 0", len(record.LinkedPages))
		}
		if record.Title != "Seed" {
			t.Errorf("Title = %q, 期望 Seed", record.Title)
		}
		if record.Analysis == nil {
			t.Error("正文非空时应有分析结果")
		}
		if len(f.order) != 1 {
			t.Errorf("抓取次数 = %d, 期望 1", len(f.order))
		}
	})

	t.Run("深度2抓取同域子页面并跳过失败", func(t *testing.T) {
		f := newFakeFetcher(models.ModeStatic, pages)
		c := NewController(f, staticConfig(), analyzer.New())

		record, err := c.Crawl(context.Background(), seed, 2)
		if err != nil {
			t.Fatalf("Crawl() 错误 = %v", err)
		}
		if len(record.LinkedPages) != 2 {
			t.Fatalf("len(LinkedPages) = %d, 期望 2", len(record.LinkedPages))
		}
		if record.LinkedPages[0].Title != "A" || record.LinkedPages[1].Title != "B" {
			t.Errorf("子页面顺序 = %q, %q, 期望 A, B", record.LinkedPages[0].Title, record.LinkedPages[1].Title)
		}
		for url, n := range f.calls {
			if n > 1 {
				t.Errorf("URL %s 被抓取 %d 次", url, n)
			}
		}
		if f.calls["https://other.example.org/x.html"] != 0 {
			t.Error("不应抓取跨域链接")
		}
		if f.calls["https://docs.example.com/missing.html"] != 1 {
			t.Error("失败的子页面应被尝试一次")
		}
		if record.ScrapeDepth != 2 {
			t.Errorf("ScrapeDepth = %d, 期望 2", record.ScrapeDepth)
		}

		summary := record.LinkedPages[0]
		if !strings.HasSuffix(summary.ContentSummary, "...") {
			t.Errorf("摘要应以 ... 结尾: %q", summary.ContentSummary)
		}
		if got := len([]rune(summary.ContentSummary)); got != 203 {
			t.Errorf("摘要长度 = %d, 期望 203", got)
		}
		if len(summary.Headings) != 0 {
			t.Error("静态模式摘要不保留标题")
		}
	})

	t.Run("渲染模式保留标题", func(t *testing.T) {
		f := newFakeFetcher(models.ModeRender, pages)
		c := NewController(f, staticConfig(), analyzer.New())

		record, err := c.Crawl(context.Background(), seed, 3)
		if err != nil {
			t.Fatalf("Crawl() 错误 = %v", err)
		}
		if len(record.LinkedPages) != 2 {
			t.Fatalf("len(LinkedPages) = %d, 期望 2", len(record.LinkedPages))
		}
		if got := len(record.LinkedPages[0].Headings); got != 2 {
			t.Errorf("len(Headings) = %d, 期望 2", got)
		}
		if !record.Rendered {
			t.Error("渲染模式记录应标记Rendered")
		}
	})

	t.Run("种子失败返回错误", func(t *testing.T) {
		f := newFakeFetcher(models.ModeStatic, map[string]string{})
		c := NewController(f, staticConfig(), analyzer.New())
		if _, err := c.Crawl(context.Background(), seed, 2); err == nil {
			t.Error("种子抓取失败时应返回错误")
		}
	})
}

func TestController_ChildCap(t *testing.T) {
	var links []string
	pages := map[string]string{}
	for i := 0; i < 12; i++ {
		link := fmt.Sprintf("https://docs.example.com/p%d.html", i)
		links = append(links, link)
		pages[link] = childHTML(fmt.Sprintf("P%d", i))
	}
	pages[seed] = seedHTML(links...)

	tests := []struct {
		name string
		mode models.FetchMode
		want int
	}{
		{"静态模式最多5个", models.ModeStatic, 5},
		{"渲染模式最多10个", models.ModeRender, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher(tt.mode, pages)
			c := NewController(f, staticConfig(), nil)
			record, err := c.Crawl(context.Background(), seed, 2)
			if err != nil {
				t.Fatalf("Crawl() 错误 = %v", err)
			}
			if len(record.LinkedPages) != tt.want {
				t.Errorf("len(LinkedPages) = %d, 期望 %d", len(record.LinkedPages), tt.want)
			}
			if record.Analysis != nil {
				t.Error("没有Analyzer时不应有分析结果")
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"末尾斜杠", "https://docs.example.com/guide/", "https://docs.example.com/guide", true},
		{"根路径", "https://docs.example.com/", "https://docs.example.com", true},
		{"主机大小写", "https://Docs.Example.com/a", "https://docs.example.com/a", true},
		{"忽略fragment", "https://docs.example.com/a#top", "https://docs.example.com/a", true},
		{"查询参数不同", "https://docs.example.com/a?p=1", "https://docs.example.com/a?p=2", false},
		{"路径不同", "https://docs.example.com/a", "https://docs.example.com/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.a) == NormalizeURL(tt.b); got != tt.same {
				t.Errorf("NormalizeURL(%q) == NormalizeURL(%q) 为 %v, 期望 %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestController_SeedNotRefetched(t *testing.T) {
	root := "https://docs.example.com/guide/"
	pages := map[string]string{
		root: seedHTML("https://docs.example.com/guide", "/guide/#intro", "/guide/a.html"),
		"https://docs.example.com/guide/a.html": childHTML("A"),
	}
	f := newFakeFetcher(models.ModeStatic, pages)
	c := NewController(f, staticConfig(), analyzer.New())

	record, err := c.Crawl(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("Crawl() 错误 = %v", err)
	}
	if f.calls["https://docs.example.com/guide"] != 0 || f.calls["https://docs.example.com/guide/#intro"] != 0 {
		t.Errorf("种子页面的其他写法不应再次抓取: %v", f.order)
	}
	if len(f.order) != 2 {
		t.Errorf("抓取顺序 = %v, 期望种子和 a.html", f.order)
	}
	if len(record.LinkedPages) != 1 || record.LinkedPages[0].Title != "A" {
		t.Errorf("LinkedPages = %v", record.LinkedPages)
	}
}

func TestVisitedSet(t *testing.T) {
	v := NewVisitedSet()
	if !v.Add("a") || !v.Add("b") {
		t.Fatal("首次加入应返回true")
	}
	if v.Add("a") {
		t.Error("重复加入应返回false")
	}
	if !v.Contains("b") || v.Contains("c") {
		t.Error("Contains结果错误")
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, 期望 2", v.Len())
	}
	order := v.Order()
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Order() = %v, 期望 [a b]", order)
	}
	if !v.Add("https://x.com/p/") || v.Add("https://x.com/p") || !v.Contains("https://X.com/p#s") {
		t.Error("规范化后相同的URL应视为已访问")
	}
	order[0] = "x"
	if v.Order()[0] != "a" {
		t.Error("Order() 应返回副本")
	}
}
