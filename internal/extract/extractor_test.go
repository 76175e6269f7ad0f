package extract

import (
	"strings"
	"testing"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

const samplePage = `<html>
<head>
<title>  Sample Docs  </title>
<meta name="description" content="A sample page">
</head>
<body>
<nav><a href="#top">Top</a> <a href="javascript:void(0)">JS</a></nav>
<h2>Second A</h2>
<h1>First</h1>
<h2>Second B</h2>
<main>
  <p>Hello   world.</p>
  <p>Second paragraph</p>
  <table><tr><td>cell</td></tr></table>
  <pre>  x := 1  </pre>
</main>
<a href="/guide/intro.html"> Intro </a>
<a href="https://other.example.org/x">External</a>
<a href="">Empty</a>
<img src="img/logo.png" alt="Logo" title="The logo">
<img src="" alt="none">
<script>var hidden = 1;</script>
</body>
</html>`

func TestExtract_StaticProfile(t *testing.T) {
	r, err := New(StaticProfile).ExtractHTML(samplePage, "https://docs.example.com/guide/index.html")
	if err != nil {
		t.Fatalf("ExtractHTML() error = %v", err)
	}

	if r.Title != "Sample Docs" {
		t.Errorf("Title = %q, 期望 %q", r.Title, "Sample Docs")
	}
	if r.MetaDescription != "A sample page" {
		t.Errorf("MetaDescription = %q", r.MetaDescription)
	}
	if r.Domain != "docs.example.com" || r.Path != "/guide/index.html" {
		t.Errorf("Domain/Path = %s %s", r.Domain, r.Path)
	}
	if !strings.HasPrefix(r.Content, "Hello   world. Second paragraph cell x := 1") {
		t.Errorf("Content = %q", r.Content)
	}
	if len(r.Tables) != 0 || len(r.CodeBlocks) != 0 {
		t.Errorf("静态配置不应提取表格和代码块")
	}

	wantLinks := []models.Link{
		{Text: "Intro", Href: "https://docs.example.com/guide/intro.html"},
		{Text: "External", Href: "https://other.example.org/x"},
	}
	if len(r.Links) != len(wantLinks) {
		t.Fatalf("Links = %v, 期望 %v", r.Links, wantLinks)
	}
	for i := range wantLinks {
		if r.Links[i] != wantLinks[i] {
			t.Errorf("Links[%d] = %v, 期望 %v", i, r.Links[i], wantLinks[i])
		}
	}

	wantHeadings := []models.Heading{{Level: 1, Text: "First"}, {Level: 2, Text: "Second A"}, {Level: 2, Text: "Second B"}}
	if len(r.Headings) != len(wantHeadings) {
		t.Fatalf("Headings = %v", r.Headings)
	}
	for i := range wantHeadings {
		if r.Headings[i] != wantHeadings[i] {
			t.Errorf("Headings[%d] = %v, 期望 %v", i, r.Headings[i], wantHeadings[i])
		}
	}

	if len(r.Images) != 1 || r.Images[0].Src != "https://docs.example.com/guide/img/logo.png" || r.Images[0].Alt != "Logo" {
		t.Errorf("Images = %v", r.Images)
	}
}

func TestExtract_RenderedProfile(t *testing.T) {
	r, err := New(RenderedProfile).ExtractHTML(samplePage, "https://docs.example.com/")
	if err != nil {
		t.Fatalf("ExtractHTML() error = %v", err)
	}
	if !strings.HasPrefix(r.Content, "Hello   world.\nSecond paragraph\ncell") {
		t.Errorf("Content = %q", r.Content)
	}
	if len(r.Tables) != 1 || !strings.HasPrefix(r.Tables[0], "<table>") {
		t.Errorf("Tables = %v", r.Tables)
	}
	if len(r.CodeBlocks) != 1 || r.CodeBlocks[0] != "x := 1" {
		t.Errorf("CodeBlocks = %v", r.CodeBlocks)
	}
}

func TestExtract_ContentFallback(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		html    string
		want    string
	}{
		{"静态跳过空容器", StaticProfile, `<body><main>  </main><article>Body text</article></body>`, "Body text"},
		{"静态回退到body", StaticProfile, `<body><p>One</p><p>Two</p><script>x()</script></body>`, "One Two"},
		{"渲染合并所有匹配", RenderedProfile, `<body><div class="content">A</div><div class="content">B</div></body>`, "A\nB"},
		{"渲染回退到body", RenderedProfile, `<body><p>One</p><p>Two</p></body>`, "One\nTwo"},
		{"空文档", StaticProfile, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.profile).ExtractHTML(tt.html, "https://example.com/")
			if err != nil {
				t.Fatalf("ExtractHTML() error = %v", err)
			}
			if r.Content != tt.want {
				t.Errorf("Content = %q, 期望 %q", r.Content, tt.want)
			}
			if r.Title != models.NoTitle && tt.html == "" {
				t.Errorf("Title = %q, 期望默认标题", r.Title)
			}
		})
	}
}

func TestAbsolutize(t *testing.T) {
	tests := []struct {
		name string
		href string
		base string
		want string
	}{
		{"相对路径", "b.html", "https://x.com/a/index.html", "https://x.com/a/b.html"},
		{"根路径", "/root.html", "https://x.com/a/index.html", "https://x.com/root.html"},
		{"上级目录", "../up.html", "https://x.com/a/b/c.html", "https://x.com/a/up.html"},
		{"已是绝对URL", "https://y.com/z", "https://x.com/", "https://y.com/z"},
		{"协议相对", "//cdn.x.com/s.js", "https://x.com/", "https://cdn.x.com/s.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Absolutize(tt.href, tt.base)
			if got != tt.want {
				t.Errorf("Absolutize() = %s, 期望 %s", got, tt.want)
			}
			if again := Absolutize(got, tt.base); again != got {
				t.Errorf("Absolutize 不是幂等的: %s -> %s", got, again)
			}
		})
	}
}

func TestExtractLinksFromHTML(t *testing.T) {
	html := `<ul><li><a href="mod.html"> <code>pkg</code> module </a></li><li><a href="#sec">Anchor</a></li></ul>`

	raw, err := ExtractLinksFromHTML(html, "")
	if err != nil {
		t.Fatalf("ExtractLinksFromHTML() error = %v", err)
	}
	if len(raw) != 2 || raw[0].URL != "mod.html" || raw[0].Text != "pkgmodule" {
		t.Errorf("未指定base时应保留原始href: %v", raw)
	}

	abs, _ := ExtractLinksFromHTML(html, "https://x.readthedocs.io/en/latest/")
	if abs[0].URL != "https://x.readthedocs.io/en/latest/mod.html" {
		t.Errorf("URL = %s", abs[0].URL)
	}
}

func TestSameHost(t *testing.T) {
	if !SameHost("https://a.com/x", "https://a.com/y?z") {
		t.Errorf("同主机应返回true")
	}
	if SameHost("https://a.com/x", "https://b.com/x") {
		t.Errorf("不同主机应返回false")
	}
	if SameHost("/relative", "/other") {
		t.Errorf("无主机应返回false")
	}
}
