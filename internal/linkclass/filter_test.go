package linkclass

import (
	"testing"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

func TestMakeAbsolute(t *testing.T) {
	links := []models.DocLink{
		{URL: "guide.html", Text: "Guide"},
		{URL: "https://other.com/x", Text: "Other"},
		{URL: "/root", Text: "Root"},
	}
	got := MakeAbsolute(links, "https://docs.x.com/en/index.html")
	want := []string{"https://docs.x.com/en/guide.html", "https://other.com/x", "https://docs.x.com/root"}
	for i := range want {
		if got[i].URL != want[i] {
			t.Errorf("[%d] = %s, 期望 %s", i, got[i].URL, want[i])
		}
		if got[i].Text != links[i].Text {
			t.Errorf("文本不应改变: %s", got[i].Text)
		}
	}
}

func TestFilterByPattern(t *testing.T) {
	links := []models.DocLink{
		{URL: "https://x.com/api/v1", Text: "V1"},
		{URL: "https://x.com/guide", Text: "API guide"},
		{URL: "https://x.com/blog", Text: "Blog [old]"},
	}

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{"空模式不过滤", "", 3},
		{"忽略大小写", "API", 2},
		{"按子串匹配URL", "x.com/api", 1},
		{"点号不是通配符", "a.i", 0},
		{"特殊字符按字面匹配", "[old", 1},
		{"无匹配", "zzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterByPattern(links, tt.pattern); len(got) != tt.want {
				t.Errorf("FilterByPattern() = %d 个, 期望 %d", len(got), tt.want)
			}
		})
	}
}

func TestSameHostOnly(t *testing.T) {
	links := []models.DocLink{{URL: "https://a.com/1"}, {URL: "https://b.com/2"}, {URL: "https://a.com/3"}}
	got := SameHostOnly(links, "https://a.com/")
	if len(got) != 2 || got[1].URL != "https://a.com/3" {
		t.Errorf("SameHostOnly() = %v", got)
	}
}

func TestMergeNew(t *testing.T) {
	a := []models.DocLink{{URL: "1"}, {URL: "2"}}
	b := []models.DocLink{{URL: "2"}, {URL: "3"}, {URL: "3"}}
	got := MergeNew(a, b)
	if len(got) != 3 || got[2].URL != "3" {
		t.Errorf("MergeNew() = %v", got)
	}
	if len(a) != 2 {
		t.Errorf("MergeNew 不应修改输入")
	}
}

func TestSidebarLinks(t *testing.T) {
	base := "https://x.readthedocs.io/en/latest/"
	html := `<div class="sidebar"><a href="a.html">A</a><a href="https://elsewhere.com/b">B</a><a href="` + base + `c.html">C</a></div>`
	got := SidebarLinks(base, html)
	if len(got) != 2 {
		t.Fatalf("SidebarLinks() = %v, 期望 2 个站内链接", got)
	}
	if got[0].URL != base+"a.html" || got[1].URL != base+"c.html" {
		t.Errorf("SidebarLinks() = %v", got)
	}
}
