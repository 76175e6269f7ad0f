package linkclass

import (
	"testing"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

const rtdBase = "https://acitoolkit.readthedocs.io/en/latest/"

func categoryOf(s models.DocStructure, url string) models.DocCategory {
	for _, cat := range models.DocCategories {
		for _, l := range s.Category(cat) {
			if l.URL == url {
				return cat
			}
		}
	}
	return ""
}

func TestClassify_ReadTheDocs(t *testing.T) {
	tests := []struct {
		name string
		link models.DocLink
		want models.DocCategory
	}{
		{"文本以module结尾且不含工具名", models.DocLink{URL: rtdBase + "a.html/module", Text: "acibaseobject module"}, models.CategorySubmodules},
		{"含sub和module", models.DocLink{URL: rtdBase + "pkg.html#submodules", Text: "Submodules"}, models.CategorySubmodules},
		{"文本含工具名", models.DocLink{URL: rtdBase + "acitoolkit.html", Text: "acitoolkit.acisession module"}, models.CategoryModules},
		{"仅URL含module", models.DocLink{URL: rtdBase + "modules.html", Text: "Packages"}, models.CategoryModules},
		{"导航页", models.DocLink{URL: rtdBase + "intro.html", Text: "Getting Started"}, models.CategoryMain},
		{"索引页", models.DocLink{URL: rtdBase + "genindex.html", Text: "Index"}, models.CategoryMain},
		{"API参考", models.DocLink{URL: rtdBase + "api.html", Text: "API Reference"}, models.CategoryMain},
		{"其他", models.DocLink{URL: rtdBase + "faq.html", Text: "FAQ"}, models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Classify([]models.DocLink{tt.link})
			if got := categoryOf(s, tt.link.URL); got != tt.want {
				t.Errorf("分类 = %s, 期望 %s", got, tt.want)
			}
			if s.Total() != 1 {
				t.Errorf("Total() = %d, 期望 1", s.Total())
			}
		})
	}
}

func TestClassify_MainDedupByText(t *testing.T) {
	links := []models.DocLink{
		{URL: rtdBase + "api.html", Text: "API Reference"},
		{URL: rtdBase + "api2.html", Text: "api reference"},
		{URL: rtdBase + "classes.html", Text: "Class list"},
	}
	s := Classify(links)
	if len(s.Main) != 2 {
		t.Fatalf("Main = %v, 期望2个(重复文本被丢弃)", s.Main)
	}
	if s.Main[0].URL != rtdBase+"api.html" || s.Main[1].URL != rtdBase+"classes.html" {
		t.Errorf("Main 顺序错误: %v", s.Main)
	}
	if s.Total() != 2 {
		t.Errorf("Total() = %d, 期望 2", s.Total())
	}
}

func TestClassify_Generic(t *testing.T) {
	tests := []struct {
		name string
		link models.DocLink
		want models.DocCategory
	}{
		{"URL含index", models.DocLink{URL: "https://x.com/index.html", Text: "Start"}, models.CategoryMain},
		{"URL含home", models.DocLink{URL: "https://x.com/home", Text: "Start"}, models.CategoryMain},
		{"文本含introduction", models.DocLink{URL: "https://x.com/a", Text: "Introduction"}, models.CategoryMain},
		{"模块", models.DocLink{URL: "https://x.com/b", Text: "Core Module"}, models.CategoryModules},
		{"子类", models.DocLink{URL: "https://x.com/c", Text: "Subclass hooks"}, models.CategorySubmodules},
		{"其他", models.DocLink{URL: "https://x.com/d", Text: "Blog"}, models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Classify([]models.DocLink{tt.link})
			if got := categoryOf(s, tt.link.URL); got != tt.want {
				t.Errorf("分类 = %s, 期望 %s", got, tt.want)
			}
		})
	}
}

func TestClassify_TotalityAndOrder(t *testing.T) {
	links := []models.DocLink{
		{URL: "https://x.com/m1", Text: "first module"},
		{URL: "https://x.com/o1", Text: "one"},
		{URL: "https://x.com/m2", Text: "second module"},
		{URL: "https://x.com/o2", Text: "two"},
	}
	s := Classify(links)
	if s.Total() != len(links) {
		t.Errorf("Total() = %d, 期望 %d", s.Total(), len(links))
	}
	if len(s.Modules) != 2 || s.Modules[0].URL != "https://x.com/m1" || s.Modules[1].URL != "https://x.com/m2" {
		t.Errorf("Modules 顺序错误: %v", s.Modules)
	}
}

func TestRuleTablePriority(t *testing.T) {
	wantRTD := []string{"rtd-submodule", "rtd-module", "rtd-navigation", "rtd-api-reference", "rtd-other"}
	for i, r := range ReadTheDocsRules {
		if r.Name != wantRTD[i] {
			t.Errorf("ReadTheDocsRules[%d] = %s, 期望 %s", i, r.Name, wantRTD[i])
		}
	}
	last := GenericRules[len(GenericRules)-1]
	if last.Category != models.CategoryOther || !last.Match(Target{}) {
		t.Errorf("最后一条规则应无条件归入other")
	}
}

func TestIsReadTheDocs(t *testing.T) {
	if !IsReadTheDocs([]models.DocLink{{URL: "https://x.com"}, {URL: "https://A.ReadTheDocs.io/x"}}) {
		t.Errorf("应识别 readthedocs.io (忽略大小写)")
	}
	if IsReadTheDocs(nil) {
		t.Errorf("空列表不应识别为 readthedocs")
	}
}
