// Package linkclass 将文档站点的链接归类为 main/modules/submodules/other。
//
// 分类由有序规则表驱动,第一条匹配的规则决定类别。识别到 ReadTheDocs 站点时使用
// ReadTheDocsRules,否则使用 GenericRules。
package linkclass

import (
	"strings"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// Target 规则匹配时看到的链接视图,URL和文本均已转小写
type Target struct {
	URL  string
	Text string
}

// Rule 分类规则
type Rule struct {
	Name     string
	Category models.DocCategory
	Match    func(t Target) bool
	// DedupText 为true时,若main中已有相同文本(忽略大小写)的链接则丢弃当前链接
	DedupText bool
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func mentionsModule(t Target) bool {
	return strings.Contains(t.URL, "module") || strings.Contains(t.Text, "module")
}

// ReadTheDocsRules ReadTheDocs站点的规则,按优先级排列
var ReadTheDocsRules = []Rule{
	{
		Name:     "rtd-submodule",
		Category: models.CategorySubmodules,
		Match: func(t Target) bool {
			if !mentionsModule(t) {
				return false
			}
			return (strings.Contains(t.Text, "sub") && strings.Contains(t.Text, "module")) ||
				(!strings.Contains(t.Text, "acitoolkit") && strings.HasSuffix(t.Text, "module"))
		},
	},
	{
		Name:     "rtd-module",
		Category: models.CategoryModules,
		Match:    mentionsModule,
	},
	{
		Name:     "rtd-navigation",
		Category: models.CategoryMain,
		Match: func(t Target) bool {
			return containsAny(t.Text, "introduction", "index", "overview", "getting started")
		},
	},
	{
		Name:      "rtd-api-reference",
		Category:  models.CategoryMain,
		DedupText: true,
		Match: func(t Target) bool {
			return containsAny(t.Text, "api", "reference", "class", "object")
		},
	},
	{
		Name:     "rtd-other",
		Category: models.CategoryOther,
		Match:    func(Target) bool { return true },
	},
}

// GenericRules 其他站点的规则
var GenericRules = []Rule{
	{
		Name:     "main-page",
		Category: models.CategoryMain,
		Match: func(t Target) bool {
			return containsAny(t.URL, "index", "home") || strings.Contains(t.Text, "introduction")
		},
	},
	{
		Name:     "module",
		Category: models.CategoryModules,
		Match:    mentionsModule,
	},
	{
		// "module" 已被上一条规则匹配,这里实际只会因 class 命中
		Name:     "submodule",
		Category: models.CategorySubmodules,
		Match: func(t Target) bool {
			return strings.Contains(t.Text, "sub") && containsAny(t.Text, "module", "class")
		},
	},
	{
		Name:     "other",
		Category: models.CategoryOther,
		Match:    func(Target) bool { return true },
	},
}

// IsReadTheDocs 任一链接URL包含 readthedocs.io
func IsReadTheDocs(links []models.DocLink) bool {
	for _, l := range links {
		if strings.Contains(strings.ToLower(l.URL), "readthedocs.io") {
			return true
		}
	}
	return false
}

// Classify 自动选择规则表后分类
func Classify(links []models.DocLink) models.DocStructure {
	if IsReadTheDocs(links) {
		return ClassifyWith(links, ReadTheDocsRules)
	}
	return ClassifyWith(links, GenericRules)
}

// ClassifyWith 使用指定规则表分类,每个链接最多进入一个类别
func ClassifyWith(links []models.DocLink, rules []Rule) models.DocStructure {
	s := models.NewDocStructure()
	for _, link := range links {
		t := Target{
			URL:  strings.ToLower(link.URL),
			Text: strings.ToLower(link.Text),
		}
		for _, rule := range rules {
			if !rule.Match(t) {
				continue
			}
			if rule.DedupText && hasText(s.Main, t.Text) {
				break
			}
			s.Add(rule.Category, link)
			break
		}
	}
	return s
}

func hasText(links []models.DocLink, lowerText string) bool {
	for _, l := range links {
		if strings.ToLower(l.Text) == lowerText {
			return true
		}
	}
	return false
}
