package models

// DocCategory 文档链接分类
type DocCategory string

const (
	CategoryMain       DocCategory = "main"
	CategoryModules    DocCategory = "modules"
	CategorySubmodules DocCategory = "submodules"
	CategoryOther      DocCategory = "other"
)

// DocCategories 分类的固定顺序
var DocCategories = []DocCategory{CategoryMain, CategoryModules, CategorySubmodules, CategoryOther}

// DocLink 文档链接
type DocLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// DocStructure 分类后的文档链接
type DocStructure struct {
	Main       []DocLink `json:"main"`
	Modules    []DocLink `json:"modules"`
	Submodules []DocLink `json:"submodules"`
	Other      []DocLink `json:"other"`
}

// NewDocStructure 创建空结构
func NewDocStructure() DocStructure {
	return DocStructure{
		Main:       []DocLink{},
		Modules:    []DocLink{},
		Submodules: []DocLink{},
		Other:      []DocLink{},
	}
}

func (s *DocStructure) slot(cat DocCategory) *[]DocLink {
	switch cat {
	case CategoryMain:
		return &s.Main
	case CategoryModules:
		return &s.Modules
	case CategorySubmodules:
		return &s.Submodules
	default:
		return &s.Other
	}
}

// Add 将链接追加到分类末尾
func (s *DocStructure) Add(cat DocCategory, link DocLink) {
	p := s.slot(cat)
	*p = append(*p, link)
}

// Category 返回某个分类的链接
func (s DocStructure) Category(cat DocCategory) []DocLink {
	return *s.slot(cat)
}

// Total 链接总数
func (s DocStructure) Total() int {
	return len(s.Main) + len(s.Modules) + len(s.Submodules) + len(s.Other)
}

// Flatten 按 main, modules, submodules, other 顺序展开
func (s DocStructure) Flatten() []DocLink {
	out := make([]DocLink, 0, s.Total())
	for _, cat := range DocCategories {
		out = append(out, s.Category(cat)...)
	}
	return out
}

// Prioritized 批量抓取顺序: modules, submodules, main, other,按URL去重
func (s DocStructure) Prioritized() []DocLink {
	seen := make(map[string]bool, s.Total())
	out := make([]DocLink, 0, s.Total())
	for _, group := range [][]DocLink{s.Modules, s.Submodules, s.Main, s.Other} {
		for _, l := range group {
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			out = append(out, l)
		}
	}
	return out
}

// Limit 每个分类最多保留perCategory个,展开后总数不超过total
func (s DocStructure) Limit(perCategory, total int) DocStructure {
	out := NewDocStructure()
	budget := total
	for _, cat := range DocCategories {
		links := s.Category(cat)
		if perCategory >= 0 && len(links) > perCategory {
			links = links[:perCategory]
		}
		if total >= 0 {
			if budget <= 0 {
				continue
			}
			if len(links) > budget {
				links = links[:budget]
			}
			budget -= len(links)
		}
		for _, l := range links {
			out.Add(cat, l)
		}
	}
	return out
}
