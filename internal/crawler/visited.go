package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// VisitedSet 单次抓取内已访问的URL集合
// 职责: 保证同一次抓取中每个URL最多被抓取一次,并记录抓取顺序
type VisitedSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewVisitedSet 创建空集合
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// NormalizeURL 生成去重用的键: scheme和host小写,去掉fragment和路径末尾的"/"。
// 无法解析的URL原样返回。
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// Add 标记为已访问,首次加入时返回true
func (v *VisitedSet) Add(rawURL string) bool {
	key := NormalizeURL(rawURL)

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	v.order = append(v.order, rawURL)
	return true
}

// Contains 是否已访问
func (v *VisitedSet) Contains(rawURL string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.seen[NormalizeURL(rawURL)]
	return ok
}

// Len 已访问数量
func (v *VisitedSet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.order)
}

// Order 按加入顺序返回副本
func (v *VisitedSet) Order() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}
