package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return p
}

func newTestCombiner(dir string) *Combiner {
	c := NewCombiner(dir)
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func TestSectionTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		fileName string
		want     string
	}{
		{"短横线", "Installation - MyLib 1.0 documentation", "a.html", "Installation"},
		{"长破折号", "Foo — Bar", "a.html", "Foo"},
		{"去掉module后缀", "mylib.core module - docs", "a.html", "mylib.core"},
		{"空标题用文件名", "", "page_2026.html", "page_2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SectionTitle(tt.title, tt.fileName); got != tt.want {
				t.Errorf("SectionTitle(%q) = %q, 期望 %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Docs!", "My_Docs"},
		{"  API: v2 / ref ", "API_v2_ref"},
		{"中文 文档", "中文_文档"},
		{"!!!", "documentation"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, 期望 %q", tt.in, got, tt.want)
		}
	}
}

func TestCombineHTML(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.html", `<html><head><title>Foo — Bar</title></head><body><div class="document"><p>alpha</p></div><p>outside</p></body></html>`)
	b := writeFile(t, dir, "b.html", `<html><head><title>Setup - Docs</title></head><body><article><p>beta</p></article></body></html>`)
	missing := filepath.Join(dir, "missing.html")

	out, err := newTestCombiner(dir).Combine(context.Background(), []string{a, b, missing}, "html", "My Docs")
	if err != nil {
		t.Fatalf("Combine失败: %v", err)
	}
	if filepath.Base(out) != "combined_My_Docs_20260102_030405.html" {
		t.Errorf("输出文件名 = %s", filepath.Base(out))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	html := string(data)

	for _, s := range []string{
		`<a href="#section-1">Foo</a>`,
		`<a href="#section-2">Setup</a>`,
		`<a href="#section-3">Error in file missing.html</a>`,
		`<div class="document"><p>alpha</p></div>`,
		"<article><p>beta</p></article>",
		"Error processing this file:",
		"Documentation Contents",
		"Generated on 2026-01-02 03:04:05",
	} {
		if !strings.Contains(html, s) {
			t.Errorf("输出缺少 %q", s)
		}
	}
	if strings.Contains(html, "outside") {
		t.Error("只应取第一个命中的正文容器")
	}
	if strings.Index(html, "alpha") > strings.Index(html, "beta") {
		t.Error("输出顺序应与输入顺序一致")
	}
}

func TestCombineText(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "Title: Page A\nURL: https://x\n\nbody a")
	b := writeFile(t, dir, "b.txt", "no header here")

	out, err := newTestCombiner(dir).Combine(context.Background(), []string{a, b}, "txt", "")
	if err != nil {
		t.Fatalf("Combine失败: %v", err)
	}
	if filepath.Base(out) != "combined_Combined_Documentation_20260102_030405.txt" {
		t.Errorf("输出文件名 = %s", filepath.Base(out))
	}
	data, _ := os.ReadFile(out)
	text := string(data)

	bar := strings.Repeat("=", 80)
	for _, s := range []string{
		"# Combined Documentation\n# Generated on 2026-01-02 03:04:05",
		bar + "\n# Page A\n" + bar,
		bar + "\n# b.txt\n" + bar,
		"body a",
	} {
		if !strings.Contains(text, s) {
			t.Errorf("输出缺少 %q", s)
		}
	}
}

func TestCombineErrors(t *testing.T) {
	dir := t.TempDir()
	c := newTestCombiner(dir)

	if _, err := c.Combine(context.Background(), nil, "html", ""); !errors.Is(err, models.ErrEmptyInput) {
		t.Errorf("空输入错误 = %v, 期望 ErrEmptyInput", err)
	}
	p := writeFile(t, dir, "a.html", "<html></html>")
	if _, err := c.Combine(context.Background(), []string{p}, "json", ""); !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Errorf("格式错误 = %v, 期望 ErrUnsupportedFormat", err)
	}
}
