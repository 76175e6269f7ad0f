package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/webscraper/internal/core"
)

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		depth   int
		wait    int
		mode    string
		format  string
		wantErr bool
	}{
		{"有效参数", "https://example.com", 1, 0, "static", "txt", false},
		{"空URL允许", "", 3, 10, "render", "html", false},
		{"深度为0", "https://example.com", 0, 0, "static", "txt", true},
		{"深度超过10", "https://example.com", 11, 0, "static", "txt", true},
		{"等待时间为负", "https://example.com", 1, -1, "static", "txt", true},
		{"等待时间超过60", "https://example.com", 1, 61, "static", "txt", true},
		{"无效模式", "https://example.com", 1, 0, "headless", "txt", true},
		{"无效格式", "https://example.com", 1, 0, "static", "pdf", true},
		{"无效URL", "ftp://example.com", 1, 0, "static", "txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlags(tt.url, tt.depth, tt.wait, tt.mode, tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFlags() error = %v, 期望错误 %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"补全https", "example.com/docs", "https://example.com/docs", false},
		{"保留http", "http://example.com", "http://example.com", false},
		{"去除空白", "  https://example.com  ", "https://example.com", false},
		{"空字符串", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeURL() error = %v, 期望错误 %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL() = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestValidateURLFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "urls.txt")
	if err := os.WriteFile(file, []byte("https://example.com\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"存在的文件", file, false},
		{"空路径", "", true},
		{"不存在的文件", filepath.Join(dir, "missing.txt"), true},
		{"目录", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURLFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURLFile() error = %v, 期望错误 %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatFromExt(t *testing.T) {
	if got := formatFromExt("a/b.txt"); got != "txt" {
		t.Errorf("formatFromExt(txt) = %s, 期望 txt", got)
	}
	if got := formatFromExt("a/b.html"); got != "html" {
		t.Errorf("formatFromExt(html) = %s, 期望 html", got)
	}
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.html", "b.html"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("<html></html>"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := expandArgs([]string{filepath.Join(dir, "*.html"), filepath.Join(dir, "missing.html")})
	if err != nil {
		t.Fatalf("expandArgs() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len(files) = %d, 期望 3", len(files))
	}
	if filepath.Base(files[2]) != "missing.html" {
		t.Errorf("未匹配的路径应原样保留, 得到 %s", files[2])
	}
}

func TestApplyKeepsConfiguredWait(t *testing.T) {
	saved := appConfig
	defer func() { appConfig = saved }()

	tests := []struct {
		name  string
		flags *crawlFlags
	}{
		{"links命令", &linksCrawl},
		{"pdf命令", &pdfFlags},
		{"batch命令", &batchCrawl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := core.LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			cfg.Output.Dir = t.TempDir()
			appConfig = cfg
			want := cfg.Render.WaitTime

			f := *tt.flags
			f.targetURL = "https://example.com"
			if err := f.apply(false); err != nil {
				t.Fatalf("apply() error = %v", err)
			}
			if appConfig.Render.WaitTime != want {
				t.Errorf("Render.WaitTime = %v, 期望保持配置值 %v", appConfig.Render.WaitTime, want)
			}
		})
	}
}

func TestApplyWaitOverride(t *testing.T) {
	saved := appConfig
	defer func() { appConfig = saved }()

	cfg, err := core.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.Output.Dir = t.TempDir()
	appConfig = cfg

	f := crawlFlags{targetURL: "example.com", waitTime: 12}
	if err := f.apply(true); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if appConfig.Render.WaitTime != 12*time.Second {
		t.Errorf("Render.WaitTime = %v, 期望 12s", appConfig.Render.WaitTime)
	}
	if f.targetURL != "https://example.com" {
		t.Errorf("targetURL = %s, 期望补全协议", f.targetURL)
	}
}
