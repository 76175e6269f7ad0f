package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReadURLsFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("跳过注释、空行、无效URL和重复URL", func(t *testing.T) {
		path := filepath.Join(dir, "urls.txt")
		content := "# 注释\n\nhttps://a.example.com\nftp://bad.example.com\nnot a url\nhttps://b.example.com/docs\nhttps://a.example.com\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		urls, err := ReadURLsFromFile(path)
		if err != nil {
			t.Fatalf("ReadURLsFromFile() 错误 = %v", err)
		}
		want := []string{"https://a.example.com", "https://b.example.com/docs"}
		if len(urls) != len(want) {
			t.Fatalf("len(urls) = %d, 期望 %d: %v", len(urls), len(want), urls)
		}
		for i := range want {
			if urls[i] != want[i] {
				t.Errorf("urls[%d] = %q, 期望 %q", i, urls[i], want[i])
			}
		}
	})

	t.Run("没有有效URL", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		os.WriteFile(path, []byte("# only comments\n"), 0644)
		if _, err := ReadURLsFromFile(path); err == nil {
			t.Error("期望返回错误")
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := ReadURLsFromFile(filepath.Join(dir, "missing.txt")); err == nil {
			t.Error("期望返回错误")
		}
	})
}

func TestWriteJSONReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	path, err := WriteJSONReport(dir, "report.json", map[string]int{"success": 3})
	if err != nil {
		t.Fatalf("WriteJSONReport() 错误 = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取报告失败: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("报告不是合法JSON: %v", err)
	}
	if got["success"] != 3 {
		t.Errorf("success = %d, 期望 3", got["success"])
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	for i := 0; i < 2; i++ {
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() 第%d次 错误 = %v", i+1, err)
		}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("目录未创建: %s", dir)
	}
}
