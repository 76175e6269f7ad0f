package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/output"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

func TestSiteTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"readthedocs子域名", "https://mylib.readthedocs.io/en/latest/", "Mylib Documentation"},
		{"大写主机名", "https://DOCS.example.com/", "Docs Documentation"},
		{"带端口", "http://localhost:8080/docs", "Localhost Documentation"},
		{"空URL", "", output.DefaultCombinedTitle},
		{"无主机名", "not a url", output.DefaultCombinedTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SiteTitle(tt.in); got != tt.want {
				t.Errorf("SiteTitle(%q) = %q, 期望 %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCombineReport(t *testing.T) {
	dir := t.TempDir()
	write := func(name, title, body string) string {
		p := filepath.Join(dir, name)
		html := "<html><head><title>" + title + "</title></head><body><div class=\"document\"><p>" + body + "</p></div></body></html>"
		if err := os.WriteFile(p, []byte(html), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	a := write("a.html", "Core module - mylib", "alpha")
	b := write("b.html", "IO module - mylib", "beta")

	report := models.NewBatchReport("https://mylib.readthedocs.io/en/latest/", "html")
	report.Record(models.BatchItem{URL: "u1", OutputPath: a, Status: models.StatusSuccess})
	report.Record(models.BatchItem{URL: "u2", Status: models.StatusError, Error: "boom"})
	report.Record(models.BatchItem{URL: "u3", OutputPath: b, Status: models.StatusSuccess})
	report.Finish()

	t.Run("合并成功的文件", func(t *testing.T) {
		outDir := t.TempDir()
		path, err := CombineReport(context.Background(), report, "", outDir, nil)
		if err != nil {
			t.Fatalf("CombineReport() error = %v", err)
		}
		if !strings.HasPrefix(filepath.Base(path), "combined_Mylib_Documentation_") {
			t.Errorf("输出文件名 = %s", filepath.Base(path))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		out := string(data)
		if !strings.Contains(out, "Mylib Documentation") {
			t.Error("合并文档应以站点名作为标题")
		}
		ia, ib := strings.Index(out, "alpha"), strings.Index(out, "beta")
		if ia < 0 || ib < 0 || ia > ib {
			t.Errorf("应按抓取顺序包含两个成功文件的内容")
		}
		if strings.Count(out, `id="section-`) != 2 {
			t.Errorf("失败的链接不应生成小节")
		}
	})

	t.Run("指定标题", func(t *testing.T) {
		path, err := CombineReport(context.Background(), report, "API Reference", t.TempDir(), nil)
		if err != nil {
			t.Fatalf("CombineReport() error = %v", err)
		}
		if !strings.HasPrefix(filepath.Base(path), "combined_API_Reference_") {
			t.Errorf("输出文件名 = %s", filepath.Base(path))
		}
	})

	t.Run("从报告文件读取", func(t *testing.T) {
		reportPath, err := utils.WriteJSONReport(t.TempDir(), "batch_report.json", report)
		if err != nil {
			t.Fatal(err)
		}
		loaded, err := LoadBatchReport(reportPath)
		if err != nil {
			t.Fatalf("LoadBatchReport() error = %v", err)
		}
		got := SuccessfulOutputs(loaded)
		if len(got) != 2 || got[0] != a || got[1] != b {
			t.Errorf("SuccessfulOutputs() = %v, 期望 [%s %s]", got, a, b)
		}
	})

	t.Run("没有成功结果", func(t *testing.T) {
		empty := models.NewBatchReport("https://x.com/", "html")
		empty.Record(models.BatchItem{URL: "u", Status: models.StatusError})
		if _, err := CombineReport(context.Background(), empty, "", t.TempDir(), nil); !errors.Is(err, models.ErrEmptyInput) {
			t.Errorf("error = %v, 期望 ErrEmptyInput", err)
		}
	})

	t.Run("json格式不能合并", func(t *testing.T) {
		r := models.NewBatchReport("https://x.com/", "json")
		r.Record(models.BatchItem{URL: "u", OutputPath: a, Status: models.StatusSuccess})
		if _, err := CombineReport(context.Background(), r, "", t.TempDir(), nil); !errors.Is(err, models.ErrUnsupportedFormat) {
			t.Errorf("error = %v, 期望 ErrUnsupportedFormat", err)
		}
	})

	t.Run("报告无格式时按扩展名", func(t *testing.T) {
		r := models.NewBatchReport("", "")
		r.Record(models.BatchItem{URL: "u", OutputPath: a, Status: models.StatusSuccess})
		path, err := CombineReport(context.Background(), r, "", t.TempDir(), nil)
		if err != nil {
			t.Fatalf("CombineReport() error = %v", err)
		}
		if filepath.Ext(path) != ".html" {
			t.Errorf("输出扩展名 = %s, 期望 .html", filepath.Ext(path))
		}
	})
}
