package fetchers

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

func TestStaticFetcher_Fetch(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			gotUA = r.Header.Get("User-Agent")
			gotCustom = r.Header.Get("X-Test")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body><p>你好</p></body></html>"))
		case "/br":
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte("<html><body>brotli内容</body></html>"))
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
			w.Write(buf.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	headers := models.StaticHeaders(http.Header{"X-Test": []string{"abc"}})
	f := NewStaticFetcher(StaticOptions{}, headers)
	defer f.Close()

	t.Run("正常页面", func(t *testing.T) {
		page, err := f.Fetch(context.Background(), server.URL+"/ok")
		if err != nil {
			t.Fatalf("Fetch() 错误 = %v", err)
		}
		if !strings.Contains(page.HTML, "你好") {
			t.Errorf("HTML = %q, 期望包含 你好", page.HTML)
		}
		if page.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, 期望 200", page.StatusCode)
		}
		if page.Rendered {
			t.Error("静态抓取不应标记为Rendered")
		}
		if gotUA != DefaultUserAgent {
			t.Errorf("User-Agent = %q, 期望 %q", gotUA, DefaultUserAgent)
		}
		if gotCustom != "abc" {
			t.Errorf("X-Test = %q, 期望 abc", gotCustom)
		}
	})

	t.Run("brotli解压", func(t *testing.T) {
		page, err := f.Fetch(context.Background(), server.URL+"/br")
		if err != nil {
			t.Fatalf("Fetch() 错误 = %v", err)
		}
		if !strings.Contains(page.HTML, "brotli内容") {
			t.Errorf("HTML = %q, 期望包含解压后的内容", page.HTML)
		}
	})

	t.Run("404返回FetchError", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), server.URL+"/missing")
		var fe *models.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("错误类型 = %T, 期望 *models.FetchError", err)
		}
		if fe.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, 期望 404", fe.StatusCode)
		}
	})

	t.Run("同一URL可重复抓取", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if _, err := f.Fetch(context.Background(), server.URL+"/ok"); err != nil {
				t.Fatalf("第%d次 Fetch() 错误 = %v", i+1, err)
			}
		}
	})

	t.Run("连接失败", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()

		_, err := f.Fetch(context.Background(), deadURL+"/x")
		var fe *models.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("错误类型 = %T, 期望 *models.FetchError", err)
		}
		if fe.StatusCode != 0 {
			t.Errorf("StatusCode = %d, 期望 0", fe.StatusCode)
		}
	})
}

func TestDecompressBody(t *testing.T) {
	plain := []byte("hello world")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write(plain)
	gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write(plain)
	bw.Close()

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"无编码", "", plain},
		{"identity", "identity", plain},
		{"gzip", "gzip", gz.Bytes()},
		{"已被解压的gzip", "gzip", plain},
		{"brotli", "br", br.Bytes()},
		{"大小写", "BR", br.Bytes()},
		{"未知编码", "zstd", plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decompressBody(tt.encoding, tt.body)
			if err != nil {
				t.Fatalf("decompressBody() 错误 = %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Errorf("decompressBody() = %q, 期望 %q", got, plain)
			}
		})
	}
}
