package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	before := testutil.ToFloat64(PagesFetched.WithLabelValues("static", "error"))
	ObserveFetch("static", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(PagesFetched.WithLabelValues("static", "error"))
	if after-before != 1 {
		t.Errorf("错误计数增加 %v, 期望 1", after-before)
	}
}

func TestWriteTextfile(t *testing.T) {
	RecordsSaved.WithLabelValues("txt").Inc()
	path := filepath.Join(t.TempDir(), "webscraper.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取指标文件失败: %v", err)
	}
	if !strings.Contains(string(data), "webscraper_records_saved_total") {
		t.Errorf("指标文件缺少 webscraper_records_saved_total")
	}

	if err := WriteTextfile(""); err != nil {
		t.Errorf("空路径应直接返回nil, 得到 %v", err)
	}
}
