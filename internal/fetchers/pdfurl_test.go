package fetchers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPDFDetector_IsPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/download":
			w.Header().Set("Content-Type", "application/pdf")
		case "/legacy":
			w.Header().Set("Content-Type", "Application/X-PDF; charset=binary")
		default:
			w.Header().Set("Content-Type", "text/html")
		}
	}))
	defer server.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	detector := NewPDFDetector(2*time.Second, true, nil)
	noSegment := NewPDFDetector(2*time.Second, false, nil)

	tests := []struct {
		name     string
		detector *PDFDetector
		url      string
		want     bool
	}{
		{"路径后缀", detector, deadURL + "/files/Report.PDF", true},
		{"路径片段", detector, deadURL + "/pdf/12345", true},
		{"关闭路径片段检测", noSegment, server.URL + "/pdf/12345", false},
		{"查询参数", detector, deadURL + "/export?id=1&format=pdf", true},
		{"查询参数type", detector, deadURL + "/get?TYPE=PDF", true},
		{"HEAD返回application/pdf", detector, server.URL + "/download", true},
		{"HEAD返回x-pdf", detector, server.URL + "/legacy", true},
		{"HEAD返回html", detector, server.URL + "/page", false},
		{"HEAD失败退回后缀判断", detector, deadURL + "/page", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.detector.IsPDF(context.Background(), tt.url); got != tt.want {
				t.Errorf("IsPDF(%q) = %v, 期望 %v", tt.url, got, tt.want)
			}
		})
	}
}
