// Package metrics 定义抓取过程的 Prometheus 指标。
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// PagesFetched 页面抓取次数
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webscraper_pages_fetched_total",
			Help: "Total number of page fetches by mode and status.",
		},
		[]string{"mode", "status"},
	)

	// FetchDuration 单次抓取耗时
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webscraper_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// PDFPages PDF页面数,按是否为有效文本区分
	PDFPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webscraper_pdf_pages_total",
			Help: "Total number of PDF pages processed.",
		},
		[]string{"valid"},
	)

	// LinkedPages 成功抓取的子页面数
	LinkedPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webscraper_linked_pages_total",
			Help: "Total number of linked pages summarized during crawls.",
		},
	)

	// RecordsSaved 保存的记录数
	RecordsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webscraper_records_saved_total",
			Help: "Total number of records written to disk by format.",
		},
		[]string{"format"},
	)
)

// ObserveFetch 记录一次抓取的结果和耗时
func ObserveFetch(mode string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PagesFetched.WithLabelValues(mode, status).Inc()
	FetchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// WriteTextfile 将默认注册表中的指标写入文本文件(node_exporter textfile 格式)
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("写入指标文件失败: %w", err)
	}
	return nil
}

// Serve 在addr上暴露 /metrics,ctx取消时关闭
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("指标服务已启动")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("指标服务异常退出: %w", err)
	}
	return nil
}
