package fetchers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// RawPage 抓取到的原始页面
type RawPage struct {
	URL         string // 最终URL(跟随重定向之后)
	HTML        string
	Title       string // 渲染模式下由浏览器给出,静态模式为空
	Rendered    bool
	StatusCode  int
	ContentType string
}

// Fetcher 页面抓取策略
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*RawPage, error)
	Mode() models.FetchMode
	Close() error
}

// sleepCtx 等待d,ctx取消时提前返回错误
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// 就绪轮询的退避参数
const (
	readyInitialDelay = 100 * time.Millisecond
	readyMaxDelay     = 1600 * time.Millisecond
)

// errNotReady 在超时前页面未就绪
var errNotReady = errors.New("页面未在超时时间内就绪")

// waitReady 以指数退避轮询check,直到返回true、超时或ctx取消
func waitReady(ctx context.Context, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	delay := readyInitialDelay
	for {
		ok, err := check(ctx)
		if err == nil && ok {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			if err != nil {
				return err
			}
			return errNotReady
		}
		if delay > remaining {
			delay = remaining
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
		delay *= 2
		if delay > readyMaxDelay {
			delay = readyMaxDelay
		}
	}
}

// IsChallengePage 判断是否为Cloudflare验证页
func IsChallengePage(title, html string) bool {
	return strings.Contains(title, "Just a moment") && strings.Contains(html, "Cloudflare")
}

// 注入到每个新文档的脚本,隐藏自动化特征
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
window.chrome = window.chrome || {runtime: {}};
Object.defineProperty(navigator, 'languages', {get: () => ['zh-CN', 'zh', 'en-US', 'en']});`

const (
	readyStateJS = `() => document.readyState`
	scrollJS     = `() => window.scrollBy(0, window.innerHeight)`
)

// RenderOptions 浏览器渲染的等待参数,rod和chromedp共用
type RenderOptions struct {
	WaitTime        time.Duration // 就绪后的固定等待
	ReadyTimeout    time.Duration // document.readyState 轮询上限
	ChallengeWait   time.Duration // 检测到验证页后的额外等待
	Scroll          bool
	MaxScrolls      int
	ScrollPause     time.Duration
	NavigateTimeout time.Duration
}

// DefaultRenderOptions 默认渲染参数
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		WaitTime:        5 * time.Second,
		ReadyTimeout:    10 * time.Second,
		ChallengeWait:   10 * time.Second,
		MaxScrolls:      10,
		ScrollPause:     time.Second,
		NavigateTimeout: 60 * time.Second,
	}
}

func (o RenderOptions) withDefaults() RenderOptions {
	d := DefaultRenderOptions()
	if o.WaitTime < 0 {
		o.WaitTime = 0
	}
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = d.ReadyTimeout
	}
	if o.ChallengeWait < 0 {
		o.ChallengeWait = 0
	}
	if o.MaxScrolls <= 0 {
		o.MaxScrolls = d.MaxScrolls
	}
	if o.ScrollPause < 0 {
		o.ScrollPause = 0
	}
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = d.NavigateTimeout
	}
	return o
}

// BrowserOptions 浏览器启动参数
type BrowserOptions struct {
	Headless bool
	MaxTabs  int
	BinPath  string // 为空时由rod自动查找或下载
}

// splitUserAgent 从头部中取出User-Agent,浏览器需要单独设置它
func splitUserAgent(h http.Header) (string, http.Header) {
	if h == nil {
		return "", nil
	}
	ua := h.Get("User-Agent")
	rest := h.Clone()
	rest.Del("User-Agent")
	return ua, rest
}
