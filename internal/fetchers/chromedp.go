package fetchers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// ChromedpFetcher 基于chromedp的渲染抓取器,契约与RenderFetcher相同
type ChromedpFetcher struct {
	opts    RenderOptions
	headers models.HeaderProvider

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpFetcher 启动浏览器进程
func NewChromedpFetcher(bopts BrowserOptions, opts RenderOptions, headers models.HeaderProvider) (*ChromedpFetcher, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", bopts.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if bopts.BinPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bopts.BinPath))
	}
	if headers != nil {
		if h, err := headers.GetHeaders(); err == nil {
			if ua := h.Get("User-Agent"); ua != "" {
				allocOpts = append(allocOpts, chromedp.UserAgent(ua))
			}
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// 第一次Run启动浏览器进程
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	log.Debug().Msg("chromedp浏览器已启动")

	return &ChromedpFetcher{
		opts:          opts.withDefaults(),
		headers:       headers,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Mode 返回 render
func (f *ChromedpFetcher) Mode() models.FetchMode {
	return models.ModeRender
}

// Close 关闭浏览器和分配器
func (f *ChromedpFetcher) Close() error {
	err := chromedp.Cancel(f.browserCtx)
	f.browserCancel()
	f.allocCancel()
	return err
}

// Fetch 在新标签页中渲染页面
func (f *ChromedpFetcher) Fetch(ctx context.Context, rawURL string) (raw *RawPage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(string(models.ModeRender), start, err) }()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("url", rawURL).Msgf("浏览器操作panic: %v", r)
			raw = nil
			err = &models.RenderError{URL: rawURL, Err: fmt.Errorf("%w: %v", models.ErrBrowserCrashed, r)}
		}
	}()

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	// 标签页的第一次Run不能带超时,否则超时会关闭标签页
	if err := chromedp.Run(tabCtx, f.setupActions()...); err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("初始化标签页失败: %w", err)}
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, f.opts.NavigateTimeout)
	err = chromedp.Run(navCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	cancelNav()
	if err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("导航失败: %w", err)}
	}

	if err := waitReady(tabCtx, f.opts.ReadyTimeout, func(ctx context.Context) (bool, error) {
		var state string
		if err := chromedp.Run(ctx, chromedp.Evaluate("document.readyState", &state)); err != nil {
			return false, err
		}
		return state == "complete", nil
	}); err != nil {
		if ctx.Err() != nil {
			return nil, &models.RenderError{URL: rawURL, Err: ctx.Err()}
		}
		log.Warn().Err(err).Str("url", rawURL).Msg("页面未完全就绪,继续提取")
	}

	if err := sleepCtx(tabCtx, f.opts.WaitTime); err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: err}
	}

	var title, html string
	if err := chromedp.Run(tabCtx,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("读取HTML失败: %w", err)}
	}

	if IsChallengePage(title, html) {
		log.Info().Str("url", rawURL).Msgf("🛡️ 检测到验证页,额外等待 %s", f.opts.ChallengeWait)
		if err := sleepCtx(tabCtx, f.opts.ChallengeWait); err != nil {
			return nil, &models.RenderError{URL: rawURL, Err: err}
		}
	}

	if f.opts.Scroll {
		for i := 0; i < f.opts.MaxScrolls; i++ {
			if err := chromedp.Run(tabCtx, chromedp.Evaluate("window.scrollBy(0, window.innerHeight)", nil)); err != nil {
				log.Debug().Err(err).Msg("滚动失败")
				break
			}
			if err := sleepCtx(tabCtx, f.opts.ScrollPause); err != nil {
				return nil, &models.RenderError{URL: rawURL, Err: err}
			}
		}
	}

	var location string
	if err := chromedp.Run(tabCtx,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("读取HTML失败: %w", err)}
	}
	if location == "" {
		location = rawURL
	}

	return &RawPage{
		URL:         location,
		HTML:        html,
		Title:       title,
		Rendered:    true,
		ContentType: "text/html",
	}, nil
}

// setupActions 注入反检测脚本并设置额外请求头
func (f *ChromedpFetcher) setupActions() []chromedp.Action {
	actions := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
	if f.headers == nil {
		return actions
	}
	h, err := f.headers.GetHeaders()
	if err != nil {
		log.Warn().Err(err).Msg("获取HTTP头部失败")
		return actions
	}
	_, rest := splitUserAgent(h)
	extra := make(network.Headers)
	for name, values := range rest {
		if len(values) > 0 && !strings.EqualFold(name, "Accept-Encoding") {
			extra[name] = values[0]
		}
	}
	if len(extra) > 0 {
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(extra))
	}
	return actions
}
