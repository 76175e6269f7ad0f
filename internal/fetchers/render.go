package fetchers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// RenderFetcher 基于go-rod的渲染抓取器
// 每次Fetch从BrowserSession借出一个标签页,任何退出路径(包括panic)都会归还或销毁
type RenderFetcher struct {
	session *BrowserSession
	opts    RenderOptions
	headers models.HeaderProvider
	owned   bool // Close时是否关闭session
}

// NewRenderFetcher 使用已有会话创建渲染抓取器,会话的生命周期由调用方负责
func NewRenderFetcher(session *BrowserSession, opts RenderOptions, headers models.HeaderProvider) *RenderFetcher {
	return &RenderFetcher{
		session: session,
		opts:    opts.withDefaults(),
		headers: headers,
	}
}

// LaunchRenderFetcher 启动新的浏览器会话并创建渲染抓取器,Close时一并关闭浏览器
func LaunchRenderFetcher(bopts BrowserOptions, opts RenderOptions, headers models.HeaderProvider) (*RenderFetcher, error) {
	session, err := NewBrowserSession(bopts, nil)
	if err != nil {
		return nil, err
	}
	f := NewRenderFetcher(session, opts, headers)
	f.owned = true
	return f, nil
}

// Mode 返回 render
func (f *RenderFetcher) Mode() models.FetchMode {
	return models.ModeRender
}

// Close 关闭自己启动的浏览器会话
func (f *RenderFetcher) Close() error {
	if f.owned && f.session != nil {
		return f.session.Close()
	}
	return nil
}

// Fetch 导航、等待就绪、处理验证页、可选滚动,返回渲染后的HTML
func (f *RenderFetcher) Fetch(ctx context.Context, rawURL string) (raw *RawPage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(string(models.ModeRender), start, err) }()

	page, err := f.session.Acquire(ctx)
	if err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("获取标签页失败: %w", err)}
	}

	crashed := false
	defer func() {
		if crashed {
			f.session.Discard(page)
		} else {
			f.session.Release(page)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			crashed = true
			log.Error().Str("url", rawURL).Msgf("浏览器操作panic: %v", r)
			raw = nil
			err = &models.RenderError{URL: rawURL, Err: fmt.Errorf("%w: %v", models.ErrBrowserCrashed, r)}
		}
	}()

	p := page.Context(ctx)

	if cleanup, err := f.applyHeaders(p); err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("设置请求头失败")
	} else if cleanup != nil {
		defer cleanup()
	}

	navCtx, cancel := context.WithTimeout(ctx, f.opts.NavigateTimeout)
	navErr := page.Context(navCtx).Navigate(rawURL)
	cancel()
	if navErr != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("导航失败: %w", navErr)}
	}

	if err := waitReady(ctx, f.opts.ReadyTimeout, func(ctx context.Context) (bool, error) {
		res, err := p.Context(ctx).Eval(readyStateJS)
		if err != nil {
			return false, err
		}
		return res.Value.Str() == "complete", nil
	}); err != nil {
		if ctx.Err() != nil {
			return nil, &models.RenderError{URL: rawURL, Err: ctx.Err()}
		}
		log.Warn().Err(err).Str("url", rawURL).Msg("页面未完全就绪,继续提取")
	}

	if err := sleepCtx(ctx, f.opts.WaitTime); err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: err}
	}

	html, err := p.HTML()
	if err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("读取HTML失败: %w", err)}
	}
	title := pageTitle(p)

	if IsChallengePage(title, html) {
		log.Info().Str("url", rawURL).Msgf("🛡️ 检测到验证页,额外等待 %s", f.opts.ChallengeWait)
		if err := sleepCtx(ctx, f.opts.ChallengeWait); err != nil {
			return nil, &models.RenderError{URL: rawURL, Err: err}
		}
	}

	if f.opts.Scroll {
		for i := 0; i < f.opts.MaxScrolls; i++ {
			if _, err := p.Eval(scrollJS); err != nil {
				log.Debug().Err(err).Msg("滚动失败")
				break
			}
			if err := sleepCtx(ctx, f.opts.ScrollPause); err != nil {
				return nil, &models.RenderError{URL: rawURL, Err: err}
			}
		}
	}

	html, err = p.HTML()
	if err != nil {
		return nil, &models.RenderError{URL: rawURL, Err: fmt.Errorf("读取HTML失败: %w", err)}
	}
	title = pageTitle(p)

	finalURL := rawURL
	if info, err := p.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	log.Debug().Str("url", finalURL).Int("bytes", len(html)).Msg("页面渲染完成")
	return &RawPage{
		URL:         finalURL,
		HTML:        html,
		Title:       title,
		Rendered:    true,
		ContentType: "text/html",
	}, nil
}

// applyHeaders 把自定义头部应用到标签页,返回的cleanup用于移除额外头部
func (f *RenderFetcher) applyHeaders(p *rod.Page) (func(), error) {
	if f.headers == nil {
		return nil, nil
	}
	h, err := f.headers.GetHeaders()
	if err != nil {
		return nil, err
	}
	ua, rest := splitUserAgent(h)
	if ua != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			return nil, err
		}
	}

	dict := make([]string, 0, len(rest)*2)
	for name, values := range rest {
		if len(values) > 0 && !strings.EqualFold(name, "Accept-Encoding") {
			dict = append(dict, name, values[0])
		}
	}
	if len(dict) == 0 {
		return nil, nil
	}
	return p.SetExtraHeaders(dict)
}

func pageTitle(p *rod.Page) string {
	res, err := p.Eval(`() => document.title`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
