package fetchers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// errPoolClosed 标签页池已关闭
var errPoolClosed = errors.New("标签页池已关闭")

// maxCleanFailures 清理失败达到该次数后销毁标签页
const maxCleanFailures = 2

// PageHealthStatus 标签页健康状态
type PageHealthStatus struct {
	CleanFailureCount int       // 清理失败次数
	LastSuccessTime   time.Time // 最后一次成功使用时间
}

// BrowserSession 一次爬取调用内共享的浏览器会话,由调用方创建和关闭
type BrowserSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	pool     *PagePool
}

// NewBrowserSession 启动浏览器并创建标签页池
func NewBrowserSession(opts BrowserOptions, monitor *ResourceMonitor) (*BrowserSession, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080").
		Set("disable-blink-features", "AutomationControlled").
		Set("ignore-certificate-errors")
	if opts.BinPath != "" {
		l = l.Bin(opts.BinPath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}
	log.Debug().Str("control_url", controlURL).Msg("浏览器已启动")

	if monitor == nil {
		monitor = NewResourceMonitor(DefaultResourceMonitorConfig())
	}

	return &BrowserSession{
		launcher: l,
		browser:  browser,
		pool:     NewPagePool(browser, monitor, opts.MaxTabs),
	}, nil
}

// Acquire 取出一个标签页,池满时阻塞直到有标签页归还或ctx取消
func (s *BrowserSession) Acquire(ctx context.Context) (*rod.Page, error) {
	return s.pool.Acquire(ctx)
}

// Release 清理并归还标签页
func (s *BrowserSession) Release(page *rod.Page) {
	s.pool.Release(page)
}

// Discard 销毁标签页,用于浏览器调用panic之后
func (s *BrowserSession) Discard(page *rod.Page) {
	s.pool.Discard(page)
}

// Close 关闭所有标签页、浏览器和启动器
func (s *BrowserSession) Close() error {
	poolErr := s.pool.Close()
	var browserErr error
	if s.browser != nil {
		browserErr = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	log.Debug().Msg("浏览器已关闭")
	return errors.Join(poolErr, browserErr)
}

// PagePool 标签页池
// 职责: 复用标签页,限制并发标签页数量,归还时清理页面状态
type PagePool struct {
	browser *rod.Browser
	sem     *semaphore.Weighted
	size    int

	// 空闲标签页
	idle chan *rod.Page

	mu     sync.Mutex
	health map[*rod.Page]*PageHealthStatus
	closed bool

	monitor *ResourceMonitor
}

// NewPagePool 创建标签页池,容量为 min(maxTabs, 资源允许的最大值)
func NewPagePool(browser *rod.Browser, monitor *ResourceMonitor, maxTabs int) *PagePool {
	size := monitor.CalculateMaxTabs()
	if maxTabs > 0 && maxTabs < size {
		size = maxTabs
	}
	if size < 1 {
		size = 1
	}
	log.Debug().Msgf("标签页池容量: %d", size)

	return &PagePool{
		browser: browser,
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		idle:    make(chan *rod.Page, size),
		health:  make(map[*rod.Page]*PageHealthStatus),
		monitor: monitor,
	}
}

// Size 池容量
func (pp *PagePool) Size() int {
	return pp.size
}

// Acquire 获取一个可用的标签页
func (pp *PagePool) Acquire(ctx context.Context) (*rod.Page, error) {
	if err := pp.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	pp.mu.Lock()
	closed := pp.closed
	pp.mu.Unlock()
	if closed {
		pp.sem.Release(1)
		return nil, errPoolClosed
	}

	select {
	case page := <-pp.idle:
		return page, nil
	default:
	}

	// 资源不足只告警,容量上限已由信号量保证
	if ok, reason := pp.monitor.CheckResourceAvailability(); !ok {
		log.Warn().Msgf("资源紧张,仍创建新标签页: %s", reason)
	}

	page, err := pp.newPage()
	if err != nil {
		pp.sem.Release(1)
		return nil, err
	}
	return page, nil
}

func (pp *PagePool) newPage() (page *rod.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("创建标签页panic: %v", r)
		}
	}()

	page, err = pp.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		log.Error().Err(err).Msg("创建标签页失败,浏览器可能已崩溃")
		return nil, fmt.Errorf("创建标签页失败(浏览器可能已崩溃): %w", err)
	}
	if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
		log.Warn().Err(err).Msg("注入反检测脚本失败")
	}

	pp.mu.Lock()
	pp.health[page] = &PageHealthStatus{LastSuccessTime: time.Now()}
	count := len(pp.health)
	pp.mu.Unlock()

	log.Debug().Msgf("创建新标签页,当前标签页数: %d, 最大限制: %d", count, pp.size)
	return page, nil
}

// Release 清理标签页状态后归还,连续清理失败的标签页会被销毁
func (pp *PagePool) Release(page *rod.Page) {
	if page == nil {
		return
	}
	defer pp.sem.Release(1)

	pp.mu.Lock()
	health, ok := pp.health[page]
	closed := pp.closed
	pp.mu.Unlock()
	if !ok || closed {
		pp.destroy(page)
		return
	}

	if err := cleanPage(page); err != nil {
		pp.mu.Lock()
		health.CleanFailureCount++
		failures := health.CleanFailureCount
		pp.mu.Unlock()

		log.Warn().Err(err).Msgf("清理标签页状态失败 (第%d次失败)", failures)
		if failures >= maxCleanFailures {
			log.Warn().Msg("标签页清理连续失败,销毁该标签页")
			pp.destroy(page)
			return
		}
	} else {
		pp.mu.Lock()
		health.CleanFailureCount = 0
		health.LastSuccessTime = time.Now()
		pp.mu.Unlock()
	}

	select {
	case pp.idle <- page:
	default:
		pp.destroy(page)
	}
}

// Discard 直接销毁标签页并释放名额
func (pp *PagePool) Discard(page *rod.Page) {
	if page == nil {
		return
	}
	defer pp.sem.Release(1)
	pp.destroy(page)
}

// cleanPage 清理localStorage、sessionStorage和cookies
func cleanPage(page *rod.Page) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("清理标签页panic: %v", r)
		}
	}()

	_, err = page.Timeout(5 * time.Second).Evaluate(&rod.EvalOptions{
		JS: `() => {
			try { if (window.localStorage) localStorage.clear(); } catch (e) {}
			try { if (window.sessionStorage) sessionStorage.clear(); } catch (e) {}
			try {
				var cookies = document.cookie ? document.cookie.split(";") : [];
				for (var i = 0; i < cookies.length; i++) {
					var eqPos = cookies[i].indexOf("=");
					var name = eqPos > -1 ? cookies[i].substr(0, eqPos) : cookies[i];
					document.cookie = name.replace(/^ +/, "") + "=;expires=Thu, 01 Jan 1970 00:00:00 UTC;path=/";
				}
			} catch (e) {}
			return true;
		}`,
	})
	if err != nil {
		return fmt.Errorf("清理标签页状态失败: %w", err)
	}
	return nil
}

// destroy 关闭标签页并删除健康记录
func (pp *PagePool) destroy(page *rod.Page) {
	pp.mu.Lock()
	delete(pp.health, page)
	count := len(pp.health)
	pp.mu.Unlock()

	func() {
		defer func() { _ = recover() }()
		if err := page.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭标签页失败")
		}
	}()
	log.Debug().Msgf("销毁标签页,当前标签页数: %d", count)
}

// Close 关闭标签页池,释放所有标签页
func (pp *PagePool) Close() error {
	pp.mu.Lock()
	if pp.closed {
		pp.mu.Unlock()
		return nil
	}
	pp.closed = true
	pages := make([]*rod.Page, 0, len(pp.health))
	for page := range pp.health {
		pages = append(pages, page)
	}
	pp.health = make(map[*rod.Page]*PageHealthStatus)
	pp.mu.Unlock()

	var errs []error
	for _, page := range pages {
		func() {
			defer func() { _ = recover() }()
			if err := page.Close(); err != nil {
				errs = append(errs, err)
			}
		}()
	}

	log.Debug().Msg("标签页池已关闭")
	return errors.Join(errs...)
}
