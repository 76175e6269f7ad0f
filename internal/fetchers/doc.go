// Package fetchers 提供获取页面HTML的抓取策略
//
// # 概述
//
// fetchers包实现了统一的 Fetcher 接口,支持静态(Colly)和渲染(go-rod / chromedp)两种模式。
// 每次调用只发起一次请求,不做重试;失败以 *models.FetchError 或 *models.RenderError 返回。
//
// # 核心组件
//
// ## StaticFetcher
//
// 基于Colly的单次GET抓取器。每次Fetch克隆一个collector,挂载本次调用的回调,
// 并按Content-Encoding解压gzip、deflate和brotli响应体。
//
//	f := NewStaticFetcher(StaticOptions{Timeout: 30 * time.Second}, headerProvider)
//	page, err := f.Fetch(ctx, "https://example.com")
//
// ## RenderFetcher
//
// 基于go-rod的渲染抓取器。导航后以指数退避轮询 document.readyState,
// 再等待固定时间;检测到Cloudflare验证页时额外等待;可选滚动加载。
//
//	session, err := NewBrowserSession(BrowserOptions{Headless: true, MaxTabs: 4}, nil)
//	if err != nil { /* 处理错误 */ }
//	defer session.Close()
//
//	f := NewRenderFetcher(session, DefaultRenderOptions(), headerProvider)
//	page, err := f.Fetch(ctx, "https://example.com")
//
// ## BrowserSession 与 PagePool (标签页池)
//
// 浏览器会话由调用方显式创建和关闭,不存在包级单例。
// 标签页池的策略:
//   - 容量为 min(render.max_tabs, ResourceMonitor.CalculateMaxTabs())
//   - semaphore.Weighted 保证同时借出的标签页不超过容量
//   - 归还时清理localStorage、sessionStorage和cookies
//   - 清理连续失败2次的标签页被销毁
//   - 浏览器调用panic后标签页直接销毁
//
// ## ChromedpFetcher
//
// 与RenderFetcher契约相同的另一种渲染引擎(render.engine: chromedp)。
// 每次Fetch创建新标签页上下文,所有退出路径都会取消。
//
// ## ResourceMonitor (资源监控器)
//
// 通过gopsutil读取可用内存和CPU负载,计算标签页上限,结果缓存1秒。
//
// ## PDFDetector
//
// 依次按路径后缀、路径片段、查询参数和HEAD请求的Content-Type判断URL是否为PDF,从不返回错误。
package fetchers
