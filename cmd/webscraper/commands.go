package main

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// crawlFlags 抓取相关的子命令参数
type crawlFlags struct {
	targetURL string
	depth     int
	waitTime  int
	mode      string
	engine    string
	scroll    bool
	headful   bool
}

func (f *crawlFlags) register(cmd *cobra.Command, withDepth bool) {
	cmd.Flags().StringVarP(&f.targetURL, "url", "u", "", "目标URL")
	if withDepth {
		cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "抓取深度 (1-10, 默认取配置)")
	}
	cmd.Flags().IntVarP(&f.waitTime, "wait", "w", -1, "渲染后等待时间(秒, 0-60)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "抓取模式 (static|render)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "渲染引擎 (rod|chromedp)")
	cmd.Flags().BoolVar(&f.scroll, "scroll", false, "渲染时滚动页面以加载懒加载内容")
	cmd.Flags().BoolVar(&f.headful, "headful", false, "显示浏览器窗口")
}

// apply 规范化URL,合并到全局配置并验证
func (f *crawlFlags) apply(requireURL bool) error {
	if f.targetURL == "" {
		if requireURL {
			return fmt.Errorf("必须指定目标URL (-u)")
		}
	} else {
		u, err := NormalizeURL(f.targetURL)
		if err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
		f.targetURL = u
	}

	appConfig.MergeCLIFlags(core.CLIOverrides{
		Depth:    f.depth,
		WaitTime: f.waitTime,
		Mode:     f.mode,
		Engine:   f.engine,
		Scroll:   f.scroll,
		Headful:  f.headful,
	})
	if err := ValidateFlags(
		f.targetURL,
		appConfig.Crawl.Depth,
		int(appConfig.Render.WaitTime/time.Second),
		appConfig.Fetch.Mode,
		appConfig.Output.Format,
	); err != nil {
		return err
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}
	return utils.EnsureDir(appConfig.Output.Dir)
}

// newScraper 使用全局配置和头部创建抓取器
func newScraper() *core.Scraper {
	if h, err := headerManager.GetHeaders(); err == nil {
		utils.Debugf("HTTP头部: %v", utils.NewHeaderRedactor().RedactToString(h))
	}
	return core.NewScraper(appConfig, headerManager)
}

// startSpinner 在标准错误上显示等待动画
func startSpinner(msg string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()
	return s
}

func printResultSummary(title, path, content string) {
	fmt.Println("==================================================")
	fmt.Println("📊 抓取结果")
	fmt.Println("==================================================")
	fmt.Printf("📰 标题: %s\n", title)
	fmt.Printf("📝 正文长度: %d 字符\n", utf8.RuneCountInString(content))
	fmt.Printf("💾 输出文件: %s\n", path)
	fmt.Println("==================================================")
}
