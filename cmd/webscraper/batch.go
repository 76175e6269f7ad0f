package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

var (
	batchCrawl      crawlFlags
	batchLinks      linkFlags
	urlFile         string
	batchDelay      int
	continueOnError bool
	batchLimit      int
	batchCombine    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "批量抓取: 文档站点的分类链接或URL列表文件",
	Example: `  webscraper batch -u https://mylib.readthedocs.io/en/latest/ --format html --combine
  webscraper batch -f urls.txt --batch-delay 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchCrawl.targetURL == "" && urlFile == "" {
			return fmt.Errorf("必须指定 -u 或 -f")
		}
		if err := batchCrawl.apply(false); err != nil {
			return err
		}

		scraper := newScraper()
		bs := core.NewBatchScraper(scraper, appConfig.Batch)
		bs.Progress = os.Stderr

		opts := bs.DefaultBatchOptions()
		opts.Mode = models.FetchMode(appConfig.Fetch.Mode)
		opts.Format = appConfig.Output.Format
		opts.Limit = batchLimit
		if cmd.Flags().Changed("batch-delay") {
			opts.Delay = time.Duration(batchDelay) * time.Second
		}
		if cmd.Flags().Changed("continue-on-error") {
			opts.ContinueOnError = continueOnError
		}
		if opts.ReportDir == "" {
			opts.ReportDir = appConfig.Output.Dir
		}

		if urlFile != "" {
			if err := ValidateURLFile(urlFile); err != nil {
				return err
			}
			urls, err := utils.ReadURLsFromFile(urlFile)
			if err != nil {
				return fmt.Errorf("读取URL文件失败: %w", err)
			}
			report, err := bs.ScrapeURLs(cmd.Context(), urls, opts)
			if err != nil {
				return fmt.Errorf("批量抓取失败: %w", err)
			}
			utils.Info("✨ 批量抓取任务完成!")
			return combineBatch(cmd, report)
		}

		sp := startSpinner("正在提取链接...")
		result, err := core.NewDocLinks(scraper).Extract(cmd.Context(), batchCrawl.targetURL, batchLinks.options())
		sp.Stop()
		if err != nil {
			return fmt.Errorf("提取链接失败: %w", err)
		}
		if result.Total == 0 {
			utils.Warn("没有找到可抓取的链接")
			return nil
		}

		report, err := bs.ScrapeLinks(cmd.Context(), result, opts)
		if err != nil {
			return fmt.Errorf("批量抓取失败: %w", err)
		}
		utils.Info("✨ 批量抓取任务完成!")
		return combineBatch(cmd, report)
	},
}

// combineBatch 指定 --combine 时把本次成功的输出合并为一个文档
func combineBatch(cmd *cobra.Command, report *models.BatchReport) error {
	if !batchCombine {
		return nil
	}
	path, err := core.CombineReport(cmd.Context(), report, "", appConfig.Output.Dir, os.Stderr)
	if err != nil {
		return fmt.Errorf("合并批量结果失败: %w", err)
	}
	fmt.Printf("📚 合并文档: %s\n", path)
	return nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchCrawl.targetURL, "url", "u", "", "文档首页URL,提取链接后批量抓取")
	batchCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	batchCmd.Flags().StringVarP(&batchCrawl.mode, "mode", "m", "", "抓取模式 (static|render)")
	batchCmd.Flags().StringVar(&batchCrawl.engine, "engine", "", "渲染引擎 (rod|chromedp)")
	batchCmd.Flags().BoolVar(&batchCrawl.headful, "headful", false, "显示浏览器窗口")
	batchCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "链接之间的延迟(秒)")
	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "最多抓取的链接数 (默认: 文档平台30, 其他15)")
	batchCmd.Flags().BoolVar(&batchCombine, "combine", false, "完成后把成功的结果合并为一个文档 (标题取站点名)")
	batchLinks.register(batchCmd)
	batchCrawl.waitTime = -1
}
