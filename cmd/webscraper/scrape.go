package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

var scrapeFlags crawlFlags

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "抓取单个网页(或PDF)并保存",
	Example: `  webscraper scrape -u https://example.com
  webscraper scrape -u https://example.com -d 2 -m render --scroll --format html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := scrapeFlags.apply(true); err != nil {
			return err
		}

		utils.Infof("🚀 开始抓取: %s (模式: %s, 深度: %d)", scrapeFlags.targetURL, appConfig.Fetch.Mode, appConfig.Crawl.Depth)

		sp := startSpinner("正在抓取...")
		result, err := newScraper().Scrape(cmd.Context(), scrapeFlags.targetURL, core.ScrapeOptions{
			Mode: models.FetchMode(appConfig.Fetch.Mode),
		})
		sp.Stop()
		if err != nil {
			if result != nil && result.OutputPath != "" {
				utils.Warnf("已保存错误记录: %s", result.OutputPath)
			}
			return fmt.Errorf("抓取失败: %w", err)
		}

		printResultSummary(result.Title, result.OutputPath, result.Content)
		utils.Info("✨ 抓取任务完成!")
		return nil
	},
}

func init() {
	scrapeFlags.register(scrapeCmd, true)
}
