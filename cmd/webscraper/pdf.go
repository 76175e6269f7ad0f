package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

var pdfFlags crawlFlags

var pdfCmd = &cobra.Command{
	Use:   "pdf [本地文件...]",
	Short: "提取PDF文本 (URL或本地文件)",
	Example: `  webscraper pdf -u https://example.com/report.pdf
  webscraper pdf ./manual.pdf ./guide.pdf --format html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pdfFlags.targetURL == "" && len(args) == 0 {
			return fmt.Errorf("必须指定PDF的URL (-u) 或本地文件")
		}
		if err := pdfFlags.apply(false); err != nil {
			return err
		}
		scraper := newScraper()

		var results []*models.ScrapeResult
		if pdfFlags.targetURL != "" {
			sp := startSpinner("正在提取PDF...")
			res, err := scraper.Scrape(cmd.Context(), pdfFlags.targetURL, core.ScrapeOptions{})
			sp.Stop()
			if err != nil && (res == nil || res.OutputPath == "") {
				return fmt.Errorf("PDF提取失败: %w", err)
			}
			if err != nil {
				utils.Warnf("PDF提取失败,已保存错误记录: %v", err)
			}
			results = append(results, res)
		}

		for _, path := range args {
			res, err := scraper.ScrapePDFFile(path, appConfig.Output.Format)
			if err != nil {
				utils.Errorf("❌ 处理 %s 失败: %v", path, err)
				if res == nil || res.OutputPath == "" {
					continue
				}
			}
			results = append(results, res)
		}

		for _, res := range results {
			printResultSummary(res.Title, res.OutputPath, res.Content)
		}
		if len(results) == 0 {
			return fmt.Errorf("没有成功处理的PDF")
		}
		return nil
	},
}

func init() {
	pdfCmd.Flags().StringVarP(&pdfFlags.targetURL, "url", "u", "", "PDF的URL")
	// 不提供 -w,保留配置中的渲染等待时间
	pdfFlags.waitTime = -1
}
