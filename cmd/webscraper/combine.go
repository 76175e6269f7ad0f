package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/output"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

var (
	combineTitle  string
	combineReport string
)

var combineCmd = &cobra.Command{
	Use:   "combine [文件...]",
	Short: "把已保存的 html 或 txt 文件合并为一个文档",
	Example: `  webscraper combine scraped_data/*.html --title "MyLib Docs"
  webscraper combine a.txt b.txt --format txt
  webscraper combine --report scraped_data/batch_report_20260101_120000.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if combineReport != "" {
			return combineFromReport(cmd)
		}
		if len(args) == 0 {
			return fmt.Errorf("必须指定要合并的文件或 --report")
		}

		files, err := expandArgs(args)
		if err != nil {
			return err
		}

		f := format
		if f == "" {
			f = formatFromExt(files[0])
		}
		if err := utils.EnsureDir(appConfig.Output.Dir); err != nil {
			return err
		}

		c := output.NewCombiner(appConfig.Output.Dir)
		c.Progress = os.Stderr
		path, err := c.Combine(cmd.Context(), files, f, combineTitle)
		if err != nil {
			return fmt.Errorf("合并失败: %w", err)
		}
		fmt.Printf("📚 合并文档: %s\n", path)
		return nil
	},
}

// combineFromReport 合并批量报告中成功的输出文件
func combineFromReport(cmd *cobra.Command) error {
	report, err := core.LoadBatchReport(combineReport)
	if err != nil {
		return err
	}
	if format != "" {
		report.Format = format
	}
	if err := utils.EnsureDir(appConfig.Output.Dir); err != nil {
		return err
	}
	title := ""
	if cmd.Flags().Changed("title") {
		title = combineTitle
	}
	path, err := core.CombineReport(cmd.Context(), report, title, appConfig.Output.Dir, os.Stderr)
	if err != nil {
		return fmt.Errorf("合并失败: %w", err)
	}
	fmt.Printf("📚 合并文档: %s\n", path)
	return nil
}

// expandArgs 展开参数中的通配符(Windows的shell不会展开)
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		matches, err := filepath.Glob(a)
		if err != nil {
			return nil, fmt.Errorf("无效的文件模式 %s: %w", a, err)
		}
		if len(matches) == 0 {
			// 保留原路径,由合并器生成错误小节
			files = append(files, a)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

// formatFromExt 未指定 --format 时按第一个文件的扩展名判断
func formatFromExt(path string) string {
	if filepath.Ext(path) == ".txt" {
		return output.FormatText
	}
	return output.FormatHTML
}

func init() {
	combineCmd.Flags().StringVar(&combineTitle, "title", output.DefaultCombinedTitle, "合并文档的标题")
	combineCmd.Flags().StringVar(&combineReport, "report", "", "batch 命令写出的JSON报告,合并其中成功的文件 (标题取站点名)")
}
