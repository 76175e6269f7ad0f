package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// linkFlags 文档链接提取参数
type linkFlags struct {
	maxLinks int
	pattern  string
}

func (f *linkFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxLinks, "max-links", 0, "最多提取的链接数 (默认取配置)")
	cmd.Flags().StringVar(&f.pattern, "pattern", "", "只保留URL或文本匹配该正则的链接")
}

func (f *linkFlags) options() core.DocLinksOptions {
	max := f.maxLinks
	if max <= 0 {
		max = appConfig.Batch.MaxLinks
	}
	return core.DocLinksOptions{
		Mode:     models.FetchMode(appConfig.Fetch.Mode),
		MaxLinks: max,
		Pattern:  f.pattern,
	}
}

var (
	linksCrawl crawlFlags
	linksOpts  linkFlags
	linksJSON  bool
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "提取并分类文档站点的链接",
	Example: `  webscraper links -u https://mylib.readthedocs.io/en/latest/
  webscraper links -u https://example.com/docs --pattern api --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := linksCrawl.apply(true); err != nil {
			return err
		}

		sp := startSpinner("正在提取链接...")
		result, err := core.NewDocLinks(newScraper()).Extract(cmd.Context(), linksCrawl.targetURL, linksOpts.options())
		sp.Stop()
		if err != nil {
			return fmt.Errorf("提取链接失败: %w", err)
		}

		if linksJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		printDocLinks(result)
		return nil
	},
}

func printDocLinks(result *core.DocLinksResult) {
	fmt.Printf("📚 %s\n", result.Title)
	if result.MetaDescription != "" {
		fmt.Printf("   %s\n", result.MetaDescription)
	}
	if result.IsDocPlatform {
		fmt.Println("   (识别为文档平台)")
	}
	for _, cat := range models.DocCategories {
		links := result.Structure.Category(cat)
		if len(links) == 0 {
			continue
		}
		fmt.Printf("\n[%s] %d\n", cat, len(links))
		for _, l := range links {
			fmt.Printf("  - %s: %s\n", l.Text, l.URL)
		}
	}
	utils.Infof("共 %d 个链接", result.Total)
}

func init() {
	linksCmd.Flags().StringVarP(&linksCrawl.targetURL, "url", "u", "", "文档首页URL")
	linksCmd.Flags().StringVarP(&linksCrawl.mode, "mode", "m", "", "抓取模式 (static|render)")
	linksCmd.Flags().IntVarP(&linksCrawl.waitTime, "wait", "w", -1, "渲染后等待时间(秒, 0-60)")
	linksCmd.Flags().BoolVar(&linksJSON, "json", false, "以JSON输出")
	linksOpts.register(linksCmd)
}
