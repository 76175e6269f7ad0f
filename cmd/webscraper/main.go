package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webscraper/internal/core"
	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 全局参数
var (
	configFile     string
	verbose        bool
	logLevel       string
	headers        []string
	headersFile    string
	validateConfig bool
	outputDir      string
	format         string
)

// 运行时状态,由PersistentPreRunE初始化
var (
	appConfig     *core.Config
	headerManager *core.HeaderManager
	stopMetrics   context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "webscraper",
	Short: "网页和PDF内容抓取工具",
	Long: `webscraper - 网页内容抓取、分析和文档合并工具

支持:
  • 静态抓取 (colly) 和浏览器渲染抓取 (rod / chromedp)
  • 有限深度的同域子页面摘要
  • PDF文本提取和质量检测
  • 文档站点链接分类和批量抓取
  • txt / json / html 输出以及文档合并

示例:
  webscraper scrape -u https://example.com -d 2
  webscraper scrape -u https://example.com -m render --scroll --format html
  webscraper pdf -u https://example.com/report.pdf
  webscraper links -u https://mylib.readthedocs.io/en/latest/
  webscraper batch -u https://mylib.readthedocs.io/en/latest/ --format html
  webscraper combine scraped_data/*.html --title "MyLib Docs"

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		config.MergeCLIFlags(core.CLIOverrides{
			WaitTime:  -1,
			Format:    format,
			OutputDir: outputDir,
			LogLevel:  logLevel,
		})
		if err := config.Validate(); err != nil {
			return err
		}
		appConfig = config

		if err := utils.InitLogger(config.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		if verbose {
			utils.Info("详细模式已启用")
		}

		file := headersFile
		if file == "" {
			file = config.Fetch.HeadersFile
		}
		headerManager, err = core.NewHeaderManager(file, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		if addr := config.Metrics.Listen; addr != "" {
			ctx, cancel := context.WithCancel(cmd.Context())
			stopMetrics = cancel
			go func() {
				if err := metrics.Serve(ctx, addr); err != nil {
					utils.Errorf("%v", err)
				}
			}()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if stopMetrics != nil {
			stopMetrics()
		}
		if appConfig == nil {
			return nil
		}
		return metrics.WriteTextfile(appConfig.Metrics.Textfile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !validateConfig {
			return cmd.Help()
		}

		utils.Info("🔍 验证HTTP头部配置...")
		if _, err := headerManager.GetHeaders(); err != nil {
			return fmt.Errorf("配置验证失败: %w", err)
		}
		safe := headerManager.SafeHeaders()
		names := make([]string, 0, len(safe))
		for name := range safe {
			names = append(names, name)
		}
		sort.Strings(names)

		utils.Info("✅ 配置验证通过!")
		utils.Infof("当前有效的HTTP头部 (%d个):", len(safe))
		for _, name := range names {
			utils.Infof("  %s: %s", name, safe[name])
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("webscraper %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().StringVar(&headersFile, "headers-file", "", "HTTP头部配置文件 (默认 configs/headers.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认 scraped_data)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "输出格式 (txt|json|html)")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "验证HTTP头部配置")

	rootCmd.AddCommand(versionCmd, scrapeCmd, pdfCmd, linksCmd, batchCmd, combineCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			utils.Warn("收到中断信号,已停止")
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		stop()
		os.Exit(1)
	}
}
