package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/webscraper/internal/fetchers"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/output"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// 渲染引擎
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// envPrefix 环境变量前缀,如 WEBSCRAPER_FETCH_MODE
const envPrefix = "WEBSCRAPER"

// Config 应用程序配置
type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Render  RenderConfig  `mapstructure:"render"`
	Crawl   CrawlSection  `mapstructure:"crawl"`
	PDF     PDFConfig     `mapstructure:"pdf"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Batch   BatchConfig   `mapstructure:"batch"`
}

// FetchConfig 抓取配置
type FetchConfig struct {
	Mode               string        `mapstructure:"mode"` // static | render
	Timeout            time.Duration `mapstructure:"timeout"`
	UserAgent          string        `mapstructure:"user_agent"`
	RespectRobots      bool          `mapstructure:"respect_robots"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	HeadersFile        string        `mapstructure:"headers_file"`
}

// RenderConfig 浏览器渲染配置
type RenderConfig struct {
	Engine          string        `mapstructure:"engine"` // rod | chromedp
	Headless        bool          `mapstructure:"headless"`
	MaxTabs         int           `mapstructure:"max_tabs"`
	BinPath         string        `mapstructure:"bin_path"`
	WaitTime        time.Duration `mapstructure:"wait_time"`
	ReadyTimeout    time.Duration `mapstructure:"ready_timeout"`
	ChallengeWait   time.Duration `mapstructure:"challenge_wait"`
	Scroll          bool          `mapstructure:"scroll"`
	MaxScrolls      int           `mapstructure:"max_scrolls"`
	ScrollPause     time.Duration `mapstructure:"scroll_pause"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout"`
}

// CrawlSection 抓取深度和子页面参数
type CrawlSection struct {
	Depth           int           `mapstructure:"depth"`
	StaticChildCap  int           `mapstructure:"static_child_cap"`
	RenderChildCap  int           `mapstructure:"render_child_cap"`
	StaticSummary   int           `mapstructure:"static_summary"`
	RenderSummary   int           `mapstructure:"render_summary"`
	SummaryHeadings int           `mapstructure:"summary_headings"`
	ChildDelay      time.Duration `mapstructure:"child_delay"`
}

// PDFConfig PDF处理配置
type PDFConfig struct {
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	DetectTimeout     time.Duration `mapstructure:"detect_timeout"`
	DetectPathSegment bool          `mapstructure:"detect_path_segment"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // txt | json | html
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	NoColor  bool           `mapstructure:"no_color"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// MetricsConfig 指标输出配置,均为空时不输出
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
	Listen   string `mapstructure:"listen"`
}

// BatchConfig 批量抓取和文档链接配置
type BatchConfig struct {
	Delay           time.Duration `mapstructure:"delay"`
	ContinueOnError bool          `mapstructure:"continue_on_error"`
	MaxLinks        int           `mapstructure:"max_links"`     // 文档链接提取上限
	DocsLimit       int           `mapstructure:"docs_limit"`    // 识别出文档平台时的批量上限
	GenericLimit    int           `mapstructure:"generic_limit"` // 普通站点的批量上限
	ReportDir       string        `mapstructure:"report_dir"`
}

// LoadConfig 加载配置文件,文件不存在时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".webscraper"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: configPath, Cause: fmt.Errorf("读取配置文件失败: %w", err)}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: fmt.Errorf("解析配置文件失败: %w", err)}
	}
	if err := config.Validate(); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: err}
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.mode", string(models.ModeStatic))
	v.SetDefault("fetch.timeout", fetchers.DefaultTimeout)
	v.SetDefault("fetch.user_agent", fetchers.DefaultUserAgent)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.insecure_skip_verify", false)
	v.SetDefault("fetch.headers_file", "")

	rd := fetchers.DefaultRenderOptions()
	v.SetDefault("render.engine", EngineRod)
	v.SetDefault("render.headless", true)
	v.SetDefault("render.max_tabs", 4)
	v.SetDefault("render.bin_path", "")
	v.SetDefault("render.wait_time", rd.WaitTime)
	v.SetDefault("render.ready_timeout", rd.ReadyTimeout)
	v.SetDefault("render.challenge_wait", rd.ChallengeWait)
	v.SetDefault("render.scroll", false)
	v.SetDefault("render.max_scrolls", rd.MaxScrolls)
	v.SetDefault("render.scroll_pause", rd.ScrollPause)
	v.SetDefault("render.navigate_timeout", rd.NavigateTimeout)

	cd := models.DefaultCrawlConfig()
	v.SetDefault("crawl.depth", cd.Depth)
	v.SetDefault("crawl.static_child_cap", cd.StaticChildCap)
	v.SetDefault("crawl.render_child_cap", cd.RenderChildCap)
	v.SetDefault("crawl.static_summary", cd.StaticSummary)
	v.SetDefault("crawl.render_summary", cd.RenderSummary)
	v.SetDefault("crawl.summary_headings", cd.SummaryHeadings)
	v.SetDefault("crawl.child_delay", cd.ChildDelay)

	v.SetDefault("pdf.download_timeout", 30*time.Second)
	v.SetDefault("pdf.detect_timeout", 10*time.Second)
	v.SetDefault("pdf.detect_path_segment", true)

	v.SetDefault("output.dir", "scraped_data")
	v.SetDefault("output.format", output.FormatText)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.listen", "")

	v.SetDefault("batch.delay", time.Second)
	v.SetDefault("batch.continue_on_error", true)
	v.SetDefault("batch.max_links", 20)
	v.SetDefault("batch.docs_limit", 30)
	v.SetDefault("batch.generic_limit", 15)
	v.SetDefault("batch.report_dir", "")
}

// DefaultConfig 不读取任何文件的默认配置
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// 默认值类型与结构体一致,不会出错
	_ = v.Unmarshal(&config)
	return &config
}

// Validate 检查枚举字段和取值范围
func (c *Config) Validate() error {
	if _, ok := models.ParseFetchMode(c.Fetch.Mode); !ok {
		return fmt.Errorf("无效的抓取模式: %s (可选: static, render)", c.Fetch.Mode)
	}
	if c.Render.Engine != EngineRod && c.Render.Engine != EngineChromedp {
		return fmt.Errorf("无效的渲染引擎: %s (可选: rod, chromedp)", c.Render.Engine)
	}
	if !output.IsSupportedFormat(c.Output.Format) {
		return fmt.Errorf("无效的输出格式: %s (可选: txt, json, html)", c.Output.Format)
	}
	crawl := c.CrawlConfig()
	return crawl.Validate()
}

// CrawlConfig 转换为单次抓取参数
func (c *Config) CrawlConfig() models.CrawlConfig {
	return models.CrawlConfig{
		Depth:           c.Crawl.Depth,
		WaitTime:        c.Render.WaitTime,
		Scroll:          c.Render.Scroll,
		Headless:        c.Render.Headless,
		StaticChildCap:  c.Crawl.StaticChildCap,
		RenderChildCap:  c.Crawl.RenderChildCap,
		StaticSummary:   c.Crawl.StaticSummary,
		RenderSummary:   c.Crawl.RenderSummary,
		SummaryHeadings: c.Crawl.SummaryHeadings,
		ChildDelay:      c.Crawl.ChildDelay,
	}
}

// StaticOptions 静态抓取参数
func (c *Config) StaticOptions() fetchers.StaticOptions {
	return fetchers.StaticOptions{
		Timeout:            c.Fetch.Timeout,
		UserAgent:          c.Fetch.UserAgent,
		RespectRobots:      c.Fetch.RespectRobots,
		InsecureSkipVerify: c.Fetch.InsecureSkipVerify,
	}
}

// RenderOptions 渲染等待参数
func (c *Config) RenderOptions() fetchers.RenderOptions {
	return fetchers.RenderOptions{
		WaitTime:        c.Render.WaitTime,
		ReadyTimeout:    c.Render.ReadyTimeout,
		ChallengeWait:   c.Render.ChallengeWait,
		Scroll:          c.Render.Scroll,
		MaxScrolls:      c.Render.MaxScrolls,
		ScrollPause:     c.Render.ScrollPause,
		NavigateTimeout: c.Render.NavigateTimeout,
	}
}

// BrowserOptions 浏览器启动参数
func (c *Config) BrowserOptions() fetchers.BrowserOptions {
	return fetchers.BrowserOptions{
		Headless: c.Render.Headless,
		MaxTabs:  c.Render.MaxTabs,
		BinPath:  c.Render.BinPath,
	}
}

// LogConfig 日志初始化参数
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
		NoColor:    c.Logging.NoColor,
	}
}

// CLIOverrides 命令行参数,零值(或WaitTime为负)表示未指定
type CLIOverrides struct {
	Depth     int
	WaitTime  int // 秒
	Mode      string
	Engine    string
	Format    string
	OutputDir string
	LogLevel  string
	Scroll    bool
	Headful   bool
}

// MergeCLIFlags 合并命令行参数到配置,命令行优先
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.Depth > 0 {
		c.Crawl.Depth = o.Depth
	}
	if o.WaitTime >= 0 {
		c.Render.WaitTime = time.Duration(o.WaitTime) * time.Second
	}
	if o.Mode != "" {
		c.Fetch.Mode = o.Mode
	}
	if o.Engine != "" {
		c.Render.Engine = o.Engine
	}
	if o.Format != "" {
		c.Output.Format = o.Format
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.Scroll {
		c.Render.Scroll = true
	}
	if o.Headful {
		c.Render.Headless = false
	}
}
