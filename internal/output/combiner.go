package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// DefaultCombinedTitle 未指定标题时的合并文档标题
const DefaultCombinedTitle = "Combined Documentation"

// defaultCombineWorkers 并发读取文件数
const defaultCombineWorkers = 4

// contentSelectors 正文容器,按顺序取第一个命中的
var contentSelectors = []string{
	"div.document",
	`div[role="main"]`,
	"article",
	"div.content",
	"div.section",
	"body",
}

var (
	txtTitleRe    = regexp.MustCompile(`Title: (.*)`)
	cleanTitleRe  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	txtSectionBar = strings.Repeat("=", 80)
)

// section 合并文档中的一节
type section struct {
	title string
	body  string
	err   error
}

// Combiner 把多个已保存的文档合并为一个
type Combiner struct {
	OutputDir string
	Workers   int
	Progress  io.Writer // 非nil时输出进度条

	now func() time.Time
}

// NewCombiner 创建合并器
func NewCombiner(outputDir string) *Combiner {
	return &Combiner{OutputDir: outputDir, Workers: defaultCombineWorkers, now: time.Now}
}

// Combine 合并文件并返回输出路径,输出顺序与输入顺序一致
// 单个文件读取或解析失败时生成错误小节,不中断合并
func (c *Combiner) Combine(ctx context.Context, paths []string, format, title string) (string, error) {
	if len(paths) == 0 {
		return "", models.ErrEmptyInput
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatHTML && format != FormatText {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, format)
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultCombinedTitle
	}

	sections, err := c.readAll(ctx, paths, format)
	if err != nil {
		return "", err
	}

	now := c.clock()
	var out string
	if format == FormatHTML {
		out = renderCombinedHTML(title, sections, now)
	} else {
		out = renderCombinedText(title, sections, now)
	}

	name := fmt.Sprintf("combined_%s_%s.%s", cleanTitle(title), now.Format(filenameTimeLayout), format)
	outPath := filepath.Join(c.OutputDir, name)
	if err := os.WriteFile(outPath, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("写入合并文件失败: %w", err)
	}

	log.Info().Msgf("📚 已合并 %d 个文件: %s", len(paths), outPath)
	return outPath, nil
}

func (c *Combiner) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// readAll 并发读取所有文件,结果按下标写入
func (c *Combiner) readAll(ctx context.Context, paths []string, format string) ([]section, error) {
	workers := c.Workers
	if workers <= 0 {
		workers = defaultCombineWorkers
	}

	var bar interface{ Add(int) error }
	if c.Progress != nil {
		bar = utils.NewProgressBarTo(c.Progress, len(paths), "合并文档")
	}

	sections := make([]section, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if format == FormatHTML {
				sections[i] = readHTMLSection(p)
			} else {
				sections[i] = readTextSection(p)
			}
			if sections[i].err != nil {
				log.Warn().Err(sections[i].err).Str("file", p).Msg("处理文件失败")
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}

func readHTMLSection(p string) section {
	base := filepath.Base(p)
	data, err := os.ReadFile(p)
	if err != nil {
		return section{title: "Error in file " + base, err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return section{title: "Error in file " + base, err: err}
	}

	title := ""
	if t := doc.Find("title").First(); t.Length() > 0 {
		title = strings.TrimSpace(t.Text())
	}
	title = SectionTitle(title, base)

	var body string
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			body, err = goquery.OuterHtml(s)
			if err != nil {
				return section{title: "Error in file " + base, err: err}
			}
			break
		}
	}
	return section{title: title, body: body}
}

func readTextSection(p string) section {
	base := filepath.Base(p)
	data, err := os.ReadFile(p)
	if err != nil {
		return section{title: base, err: err}
	}
	content := string(data)
	title := base
	if m := txtTitleRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}
	return section{title: title, body: content}
}

// SectionTitle 从页面<title>得到小节标题:取连字符或长破折号分隔符之前的部分,
// 去掉末尾的 " module";为空时用文件主名
func SectionTitle(pageTitle, fileName string) string {
	t := strings.SplitN(pageTitle, " - ", 2)[0]
	t = strings.SplitN(t, " — ", 2)[0]
	t = strings.TrimSpace(t)
	t = strings.TrimSpace(strings.TrimSuffix(t, " module"))
	if t == "" {
		t = strings.SplitN(fileName, ".", 2)[0]
	}
	return t
}

// cleanTitle 文件名用的标题
func cleanTitle(title string) string {
	t := strings.TrimSpace(cleanTitleRe.ReplaceAllString(title, ""))
	t = strings.Join(strings.Fields(t), "_")
	if t == "" {
		return "documentation"
	}
	return t
}

const combinedStyle = `
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; color: #333; line-height: 1.6; }
.topbar { position: fixed; top: 0; left: 0; right: 0; height: 50px; background: #2c3e50; color: #fff; display: flex; align-items: center; justify-content: space-between; padding: 0 20px; z-index: 10; }
.topbar h1 { font-size: 1.2em; margin: 0; }
.sidebar { position: fixed; top: 50px; bottom: 0; left: 0; width: 280px; overflow-y: auto; background: #f4f6f8; padding: 15px; border-right: 1px solid #ddd; }
.sidebar ul { list-style: none; padding-left: 0; }
.sidebar li { margin: 6px 0; }
.sidebar a { color: #2c3e50; text-decoration: none; }
.main { margin-left: 320px; margin-top: 60px; padding: 20px; max-width: 1000px; }
.doc-section { border-bottom: 1px solid #eee; padding-bottom: 30px; margin-bottom: 30px; }
.error { color: #a94442; }
pre { background: #f5f5f5; padding: 10px; overflow-x: auto; }
`

func renderCombinedHTML(title string, sections []section, now time.Time) string {
	var b strings.Builder
	t := html.EscapeString(title)

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n", t, combinedStyle)
	fmt.Fprintf(&b, "<div class=\"topbar\"><h1>%s</h1><span>Generated on %s</span></div>\n", t, now.Format("2006-01-02 15:04:05"))

	b.WriteString("<div class=\"sidebar\">\n<h2>Documentation Contents</h2>\n<ul>\n")
	for i, s := range sections {
		fmt.Fprintf(&b, "<li><a href=\"#section-%d\">%s</a></li>\n", i+1, html.EscapeString(s.title))
	}
	b.WriteString("</ul>\n</div>\n<div class=\"main\">\n")

	for i, s := range sections {
		fmt.Fprintf(&b, "<div class=\"doc-section\" id=\"section-%d\">\n<h2>%s</h2>\n", i+1, html.EscapeString(s.title))
		if s.err != nil {
			fmt.Fprintf(&b, "<p class=\"error\">Error processing this file: %s</p>\n", html.EscapeString(s.err.Error()))
		} else {
			b.WriteString(s.body)
			b.WriteString("\n")
		}
		b.WriteString("</div>\n")
	}

	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

func renderCombinedText(title string, sections []section, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n# Generated on %s\n\n", title, now.Format("2006-01-02 15:04:05"))
	for _, s := range sections {
		if s.err != nil {
			fmt.Fprintf(&b, "\n\nError processing file %s: %v\n\n", s.title, s.err)
			continue
		}
		fmt.Fprintf(&b, "\n\n%s\n# %s\n%s\n\n", txtSectionBar, s.title, txtSectionBar)
		b.WriteString(s.body)
	}
	return b.String()
}
