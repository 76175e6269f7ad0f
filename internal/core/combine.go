package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/output"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// SiteTitle 由站点首页URL得到合并文档标题,如 mylib.readthedocs.io -> "Mylib Documentation"
func SiteTitle(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return output.DefaultCombinedTitle
	}
	site := strings.ToLower(strings.Split(u.Hostname(), ".")[0])
	if site == "" {
		return output.DefaultCombinedTitle
	}
	return strings.ToUpper(site[:1]) + site[1:] + " Documentation"
}

// SuccessfulOutputs 报告中成功且有输出文件的路径,保持抓取顺序
func SuccessfulOutputs(report *models.BatchReport) []string {
	var paths []string
	for _, item := range report.Results {
		if item.Status == models.StatusSuccess && item.OutputPath != "" {
			paths = append(paths, item.OutputPath)
		}
	}
	return paths
}

// LoadBatchReport 读取 batch 命令写出的JSON报告
func LoadBatchReport(path string) (*models.BatchReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取批量报告失败: %w", err)
	}
	var report models.BatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("解析批量报告失败 [%s]: %w", path, err)
	}
	return &report, nil
}

// CombineReport 把一次批量抓取中成功的输出文件合并为一个文档。
// title为空时由站点名生成;格式取报告记录的输出格式,缺失时按第一个文件的扩展名判断。
func CombineReport(ctx context.Context, report *models.BatchReport, title, outputDir string, progress io.Writer) (string, error) {
	paths := SuccessfulOutputs(report)
	if len(paths) == 0 {
		return "", fmt.Errorf("批量结果中没有成功的输出文件: %w", models.ErrEmptyInput)
	}

	format := report.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(paths[0]), ".")
	}

	if strings.TrimSpace(title) == "" {
		title = SiteTitle(report.BaseURL)
	}

	c := output.NewCombiner(outputDir)
	c.Progress = progress
	path, err := c.Combine(ctx, paths, format, title)
	if err != nil {
		return "", err
	}
	utils.Infof("📚 已合并批量抓取的 %d 个文件", len(paths))
	return path, nil
}
