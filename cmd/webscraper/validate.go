package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/output"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(targetURL string, depth int, waitTime int, mode string, format string) error {
	if targetURL != "" {
		if err := models.ValidateURL(targetURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	if depth < 1 || depth > 10 {
		return fmt.Errorf("抓取深度必须在1-10之间,当前值: %d", depth)
	}

	if waitTime < 0 || waitTime > 60 {
		return fmt.Errorf("等待时间必须在0-60秒之间,当前值: %d", waitTime)
	}

	if _, ok := models.ParseFetchMode(mode); !ok {
		return fmt.Errorf("无效的抓取模式: %s (有效值: static, render)", mode)
	}

	if !output.IsSupportedFormat(format) {
		return fmt.Errorf("无效的输出格式: %s (有效值: %s)", format, strings.Join(output.Formats, ", "))
	}

	return nil
}

// ValidateURLFile 验证URL文件路径
func ValidateURLFile(path string) error {
	if path == "" {
		return fmt.Errorf("URL文件路径不能为空")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("无法访问URL文件 %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("URL文件路径是目录: %s", path)
	}
	return nil
}

// NormalizeURL 补全协议,没有协议时默认使用https
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", fmt.Errorf("URL不能为空")
	}
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
