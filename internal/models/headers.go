package models

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderConfig headers.yaml 的结构
type HeaderConfig struct {
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
}

// CliHeaders 命令行 -H 参数,每项形如 "Name: Value"
type CliHeaders []string

// Parse 解析为 http.Header,后出现的同名头部覆盖先出现的
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: 缺少冒号分隔符,应为 'Name: Value'", i+1)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: 头部名称不能为空", i+1)
		}
		result.Set(name, strings.TrimSpace(value))
	}
	return result, nil
}

// HeaderProvider 为抓取器和PDF下载提供请求头
type HeaderProvider interface {
	// GetHeaders 返回按 默认 < 配置文件 < 命令行 合并后的头部
	GetHeaders() (http.Header, error)
}

// StaticHeaders 固定头部的HeaderProvider,测试和简单调用使用
type StaticHeaders http.Header

// GetHeaders 返回头部副本
func (h StaticHeaders) GetHeaders() (http.Header, error) {
	return http.Header(h).Clone(), nil
}
