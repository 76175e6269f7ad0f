package models

import (
	"errors"
	"fmt"
)

var (
	// ErrBrowserCrashed 浏览器在调用过程中崩溃(panic被恢复)
	ErrBrowserCrashed = errors.New("浏览器崩溃")
	// ErrEmptyInput 合并时没有输入文件
	ErrEmptyInput = errors.New("没有提供输入文件")
	// ErrUnsupportedFormat 不支持的输出格式
	ErrUnsupportedFormat = errors.New("不支持的格式")
)

// FetchError 网络抓取失败(网络错误或非2xx状态码)
type FetchError struct {
	URL        string
	StatusCode int // 0 表示没有收到响应
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("抓取失败 [%s] 状态码 %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("抓取失败 [%s]: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError 浏览器导航或渲染失败
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("页面渲染失败 [%s]: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PdfDecodeError PDF解析失败
type PdfDecodeError struct {
	URL string
	Err error
}

func (e *PdfDecodeError) Error() string {
	return fmt.Sprintf("PDF解析失败 [%s]: %v", e.URL, e.Err)
}

func (e *PdfDecodeError) Unwrap() error { return e.Err }

// ValidationError 头部验证错误
type ValidationError struct {
	Field      string // "name" 或 "value"
	HeaderName string
	Reason     string
	Suggestion string // 可选
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("头部验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError 配置文件错误
type ConfigError struct {
	FilePath string
	Cause    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
