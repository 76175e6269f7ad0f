// Package config 加载HTTP请求头配置文件
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

const (
	// DefaultHeadersFile 默认头部配置文件路径
	DefaultHeadersFile = "configs/headers.yaml"

	// MaxHeadersFileSize 配置文件最大大小 (1MB)
	MaxHeadersFileSize = 1 * 1024 * 1024
)

//go:embed headers_template.yaml
var headersTemplate string

// HeadersTemplate 返回内置的配置模板
func HeadersTemplate() string {
	return headersTemplate
}

// HeaderConfigLoader 头部配置加载器
// 文件不存在时写入模板,然后用viper解析
type HeaderConfigLoader struct {
	path string
}

// NewHeaderConfigLoader 创建加载器,path为空时使用默认路径
func NewHeaderConfigLoader(path string) *HeaderConfigLoader {
	if path == "" {
		path = DefaultHeadersFile
	}
	return &HeaderConfigLoader{path: path}
}

// Path 配置文件路径
func (l *HeaderConfigLoader) Path() string {
	return l.path
}

// EnsureExists 配置文件不存在时生成模板
func (l *HeaderConfigLoader) EnsureExists() error {
	if _, err := os.Stat(l.path); !os.IsNotExist(err) {
		return nil
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
	}
	if err := os.WriteFile(l.path, []byte(headersTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", l.path, err)
	}
	utils.Infof("📝 已生成头部配置模板: %s", l.path)
	return nil
}

// checkSize 拒绝超过1MB的配置文件
func (l *HeaderConfigLoader) checkSize() error {
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", l.path, err)
	}
	if info.Size() > MaxHeadersFileSize {
		return &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxHeadersFileSize),
		}
	}
	return nil
}

// Load 读取并解析头部配置。文件被其他进程锁定时返回空配置。
func (l *HeaderConfigLoader) Load() (*models.HeaderConfig, error) {
	if err := l.EnsureExists(); err != nil {
		return nil, err
	}
	if err := l.checkSize(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			utils.Warnf("配置文件被锁定 [%s], 使用默认头部", l.path)
			return &models.HeaderConfig{Headers: map[string]string{}}, nil
		}
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}

	var cfg models.HeaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: fmt.Errorf("配置绑定失败: %w", err)}
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return &cfg, nil
}
