package core

import (
	"net/http"
	"sync"

	"github.com/RecoveryAshes/webscraper/internal/config"
	"github.com/RecoveryAshes/webscraper/internal/fetchers"
	"github.com/RecoveryAshes/webscraper/internal/models"
	"github.com/RecoveryAshes/webscraper/internal/utils"
)

// HeaderManager 合并 默认 < headers.yaml < 命令行 三层请求头
// 实现 models.HeaderProvider
type HeaderManager struct {
	defaults http.Header
	file     http.Header
	cli      http.Header

	loader    *config.HeaderConfigLoader
	validator *utils.HeaderValidator
	redactor  *utils.HeaderRedactor

	once    sync.Once
	loadErr error
}

// NewHeaderManager 创建头部管理器。headersFile为空时使用 configs/headers.yaml。
func NewHeaderManager(headersFile string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}
	return &HeaderManager{
		defaults:  DefaultHeaders(),
		cli:       cli,
		loader:    config.NewHeaderConfigLoader(headersFile),
		validator: utils.NewHeaderValidator(),
		redactor:  utils.NewHeaderRedactor(),
	}, nil
}

// DefaultHeaders 内置默认头部
func DefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{fetchers.DefaultUserAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{"en-US,en;q=0.9"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// load 只加载并验证一次
func (hm *HeaderManager) load() error {
	hm.once.Do(func() {
		cfg, err := hm.loader.Load()
		if err != nil {
			utils.Errorf("加载HTTP头部配置失败: %v", err)
			hm.loadErr = err
			return
		}
		hm.file = make(http.Header, len(cfg.Headers))
		for name, value := range cfg.Headers {
			hm.file.Set(name, value)
		}
		if len(hm.file) > 0 {
			utils.Debugf("成功加载%d个HTTP头部配置: %v", len(hm.file), hm.redactor.Redact(hm.file))
		}

		for _, layer := range []struct {
			name string
			h    http.Header
		}{{"配置文件", hm.file}, {"命令行", hm.cli}} {
			if err := hm.validator.Validate(layer.h); err != nil {
				utils.Errorf("%s头部验证失败: %v", layer.name, err)
				hm.loadErr = err
				return
			}
		}
	})
	return hm.loadErr
}

// Merged 按优先级合并后的头部,不触发加载
func (hm *HeaderManager) Merged() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.file, hm.cli} {
		for name, values := range layer {
			result[name] = append([]string(nil), values...)
		}
	}
	return result
}

// SafeHeaders 脱敏后的合并头部,用于日志
func (hm *HeaderManager) SafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.Merged())
}

// GetHeaders 实现 models.HeaderProvider
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.load(); err != nil {
		return nil, err
	}
	return hm.Merged(), nil
}
