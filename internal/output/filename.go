package output

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// filenameTimeLayout 文件名中的时间戳
const filenameTimeLayout = "20060102_150405"

// GenerateFilename 生成 {base}_{YYYYMMDD_HHMMSS}.{ext}
// 同一秒内的重名不做处理
func GenerateFilename(base, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeBase(base), now.Format(filenameTimeLayout), ext)
}

// sanitizeBase 点号和文件系统不安全字符替换为下划线
func sanitizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, base)
}

// pdfBase PDF文件名取URL路径(或本地路径)的文件主名
func pdfBase(p string) string {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
