package pdf

import (
	"strings"
	"unicode"
)

// ValidTextThreshold 干净字符占比达到该值(含)即视为有效文本
const ValidTextThreshold = 0.6

const cleanPunctuation = `.,;:!?-()[]{}"/'`

func isClean(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || strings.ContainsRune(cleanPunctuation, r)
}

// CleanRatio 干净字符(字母、数字、空白和常见标点)占全部字符的比例,空串返回0
func CleanRatio(text string) float64 {
	total, clean := 0, 0
	for _, r := range text {
		total++
		if isClean(r) {
			clean++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(clean) / float64(total)
}

// IsValidText 判断页面文本是否可读
func IsValidText(text string) bool {
	if text == "" {
		return false
	}
	return CleanRatio(text) >= ValidTextThreshold
}

func truncateRunes(s string, n int) (string, bool) {
	rs := []rune(s)
	if len(rs) <= n {
		return s, false
	}
	return string(rs[:n]), true
}
