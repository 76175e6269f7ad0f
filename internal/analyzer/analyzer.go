// Package analyzer 对抓取到的正文做轻量文本统计: 词数、句数、高频词、阅读时长、难度和情感倾向。
package analyzer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

const (
	// WordsPerMinute 阅读速度
	WordsPerMinute = 250
	// TopWords 高频词数量
	TopWords = 20
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

var defaultStopWords = []string{
	"the", "and", "a", "to", "of", "in", "it", "you", "that",
	"for", "on", "with", "as", "are", "be", "this", "was", "have", "or",
	"by", "not", "an", "but", "at", "we", "they", "so", "can", "will",
	"from", "has", "their", "all", "one", "what", "if", "would", "about", "which",
}

var positiveWords = toSet([]string{"good", "great", "excellent", "positive", "best", "amazing", "awesome", "wonderful", "love", "like", "happy"})

var negativeWords = toSet([]string{"bad", "poor", "negative", "worst", "terrible", "awful", "hate", "dislike", "sad", "unfortunate", "problem"})

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Analyzer 文本分析器
type Analyzer struct {
	stopWords map[string]struct{}
}

// New 创建使用默认停用词表的分析器
func New() *Analyzer {
	return &Analyzer{stopWords: toSet(defaultStopWords)}
}

// Analyze 使用默认分析器分析文本
func Analyze(text string) models.AnalysisResult {
	return New().Analyze(text)
}

// Analyze 分析纯文本
func (a *Analyzer) Analyze(text string) models.AnalysisResult {
	result := models.AnalysisResult{
		CommonWords: []models.WordCount{},
		Difficulty:  "Easy",
		Sentiment:   models.SentimentNeutral,
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	result.WordCount = len(words)

	for _, s := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			result.SentenceCount++
		}
	}

	result.CommonWords = a.commonWords(words)

	result.ReadingTimeMin = round1(float64(result.WordCount) / WordsPerMinute)

	var avg float64
	if result.WordCount > 0 {
		total := 0
		for _, w := range words {
			total += len([]rune(w))
		}
		avg = float64(total) / float64(result.WordCount)
	}
	result.AvgWordLength = round1(avg)
	result.Difficulty = difficulty(avg)
	result.Sentiment = sentiment(words)

	return result
}

// commonWords 统计长度大于2且不在停用词表中的词,按频次降序,同频按首次出现顺序
func (a *Analyzer) commonWords(words []string) []models.WordCount {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, stop := a.stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	out := make([]models.WordCount, 0, len(order))
	for _, w := range order {
		out = append(out, models.WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > TopWords {
		out = out[:TopWords]
	}
	return out
}

func difficulty(avg float64) string {
	switch {
	case avg < 4.0:
		return "Easy"
	case avg < 5.5:
		return "Medium"
	default:
		return "Advanced"
	}
}

func sentiment(words []string) string {
	pos, neg := 0, 0
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	switch {
	case pos > neg*2:
		return models.SentimentPositive
	case neg > pos*2:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
