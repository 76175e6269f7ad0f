package models

// 情感倾向
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// WordCount 词频条目
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// AnalysisResult 文本分析结果
type AnalysisResult struct {
	WordCount      int         `json:"word_count"`
	SentenceCount  int         `json:"sentence_count"`
	CommonWords    []WordCount `json:"common_words"`
	ReadingTimeMin float64     `json:"reading_time_minutes"`
	AvgWordLength  float64     `json:"avg_word_length"`
	Difficulty     string      `json:"difficulty"`
	Sentiment      string      `json:"sentiment"`
}
