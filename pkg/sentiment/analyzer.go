// pkg/sentiment/analyzer.go
package sentiment

import (
	"strings"

	"InvestRadar/pkg/model"
)

// keywordStep 每命中一个关键词对得分的增减幅度
const keywordStep = 0.2

// 金融领域的情绪关键词表，按小写子串匹配
var positiveKeywords = []string{
	"beat", "surge", "rally", "upgrade", "outperform",
	"record high", "strong growth", "profit rise", "dividend increase",
	"buyback", "raised guidance", "exceeds expectations", "breakthrough",
	"approval", "partnership", "expansion", "bullish",
}

var negativeKeywords = []string{
	"miss", "plunge", "slump", "downgrade", "underperform",
	"record low", "weak demand", "profit warning", "dividend cut",
	"layoff", "lowered guidance", "below expectations", "investigation",
	"lawsuit", "recall", "bankruptcy", "default", "bearish", "fraud",
}

// Analyzer 基于关键词极性的新闻情绪打分器。
// 刻意保持为可解释的简单启发式，不是统计或机器学习分类器。
type Analyzer struct{}

// NewAnalyzer 创建情绪打分器
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ScoreItem 对单条新闻打分，结果限制在 [-1, 1]
func (a *Analyzer) ScoreItem(item model.NewsItem) float64 {
	text := strings.ToLower(item.Title + " " + item.Summary)

	score := 0.0
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			score += keywordStep
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			score -= keywordStep
		}
	}

	return clamp(score)
}

// Score 对一批新闻打分并取算术平均，无新闻时返回中性 0
func (a *Analyzer) Score(items []model.NewsItem) float64 {
	if len(items) == 0 {
		return 0
	}

	total := 0.0
	for _, item := range items {
		total += a.ScoreItem(item)
	}
	return total / float64(len(items))
}

// Analyze 将一批新闻汇总为 NewsData，供评估引擎消费
func (a *Analyzer) Analyze(symbol string, items []model.NewsItem) *model.NewsData {
	return &model.NewsData{
		Symbol:    symbol,
		Items:     items,
		Sentiment: a.Score(items),
		NewsCount: len(items),
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
