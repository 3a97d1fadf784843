// pkg/engine/news_trigger.go
package engine

import (
	"fmt"

	"InvestRadar/pkg/model"
)

// evaluateNewsTrigger 新闻情绪触发：存在新闻且聚合情绪低于负向阈值才触发
func evaluateNewsTrigger(news *model.NewsData, threshold float64) (evalOutcome, error) {
	if news == nil || news.NewsCount == 0 {
		return evalOutcome{reason: "No news data"}, nil
	}

	if news.Sentiment < threshold {
		desc := fmt.Sprintf("Negative news sentiment %.2f (threshold %.2f, %d articles)",
			news.Sentiment, threshold, news.NewsCount)
		return evalOutcome{triggered: true, reason: desc, conditionsMet: []string{desc}}, nil
	}

	return evalOutcome{reason: fmt.Sprintf("Sentiment %.2f not below threshold %.2f", news.Sentiment, threshold)}, nil
}
