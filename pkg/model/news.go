// pkg/model/news.go
package model

import (
	"time"
)

// NewsItem 单条新闻
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsData 某只股票的聚合新闻数据，Sentiment 取值范围 [-1, 1]
type NewsData struct {
	Symbol    string     `json:"symbol"`
	Items     []NewsItem `json:"items"`
	Sentiment float64    `json:"sentiment"`
	NewsCount int        `json:"news_count"`
}
