package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestRadar/pkg/model"
)

var feedTime = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newsItem(title string, publishedAt time.Time) model.NewsItem {
	return model.NewsItem{
		Title:       title,
		Source:      "wire",
		PublishedAt: publishedAt,
	}
}

func quoteAt(symbol string, price float64, ts time.Time) model.MarketData {
	return model.MarketData{
		Symbol:    symbol,
		Price:     price,
		Volume:    1000000,
		Timestamp: ts,
	}
}

func TestNewsSnapshotScoresRecentNews(t *testing.T) {
	s := NewStore(30)
	s.AddNews("AAPL", []model.NewsItem{
		newsItem("Regulator opens investigation into accounting", feedTime.Add(-2*time.Hour)),
		newsItem("Analysts issue downgrade after profit warning", feedTime.Add(-1*time.Hour)),
	}, feedTime)

	news := s.NewsSnapshot("AAPL", feedTime)
	require.NotNil(t, news)
	assert.Equal(t, "AAPL", news.Symbol)
	assert.Equal(t, 2, news.NewsCount)
	assert.Less(t, news.Sentiment, 0.0)
}

func TestNewsSnapshotNilWithoutNews(t *testing.T) {
	s := NewStore(30)

	assert.Nil(t, s.NewsSnapshot("AAPL", feedTime))
}

func TestNewsOutsideLookbackExcluded(t *testing.T) {
	s := NewStore(30)
	s.AddNews("AAPL", []model.NewsItem{
		newsItem("Company beats expectations", feedTime.Add(-30*time.Hour)),
		newsItem("Shares surge on raised guidance", feedTime.Add(-3*time.Hour)),
	}, feedTime)

	// 回看窗口为24小时，更早的新闻不进入快照
	news := s.NewsSnapshot("AAPL", feedTime)
	require.NotNil(t, news)
	assert.Equal(t, 1, news.NewsCount)

	// 时间推进后窗口内再无新闻
	assert.Nil(t, s.NewsSnapshot("AAPL", feedTime.Add(22*time.Hour)))
}

func TestAddQuoteAccumulatesHistory(t *testing.T) {
	s := NewStore(30)
	s.AddQuote(quoteAt("AAPL", 100, feedTime.Add(-2*time.Hour)))
	s.AddQuote(quoteAt("AAPL", 101, feedTime.Add(-1*time.Hour)))
	s.AddQuote(quoteAt("TSLA", 250, feedTime))

	history := s.History("AAPL")
	require.Len(t, history, 2)
	assert.Equal(t, 100.0, history[0].Price)
	assert.Equal(t, 101.0, history[1].Price)
	require.Len(t, s.History("TSLA"), 1)
}

func TestHistoryRetentionBounded(t *testing.T) {
	s := NewStore(1)
	s.AddQuote(quoteAt("AAPL", 95, feedTime.Add(-30*time.Hour)))
	s.AddQuote(quoteAt("AAPL", 100, feedTime))

	// 保留期为1天，30小时前的价格点被淘汰
	history := s.History("AAPL")
	require.Len(t, history, 1)
	assert.Equal(t, 100.0, history[0].Price)
}

func TestHistoryNilWithoutQuotes(t *testing.T) {
	s := NewStore(30)

	assert.Nil(t, s.History("AAPL"))
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewStore(30)
	s.AddQuote(quoteAt("AAPL", 100, feedTime))

	history := s.History("AAPL")
	history[0].Price = 0

	// 外部修改副本不影响缓存内的历史
	assert.Equal(t, 100.0, s.History("AAPL")[0].Price)
}
