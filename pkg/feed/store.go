// pkg/feed/store.go
package feed

import (
	"sync"
	"time"

	"InvestRadar/pkg/model"
	"InvestRadar/pkg/sentiment"
)

// newsLookback 新闻参与评估的回看窗口
const newsLookback = 24 * time.Hour

// defaultHistoryDays 价格历史的默认保留天数
const defaultHistoryDays = 30

// Store 缓存采集服务推送的新闻与行情历史，按标的供评估时查询。
// 新闻按发布时间、价格点按行情时间戳滚动淘汰。
type Store struct {
	mu        sync.RWMutex
	analyzer  *sentiment.Analyzer
	retention time.Duration
	news      map[string][]model.NewsItem
	history   map[string][]model.PriceDataPoint
}

// NewStore 创建数据缓存，historyDays 控制价格历史的保留天数
func NewStore(historyDays int) *Store {
	if historyDays <= 0 {
		historyDays = defaultHistoryDays
	}
	return &Store{
		analyzer:  sentiment.NewAnalyzer(),
		retention: time.Duration(historyDays) * 24 * time.Hour,
		news:      make(map[string][]model.NewsItem),
		history:   make(map[string][]model.PriceDataPoint),
	}
}

// AddNews 追加一批新闻并淘汰回看窗口外的旧条目
func (s *Store) AddNews(symbol string, items []model.NewsItem, now time.Time) {
	if len(items) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := append(s.news[symbol], items...)
	s.news[symbol] = recentNews(merged, now.Add(-newsLookback))
}

// AddQuote 把行情快照记入价格历史并淘汰保留期外的旧点
func (s *Store) AddQuote(quote model.MarketData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	point := model.PriceDataPoint{
		Timestamp: quote.Timestamp,
		Price:     quote.Price,
		Volume:    quote.Volume,
	}
	merged := append(s.history[quote.Symbol], point)
	s.history[quote.Symbol] = recentPoints(merged, quote.Timestamp.Add(-s.retention))
}

// NewsSnapshot 把回看窗口内的新闻汇总为带情绪得分的 NewsData，
// 窗口内无新闻时返回 nil，评估引擎据此按"无新闻"处理
func (s *Store) NewsSnapshot(symbol string, now time.Time) *model.NewsData {
	s.mu.RLock()
	items := recentNews(s.news[symbol], now.Add(-newsLookback))
	s.mu.RUnlock()

	if len(items) == 0 {
		return nil
	}
	return s.analyzer.Analyze(symbol, items)
}

// History 返回该标的价格历史的副本，无历史时返回 nil
func (s *Store) History(symbol string) []model.PriceDataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.history[symbol]
	if len(points) == 0 {
		return nil
	}
	out := make([]model.PriceDataPoint, len(points))
	copy(out, points)
	return out
}

func recentNews(items []model.NewsItem, cutoff time.Time) []model.NewsItem {
	kept := make([]model.NewsItem, 0, len(items))
	for _, item := range items {
		if !item.PublishedAt.Before(cutoff) {
			kept = append(kept, item)
		}
	}
	return kept
}

func recentPoints(points []model.PriceDataPoint, cutoff time.Time) []model.PriceDataPoint {
	kept := make([]model.PriceDataPoint, 0, len(points))
	for _, p := range points {
		if !p.Timestamp.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}
