package model

import (
	"time"
)

// MarketData 行情快照，可选字段缺失时为 nil
type MarketData struct {
	Symbol        string     `json:"symbol"`
	Price         float64    `json:"price"`
	PreviousClose float64    `json:"previous_close"`
	Volume        float64    `json:"volume"`
	AverageVolume *float64   `json:"average_volume,omitempty"`
	PERatio       *float64   `json:"pe_ratio,omitempty"`
	RSI           *float64   `json:"rsi,omitempty"`
	MA50          *float64   `json:"ma_50,omitempty"`
	MA200         *float64   `json:"ma_200,omitempty"`
	MarketCap     *float64   `json:"market_cap,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// ChangePercent 相对昨收的涨跌幅百分比，昨收为 0 时定义为 0
func (m MarketData) ChangePercent() float64 {
	if m.PreviousClose == 0 {
		return 0
	}
	return (m.Price - m.PreviousClose) / m.PreviousClose * 100
}

// PriceDataPoint 历史价格点，仅统计离群检测使用
type PriceDataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}
