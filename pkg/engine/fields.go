// pkg/engine/fields.go
package engine

import (
	"math"

	"InvestRadar/pkg/model"
)

// equalityTolerance 等值比较的绝对误差容差，避免浮点误判
const equalityTolerance = 0.01

// extractField 从行情/新闻数据中取出条件字段的数值，数据缺失时返回 nil
func extractField(field model.ConditionField, market model.MarketData, news *model.NewsData) *float64 {
	switch field {
	case model.FieldPrice:
		v := market.Price
		return &v
	case model.FieldPriceChangePercent:
		v := market.ChangePercent()
		return &v
	case model.FieldVolume:
		v := market.Volume
		return &v
	case model.FieldVolumeRatio:
		if market.AverageVolume == nil || *market.AverageVolume == 0 {
			return nil
		}
		v := market.Volume / *market.AverageVolume
		return &v
	case model.FieldPERatio:
		return market.PERatio
	case model.FieldRSI:
		return market.RSI
	case model.FieldMA50:
		return market.MA50
	case model.FieldMA200:
		return market.MA200
	case model.FieldNewsSentiment:
		if news == nil {
			return nil
		}
		v := news.Sentiment
		return &v
	case model.FieldMarketCap:
		return market.MarketCap
	}
	return nil
}

// compareValues 按操作符比较实际值与目标值
func compareValues(op model.ConditionOperator, actual, target float64) bool {
	switch op {
	case model.OperatorGT:
		return actual > target
	case model.OperatorLT:
		return actual < target
	case model.OperatorGTE:
		return actual >= target
	case model.OperatorLTE:
		return actual <= target
	case model.OperatorEQ:
		return math.Abs(actual-target) <= equalityTolerance
	case model.OperatorNEQ:
		return math.Abs(actual-target) > equalityTolerance
	case model.OperatorChangePercent:
		// 变动幅度比较：实际值的绝对值达到目标幅度
		return math.Abs(actual) >= target
	case model.OperatorCrossesAbove, model.OperatorCrossesBelow:
		// 穿越判断需要前一时刻的数值，当前未实现
		return false
	}
	return false
}
