package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestRadar/pkg/model"
)

var evalTime = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) // 周一中午

func thresholdAlert(symbol string, groups []model.ConditionGroup) *model.Alert {
	return &model.Alert{
		ID:              "alert-1",
		UserID:          "user-1",
		Symbol:          symbol,
		Type:            model.RuleTypeThreshold,
		Status:          model.AlertStatusActive,
		Priority:        model.PriorityMedium,
		ConditionGroups: groups,
	}
}

func priceAbove(value float64) []model.ConditionGroup {
	return []model.ConditionGroup{
		{
			Logic: model.LogicAnd,
			Conditions: []model.Condition{
				{Field: model.FieldPrice, Operator: model.OperatorGT, Value: value},
			},
		},
	}
}

func quote(symbol string, price float64) model.MarketData {
	return model.MarketData{
		Symbol:        symbol,
		Price:         price,
		PreviousClose: price,
		Volume:        1000000,
		Timestamp:     evalTime,
	}
}

func TestEvaluateInactiveAlertNeverTriggers(t *testing.T) {
	eng := NewEngine(nil)

	statuses := []model.AlertStatus{
		model.AlertStatusTriggered,
		model.AlertStatusSnoozed,
		model.AlertStatusDismissed,
		model.AlertStatusExpired,
		model.AlertStatusDisabled,
	}

	for _, status := range statuses {
		alert := thresholdAlert("AAPL", priceAbove(100))
		alert.Status = status

		result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
		assert.False(t, result.Triggered, "状态 %s 不应触发", status)
		assert.Nil(t, result.Event)
	}
}

func TestEvaluateSymbolMismatch(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(100))

	result := eng.Evaluate(alert, quote("TSLA", 999), nil, nil, evalTime)
	assert.False(t, result.Triggered)
}

func TestEvaluateExpiredAlert(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(100))
	expired := evalTime.Add(-time.Hour)
	alert.ExpiresAt = &expired

	result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.False(t, result.Triggered)
}

func TestEvaluateQuietHoursSuppression(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(100))
	alert.QuietHours = model.QuietHoursPolicy{
		Enabled:   true,
		StartTime: "22:00",
		EndTime:   "08:00",
		Days:      []time.Weekday{time.Monday},
	}

	night := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)
	result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, night)
	assert.False(t, result.Triggered, "免打扰时段内应被抑制")

	noon := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	result = eng.Evaluate(alert, quote("AAPL", 999), nil, nil, noon)
	assert.True(t, result.Triggered, "免打扰时段外应正常触发")
}

func TestEvaluateCooldownSuppression(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(100))
	alert.Frequency.CooldownMinutes = 30

	last := evalTime.Add(-10 * time.Minute)
	alert.LastTriggeredAt = &last
	result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.False(t, result.Triggered, "冷却期内应被抑制")

	last = evalTime.Add(-31 * time.Minute)
	alert.LastTriggeredAt = &last
	result = eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.True(t, result.Triggered, "冷却期结束后应正常触发")
}

func TestEvaluateDailyLimit(t *testing.T) {
	counter := func(alertID string, day time.Time) (int, error) {
		return 5, nil
	}
	eng := NewEngine(counter)

	alert := thresholdAlert("AAPL", priceAbove(100))
	alert.Frequency.MaxPerDay = 5

	result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.False(t, result.Triggered, "达到每日上限应被抑制")

	// 计数器出错时放行
	failing := func(alertID string, day time.Time) (int, error) {
		return 0, errors.New("存储不可用")
	}
	eng = NewEngine(failing)
	result = eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.True(t, result.Triggered, "计数器出错时应放行")
}

func TestEvaluateThresholdRule(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(250))

	result := eng.Evaluate(alert, quote("AAPL", 255.5), nil, nil, evalTime)
	require.True(t, result.Triggered)
	require.NotNil(t, result.Event)
	assert.Contains(t, result.Event.Reason, "PRICE")
	assert.Equal(t, "alert-1", result.Event.AlertID)
	assert.Equal(t, "AAPL", result.Event.Symbol)
	assert.Equal(t, 255.5, result.Event.Price)
	assert.Equal(t, evalTime, result.Event.TriggeredAt)
	assert.Equal(t, model.ActionPending, result.Event.UserAction)
	assert.NotEmpty(t, result.Event.ID)
	assert.Len(t, result.Event.ConditionsMet, 1)
}

func TestEvaluateUnknownRuleType(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(100))
	alert.Type = model.RuleType("FANCY_NEW_RULE")

	result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.False(t, result.Triggered)
}

func TestEvaluateFaultIsolation(t *testing.T) {
	eng := NewEngine(nil)

	// ANOMALY 规则缺少配置，评估器报错，引擎应降级为未触发
	alert := thresholdAlert("AAPL", nil)
	alert.Type = model.RuleTypeAnomaly
	alert.Anomaly = nil

	result := eng.Evaluate(alert, quote("AAPL", 999), nil, nil, evalTime)
	assert.False(t, result.Triggered)
	assert.Nil(t, result.Event)
}

func TestEvaluateNewsTriggeredRule(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", nil)
	alert.Type = model.RuleTypeNewsTriggered

	// 无新闻数据不触发
	result := eng.Evaluate(alert, quote("AAPL", 100), nil, nil, evalTime)
	assert.False(t, result.Triggered)

	// 情绪高于阈值不触发
	news := &model.NewsData{Symbol: "AAPL", Sentiment: -0.1, NewsCount: 3}
	result = eng.Evaluate(alert, quote("AAPL", 100), news, nil, evalTime)
	assert.False(t, result.Triggered)

	// 情绪低于负向阈值触发
	news = &model.NewsData{Symbol: "AAPL", Sentiment: -0.5, NewsCount: 3}
	result = eng.Evaluate(alert, quote("AAPL", 100), news, nil, evalTime)
	require.True(t, result.Triggered)
	assert.Equal(t, 3, result.Event.NewsCount)
	assert.Equal(t, -0.5, result.Event.Sentiment)
}

func TestEvaluateIdempotence(t *testing.T) {
	eng := NewEngine(nil)
	alert := thresholdAlert("AAPL", priceAbove(250))
	market := quote("AAPL", 255.5)

	first := eng.Evaluate(alert, market, nil, nil, evalTime)
	second := eng.Evaluate(alert, market, nil, nil, evalTime)

	require.True(t, first.Triggered)
	require.True(t, second.Triggered)
	assert.Equal(t, first.Event.Reason, second.Event.Reason)
	assert.Equal(t, first.Event.ConditionsMet, second.Event.ConditionsMet)
	// 事件标识每次生成，不要求一致
	assert.NotEqual(t, first.Event.ID, second.Event.ID)
}
