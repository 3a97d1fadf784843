// pkg/engine/engine.go
package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"InvestRadar/pkg/model"
)

// DefaultSentimentThreshold 新闻情绪触发的默认负向阈值
const DefaultSentimentThreshold = -0.3

// Engine 提醒评估引擎：先执行闸门检查，再按规则类型分发评估器，
// 触发时生成 AlertTriggerEvent。引擎自身无副作用，不修改 Alert、不做 I/O。
type Engine struct {
	sentimentThreshold float64
	counter            TriggerCounter
}

// NewEngine 创建评估引擎，counter 为每日上限闸门依赖的触发历史计数器，
// 传 nil 时每日上限闸门恒不生效
func NewEngine(counter TriggerCounter) *Engine {
	return &Engine{
		sentimentThreshold: DefaultSentimentThreshold,
		counter:            counter,
	}
}

// SetSentimentThreshold 覆盖新闻情绪触发阈值
func (e *Engine) SetSentimentThreshold(threshold float64) {
	e.sentimentThreshold = threshold
}

// EvalResult 单次评估的结果，未触发时 Event 为 nil
type EvalResult struct {
	Triggered bool
	Event     *model.AlertTriggerEvent
}

// evalOutcome 各评估器的内部返回值
type evalOutcome struct {
	triggered     bool
	reason        string
	conditionsMet []string
}

// Evaluate 评估一条提醒规则。闸门按固定顺序检查，任一命中立即返回未触发；
// 全部通过后按规则类型分发，评估器内部故障被隔离为未触发并记录日志。
// now 为评估时刻，由调用方显式传入。
func (e *Engine) Evaluate(alert *model.Alert, market model.MarketData, news *model.NewsData, history []model.PriceDataPoint, now time.Time) EvalResult {
	if alert.Status != model.AlertStatusActive {
		return EvalResult{}
	}

	if market.Symbol != alert.Symbol {
		// 调用方传错数据，记录后按未触发处理
		log.Printf("行情标的与提醒不匹配: alert=%s 期望 %s 实际 %s", alert.ID, alert.Symbol, market.Symbol)
		return EvalResult{}
	}

	if alert.ExpiresAt != nil && alert.ExpiresAt.Before(now) {
		return EvalResult{}
	}

	if IsInQuietHours(alert.QuietHours, now) {
		return EvalResult{}
	}

	if IsInCooldown(alert, now) {
		return EvalResult{}
	}

	if HasReachedDailyLimit(alert, now, e.counter) {
		return EvalResult{}
	}

	outcome, err := e.dispatch(alert, market, news, history)
	if err != nil {
		log.Printf("评估提醒 %s (类型 %s) 失败: %v", alert.ID, alert.Type, err)
		return EvalResult{}
	}

	if !outcome.triggered {
		return EvalResult{}
	}

	return EvalResult{Triggered: true, Event: e.buildEvent(alert, market, news, outcome, now)}
}

// dispatch 按规则类型分发评估器。评估器的 panic 在此处捕获并转为错误，
// 单条规则的故障不影响调用方对其他规则的批量评估。
func (e *Engine) dispatch(alert *model.Alert, market model.MarketData, news *model.NewsData, history []model.PriceDataPoint) (outcome evalOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = evalOutcome{reason: fmt.Sprintf("evaluation failed: %v", r)}
			err = fmt.Errorf("评估器内部异常: %v", r)
		}
	}()

	switch alert.Type {
	case model.RuleTypeThreshold, model.RuleTypeMultiCondition:
		return evaluateConditions(alert, market, news)
	case model.RuleTypeNewsTriggered:
		return evaluateNewsTrigger(news, e.sentimentThreshold)
	case model.RuleTypeAnomaly:
		return evaluateAnomaly(alert, market, news, history)
	default:
		return evalOutcome{}, fmt.Errorf("未知的规则类型: %s", alert.Type)
	}
}

// buildEvent 根据评估结果生成触发事件，携带触发时刻的行情/新闻快照
func (e *Engine) buildEvent(alert *model.Alert, market model.MarketData, news *model.NewsData, outcome evalOutcome, now time.Time) *model.AlertTriggerEvent {
	event := &model.AlertTriggerEvent{
		ID:            uuid.New().String(),
		AlertID:       alert.ID,
		Symbol:        alert.Symbol,
		TriggeredAt:   now,
		Reason:        outcome.reason,
		ConditionsMet: outcome.conditionsMet,
		Price:         market.Price,
		Volume:        market.Volume,
		Priority:      alert.Priority,
		UserAction:    model.ActionPending,
		CreatedAt:     now,
	}

	if news != nil {
		event.NewsCount = news.NewsCount
		event.Sentiment = news.Sentiment
	}

	return event
}
