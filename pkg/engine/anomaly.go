// pkg/engine/anomaly.go
package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"InvestRadar/pkg/model"
)

// minHistoryPoints 统计离群检测所需的最少历史价格点数
const minHistoryPoints = 20

// PriceStatistics 历史价格序列的统计量
type PriceStatistics struct {
	Mean   float64
	StdDev float64
}

// CalculateStatistics 计算价格序列的均值与总体标准差。
// 空序列违反调用契约，直接返回错误而不是静默返回零值。
func CalculateStatistics(points []model.PriceDataPoint) (PriceStatistics, error) {
	if len(points) == 0 {
		return PriceStatistics{}, errors.New("历史价格序列为空，无法计算统计量")
	}

	prices := make(stats.Float64Data, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}

	mean, err := stats.Mean(prices)
	if err != nil {
		return PriceStatistics{}, fmt.Errorf("计算均值失败: %w", err)
	}

	stdDev, err := stats.StdDevP(prices)
	if err != nil {
		return PriceStatistics{}, fmt.Errorf("计算标准差失败: %w", err)
	}

	return PriceStatistics{Mean: mean, StdDev: stdDev}, nil
}

// evaluateAnomaly 异动检测：价格变动、成交量放大、统计离群三路信号取 OR。
// 配置了 RequiresNoNews 且存在新闻时抑制触发，但保留已检出的信号描述，
// 下游诊断仍能看到数据实际表现。
func evaluateAnomaly(alert *model.Alert, market model.MarketData, news *model.NewsData, history []model.PriceDataPoint) (evalOutcome, error) {
	cfg := alert.Anomaly
	if cfg == nil {
		return evalOutcome{}, fmt.Errorf("ANOMALY 规则 %s 缺少异动配置", alert.ID)
	}

	var met []string

	// 价格变动信号
	change := market.ChangePercent()
	if math.Abs(change) >= cfg.PriceChangeThreshold {
		met = append(met, fmt.Sprintf("Price change %.2f%% exceeds threshold %.2f%%",
			math.Abs(change), cfg.PriceChangeThreshold))
	}

	// 成交量放大信号，缺少平均成交量时跳过
	if market.AverageVolume != nil && cfg.VolumeSpikeMultiplier > 0 {
		spikeLevel := *market.AverageVolume * cfg.VolumeSpikeMultiplier
		if market.Volume >= spikeLevel {
			met = append(met, fmt.Sprintf("Volume %.0f exceeds %.1fx average (%.0f)",
				market.Volume, cfg.VolumeSpikeMultiplier, *market.AverageVolume))
		}
	}

	// 统计离群信号，历史点数不足时跳过
	if len(history) >= minHistoryPoints {
		st, err := CalculateStatistics(history)
		if err != nil {
			return evalOutcome{}, fmt.Errorf("统计离群检测失败: %w", err)
		}
		if st.StdDev > 0 {
			zScore := math.Abs(market.Price-st.Mean) / st.StdDev
			if zScore >= cfg.SigmaThreshold {
				met = append(met, fmt.Sprintf("Price %.2f is %.1f sigma from mean %.2f",
					market.Price, zScore, st.Mean))
			}
		}
	}

	if len(met) == 0 {
		return evalOutcome{reason: "No anomaly detected"}, nil
	}

	// 已检出异动但存在可解释的新闻，抑制触发以避免误报
	if cfg.RequiresNoNews && news != nil && news.NewsCount > 0 {
		return evalOutcome{reason: "Anomaly detected but explained by news", conditionsMet: met}, nil
	}

	return evalOutcome{triggered: true, reason: strings.Join(met, ", "), conditionsMet: met}, nil
}
