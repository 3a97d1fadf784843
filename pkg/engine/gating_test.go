package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"InvestRadar/pkg/model"
)

func TestIsInQuietHoursDisabled(t *testing.T) {
	policy := model.QuietHoursPolicy{
		Enabled:   false,
		StartTime: "00:00",
		EndTime:   "23:59",
		Days:      []time.Weekday{time.Monday},
	}

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	assert.False(t, IsInQuietHours(policy, now))
}

func TestIsInQuietHoursOvernight(t *testing.T) {
	policy := model.QuietHoursPolicy{
		Enabled:   true,
		StartTime: "22:00",
		EndTime:   "08:00",
		Days:      []time.Weekday{time.Monday, time.Tuesday},
	}

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{"深夜在时段内", time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC), true},
		{"凌晨在时段内", time.Date(2025, 6, 3, 7, 0, 0, 0, time.UTC), true},
		{"正午在时段外", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), false},
		{"起点边界", time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC), true},
		{"终点边界", time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC), true},
		{"未启用的星期几", time.Date(2025, 6, 4, 23, 30, 0, 0, time.UTC), false}, // 周三
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsInQuietHours(policy, tt.now))
		})
	}
}

func TestIsInQuietHoursSameDay(t *testing.T) {
	policy := model.QuietHoursPolicy{
		Enabled:   true,
		StartTime: "09:00",
		EndTime:   "17:00",
		Days:      []time.Weekday{time.Monday},
	}

	assert.True(t, IsInQuietHours(policy, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)))
	assert.False(t, IsInQuietHours(policy, time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)))
	assert.False(t, IsInQuietHours(policy, time.Date(2025, 6, 2, 8, 59, 0, 0, time.UTC)))
}

func TestIsInCooldown(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	alert := thresholdAlert("AAPL", nil)
	alert.Frequency.CooldownMinutes = 30

	// 从未触发过不受冷却限制
	assert.False(t, IsInCooldown(alert, now))

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected bool
	}{
		{"刚触发", time.Minute, true},
		{"冷却中", 29 * time.Minute, true},
		{"冷却刚结束", 30 * time.Minute, false},
		{"冷却早已结束", 2 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := now.Add(-tt.elapsed)
			alert.LastTriggeredAt = &last
			assert.Equal(t, tt.expected, IsInCooldown(alert, now))
		})
	}
}

func TestHasReachedDailyLimit(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	alert := thresholdAlert("AAPL", nil)
	alert.Frequency.MaxPerDay = 3

	// 未注入计数器时放行
	assert.False(t, HasReachedDailyLimit(alert, now, nil))

	// 未达上限
	below := func(alertID string, day time.Time) (int, error) { return 2, nil }
	assert.False(t, HasReachedDailyLimit(alert, now, below))

	// 达到上限
	at := func(alertID string, day time.Time) (int, error) { return 3, nil }
	assert.True(t, HasReachedDailyLimit(alert, now, at))

	// 未配置上限时不查询
	unlimited := thresholdAlert("AAPL", nil)
	called := false
	spy := func(alertID string, day time.Time) (int, error) {
		called = true
		return 100, nil
	}
	assert.False(t, HasReachedDailyLimit(unlimited, now, spy))
	assert.False(t, called)
}
