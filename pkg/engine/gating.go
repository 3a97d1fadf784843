// pkg/engine/gating.go
package engine

import (
	"log"
	"time"

	"InvestRadar/pkg/model"
)

// TriggerCounter 查询某条提醒在指定日期内已触发的次数。
// 触发历史由外部存储层持有，引擎通过注入的函数访问。
type TriggerCounter func(alertID string, day time.Time) (int, error)

// IsInQuietHours 判断时刻 now 是否落在免打扰时段内。
// 时间比较基于 "HH:MM" 字符串的字典序；跨夜时段（开始晚于结束，
// 如 22:00-08:00）采用 OR 语义，同日时段采用 AND 语义。
func IsInQuietHours(policy model.QuietHoursPolicy, now time.Time) bool {
	if !policy.Enabled {
		return false
	}

	if !weekdayEnabled(policy.Days, now.Weekday()) {
		return false
	}

	current := now.Format("15:04")
	if policy.StartTime > policy.EndTime {
		// 跨夜时段
		return current >= policy.StartTime || current <= policy.EndTime
	}
	return current >= policy.StartTime && current <= policy.EndTime
}

func weekdayEnabled(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// IsInCooldown 判断距上次触发是否仍在冷却期内，从未触发过则不受限
func IsInCooldown(alert *model.Alert, now time.Time) bool {
	if alert.LastTriggeredAt == nil {
		return false
	}

	cooldown := time.Duration(alert.Frequency.CooldownMinutes) * time.Minute
	return now.Sub(*alert.LastTriggeredAt) < cooldown
}

// HasReachedDailyLimit 判断当日触发次数是否已达上限。
// 未配置上限或未注入计数器时放行；计数器出错时记录日志后同样放行。
func HasReachedDailyLimit(alert *model.Alert, now time.Time, counter TriggerCounter) bool {
	if alert.Frequency.MaxPerDay <= 0 || counter == nil {
		return false
	}

	count, err := counter(alert.ID, now)
	if err != nil {
		log.Printf("查询提醒 %s 当日触发次数失败: %v", alert.ID, err)
		return false
	}

	return count >= alert.Frequency.MaxPerDay
}
