// pkg/database/trigger.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"InvestRadar/pkg/model"
)

type TriggerDB struct {
	db *gorm.DB
}

// Save 保存触发事件
func (t *TriggerDB) Save(event *model.AlertTriggerEvent) error {
	if err := t.db.Create(event).Error; err != nil {
		return fmt.Errorf("保存触发事件失败: %w", err)
	}
	return nil
}

// CountForDay 统计某条提醒在 day 所在自然日内的触发次数，
// 作为引擎每日上限闸门的计数器注入
func (t *TriggerDB) CountForDay(alertID string, day time.Time) (int, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64
	err := t.db.Model(&model.AlertTriggerEvent{}).
		Where("alert_id = ? AND triggered_at >= ? AND triggered_at < ?", alertID, dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计当日触发次数失败: %w", err)
	}
	return int(count), nil
}

// GetRecent 获取某标的最近的触发事件
func (t *TriggerDB) GetRecent(symbol string, limit int) ([]*model.AlertTriggerEvent, error) {
	var events []*model.AlertTriggerEvent
	err := t.db.Where("symbol = ?", symbol).
		Order("triggered_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("查询触发事件失败: %w", err)
	}
	return events, nil
}

// UpdateUserAction 更新触发事件的用户处理状态
func (t *TriggerDB) UpdateUserAction(eventID string, action model.TriggerAction) error {
	result := t.db.Model(&model.AlertTriggerEvent{}).
		Where("id = ?", eventID).
		Update("user_action", action)
	if result.Error != nil {
		return fmt.Errorf("更新事件处理状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("触发事件 %s 不存在", eventID)
	}
	return nil
}
