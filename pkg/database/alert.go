// pkg/database/alert.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"InvestRadar/pkg/model"
)

type AlertDB struct {
	db *gorm.DB
}

// GetByID 获取指定提醒
func (a *AlertDB) GetByID(alertID string) (*model.Alert, error) {
	var alert model.Alert
	err := a.db.First(&alert, "id = ?", alertID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("提醒规则不存在")
		}
		return nil, fmt.Errorf("获取提醒规则失败: %w", err)
	}
	return &alert, nil
}

// GetActiveBySymbol 获取某标的的全部激活提醒
func (a *AlertDB) GetActiveBySymbol(symbol string) ([]*model.Alert, error) {
	var alerts []*model.Alert
	err := a.db.Where("symbol = ? AND status = ?", symbol, model.AlertStatusActive).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询激活提醒失败: %w", err)
	}
	return alerts, nil
}

// GetActive 获取全部激活提醒
func (a *AlertDB) GetActive() ([]*model.Alert, error) {
	var alerts []*model.Alert
	err := a.db.Where("status = ?", model.AlertStatusActive).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询激活提醒失败: %w", err)
	}
	return alerts, nil
}

// MarkTriggered 更新触发簿记：最后触发时间与累计触发次数。
// 引擎本身只读 Alert，触发后的状态写入由这里完成。
func (a *AlertDB) MarkTriggered(alertID string, triggeredAt time.Time) error {
	result := a.db.Model(&model.Alert{}).
		Where("id = ?", alertID).
		Updates(map[string]interface{}{
			"last_triggered_at": triggeredAt,
			"triggered_count":   gorm.Expr("triggered_count + 1"),
			"updated_at":        triggeredAt,
		})
	if result.Error != nil {
		return fmt.Errorf("更新触发簿记失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("提醒规则 %s 不存在", alertID)
	}
	return nil
}

// UpdateStatus 更新提醒生命周期状态
func (a *AlertDB) UpdateStatus(alertID string, status model.AlertStatus) error {
	result := a.db.Model(&model.Alert{}).
		Where("id = ?", alertID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("更新提醒状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("提醒规则 %s 不存在", alertID)
	}
	return nil
}

// ExpireOutdated 将已过期的激活提醒批量置为 EXPIRED
func (a *AlertDB) ExpireOutdated(now time.Time) (int64, error) {
	result := a.db.Model(&model.Alert{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.AlertStatusActive, now).
		Update("status", model.AlertStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("清理过期提醒失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}
