// pkg/model/alert.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleType 提醒规则类型枚举
type RuleType string

const (
	RuleTypeThreshold      RuleType = "THRESHOLD"       // 单阈值规则
	RuleTypeMultiCondition RuleType = "MULTI_CONDITION" // 多条件组合规则
	RuleTypeNewsTriggered  RuleType = "NEWS_TRIGGERED"  // 新闻情绪触发
	RuleTypeAnomaly        RuleType = "ANOMALY"         // 统计异动检测
)

// AlertStatus 提醒生命周期状态
type AlertStatus string

const (
	AlertStatusActive    AlertStatus = "ACTIVE"
	AlertStatusTriggered AlertStatus = "TRIGGERED"
	AlertStatusSnoozed   AlertStatus = "SNOOZED"
	AlertStatusDismissed AlertStatus = "DISMISSED"
	AlertStatusExpired   AlertStatus = "EXPIRED"
	AlertStatusDisabled  AlertStatus = "DISABLED"
)

// AlertPriority 提醒优先级
type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

// ConditionField 条件字段枚举
type ConditionField string

const (
	FieldPrice              ConditionField = "PRICE"
	FieldPriceChangePercent ConditionField = "PRICE_CHANGE_PERCENT"
	FieldVolume             ConditionField = "VOLUME"
	FieldVolumeRatio        ConditionField = "VOLUME_RATIO"
	FieldPERatio            ConditionField = "PE_RATIO"
	FieldRSI                ConditionField = "RSI"
	FieldMA50               ConditionField = "MA_50"
	FieldMA200              ConditionField = "MA_200"
	FieldNewsSentiment      ConditionField = "NEWS_SENTIMENT"
	FieldMarketCap          ConditionField = "MARKET_CAP"
)

// ConditionOperator 条件比较操作符
type ConditionOperator string

const (
	OperatorGT            ConditionOperator = ">"
	OperatorLT            ConditionOperator = "<"
	OperatorGTE           ConditionOperator = ">="
	OperatorLTE           ConditionOperator = "<="
	OperatorEQ            ConditionOperator = "="
	OperatorNEQ           ConditionOperator = "!="
	OperatorChangePercent ConditionOperator = "CHANGE_PERCENT"
	// 穿越类操作符需要历史数据支持，当前未实现，评估结果恒为 false
	OperatorCrossesAbove ConditionOperator = "CROSSES_ABOVE"
	OperatorCrossesBelow ConditionOperator = "CROSSES_BELOW"
)

// GroupLogic 条件组内部的布尔组合方式
type GroupLogic string

const (
	LogicAnd GroupLogic = "AND"
	LogicOr  GroupLogic = "OR"
)

// Condition 单个检测条件：字段 + 操作符 + 比较值
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    float64           `json:"value"`
}

// ConditionGroup 条件组，组内条件按 Logic 组合；组与组之间为 OR 关系
type ConditionGroup struct {
	Logic      GroupLogic  `json:"logic"`
	Conditions []Condition `json:"conditions"`
}

// FrequencyPolicy 触发频率策略
type FrequencyPolicy struct {
	MaxPerDay          int `json:"max_per_day"`          // 每日最大触发次数，0 表示不限
	CooldownMinutes    int `json:"cooldown_minutes"`     // 两次触发之间的冷却分钟数
	BatchWindowMinutes int `json:"batch_window_minutes"` // 触发事件合并窗口
}

// QuietHoursPolicy 免打扰时段策略，时间为 "HH:MM" 格式字符串
type QuietHoursPolicy struct {
	Enabled   bool           `json:"enabled"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Days      []time.Weekday `json:"days"` // 生效的星期几
}

// AnomalyConfig 异动检测配置
type AnomalyConfig struct {
	PriceChangeThreshold  float64 `json:"price_change_threshold"`  // 价格变动百分比阈值
	VolumeSpikeMultiplier float64 `json:"volume_spike_multiplier"` // 成交量放大倍数
	SigmaThreshold        float64 `json:"sigma_threshold"`         // 统计离群的西格玛阈值
	RequiresNoNews        bool    `json:"requires_no_news"`        // 有新闻解释时抑制触发
	NewsLookbackHours     int     `json:"news_lookback_hours"`     // 新闻回溯窗口，当前计算未使用
}

// Alert 用户定义的提醒规则，对引擎而言是只读输入
type Alert struct {
	ID              string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Symbol          string           `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Type            RuleType         `gorm:"type:varchar(30);not null;index" json:"type"`
	Status          AlertStatus      `gorm:"type:varchar(20);not null;index;default:'ACTIVE'" json:"status"`
	Priority        AlertPriority    `gorm:"type:varchar(20);default:'medium'" json:"priority"`
	ConditionGroups []ConditionGroup `gorm:"type:jsonb;serializer:json" json:"condition_groups"`
	Frequency       FrequencyPolicy  `gorm:"type:jsonb;serializer:json" json:"frequency"`
	QuietHours      QuietHoursPolicy `gorm:"type:jsonb;serializer:json" json:"quiet_hours"`
	Anomaly         *AnomalyConfig   `gorm:"type:jsonb;serializer:json" json:"anomaly,omitempty"`
	ExpiresAt       *time.Time       `gorm:"index" json:"expires_at,omitempty"`

	// 触发簿记，由仓储层在事件落库后更新，引擎不写
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	TriggeredCount  int        `gorm:"default:0" json:"triggered_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (Alert) TableName() string {
	return "alerts"
}

// TriggerAction 触发事件的用户处理状态，由外部界面层更新
type TriggerAction string

const (
	ActionPending   TriggerAction = "PENDING"
	ActionViewed    TriggerAction = "VIEWED"
	ActionDismissed TriggerAction = "DISMISSED"
	ActionSnoozed   TriggerAction = "SNOOZED"
)

// AlertTriggerEvent 规则触发后引擎生成的事件，记录触发瞬间的快照数据
type AlertTriggerEvent struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	AlertID       string        `gorm:"type:uuid;not null;index" json:"alert_id"`
	Symbol        string        `gorm:"type:varchar(20);not null;index" json:"symbol"`
	TriggeredAt   time.Time     `gorm:"not null;index" json:"triggered_at"`
	Reason        string        `gorm:"type:text" json:"reason"`
	ConditionsMet []string      `gorm:"type:jsonb;serializer:json" json:"conditions_met"`
	Price         float64       `gorm:"type:decimal(14,4)" json:"price"`
	Volume        float64       `json:"volume"`
	NewsCount     int           `gorm:"default:0" json:"news_count"`
	Sentiment     float64       `gorm:"type:decimal(6,4);default:0" json:"sentiment"`
	Priority      AlertPriority `gorm:"type:varchar(20)" json:"priority"`
	UserAction    TriggerAction `gorm:"type:varchar(20);default:'PENDING'" json:"user_action"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (e *AlertTriggerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (AlertTriggerEvent) TableName() string {
	return "alert_trigger_events"
}
