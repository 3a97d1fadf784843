// pkg/database/postgres.go
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"InvestRadar/pkg/config"
	"InvestRadar/pkg/model"
)

// PostgresDB 数据库连接
type PostgresDB struct {
	db *gorm.DB
}

// NewPostgresDB 创建数据库连接并迁移表结构
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	dbCfg := cfg.Database.Postgres

	// 构建连接字符串
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.DBName, dbCfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 迁移表结构
	if err := db.AutoMigrate(&model.Alert{}, &model.AlertTriggerEvent{}); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

// Close 关闭数据库连接
func (p *PostgresDB) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Alert 提醒规则仓储
func (p *PostgresDB) Alert() *AlertDB {
	return &AlertDB{db: p.db}
}

// Trigger 触发事件仓储
func (p *PostgresDB) Trigger() *TriggerDB {
	return &TriggerDB{db: p.db}
}
