package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"InvestRadar/pkg/batcher"
	"InvestRadar/pkg/database"
)

// Scheduler 任务调度器
type Scheduler struct {
	cron    *cron.Cron
	db      *database.PostgresDB
	batcher *batcher.Batcher
	onReady batcher.OnReady
}

// NewScheduler 创建任务调度器
func NewScheduler(db *database.PostgresDB, b *batcher.Batcher, onReady batcher.OnReady) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		db:      db,
		batcher: b,
		onReady: onReady,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() {
	// 每日开盘前清理过期提醒
	s.cron.AddFunc("15 9 * * 1-5", s.expireOutdated)

	// 收盘后冲刷所有待发批次
	s.cron.AddFunc("5 15 * * 1-5", func() {
		s.batcher.FlushAll(s.onReady)
	})

	// 每5分钟记录待发批次数量
	s.cron.AddFunc("@every 5m", s.logPending)

	s.cron.Start()
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// expireOutdated 将已过期的激活提醒置为 EXPIRED
func (s *Scheduler) expireOutdated() {
	count, err := s.db.Alert().ExpireOutdated(time.Now())
	if err != nil {
		log.Printf("清理过期提醒失败: %v", err)
		return
	}
	if count > 0 {
		log.Printf("已将 %d 条过期提醒置为 EXPIRED", count)
	}
}

// logPending 记录批处理器中尚未冲刷的事件数量
func (s *Scheduler) logPending() {
	if pending := s.batcher.Pending(); pending > 0 {
		log.Printf("批处理器中有 %d 条触发事件等待冲刷", pending)
	}
}
