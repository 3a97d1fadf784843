package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"InvestRadar/pkg/batcher"
	"InvestRadar/pkg/config"
	"InvestRadar/pkg/database"
	"InvestRadar/pkg/engine"
	"InvestRadar/pkg/feed"
	"InvestRadar/pkg/messaging"
	"InvestRadar/pkg/model"
	"InvestRadar/pkg/scheduler"
)

func main() {
	log.Println("启动提醒评估引擎...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	// 连接数据库
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("连接数据库失败: %v\n", err)
	}
	defer db.Close()

	// 连接NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("连接NATS失败: %v\n", err)
	}
	defer natsClient.Close()

	// 创建评估引擎，每日上限闸门由触发历史仓储计数
	eng := engine.NewEngine(db.Trigger().CountForDay)
	eng.SetSentimentThreshold(cfg.Engine.SentimentThreshold)

	// 创建批处理器，批次就绪后发布给下游投递层
	b := batcher.New()
	publishBatch := func(symbol string, events []*model.AlertTriggerEvent) {
		if err := natsClient.PublishTriggerBatch(symbol, events); err != nil {
			log.Printf("发布触发批次失败: symbol=%s count=%d err=%v", symbol, len(events), err)
			return
		}
		log.Printf("发布触发批次: symbol=%s count=%d", symbol, len(events))
	}

	// 启动调度器
	sched := scheduler.NewScheduler(db, b, publishBatch)
	sched.Start()
	defer sched.Stop()

	// 新闻与价格历史缓存，行情与新闻流共同喂给评估
	store := feed.NewStore(cfg.Engine.HistoryDays)

	// 订阅新闻数据
	err = natsClient.SubscribeNews(cfg.NATS.ClientID+"-news", func(msg messaging.NewsMessage) {
		store.AddNews(msg.Symbol, msg.Items, time.Now())
	})
	if err != nil {
		log.Fatalf("订阅新闻数据失败: %v\n", err)
	}

	// 订阅行情数据
	err = natsClient.SubscribeQuotes(cfg.NATS.ClientID+"-engine", func(quote model.MarketData) {
		handleQuote(db, eng, b, store, cfg, quote, publishBatch)
	})
	if err != nil {
		log.Fatalf("订阅行情数据失败: %v\n", err)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭提醒评估引擎...")

	// 退出前冲刷所有待发批次
	b.FlushAll(publishBatch)
}

// handleQuote 对一条行情评估该标的的全部激活提醒
func handleQuote(db *database.PostgresDB, eng *engine.Engine, b *batcher.Batcher, store *feed.Store, cfg *config.Config, quote model.MarketData, publishBatch batcher.OnReady) {
	store.AddQuote(quote)

	alerts, err := db.Alert().GetActiveBySymbol(quote.Symbol)
	if err != nil {
		log.Printf("查询激活提醒失败: symbol=%s err=%v", quote.Symbol, err)
		return
	}

	now := time.Now()
	news := store.NewsSnapshot(quote.Symbol, now)
	history := store.History(quote.Symbol)
	for _, alert := range alerts {
		result := eng.Evaluate(alert, quote, news, history, now)
		if !result.Triggered {
			continue
		}

		if err := db.Trigger().Save(result.Event); err != nil {
			log.Printf("保存触发事件失败: alert=%s err=%v", alert.ID, err)
			continue
		}

		if err := db.Alert().MarkTriggered(alert.ID, result.Event.TriggeredAt); err != nil {
			log.Printf("更新触发簿记失败: alert=%s err=%v", alert.ID, err)
		}

		window := time.Duration(cfg.Engine.BatchWindowMinutes) * time.Minute
		if alert.Frequency.BatchWindowMinutes > 0 {
			window = time.Duration(alert.Frequency.BatchWindowMinutes) * time.Minute
		}
		b.Add(quote.Symbol, result.Event, window, publishBatch)

		log.Printf("提醒触发: alert=%s symbol=%s reason=%s", alert.ID, quote.Symbol, result.Event.Reason)
	}
}
