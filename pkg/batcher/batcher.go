// pkg/batcher/batcher.go
package batcher

import (
	"log"
	"sync"
	"time"

	"InvestRadar/pkg/model"
)

// OnReady 批次就绪回调，参数为标的代码与该窗口内积累的全部触发事件
type OnReady func(symbol string, events []*model.AlertTriggerEvent)

// Batcher 按标的合并触发事件：每个标的维护一个缓冲与倒计时，窗口到期后
// 整批交给回调。缓冲与计时器由同一把锁保护，追加与到期冲刷不会竞争。
type Batcher struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	events []*model.AlertTriggerEvent
	timer  *time.Timer
	gen    uint64 // 每次追加递增，用于识别过期的冲刷
}

// New 创建批处理器
func New() *Batcher {
	return &Batcher{entries: make(map[string]*entry)}
}

// Add 追加事件并以新窗口重置该标的的计时器。窗口在每次追加时重新开始，
// 连续爆发会延长批次而不是拆散批次。
func (b *Batcher) Add(symbol string, event *model.AlertTriggerEvent, window time.Duration, onReady OnReady) {
	b.mu.Lock()
	defer b.mu.Unlock()

	en, ok := b.entries[symbol]
	if !ok {
		en = &entry{}
		b.entries[symbol] = en
	}

	en.events = append(en.events, event)
	en.gen++
	gen := en.gen

	// 旧计时器必须先取消再安装新的
	if en.timer != nil {
		en.timer.Stop()
	}
	en.timer = time.AfterFunc(window, func() {
		b.flush(symbol, gen, onReady)
	})
}

// flush 摘下指定标的的缓冲并清空状态，之后才调用回调，
// 回调无论成功失败都不会留下残留的缓冲或计时器。
// 旧计时器若与 Add 竞争触发，代数已不匹配，直接放弃，由新计时器接手。
func (b *Batcher) flush(symbol string, gen uint64, onReady OnReady) {
	b.mu.Lock()
	en, ok := b.entries[symbol]
	if !ok || en.gen != gen {
		b.mu.Unlock()
		return
	}
	events := en.events
	if en.timer != nil {
		en.timer.Stop()
	}
	delete(b.entries, symbol)
	b.mu.Unlock()

	if len(events) == 0 {
		return
	}
	invoke(symbol, events, onReady)
}

// FlushAll 取消所有计时器并立刻冲刷全部非空缓冲，各标的的回调相互隔离
func (b *Batcher) FlushAll(onReady OnReady) {
	b.mu.Lock()
	pending := make(map[string][]*model.AlertTriggerEvent, len(b.entries))
	for symbol, en := range b.entries {
		if en.timer != nil {
			en.timer.Stop()
		}
		if len(en.events) > 0 {
			pending[symbol] = en.events
		}
	}
	b.entries = make(map[string]*entry)
	b.mu.Unlock()

	for symbol, events := range pending {
		invoke(symbol, events, onReady)
	}
}

// Pending 返回尚未冲刷的事件总数
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, en := range b.entries {
		total += len(en.events)
	}
	return total
}

// invoke 隔离回调内部的 panic，单个消费方的故障不影响其他标的的冲刷
func invoke(symbol string, events []*model.AlertTriggerEvent, onReady OnReady) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("批次回调处理 %s 失败: %v", symbol, r)
		}
	}()
	onReady(symbol, events)
}
