package eventbus

import (
	"sync"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
)

// Bus wraps a synchronous EventBus with a worker pool for fire-and-forget publishing.
// All methods are safe on a nil *Bus.
type Bus struct {
	bus       evbus.Bus
	workerNum int
	workChan  chan asyncEvent
	stopChan  chan struct{}
	wg        sync.WaitGroup
	pending   sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	stopOnce  sync.Once
	dropped   atomic.Int64
	panics    atomic.Int64
}

type asyncEvent struct {
	topic string
	args  []interface{}
}

// New 创建事件总线，workerNum 与 queueSize 非正数时使用默认值
func New(workerNum, queueSize int) *Bus {
	if workerNum <= 0 {
		workerNum = 4
	}
	if queueSize <= 0 {
		queueSize = 1000
	}

	return &Bus{
		bus:       evbus.New(),
		workerNum: workerNum,
		workChan:  make(chan asyncEvent, queueSize),
		stopChan:  make(chan struct{}),
	}
}

// Start 启动异步处理协程，可重复调用
func (b *Bus) Start() {
	if b == nil {
		return
	}
	b.startOnce.Do(func() {
		for i := 0; i < b.workerNum; i++ {
			b.wg.Add(1)
			go b.worker()
		}
	})
}

// Stop 拒绝新的异步事件，处理完队列中剩余事件后停止；未启动的总线会先启动协程排空队列
func (b *Bus) Stop() {
	if b == nil {
		return
	}
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()

		b.Start()
		b.pending.Wait()
		close(b.stopChan)
		b.wg.Wait()
	})
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for {
		select {
		case <-b.stopChan:
			return
		case event := <-b.workChan:
			b.dispatch(event)
		}
	}
}

func (b *Bus) dispatch(event asyncEvent) {
	defer b.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
		}
	}()
	b.bus.Publish(event.topic, event.args...)
}

// PublishAsync 异步发布事件；队列满或总线已停止时丢弃并计数
func (b *Bus) PublishAsync(topic string, args ...interface{}) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	b.pending.Add(1)
	select {
	case b.workChan <- asyncEvent{topic: topic, args: args}:
	default:
		b.pending.Done()
		b.dropped.Add(1)
	}
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Subscribe(topic, fn)
}

// WaitAsync blocks until every queued event has been dispatched. Requires Start.
func (b *Bus) WaitAsync() {
	if b == nil {
		return
	}
	b.pending.Wait()
}

// Dropped returns how many async events were discarded because the queue was full.
func (b *Bus) Dropped() int64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}

// Panics returns how many handler panics were recovered.
func (b *Bus) Panics() int64 {
	if b == nil {
		return 0
	}
	return b.panics.Load()
}
