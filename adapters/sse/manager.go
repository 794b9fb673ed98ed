package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/smallnest/chanx"
)

// ErrManagerClosed 表示 manager 已停止
var ErrManagerClosed = errors.New("connection manager is closed")

type managerOptions[T any] struct {
	logger     *slog.Logger
	subscriber ISubscriber[T]
	publisher  IPublisher[T]
	bufferSize int
	onDrop     func(channelName string, dropped int)
}

type ManagerOption[T any] func(*managerOptions[T])

// WithLogger 設置日誌記錄器
func WithLogger[T any](logger *slog.Logger) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.logger = logger
	}
}

// WithSubscriber 設置跨實例的訊息來源，需要和 WithPublisher 一起使用
func WithSubscriber[T any](subscriber ISubscriber[T]) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.subscriber = subscriber
	}
}

// WithPublisher 設置跨實例的訊息出口，需要和 WithSubscriber 一起使用
func WithPublisher[T any](publisher IPublisher[T]) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.publisher = publisher
	}
}

// WithBufferSize 設置每個訂閱者的緩衝大小
func WithBufferSize[T any](size int) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.bufferSize = size
	}
}

// WithDropHandler 設置訊息因訂閱者緩衝區已滿而被丟棄時的回呼
func WithDropHandler[T any](fn func(channelName string, dropped int)) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.onDrop = fn
	}
}

// connectionManager 管理多個 SSE 頻道的訂閱與發布。
// 設定了 subscriber/publisher 時透過 Redis Stream 跨節點廣播，
// 否則只在本機的 process 內廣播。
// 不論哪種模式，所有訊息都經過單一的廣播 goroutine，同一頻道的訊息維持發布順序。
type connectionManager[T any] struct {
	logger  *slog.Logger
	options managerOptions[T]

	mu     sync.RWMutex
	wg     sync.WaitGroup
	active bool
	cancel context.CancelFunc

	local    *chanx.UnboundedChan[PublishRequest[T]]
	channels map[string]IChannel[T]
}

// NewConnectionManager 建立一個新的連線管理器。
func NewConnectionManager[T any](opts ...ManagerOption[T]) (IConnectionManager[T], error) {
	options := managerOptions[T]{
		logger:     slog.Default(),
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if (options.subscriber == nil) != (options.publisher == nil) {
		return nil, errors.New("subscriber and publisher must be configured together")
	}

	return &connectionManager[T]{
		logger:   options.logger.With(slog.String("caller", "ConnectionManager")),
		options:  options,
		channels: make(map[string]IChannel[T]),
	}, nil
}

func (cm *connectionManager[T]) distributed() bool {
	return cm.options.subscriber != nil
}

// Start 啟動連線管理器，開始處理訊息的接收與廣播。
func (cm *connectionManager[T]) Start() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.active {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cm.cancel = cancel

	var source <-chan PublishRequest[T]
	if cm.distributed() {
		cm.options.publisher.Start()
		cm.options.subscriber.Start()
		source = cm.options.subscriber.Subscribe()
		cm.logger.Info("connection manager started", slog.String("mode", "stream"))
	} else {
		cm.local = chanx.NewUnboundedChan[PublishRequest[T]](ctx, cm.options.bufferSize)
		source = cm.local.Out
		cm.logger.Info("connection manager started", slog.String("mode", "local"))
	}
	cm.active = true

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case req, ok := <-source:
				if !ok {
					return
				}
				cm.broadcast(req)
			}
		}
	}()
}

func (cm *connectionManager[T]) broadcast(req PublishRequest[T]) {
	cm.mu.RLock()
	channel, ok := cm.channels[req.Channel]
	cm.mu.RUnlock()
	if !ok {
		return
	}
	if dropped := channel.Broadcast(req.Message); dropped > 0 {
		cm.logger.Warn("subscriber buffer full, message dropped",
			slog.String("channel", req.Channel),
			slog.Int("dropped", dropped),
		)
		if cm.options.onDrop != nil {
			cm.options.onDrop(req.Channel, dropped)
		}
	}
}

// Done 停止連線管理器的運作。
func (cm *connectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	if cm.distributed() {
		cm.options.publisher.Close()
		cm.options.subscriber.Close()
	}
	cm.cancel()
	cm.wg.Wait()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
	cm.logger.Info("connection manager stopped")
}

// Subscribe 訂閱指定的頻道。
func (cm *connectionManager[T]) Subscribe(channelName string) (<-chan T, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.active {
		return nil, ErrManagerClosed
	}

	c, ok := cm.channels[channelName]
	if !ok {
		c = NewChannel[T](cm.options.bufferSize)
		cm.channels[channelName] = c
	}
	return c.Subscribe(), nil
}

// Publish 發布訊息到指定的頻道，不會等待訊息送達。
func (cm *connectionManager[T]) Publish(channelName string, data T) error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if !cm.active {
		return ErrManagerClosed
	}

	req := PublishRequest[T]{Channel: channelName, Message: data}
	if cm.distributed() {
		return cm.options.publisher.Publish(req)
	}
	cm.local.In <- req
	return nil
}

// Unsubscribe 取消訂閱指定的頻道。
func (cm *connectionManager[T]) Unsubscribe(channelName string, ch <-chan T) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, ok := cm.channels[channelName]
	if !ok {
		return
	}

	c.Unsubscribe(ch)
	if c.IsIdle() {
		delete(cm.channels, channelName)
	}
}
