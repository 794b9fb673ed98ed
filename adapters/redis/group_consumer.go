package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"
)

var (
	ErrConsumerClosed = errors.New("consumer is closed")
)

// Message 封裝消息和ack所需資料
type Message[T any] struct {
	Data T
	ID   string

	client *redis.Client
	done   bool
	stream string
	group  string

	raw map[string]any
}

// Done 確認消息已處理完成
func (m *Message[T]) Done(ctx context.Context) error {
	const op = "Message.Done"
	if m.done {
		return nil
	}
	if err := m.client.XAck(ctx, m.stream, m.group, m.ID).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to ack message, err=%w", op, err)
	}
	m.done = true
	return nil
}

// Fail 將消息移到 dead-letter stream 並確認原消息
func (m *Message[T]) Fail(ctx context.Context, failErr error) error {
	const op = "Message.Fail"
	if m.done {
		return nil
	}

	values := make(map[string]any, len(m.raw)+1)
	for k, v := range m.raw {
		values[k] = v
	}
	values["error"] = failErr.Error()
	if err := deadLetter(ctx, m.client, m.stream, m.group, m.ID, values); err != nil {
		return fmt.Errorf("[%s] Fail to move message to dead letter, err=%w", op, err)
	}
	m.done = true
	return nil
}

func deadLetter(ctx context.Context, client *redis.Client, stream, group, id string, values map[string]any) error {
	if err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream + ":dead-letter",
		Values: values,
	}).Err(); err != nil {
		return err
	}
	return client.XAck(ctx, stream, group, id).Err()
}

// GroupConsumer 以 consumer group 的方式讀取 stream，每則訊息只會交給群組中的一個消費者。
// 下游處理完成後必須呼叫 Message.Done 或 Message.Fail。
type GroupConsumer[T any] struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	downStream    chan *Message[T]
	cancelFunc    context.CancelFunc
	wg            sync.WaitGroup
	closed        bool
	logger        *slog.Logger
	mutex         IAutoRenewMutex
	pendingMsgIds []string
	options       groupConsumerOptions[T]
}

type groupConsumerOptions[T any] struct {
	logger         *slog.Logger
	parseFunc      func(map[string]any) (T, error)
	bufferSize     int
	blockTimeout   time.Duration
	retryDelay     time.Duration
	mutex          IAutoRenewMutex
	strictOrdering bool
}

type GroupConsumerOption[T any] func(*groupConsumerOptions[T])

// WithGroupConsumerLogger 設置日誌記錄器
func WithGroupConsumerLogger[T any](logger *slog.Logger) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.logger = logger
	}
}

// WithGroupConsumerParseFunc 設置消息解析函數
func WithGroupConsumerParseFunc[T any](fn func(map[string]any) (T, error)) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.parseFunc = fn
	}
}

// WithGroupConsumerBufferSize 設置下游channel的緩衝大小
func WithGroupConsumerBufferSize[T any](size int) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.bufferSize = size
	}
}

// WithGroupConsumerBlockTimeout 設置阻塞讀取超時時間
func WithGroupConsumerBlockTimeout[T any](d time.Duration) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.blockTimeout = d
	}
}

// WithGroupConsumerRetryDelay 設置讀取失敗後的等待時間
func WithGroupConsumerRetryDelay[T any](d time.Duration) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.retryDelay = d
	}
}

// WithGroupConsumerMutex 注入mutex (主要用於測試)
func WithGroupConsumerMutex[T any](mutex IAutoRenewMutex) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.mutex = mutex
	}
}

// WithGroupConsumerStrictOrdering 設置是否使用嚴格順序模式。
// 嚴格順序模式下同一時間只有一個消費者持有鎖並處理訊息，並會先重新處理 pending 訊息。
func WithGroupConsumerStrictOrdering[T any](strict bool) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.strictOrdering = strict
	}
}

func NewGroupConsumer[T any](
	client *redis.Client,
	stream, group, consumer string,
	opts ...GroupConsumerOption[T],
) (IGroupConsumer[T], error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if stream == "" || group == "" || consumer == "" {
		return nil, errors.New("stream, group and consumer cannot be empty")
	}

	options := groupConsumerOptions[T]{
		logger:       slog.Default(),
		parseFunc:    DefaultParseFromMessage[T],
		bufferSize:   1,
		blockTimeout: time.Second,
		retryDelay:   time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	gc := &GroupConsumer[T]{
		logger: options.logger.With(
			slog.String("caller", "GroupConsumer"),
			slog.String("stream", stream),
			slog.String("group", group),
			slog.String("consumer", consumer),
		),
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		closed:   true,
		options:  options,
	}

	if options.strictOrdering {
		gc.mutex = options.mutex
		if gc.mutex == nil {
			gc.mutex = NewAutoRenewMutex(client, fmt.Sprintf("lock:%s:%s", stream, group), WithAutoRenewMutexSkipLockError(true))
		}
	}

	return gc, nil
}

// ensureGroup 建立 consumer group (連同 stream)，群組已存在時忽略錯誤。
// 群組從 stream 開頭讀取，啟動前已寫入的訊息也會被處理。
func (s *GroupConsumer[T]) ensureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (s *GroupConsumer[T]) Start() error {
	const op = "GroupConsumer.Start"
	if !s.closed {
		return nil
	}
	if err := s.ensureGroup(context.Background()); err != nil {
		return fmt.Errorf("[%s] Fail to create consumer group, err=%w", op, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.downStream = make(chan *Message[T], s.options.bufferSize)
	s.cancelFunc = cancel
	s.closed = false
	s.logger.Info("starting group consumer")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.logger.Info("group consumer goroutine stopped")
		defer close(s.downStream)

		for ctx.Err() == nil {
			workCtx := ctx
			if s.options.strictOrdering {
				var err error
				// 取得鎖後的 context 會在失去鎖時被取消
				workCtx, err = s.mutex.Lock(ctx)
				if err != nil {
					if ctx.Err() == nil {
						s.logger.Error("failed to acquire lock", slog.Any("error", err))
					}
					continue
				}
			}

			err := s.run(workCtx)
			if s.options.strictOrdering {
				if _, unlockErr := s.mutex.Unlock(); unlockErr != nil && ctx.Err() == nil {
					s.logger.Warn("failed to release lock", slog.Any("error", unlockErr))
				}
			}
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.Canceled) {
				s.logger.Warn("lock lost, restarting group consumer")
				continue
			}
			s.logger.Error("group consumer stopped unexpectedly, restarting", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.options.retryDelay):
			}
		}
	}()

	return nil
}

// Subscribe 訂閱Stream，返回Message通道
func (s *GroupConsumer[T]) Subscribe() <-chan *Message[T] {
	return s.downStream
}

func (s *GroupConsumer[T]) Close() error {
	if s.closed {
		return nil
	}
	s.logger.Info("closing group consumer")
	s.closed = true
	s.cancelFunc()

	s.wg.Wait()
	s.logger.Info("group consumer closed gracefully")
	return nil
}

// run 持續讀取訊息並交給下游，只在 context 取消或 dead-letter 失敗時返回
func (s *GroupConsumer[T]) run(ctx context.Context) error {
	if err := s.fetchPendingMessageIds(ctx); err != nil {
		return err
	}
	for {
		message, err := s.fetchNextMessage(ctx)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return context.Canceled
			}
			s.logger.Error("fetch message error", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return context.Canceled
			case <-time.After(s.options.retryDelay):
			}
			continue
		}
		if message.ID == "" {
			continue
		}

		data, err := s.options.parseFunc(message.Values)
		if err != nil {
			// 解析失敗重試也不會成功，直接移到 dead-letter
			s.logger.Error("failed to parse message",
				slog.String("messageId", message.ID),
				slog.Any("error", err),
			)
			if dlErr := deadLetter(ctx, s.client, s.stream, s.group, message.ID, message.Values); dlErr != nil {
				// 訊息會以 pending 狀態留在 stream 中
				return fmt.Errorf("failed to move message to dead letter: %w", dlErr)
			}
			continue
		}

		msg := &Message[T]{
			Data:   data,
			ID:     message.ID,
			stream: s.stream,
			group:  s.group,
			client: s.client,
			raw:    message.Values,
		}
		select {
		case <-ctx.Done():
			return context.Canceled
		case s.downStream <- msg:
		}
	}
}

// fetchPendingMessageIds 收集尚未確認的訊息。
// 嚴格順序模式下收集整個群組的 pending 訊息，否則只收集自己名下的。
func (s *GroupConsumer[T]) fetchPendingMessageIds(ctx context.Context) error {
	s.pendingMsgIds = s.pendingMsgIds[:0]
	start := "-"
	owner := s.consumer
	if s.options.strictOrdering {
		owner = ""
	}

	for {
		pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream:   s.stream,
			Group:    s.group,
			Start:    start,
			End:      "+",
			Count:    100,
			Consumer: owner,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("error getting pending messages: %w", err)
		}
		for _, p := range pending {
			s.pendingMsgIds = append(s.pendingMsgIds, p.ID)
		}
		if len(pending) < 100 {
			break
		}
		// XPENDING 的 start 是包含的，使用 exclusive range 避免重複
		start = "(" + pending[len(pending)-1].ID
	}

	if len(s.pendingMsgIds) > 0 {
		s.logger.Info("recovering pending messages", slog.Int("count", len(s.pendingMsgIds)))
	}
	return nil
}

func (s *GroupConsumer[T]) fetchNextMessage(ctx context.Context) (redis.XMessage, error) {
	if len(s.pendingMsgIds) > 0 {
		id := s.pendingMsgIds[0]
		messages, err := s.client.XRangeN(ctx, s.stream, id, id, 1).Result()
		if err != nil {
			return redis.XMessage{}, err
		}
		s.pendingMsgIds = s.pendingMsgIds[1:]
		if len(messages) == 0 {
			// 已被裁剪的訊息只需要確認
			_ = s.client.XAck(ctx, s.stream, s.group, id).Err()
			return redis.XMessage{}, redis.Nil
		}
		return messages[0], nil
	}

	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    1,
		Block:    s.options.blockTimeout,
	}).Result()
	if err != nil {
		return redis.XMessage{}, err
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return redis.XMessage{}, redis.Nil
	}
	return streams[0].Messages[0], nil
}
