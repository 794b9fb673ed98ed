package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smallnest/chanx"

	"uoauth/adapters/redis"
	"uoauth/models"
)

var ErrQueueClosed = errors.New("provisioning queue is closed")

// Job 是一筆待執行的角色設定
type Job struct {
	Record models.AuthenticationRecord
	Prior  *models.AuthenticationRecord
}

// IProvisioner 執行單筆角色設定
type IProvisioner interface {
	Provision(ctx context.Context, record *models.AuthenticationRecord, prior *models.AuthenticationRecord) Report
}

// IQueue 定義了角色設定佇列的操作介面，Enqueue 不等待執行結果
type IQueue interface {
	Start() error
	Enqueue(ctx context.Context, job Job) error
	Close() error
}

// DefaultJobTimeout 是單筆角色設定的時間上限
const DefaultJobTimeout = time.Minute

// LocalQueue 在同一個 process 中執行角色設定，關閉時會等待佇列清空
type LocalQueue struct {
	provisioner IProvisioner
	timeout     time.Duration
	logger      *slog.Logger

	mu         sync.RWMutex
	closed     bool
	jobs       *chanx.UnboundedChan[Job]
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

func NewLocalQueue(provisioner IProvisioner, logger *slog.Logger) *LocalQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalQueue{
		provisioner: provisioner,
		timeout:     DefaultJobTimeout,
		logger:      logger.With(slog.String("caller", "provisioning.LocalQueue")),
		closed:      true,
	}
}

func (q *LocalQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.jobs = chanx.NewUnboundedChan[Job](ctx, 16)
	q.cancelFunc = cancel
	q.closed = false

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for job := range q.jobs.Out {
			run(ctx, q.provisioner, job, q.timeout)
		}
	}()
	return nil
}

func (q *LocalQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs.In <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *LocalQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs.In)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancelFunc()
	return nil
}

func run(ctx context.Context, provisioner IProvisioner, job Job, timeout time.Duration) Report {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return provisioner.Provision(ctx, &job.Record, job.Prior)
}

// StreamQueue 將角色設定寫入 redis stream，由 consumer group 中的任一個實例執行。
// 執行有錯誤的工作會移到 dead-letter stream。
type StreamQueue struct {
	producer    redis.IProducer[Job]
	consumer    redis.IGroupConsumer[Job]
	provisioner IProvisioner
	timeout     time.Duration
	logger      *slog.Logger

	mu         sync.RWMutex
	closed     bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewStreamQueue 建立佇列，consumer 為 nil 時只負責寫入
func NewStreamQueue(
	producer redis.IProducer[Job],
	consumer redis.IGroupConsumer[Job],
	provisioner IProvisioner,
	logger *slog.Logger,
) *StreamQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamQueue{
		producer:    producer,
		consumer:    consumer,
		provisioner: provisioner,
		timeout:     DefaultJobTimeout,
		logger:      logger.With(slog.String("caller", "provisioning.StreamQueue")),
		closed:      true,
	}
}

func (q *StreamQueue) Start() error {
	const op = "provisioning.StreamQueue.Start"
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		return nil
	}

	q.producer.Start()
	if q.consumer != nil {
		if err := q.consumer.Start(); err != nil {
			q.producer.Close()
			return fmt.Errorf("[%s] Fail to start consumer, err=%w", op, err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		q.cancelFunc = cancel
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.work(ctx)
		}()
	}
	q.closed = false
	return nil
}

func (q *StreamQueue) work(ctx context.Context) {
	for msg := range q.consumer.Subscribe() {
		logger := q.logger.With(slog.String("message_id", msg.ID), slog.String("attempt_id", msg.Data.Record.AttemptID))

		report := run(ctx, q.provisioner, msg.Data, q.timeout)
		// 處理結果的 ack 不受 job timeout 影響
		ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := report.Err(); err != nil {
			if failErr := msg.Fail(ackCtx, err); failErr != nil {
				logger.Error("fail to move job to dead letter", slog.Any("error", failErr))
			}
		} else if doneErr := msg.Done(ackCtx); doneErr != nil {
			logger.Error("fail to ack job", slog.Any("error", doneErr))
		}
		cancel()
	}
}

func (q *StreamQueue) Enqueue(ctx context.Context, job Job) error {
	const op = "provisioning.StreamQueue.Enqueue"
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := q.producer.Publish(job); err != nil {
		return fmt.Errorf("[%s] Fail to publish job, err=%w", op, err)
	}
	return nil
}

// Close 先送出緩衝中的工作，再停止消費
func (q *StreamQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.producer.Close()
	var err error
	if q.consumer != nil {
		err = q.consumer.Close()
		q.wg.Wait()
		q.cancelFunc()
	}
	return err
}
