package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sourcegraph/conc"
	"gorm.io/gorm"

	"uoauth/adapters/correlation"
	"uoauth/adapters/records"
	"uoauth/adapters/redis"
	"uoauth/adapters/session"
	"uoauth/adapters/sse"
	"uoauth/metrics"
	"uoauth/models"
	"uoauth/provisioning"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrStepOutOfOrder 表示前一個步驟尚未完成
	ErrStepOutOfOrder = errors.New("previous verification step not completed")
	// ErrIncomplete 表示 session 尚未完成所有步驟
	ErrIncomplete = errors.New("verification not completed")
)

// DefaultTailTimeout 是完成驗證後寫入紀錄與排入角色設定的時間上限
const DefaultTailTimeout = 30 * time.Second

// 事件內容
type (
	AttemptPayload struct {
		Success  bool      `json:"success"`
		Provider Provider  `json:"provider"`
		Next     *Provider `json:"next"`
	}
	ErrorPayload struct {
		Message string `json:"message"`
	}
	CompletePayload struct {
		Username string `json:"username"`
	}
	TransfersPayload struct {
		Will []string `json:"will"`
		Wont []string `json:"wont"`
	}
)

// ILocker 建立以 key 區分的分散式鎖
type ILocker interface {
	NewMutex(key string) redis.IAutoRenewMutex
}

// FinalizeResult 是寫入驗證紀錄的結果
type FinalizeResult struct {
	Record *models.AuthenticationRecord
	Prior  *models.AuthenticationRecord
	// HadPrevious 表示此論壇帳號之前已有驗證紀錄
	HadPrevious bool
	// Duplicate 表示同一次驗證已經寫入過，這次沒有任何變更
	Duplicate bool
}

type Controller struct {
	correlations correlation.Store
	channels     sse.IConnectionManager[sse.Event]
	records      records.IStore
	queue        provisioning.IQueue
	groupMap     provisioning.GroupMap
	locker       ILocker
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tailTimeout  time.Duration
	tails        *conc.WaitGroup
}

type ControllerOption func(*Controller)

// WithLocker 設置寫入紀錄時使用的鎖，同一個論壇帳號的寫入會互斥
func WithLocker(locker ILocker) ControllerOption {
	return func(c *Controller) {
		c.locker = locker
	}
}

func WithGroupMap(m provisioning.GroupMap) ControllerOption {
	return func(c *Controller) {
		c.groupMap = m
	}
}

func WithMetrics(m *metrics.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithTailTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.tailTimeout = d
	}
}

func NewController(
	correlations correlation.Store,
	channels sse.IConnectionManager[sse.Event],
	store records.IStore,
	queue provisioning.IQueue,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		correlations: correlations,
		channels:     channels,
		records:      store,
		queue:        queue,
		groupMap:     provisioning.DefaultGroupMap(),
		metrics:      metrics.Nop(),
		logger:       slog.Default(),
		tailTimeout:  DefaultTailTimeout,
		tails:        conc.NewWaitGroup(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("caller", "verification.Controller"))
	return c
}

// Progress 回傳 session 目前的進度
func (c *Controller) Progress(sess session.ISession) Progress {
	return ProgressOfSession(sess)
}

// HandleProviderCallback 處理一個步驟的結果：成功時寫入 session，並推送進度事件。
// 失敗不會前進到下一步，使用者可以重試同一個步驟。
// 最後一步成功時立即推送 auth_complete，寫入紀錄與角色設定在背景執行且不影響回應。
// 回傳的 error 不為 nil 時表示步驟結果被改為 error (例如身份衝突或 session 寫入失敗)。
func (c *Controller) HandleProviderCallback(
	ctx context.Context,
	sess session.ISession,
	provider Provider,
	result StepResult,
) (Progress, error) {
	const op = "verification.HandleProviderCallback"
	if _, ok := successors[provider]; !ok {
		return Progress{}, fmt.Errorf("[%s] provider=%s, err=%w", op, provider, ErrUnknownProvider)
	}

	token := sess.ID()
	logger := c.logger.With(slog.String("provider", string(provider)), slog.String("attempt_id", sess.Get(session.KeyAttemptID)))

	var stepErr error
	if result.Status == StatusSuccess {
		if err := c.store(sess, provider, result.Identity); err != nil {
			stepErr = fmt.Errorf("[%s] provider=%s, err=%w", op, provider, err)
			result = Errored(err)
		}
	}
	success := result.Status == StatusSuccess
	if !success {
		c.markFailed(sess, provider, logger)
	}
	identity := session.LoadIdentity(sess)
	c.metrics.StepOutcomes.WithLabelValues(string(provider), string(result.Status)).Inc()

	switch result.Status {
	case StatusSuccess:
		logger.Info("verification step succeeded")
	case StatusFailed:
		logger.Info("verification step failed", slog.Any("reason", result.Err))
	default:
		logger.Error("verification step error", slog.Any("error", result.Err))
	}

	if success && provider == ProviderForums {
		will, wont := c.groupMap.ComputeTransfer(result.Groups)
		c.emit(ctx, token, sse.EventGroupTransfers, TransfersPayload{Will: will, Wont: wont})
	}
	if result.Status == StatusError {
		c.emit(ctx, token, sse.EventAuthError, ErrorPayload{Message: errorMessage(provider, result.Err)})
	}

	attempt := AttemptPayload{Success: success, Provider: provider}
	if next := Next(provider); success && next != ProviderNone {
		attempt.Next = &next
	}
	c.emit(ctx, token, sse.EventAuthAttempt, attempt)

	if success && provider == ProviderTeamSpeak {
		c.emit(ctx, token, sse.EventAuthComplete, CompletePayload{Username: identity.Username})
		c.startTail(ctx, identity)
	}
	return ProgressOfSession(sess), stepErr
}

// markFailed 將失敗的步驟寫入 session，重新整理頁面後仍能顯示同一個結果
func (c *Controller) markFailed(sess session.ISession, provider Provider, logger *slog.Logger) {
	sess.Set(session.KeyFailedStep, string(provider))
	if err := sess.Save(); err != nil {
		logger.Warn("fail to save failed step", slog.Any("error", err))
	}
}

// store 檢查步驟順序後將身份寫入 session
func (c *Controller) store(sess session.ISession, provider Provider, patch session.Identity) error {
	if !Ready(session.LoadIdentity(sess), provider) {
		return ErrStepOutOfOrder
	}
	session.EnsureAttemptID(sess)
	if err := session.MergeIdentity(sess, patch); err != nil {
		return err
	}
	sess.Delete(session.KeyFailedStep)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("fail to save session, err=%w", err)
	}
	return nil
}

func errorMessage(provider Provider, err error) string {
	switch {
	case errors.Is(err, ErrStepOutOfOrder):
		return "Please complete the previous verification step first."
	case errors.Is(err, session.ErrIdentityConflict):
		return "This session is already linked to a different account. Please log out and start again."
	}
	return fmt.Sprintf("Unable to verify your %s account right now. Please try again.", provider)
}

// emit 推送事件到 session 綁定的連線，沒有綁定或推送失敗時只記錄
func (c *Controller) emit(ctx context.Context, token, eventType string, payload any) {
	logger := c.logger.With(slog.String("event", eventType))

	correlationID, ok, err := c.correlations.Resolve(ctx, token)
	if err != nil {
		logger.Warn("fail to resolve correlation id", slog.Any("error", err))
		return
	}
	if !ok {
		logger.Debug("no channel bound to session")
		return
	}
	event, err := sse.NewEvent(eventType, payload)
	if err != nil {
		logger.Error("fail to build event", slog.Any("error", err))
		return
	}
	if err := c.channels.Publish(correlationID, event); err != nil {
		logger.Warn("fail to publish event", slog.Any("error", err))
	}
}

func (c *Controller) startTail(ctx context.Context, identity session.Identity) {
	ctx = context.WithoutCancel(ctx)
	c.tails.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, c.tailTimeout)
		defer cancel()
		if _, err := c.Finalize(ctx, identity); err != nil {
			c.logger.Error("fail to finalize authentication",
				slog.String("attempt_id", identity.AttemptID),
				slog.Any("error", err),
			)
		}
	})
}

// Finalize 寫入驗證紀錄 (封存舊紀錄與寫入新紀錄在同一個 transaction) 並排入角色設定。
// 同一次驗證重複呼叫不會重複寫入或設定角色。
func (c *Controller) Finalize(ctx context.Context, identity session.Identity) (*FinalizeResult, error) {
	const op = "verification.Finalize"

	if identity.AttemptID == "" || ProgressOf(identity).State != StateComplete {
		return nil, fmt.Errorf("[%s] err=%w", op, ErrIncomplete)
	}
	record, err := newRecord(identity)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to build record, err=%w", op, err)
	}
	key := record.SecondaryAccountID
	logger := c.logger.With(slog.String("attempt_id", identity.AttemptID), slog.String("secondary_account_id", key))

	if c.locker != nil {
		mutex := c.locker.NewMutex("finalize:" + key)
		lockCtx, err := mutex.Lock(ctx)
		if err != nil {
			c.metrics.Finalizations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("[%s] Fail to acquire lock, key=%s, err=%w", op, key, err)
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				logger.Warn("fail to release lock", slog.Any("error", err))
			}
		}()
		ctx = lockCtx
	}

	prior, err := c.records.Replace(ctx, record)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 另一個寫入同時完成，重試一次以取得其結果
		prior, err = c.records.Replace(ctx, record)
	}
	if errors.Is(err, records.ErrDuplicateAttempt) {
		c.metrics.Finalizations.WithLabelValues("duplicate").Inc()
		history, err := c.records.ListHistory(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to list history, err=%w", op, err)
		}
		return &FinalizeResult{Record: record, HadPrevious: len(history) > 0, Duplicate: true}, nil
	}
	if err != nil {
		c.metrics.Finalizations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("[%s] Fail to replace record, err=%w", op, err)
	}

	if prior != nil {
		c.metrics.Finalizations.WithLabelValues("replaced").Inc()
	} else {
		c.metrics.Finalizations.WithLabelValues("created").Inc()
	}
	logger.Info("authentication record saved", slog.Bool("had_previous", prior != nil))

	if err := c.queue.Enqueue(ctx, provisioning.Job{Record: *record, Prior: prior}); err != nil {
		logger.Error("fail to enqueue provisioning", slog.Any("error", err))
	}
	return &FinalizeResult{Record: record, Prior: prior, HadPrevious: prior != nil}, nil
}

func newRecord(identity session.Identity) (*models.AuthenticationRecord, error) {
	databaseID, err := strconv.ParseUint(identity.TertiaryDatabaseID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tertiary database id %q, err=%w", identity.TertiaryDatabaseID, err)
	}
	email := identity.SecondaryAccountEmail
	if email == "" {
		email = identity.PrimaryAccountEmail
	}
	return &models.AuthenticationRecord{
		AttemptID:          identity.AttemptID,
		Username:           identity.Username,
		Email:              email,
		PrimaryAccountID:   identity.PrimaryAccountID,
		SecondaryAccountID: identity.SecondaryAccountID,
		TertiaryAccountID:  identity.TertiaryAccountID,
		TertiaryDatabaseID: databaseID,
		TertiaryClientIP:   identity.TertiaryClientIP,
	}, nil
}

// Close 等待背景中的寫入完成
func (c *Controller) Close() {
	if r := c.tails.WaitAndRecover(); r != nil {
		c.logger.Error("finalize panicked", slog.Any("panic", r.Value), slog.String("stack", string(r.Stack)))
	}
}
