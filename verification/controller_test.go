package verification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"uoauth/adapters/correlation"
	"uoauth/adapters/records"
	"uoauth/adapters/redis"
	"uoauth/adapters/session"
	"uoauth/adapters/sse"
	"uoauth/provisioning"
)

func init() {
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memStore 是記憶體中的 session 儲存
type memStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func (s *memStore) Load(_ context.Context, name string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data[name]), nil
}

func (s *memStore) Save(_ context.Context, name string, data map[string]string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string]map[string]string{}
	}
	s.data[name] = maps.Clone(data)
	return nil
}

func (s *memStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

type failingStore struct{ memStore }

func (s *failingStore) Save(context.Context, string, map[string]string, time.Duration) error {
	return errors.New("redis unavailable")
}

// fakeChannels 記錄每個頻道收到的事件
type fakeChannels struct {
	mu     sync.Mutex
	events map[string][]sse.Event
}

func (f *fakeChannels) Start() {}
func (f *fakeChannels) Done()  {}

func (f *fakeChannels) Subscribe(string) (<-chan sse.Event, error) {
	return make(chan sse.Event), nil
}

func (f *fakeChannels) Publish(channel string, event sse.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events == nil {
		f.events = map[string][]sse.Event{}
	}
	f.events[channel] = append(f.events[channel], event)
	return nil
}

func (f *fakeChannels) Unsubscribe(string, <-chan sse.Event) {}

// take 取出並清空頻道的事件
func (f *fakeChannels) take(channel string) []sse.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.events[channel]
	delete(f.events, channel)
	return events
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []provisioning.Job
}

func (q *fakeQueue) Start() error { return nil }
func (q *fakeQueue) Close() error { return nil }

func (q *fakeQueue) Enqueue(_ context.Context, job provisioning.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Jobs() []provisioning.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]provisioning.Job(nil), q.jobs...)
}

type fixture struct {
	controller   *Controller
	correlations *correlation.MemoryStore
	channels     *fakeChannels
	records      *records.Store
	queue        *fakeQueue
	sessions     *memStore
}

func setup(t *testing.T, opts ...ControllerOption) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, records.Migrate(db))

	f := &fixture{
		correlations: correlation.NewMemoryStore(time.Minute),
		channels:     &fakeChannels{},
		records:      records.NewStore(db),
		queue:        &fakeQueue{},
		sessions:     &memStore{},
	}
	t.Cleanup(f.correlations.Close)
	f.controller = NewController(f.correlations, f.channels, f.records, f.queue, opts...)
	return f
}

func (f *fixture) session(t *testing.T, token string) session.ISession {
	t.Helper()
	sess := session.NewSession(context.Background(), token, f.sessions, 0)
	require.NoError(t, sess.Load())
	return sess
}

func discordIdentity() session.Identity {
	return session.Identity{Username: "Alpha", PrimaryAccountID: "80351110224678912", PrimaryAccountEmail: "alpha@discord.example"}
}

func forumsIdentity() session.Identity {
	return session.Identity{SecondaryAccountID: "7", SecondaryAccountEmail: "alpha@example.com"}
}

func teamspeakIdentity() session.Identity {
	return session.Identity{TertiaryAccountID: "abc/def=", TertiaryDatabaseID: "42", TertiaryClientIP: "10.0.0.1"}
}

func TestController_FullFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.correlations.Bind(ctx, "token-1", "corr-1"))

	sess := f.session(t, "token-1")
	assert.Equal(t, StateUnstarted, f.controller.Progress(sess).State)

	progress, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(discordIdentity()))
	require.NoError(t, err)
	assert.Equal(t, StatePending, progress.State)
	assert.Equal(t, ProviderForums, progress.Step)
	events := f.channels.take("corr-1")
	require.Len(t, events, 1)
	assert.Equal(t, sse.EventAuthAttempt, events[0].Type)
	assert.JSONEq(t, `{"success":true,"provider":"discord","next":"forums"}`, events[0].Data)

	// 每個請求重新載入 session
	sess = f.session(t, "token-1")
	progress, err = f.controller.HandleProviderCallback(ctx, sess, ProviderForums,
		Success(forumsIdentity(), "Members", "Regulars", "Knitting Club"))
	require.NoError(t, err)
	assert.Equal(t, ProviderTeamSpeak, progress.Step)
	events = f.channels.take("corr-1")
	require.Len(t, events, 2)
	assert.Equal(t, sse.EventGroupTransfers, events[0].Type)
	assert.JSONEq(t, `{"will":["Members","Regulars"],"wont":["Knitting Club"]}`, events[0].Data)
	assert.JSONEq(t, `{"success":true,"provider":"forums","next":"teamspeak"}`, events[1].Data)

	sess = f.session(t, "token-1")
	progress, err = f.controller.HandleProviderCallback(ctx, sess, ProviderTeamSpeak, Success(teamspeakIdentity()))
	require.NoError(t, err)
	assert.Equal(t, StateComplete, progress.State)
	assert.Equal(t, []Provider{ProviderDiscord, ProviderForums, ProviderTeamSpeak}, progress.Completed)
	events = f.channels.take("corr-1")
	require.Len(t, events, 2)
	assert.JSONEq(t, `{"success":true,"provider":"teamspeak","next":null}`, events[0].Data)
	assert.Equal(t, sse.EventAuthComplete, events[1].Type)
	assert.JSONEq(t, `{"username":"Alpha"}`, events[1].Data)

	f.controller.Close()

	record, err := f.records.FindActive(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", record.Username)
	assert.Equal(t, "alpha@example.com", record.Email)
	assert.Equal(t, "80351110224678912", record.PrimaryAccountID)
	assert.Equal(t, uint64(42), record.TertiaryDatabaseID)
	assert.Equal(t, sess.Get(session.KeyAttemptID), record.AttemptID)

	jobs := f.queue.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "7", jobs[0].Record.SecondaryAccountID)
	assert.Nil(t, jobs[0].Prior)
}

func TestController_FailureDoesNotAdvance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.correlations.Bind(ctx, "token-1", "corr-1"))
	sess := f.session(t, "token-1")
	_, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(discordIdentity()))
	require.NoError(t, err)
	f.channels.take("corr-1")

	progress, err := f.controller.HandleProviderCallback(ctx, sess, ProviderForums, Failed(errors.New("not found")))
	require.NoError(t, err)
	assert.Equal(t, ProviderForums, progress.Step)
	assert.Empty(t, sess.Get(session.KeySecondaryAccountID))

	events := f.channels.take("corr-1")
	require.Len(t, events, 1)
	assert.Equal(t, sse.EventAuthAttempt, events[0].Type)
	assert.JSONEq(t, `{"success":false,"provider":"forums","next":null}`, events[0].Data)
}

func TestController_FailedStepSurvivesReload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sess := f.session(t, "token-1")
	_, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(discordIdentity()))
	require.NoError(t, err)

	progress, err := f.controller.HandleProviderCallback(ctx, sess, ProviderForums, Failed(errors.New("not found")))
	require.NoError(t, err)
	assert.Equal(t, ProviderForums, progress.Failed)

	// 重新載入 session 後仍是同一個結果
	reloaded := f.session(t, "token-1")
	assert.Equal(t, Progress{
		State:     StatePending,
		Step:      ProviderForums,
		Completed: []Provider{ProviderDiscord},
		Username:  "Alpha",
		Failed:    ProviderForums,
	}, f.controller.Progress(reloaded))

	progress, err = f.controller.HandleProviderCallback(ctx, reloaded, ProviderForums, Success(forumsIdentity()))
	require.NoError(t, err)
	assert.Empty(t, progress.Failed)
	assert.Empty(t, f.session(t, "token-1").Get(session.KeyFailedStep))
}

func TestController_ErrorEmitsAuthError(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.correlations.Bind(ctx, "token-1", "corr-1"))
	sess := f.session(t, "token-1")

	progress, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Errored(errors.New("timeout")))
	require.NoError(t, err)
	assert.Equal(t, StateUnstarted, progress.State)

	events := f.channels.take("corr-1")
	require.Len(t, events, 2)
	assert.Equal(t, sse.EventAuthError, events[0].Type)
	assert.Contains(t, events[0].Data, "discord")
	assert.NotContains(t, events[0].Data, "timeout")
	assert.Equal(t, sse.EventAuthAttempt, events[1].Type)
	assert.JSONEq(t, `{"success":false,"provider":"discord","next":null}`, events[1].Data)
}

func TestController_StepOutOfOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.correlations.Bind(ctx, "token-1", "corr-1"))
	sess := f.session(t, "token-1")

	progress, err := f.controller.HandleProviderCallback(ctx, sess, ProviderTeamSpeak, Success(teamspeakIdentity()))
	assert.ErrorIs(t, err, ErrStepOutOfOrder)
	assert.Equal(t, StateUnstarted, progress.State)
	assert.Empty(t, sess.Get(session.KeyTertiaryAccountID))

	events := f.channels.take("corr-1")
	require.Len(t, events, 2)
	assert.Equal(t, sse.EventAuthError, events[0].Type)
	assert.JSONEq(t, `{"success":false,"provider":"teamspeak","next":null}`, events[1].Data)

	f.controller.Close()
	assert.Empty(t, f.queue.Jobs())
}

func TestController_IdentityConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sess := f.session(t, "token-1")
	_, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(discordIdentity()))
	require.NoError(t, err)

	other := discordIdentity()
	other.PrimaryAccountID = "1"
	_, err = f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(other))
	assert.ErrorIs(t, err, session.ErrIdentityConflict)
	assert.Equal(t, "80351110224678912", sess.Get(session.KeyPrimaryAccountID))
}

func TestController_SessionSaveFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sess := session.NewSession(ctx, "token-1", &failingStore{}, 0)
	require.NoError(t, sess.Load())

	_, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(discordIdentity()))
	require.Error(t, err)
}

func TestController_EmitWithoutBinding(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sess := f.session(t, "token-1")

	progress, err := f.controller.HandleProviderCallback(ctx, sess, ProviderDiscord, Success(discordIdentity()))
	require.NoError(t, err)
	assert.Equal(t, ProviderForums, progress.Step)
	assert.Empty(t, f.channels.events)
}

func TestController_UnknownProvider(t *testing.T) {
	f := setup(t)
	_, err := f.controller.HandleProviderCallback(context.Background(), f.session(t, "token-1"), Provider("steam"), Success(session.Identity{}))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func completeIdentity(attempt string) session.Identity {
	identity := discordIdentity()
	identity.AttemptID = attempt
	identity.SecondaryAccountID = "7"
	identity.SecondaryAccountEmail = "alpha@example.com"
	identity.TertiaryAccountID = "abc/def="
	identity.TertiaryDatabaseID = "42"
	identity.TertiaryClientIP = "10.0.0.1"
	return identity
}

func TestController_Finalize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.controller.Finalize(ctx, completeIdentity("attempt-1"))
	require.NoError(t, err)
	assert.False(t, first.HadPrevious)
	assert.False(t, first.Duplicate)
	assert.Nil(t, first.Prior)

	// 同一次驗證重複寫入
	again, err := f.controller.Finalize(ctx, completeIdentity("attempt-1"))
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.False(t, again.HadPrevious)
	assert.Equal(t, first.Record.ID, again.Record.ID)
	assert.Len(t, f.queue.Jobs(), 1)

	// 新的驗證取代舊紀錄
	second, err := f.controller.Finalize(ctx, completeIdentity("attempt-2"))
	require.NoError(t, err)
	assert.True(t, second.HadPrevious)
	require.NotNil(t, second.Prior)
	assert.Equal(t, "attempt-1", second.Prior.AttemptID)

	active, err := f.records.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "attempt-2", active[0].AttemptID)
	history, err := f.records.ListHistory(ctx, "7")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "attempt-1", history[0].AttemptID)

	jobs := f.queue.Jobs()
	require.Len(t, jobs, 2)
	require.NotNil(t, jobs[1].Prior)
	assert.Equal(t, "attempt-1", jobs[1].Prior.AttemptID)

	// 重複送出已被取代後的驗證仍回報先前有紀錄
	again, err = f.controller.Finalize(ctx, completeIdentity("attempt-2"))
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.True(t, again.HadPrevious)
}

func TestController_FinalizeIncomplete(t *testing.T) {
	f := setup(t)
	identity := completeIdentity("attempt-1")
	identity.TertiaryAccountID = ""
	_, err := f.controller.Finalize(context.Background(), identity)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = f.controller.Finalize(context.Background(), completeIdentity(""))
	assert.ErrorIs(t, err, ErrIncomplete)

	identity = completeIdentity("attempt-1")
	identity.TertiaryDatabaseID = "not-a-number"
	_, err = f.controller.Finalize(context.Background(), identity)
	require.Error(t, err)
	assert.Empty(t, f.queue.Jobs())
}

func TestController_FinalizeWithLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := setup(t, WithLocker(redis.NewLocker(client, "uoauth:lock:", redis.WithAutoRenewMutexRetryDelay(10*time.Millisecond))))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*FinalizeResult, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.controller.Finalize(ctx, completeIdentity("attempt-1"))
			assert.NoError(t, err)
			results[i] = result
		}()
	}
	wg.Wait()

	created := 0
	for _, result := range results {
		if result != nil && !result.Duplicate {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.Len(t, f.queue.Jobs(), 1)
	// 鎖已釋放
	assert.Empty(t, mr.Keys())
}
