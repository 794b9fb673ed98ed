package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"uoauth/adapters/correlation"
	"uoauth/adapters/discord"
	"uoauth/adapters/forums"
	"uoauth/adapters/mail"
	"uoauth/adapters/provision"
	"uoauth/adapters/records"
	redisAdapter "uoauth/adapters/redis"
	"uoauth/adapters/session"
	"uoauth/adapters/sse"
	"uoauth/adapters/teamspeak"
	"uoauth/api/openapi"
	"uoauth/metrics"
	"uoauth/provisioning"
	"uoauth/verification"
)

const DefaultHeartbeatInterval = 30 * time.Second

// IDiscord 定義了 Discord OAuth2 步驟需要的操作
type IDiscord interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, verifier *discord.ExchangeVerifier, code, state string) (*oauth2.Token, error)
	FetchUser(ctx context.Context, token *oauth2.Token) (*discord.User, error)
}

// ITeamSpeak 定義了 TeamSpeak 步驟與查詢伺服器群組需要的操作
type ITeamSpeak interface {
	verification.ITeamSpeak
	ServerGroupsByClientID(ctx context.Context, databaseID uint64) ([]teamspeak.ServerGroup, error)
}

// Dependencies 是 ServerImpl 使用的外部元件
type Dependencies struct {
	Discord      IDiscord
	Forums       verification.IForums
	TeamSpeak    ITeamSpeak
	Mailer       mail.IMailer
	Records      records.IStore
	Correlations correlation.Store
	SSEManager   sse.IConnectionManager[sse.Event]
	SessionStore session.IStore
	Queue        provisioning.IQueue
	Controller   *verification.Controller
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
}

var _ openapi.StrictServerInterface = (*ServerImpl)(nil)

type ServerImpl struct {
	discord      IDiscord
	forums       verification.IForums
	teamspeak    ITeamSpeak
	mailer       mail.IMailer
	records      records.IStore
	correlations correlation.Store
	sseManager   sse.IConnectionManager[sse.Event]
	sessionStore session.IStore
	queue        provisioning.IQueue
	controller   *verification.Controller
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	// closers 在 Close 時依相反順序執行
	closers []func() error

	config ServerConfig
}

// NewServerWithDependencies 以已建立的元件建立 server
func NewServerWithDependencies(config ServerConfig, deps Dependencies) *ServerImpl {
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ServerImpl{
		discord:      deps.Discord,
		forums:       deps.Forums,
		teamspeak:    deps.TeamSpeak,
		mailer:       deps.Mailer,
		records:      deps.Records,
		correlations: deps.Correlations,
		sseManager:   deps.SSEManager,
		sessionStore: deps.SessionStore,
		queue:        deps.Queue,
		controller:   deps.Controller,
		metrics:      deps.Metrics,
		gatherer:     deps.Gatherer,
		logger:       deps.Logger.With(slog.String("caller", "api.ServerImpl")),
		config:       config,
	}
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"
	logger := slog.Default()
	var closers []func() error
	cleanup := func() {
		for _, closer := range slices.Backward(closers) {
			_ = closer()
		}
	}

	// 初始化指標
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry, logger)

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get database handle, err=%w", op, err)
	}
	closers = append(closers, sqlDB.Close)
	if config.DB.AutoMigrate {
		if err := records.Migrate(db); err != nil {
			cleanup()
			return nil, fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
		}
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	closers = append(closers, redisClient.Close)

	// 初始化SSE管理器
	sseOpts := []sse.ManagerOption[sse.Event]{
		sse.WithLogger[sse.Event](logger),
		sse.WithDropHandler[sse.Event](func(_ string, dropped int) {
			m.DroppedEvents.Add(float64(dropped))
		}),
	}
	if config.Redis.StreamKeys.SSE != "" {
		producer, err := redisAdapter.NewProducer[sse.PublishRequest[sse.Event]](redisClient, config.Redis.StreamKeys.SSE,
			redisAdapter.WithProducerLogger[sse.PublishRequest[sse.Event]](logger),
			redisAdapter.WithProducerMaxLen[sse.PublishRequest[sse.Event]](10000),
		)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("[%s] Fail to create sse producer, err=%w", op, err)
		}
		consumer, err := redisAdapter.NewConsumer[sse.PublishRequest[sse.Event]](redisClient, config.Redis.StreamKeys.SSE,
			redisAdapter.WithConsumerLogger[sse.PublishRequest[sse.Event]](logger),
		)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("[%s] Fail to create sse consumer, err=%w", op, err)
		}
		sseOpts = append(sseOpts, sse.WithPublisher[sse.Event](producer), sse.WithSubscriber[sse.Event](consumer))
	}
	sseManager, err := sse.NewConnectionManager[sse.Event](sseOpts...)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("[%s] Fail to create sse connection manager, err=%w", op, err)
	}

	// 初始化Discord角色設定
	var discordProvisioner provision.IProvisioner
	switch config.Provision.Mode {
	case ProvisionModeGRPC:
		discordProvisioner, err = provision.NewGRPCProvisioner(config.Provision.GRPCTarget)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("[%s] Fail to create grpc provisioner, err=%w", op, err)
		}
	case ProvisionModeStream:
		stream := config.Provision.Stream
		if stream == "" {
			stream = provision.DefaultStream
		}
		producer, err := redisAdapter.NewProducer[provision.RoleEvent](redisClient, stream,
			redisAdapter.WithProducerLogger[provision.RoleEvent](logger),
			redisAdapter.WithProducerParseFunc(provision.EncodeRoleEvent),
		)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("[%s] Fail to create role event producer, err=%w", op, err)
		}
		discordProvisioner = provision.NewStreamProvisioner(producer)
	default:
		cleanup()
		return nil, fmt.Errorf("[%s] Unknown provision mode %q", op, config.Provision.Mode)
	}
	closers = append(closers, discordProvisioner.Close)

	// 初始化外部服務
	forumsClient := forums.NewClient(config.Forums.BaseURL, config.Forums.APIKey)
	tsOpts := []teamspeak.ClientOption{teamspeak.WithLogger(logger)}
	if config.TeamSpeak.ServerID > 0 {
		tsOpts = append(tsOpts, teamspeak.WithServerID(config.TeamSpeak.ServerID))
	}
	if config.TeamSpeak.Timeout > 0 {
		tsOpts = append(tsOpts, teamspeak.WithTimeout(config.TeamSpeak.Timeout))
	}
	tsClient := teamspeak.NewClient(config.TeamSpeak.Addr, config.TeamSpeak.Username, config.TeamSpeak.Password, tsOpts...)
	discordProvider := discord.NewProvider(config.Discord.ClientID, config.Discord.ClientSecret, config.Discord.RedirectURL)

	mailOpts := []mail.SMTPMailerOption{mail.WithLogger(logger), mail.WithImplicitTLS(config.Mail.ImplicitTLS)}
	if config.Mail.Username != "" {
		mailOpts = append(mailOpts, mail.WithAuth(config.Mail.Username, config.Mail.Password))
	}
	if config.Mail.FromName != "" {
		mailOpts = append(mailOpts, mail.WithFromName(config.Mail.FromName))
	}
	mailer, err := mail.NewSMTPMailer(config.Mail.Addr, config.Mail.From, mailOpts...)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("[%s] Fail to create mailer, err=%w", op, err)
	}

	// 初始化角色設定佇列
	dispatcher := provisioning.NewDispatcher(forumsClient, discordProvisioner, tsClient,
		provisioning.WithMetrics(m),
		provisioning.WithLogger(logger),
	)
	var queue provisioning.IQueue
	if config.Redis.StreamKeys.Provisioning != "" {
		producer, err := redisAdapter.NewProducer[provisioning.Job](redisClient, config.Redis.StreamKeys.Provisioning,
			redisAdapter.WithProducerLogger[provisioning.Job](logger),
		)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("[%s] Fail to create provisioning producer, err=%w", op, err)
		}
		var consumer redisAdapter.IGroupConsumer[provisioning.Job]
		if config.Worker {
			consumer, err = redisAdapter.NewGroupConsumer[provisioning.Job](
				redisClient,
				config.Redis.StreamKeys.Provisioning,
				config.Redis.ConsumerGroup,
				config.ID,
				redisAdapter.WithGroupConsumerLogger[provisioning.Job](logger),
			)
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("[%s] Fail to create provisioning consumer, err=%w", op, err)
			}
		}
		queue = provisioning.NewStreamQueue(producer, consumer, dispatcher, logger)
	} else {
		queue = provisioning.NewLocalQueue(dispatcher, logger)
	}

	// 初始化狀態儲存與驗證流程
	recordStore := records.NewStore(db)
	correlations, closeCorrelations := newCorrelationStore(config, redisClient)
	closers = append(closers, closeCorrelations)
	sessionStore := redisAdapter.NewStore(redisClient, redisAdapter.WithStorePrefix(config.Redis.KeyPrefix+"session:"))
	controller := verification.NewController(correlations, sseManager, recordStore, queue,
		verification.WithLocker(redisAdapter.NewLocker(redisClient, config.Redis.KeyPrefix+"lock:")),
		verification.WithGroupMap(dispatcher.GroupMap()),
		verification.WithMetrics(m),
		verification.WithLogger(logger),
	)

	impl := NewServerWithDependencies(config, Dependencies{
		Discord:      discordProvider,
		Forums:       forumsClient,
		TeamSpeak:    tsClient,
		Mailer:       mailer,
		Records:      recordStore,
		Correlations: correlations,
		SSEManager:   sseManager,
		SessionStore: sessionStore,
		Queue:        queue,
		Controller:   controller,
		Metrics:      m,
		Gatherer:     registry,
		Logger:       logger,
	})
	impl.closers = closers
	return impl, nil
}

// newCorrelationStore 在多實例 (SSE 經由 redis stream 分發) 時使用 redis，單一實例時使用記憶體
func newCorrelationStore(config ServerConfig, client *redis.Client) (correlation.Store, func() error) {
	if config.Redis.StreamKeys.SSE == "" {
		store := correlation.NewMemoryStore(config.Session.CookieMaxAge)
		return store, func() error {
			store.Close()
			return nil
		}
	}
	store := redisAdapter.NewCorrelationStore(client, config.Redis.KeyPrefix+"correlation:", config.Session.CookieMaxAge)
	return store, func() error { return nil }
}

func (impl *ServerImpl) Start() error {
	const op = "ServerImpl.Start"
	// 啟動sse connection manager
	impl.sseManager.Start()
	// 啟動角色設定佇列
	if err := impl.queue.Start(); err != nil {
		impl.sseManager.Done()
		return fmt.Errorf("[%s] Fail to start provisioning queue, err=%w", op, err)
	}
	impl.logger.Info("server started")
	return nil
}

func (impl *ServerImpl) Close() {
	// 等待背景中的紀錄寫入
	impl.controller.Close()
	// 關閉角色設定佇列 (等待已排入的工作)
	if err := impl.queue.Close(); err != nil {
		impl.logger.Error("fail to close provisioning queue", slog.Any("error", err))
	}
	// 關閉sse connection manager
	impl.sseManager.Done()
	var errs []error
	for _, closer := range slices.Backward(impl.closers) {
		errs = append(errs, closer())
	}
	if err := errors.Join(errs...); err != nil {
		impl.logger.Error("fail to release resources", slog.Any("error", err))
	}
	impl.logger.Info("server closed")
}

// RegisterHandlers 註冊所有路由
func (impl *ServerImpl) RegisterHandlers(router gin.IRouter) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(impl.gatherer, promhttp.HandlerOpts{})))

	// 其他應用程式的瀏覽器會先送出 preflight
	allowCORS := cors.Default()
	router.OPTIONS("/auth/token", allowCORS)

	handler := openapi.NewStrictHandler(impl, nil)
	openapi.RegisterHandlersWithOptions(router, handler, openapi.GinServerOptions{
		Middlewares:  []openapi.MiddlewareFunc{impl.routeMiddleware(allowCORS)},
		ErrorHandler: paramErrorHandler,
	})
}

// routeMiddleware 依照 openapi 的 security 設定選擇 middleware。
// 需要 API key 的路由由其他應用程式呼叫，其餘路由屬於瀏覽器的驗證流程，使用 session。
func (impl *ServerImpl) routeMiddleware(allowCORS gin.HandlerFunc) openapi.MiddlewareFunc {
	sessionMiddleware := impl.SessionMiddleware()
	apiKeyMiddleware := impl.APIKeyMiddleware()
	return func(c *gin.Context) {
		if _, secured := c.Get(openapi.ApiKeyAuthScopes); !secured {
			sessionMiddleware(c)
			return
		}
		allowCORS(c)
		if !c.IsAborted() {
			apiKeyMiddleware(c)
		}
	}
}

func paramErrorHandler(c *gin.Context, err error, statusCode int) {
	c.AbortWithStatusJSON(statusCode, openapi.Error{Error: err.Error()})
}
