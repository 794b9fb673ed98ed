package api

import "time"

// 佈署模式
const (
	ProvisionModeGRPC   = "grpc"
	ProvisionModeStream = "stream"
)

type ServerConfig struct {
	// ID 是此實例的名稱，作為 consumer group 中的 consumer 名稱
	ID string
	// Worker 表示此實例是否執行角色設定工作
	Worker bool
	// APIKeys 是允許呼叫 /auth/token 與 /users 的 API key
	APIKeys []string
	// HeartbeatInterval 是事件連線沒有事件時送出心跳的間隔
	HeartbeatInterval time.Duration

	Discord   DiscordConfig
	Forums    ForumsConfig
	TeamSpeak TeamSpeakConfig
	Provision ProvisionConfig
	Mail      MailConfig
	Session   SessionConfig
	DB        DBConfig
	Redis     RedisConfig
}

type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type ForumsConfig struct {
	BaseURL string
	APIKey  string
}

type TeamSpeakConfig struct {
	Addr     string
	Username string
	Password string
	ServerID int
	Timeout  time.Duration
}

type ProvisionConfig struct {
	Mode       string
	GRPCTarget string
	Stream     string
}

type MailConfig struct {
	Addr        string
	From        string
	FromName    string
	Username    string
	Password    string
	ImplicitTLS bool
}

type SessionConfig struct {
	KeyForCookie string
	CookieMaxAge time.Duration
	CookieSecure bool
}

type DBConfig struct {
	User        string
	Password    string
	Host        string
	Port        int
	Database    string
	Schema      string
	AutoMigrate bool
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	KeyPrefix     string
	ConsumerGroup string

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	// SSE 為空時事件只在本機廣播
	SSE string
	// Provisioning 為空時角色設定在本機的佇列執行
	Provisioning string
}
