package main

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"uoauth/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("server-id", "", "instance name used as redis consumer name (random when empty)")
	pflag.Bool("worker", true, "run provisioning jobs on this instance")
	pflag.StringSlice("api-keys", nil, "API keys accepted in the X-API-KEY header")
	pflag.Duration("heartbeat-interval", api.DefaultHeartbeatInterval, "")
	pflag.String("log-level", "info", "debug, info, warn or error")

	// discord config
	pflag.String("discord-client-id", "", "")
	pflag.String("discord-client-secret", "", "")
	pflag.String("discord-redirect-url", "http://localhost:8080/auth/discord/callback", "")

	// forums config
	pflag.String("forums-base-url", "", "")
	pflag.String("forums-api-key", "", "")

	// teamspeak config
	pflag.String("teamspeak-addr", "", "ServerQuery address, host:port")
	pflag.String("teamspeak-username", "", "")
	pflag.String("teamspeak-password", "", "")
	pflag.Int("teamspeak-server-id", 1, "")
	pflag.Duration("teamspeak-timeout", 10*time.Second, "")

	// provision config
	pflag.String("provision-mode", api.ProvisionModeStream, "grpc or stream")
	pflag.String("provision-grpc-target", "", "")
	pflag.String("provision-stream", "discord_permissions", "")

	// mail config
	pflag.String("mail-addr", "", "SMTP address, host:port")
	pflag.String("mail-from", "", "")
	pflag.String("mail-from-name", "", "")
	pflag.String("mail-username", "", "")
	pflag.String("mail-password", "", "")
	pflag.Bool("mail-implicit-tls", false, "")

	// session config
	pflag.String("session-key-for-cookie", "session", "")
	pflag.Duration("session-cookie-max-age", time.Hour, "")
	pflag.Bool("session-cookie-secure", true, "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "public", "")
	pflag.Bool("db-auto-migrate", false, "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "uoauth:", "")
	pflag.String("redis-consumer-group", "uoauth-provisioning", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-sse", "uoauth-shared-sse-stream", "")
	pflag.String("redis-stream-key-for-provisioning", "uoauth-provisioning-stream", "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("UOAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	serverID := viper.GetString("server-id")
	if serverID == "" {
		serverID = uuid.NewString()
	}

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		LogLevel:  viper.GetString("log-level"),
		ServerConfig: api.ServerConfig{
			ID:                serverID,
			Worker:            viper.GetBool("worker"),
			APIKeys:           viper.GetStringSlice("api-keys"),
			HeartbeatInterval: viper.GetDuration("heartbeat-interval"),
			Discord: api.DiscordConfig{
				ClientID:     viper.GetString("discord-client-id"),
				ClientSecret: viper.GetString("discord-client-secret"),
				RedirectURL:  viper.GetString("discord-redirect-url"),
			},
			Forums: api.ForumsConfig{
				BaseURL: viper.GetString("forums-base-url"),
				APIKey:  viper.GetString("forums-api-key"),
			},
			TeamSpeak: api.TeamSpeakConfig{
				Addr:     viper.GetString("teamspeak-addr"),
				Username: viper.GetString("teamspeak-username"),
				Password: viper.GetString("teamspeak-password"),
				ServerID: viper.GetInt("teamspeak-server-id"),
				Timeout:  viper.GetDuration("teamspeak-timeout"),
			},
			Provision: api.ProvisionConfig{
				Mode:       viper.GetString("provision-mode"),
				GRPCTarget: viper.GetString("provision-grpc-target"),
				Stream:     viper.GetString("provision-stream"),
			},
			Mail: api.MailConfig{
				Addr:        viper.GetString("mail-addr"),
				From:        viper.GetString("mail-from"),
				FromName:    viper.GetString("mail-from-name"),
				Username:    viper.GetString("mail-username"),
				Password:    viper.GetString("mail-password"),
				ImplicitTLS: viper.GetBool("mail-implicit-tls"),
			},
			Session: api.SessionConfig{
				KeyForCookie: viper.GetString("session-key-for-cookie"),
				CookieMaxAge: viper.GetDuration("session-cookie-max-age"),
				CookieSecure: viper.GetBool("session-cookie-secure"),
			},
			DB: api.DBConfig{
				User:        viper.GetString("db-user"),
				Password:    viper.GetString("db-password"),
				Host:        viper.GetString("db-host"),
				Port:        viper.GetInt("db-port"),
				Database:    viper.GetString("db-database"),
				Schema:      viper.GetString("db-schema"),
				AutoMigrate: viper.GetBool("db-auto-migrate"),
			},
			Redis: api.RedisConfig{
				Addr:          viper.GetString("redis-addr"),
				Password:      viper.GetString("redis-password"),
				DB:            viper.GetInt("redis-db"),
				KeyPrefix:     viper.GetString("redis-key-prefix"),
				ConsumerGroup: viper.GetString("redis-consumer-group"),
				StreamKeys: api.RedisStreamKeys{
					SSE:          viper.GetString("redis-stream-key-for-sse"),
					Provisioning: viper.GetString("redis-stream-key-for-provisioning"),
				},
			},
		},
	}
}

type Args struct {
	ServerURL    string
	LogLevel     string
	ServerConfig api.ServerConfig
}

// Validate 回傳缺少的必要參數
func (args Args) Validate() []string {
	config := args.ServerConfig
	required := map[string]string{
		"server-url":            args.ServerURL,
		"discord-client-id":     config.Discord.ClientID,
		"discord-client-secret": config.Discord.ClientSecret,
		"forums-base-url":       config.Forums.BaseURL,
		"forums-api-key":        config.Forums.APIKey,
		"teamspeak-addr":        config.TeamSpeak.Addr,
		"mail-addr":             config.Mail.Addr,
		"mail-from":             config.Mail.From,
		"db-host":               config.DB.Host,
		"db-database":           config.DB.Database,
		"redis-addr":            config.Redis.Addr,
	}
	if config.Provision.Mode == api.ProvisionModeGRPC {
		required["provision-grpc-target"] = config.Provision.GRPCTarget
	}
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
