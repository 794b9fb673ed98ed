// Package teamspeak 是 TeamSpeak 3 ServerQuery 的 client。
// 每次呼叫都建立新的連線並重新登入，連線之間不共享任何狀態。
package teamspeak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	ts3 "github.com/multiplay/go-ts3"
)

const DefaultTimeout = 10 * time.Second

// ClientInfo 是 clientinfo 指令回傳的連線使用者資料
type ClientInfo struct {
	ClientID         string
	Nickname         string
	UniqueIdentifier string
	DatabaseID       uint64
	IP               string
}

// ServerGroup 是 TeamSpeak 的伺服器群組
type ServerGroup struct {
	ID   uint64
	Name string
}

type Client struct {
	addr     string
	username string
	password string
	serverID int
	timeout  time.Duration
	logger   *slog.Logger
}

type ClientOption func(*Client)

// WithServerID 設置 use 指令的 virtual server id，預設為 1
func WithServerID(id int) ClientOption {
	return func(c *Client) {
		c.serverID = id
	}
}

// WithTimeout 設置連線與每個指令的時間上限
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient 建立 ServerQuery client，addr 例如 ts3.example.com:10011。
// username 為空時不送出 login 指令。
func NewClient(addr, username, password string, opts ...ClientOption) *Client {
	c := &Client{
		addr:     addr,
		username: username,
		password: password,
		serverID: 1,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("caller", "teamspeak.Client"))
	return c
}

// Send 執行單一指令並回傳解析後的資料。
// 流程為 連線 → banner → login → use → 指令 → quit。
// go-ts3 的呼叫不接受 ctx，因此每一步之前檢查 ctx，並以 ctx 的 deadline 縮短逾時。
func (c *Client) Send(ctx context.Context, cmd string, args map[string]string) ([]map[string]string, error) {
	const op = "teamspeak.Send"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("[%s] err=%w", op, err)
	}
	timeout := c.timeout
	if d, ok := ctx.Deadline(); ok && time.Until(d) < timeout {
		timeout = time.Until(d)
	}
	client, err := ts3.NewClient(c.addr, ts3.Timeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to %s, err=%w", op, c.addr, err)
	}
	defer func() {
		// Close 會送出 quit
		if err := client.Close(); err != nil {
			c.logger.Debug("fail to close serverquery connection", slog.Any("error", err))
		}
	}()

	exec := func(command *ts3.Cmd) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := client.ExecCmd(command)
		return lines, toQueryError(err)
	}
	if c.username != "" {
		login := ts3.NewCmd("login").WithArgs(
			ts3.NewArg("client_login_name", c.username),
			ts3.NewArg("client_login_password", c.password),
		)
		if _, err := exec(login); err != nil {
			return nil, fmt.Errorf("[%s] Fail to login, err=%w", op, err)
		}
	}
	if _, err := exec(ts3.NewCmd("use").WithArgs(ts3.NewArg("sid", c.serverID))); err != nil {
		return nil, fmt.Errorf("[%s] Fail to select server, err=%w", op, err)
	}

	lines, err := exec(newCmd(cmd, args))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to execute %s, err=%w", op, cmd, err)
	}
	var records []map[string]string
	for _, line := range lines {
		records = append(records, parseRecords(line)...)
	}
	return records, nil
}

// newCmd 組成指令，參數依 key 排序
func newCmd(cmd string, args map[string]string) *ts3.Cmd {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmdArgs := make([]ts3.CmdArg, 0, len(keys))
	for _, k := range keys {
		cmdArgs = append(cmdArgs, ts3.NewArg(k, args[k]))
	}
	return ts3.NewCmd(cmd).WithArgs(cmdArgs...)
}

// FindClient 以暱稱尋找目前在線的使用者並取得其資料。
// clientfind 是模糊比對，只接受暱稱完全相同且唯一的結果。
func (c *Client) FindClient(ctx context.Context, nickname string) (*ClientInfo, error) {
	const op = "teamspeak.FindClient"

	found, err := c.Send(ctx, "clientfind", map[string]string{"pattern": nickname})
	if err != nil {
		return nil, fmt.Errorf("[%s] nickname=%s, err=%w", op, nickname, err)
	}
	var matches []string
	for _, record := range found {
		if record["client_nickname"] == nickname && record["clid"] != "" {
			matches = append(matches, record["clid"])
		}
	}
	if len(matches) != 1 {
		if len(matches) > 1 {
			c.logger.Warn("ambiguous nickname", slog.String("nickname", nickname), slog.Int("matches", len(matches)))
		}
		return nil, ErrNotFound
	}
	clid := matches[0]

	infos, err := c.Send(ctx, "clientinfo", map[string]string{"clid": clid})
	if err != nil {
		return nil, fmt.Errorf("[%s] clid=%s, err=%w", op, clid, err)
	}
	if len(infos) == 0 {
		return nil, ErrNotFound
	}
	info := infos[0]
	databaseID, err := strconv.ParseUint(info["client_database_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse client_database_id, err=%w", op, err)
	}
	return &ClientInfo{
		ClientID:         clid,
		Nickname:         info["client_nickname"],
		UniqueIdentifier: info["client_unique_identifier"],
		DatabaseID:       databaseID,
		IP:               info["connection_client_ip"],
	}, nil
}

// ServerGroupsByClientID 取得使用者目前所屬的伺服器群組
func (c *Client) ServerGroupsByClientID(ctx context.Context, databaseID uint64) ([]ServerGroup, error) {
	const op = "teamspeak.ServerGroupsByClientID"

	records, err := c.Send(ctx, "servergroupsbyclientid", map[string]string{
		"cldbid": strconv.FormatUint(databaseID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] cldbid=%d, err=%w", op, databaseID, err)
	}
	groups := make([]ServerGroup, 0, len(records))
	for _, record := range records {
		sgid, err := strconv.ParseUint(record["sgid"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to parse sgid=%q, err=%w", op, record["sgid"], err)
		}
		groups = append(groups, ServerGroup{ID: sgid, Name: record["name"]})
	}
	return groups, nil
}

// Assign 依序將使用者加入伺服器群組，單一群組失敗不影響其他群組
func (c *Client) Assign(ctx context.Context, groupIDs []uint64, databaseID uint64) error {
	var errs []error
	for _, sgid := range groupIDs {
		_, err := c.Send(ctx, "servergroupaddclient", map[string]string{
			"sgid":   strconv.FormatUint(sgid, 10),
			"cldbid": strconv.FormatUint(databaseID, 10),
		})
		if err != nil {
			c.logger.Warn("fail to assign server group",
				slog.Uint64("sgid", sgid),
				slog.Uint64("cldbid", databaseID),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Revoke 移除使用者所有的伺服器群組，單一群組失敗不影響其他群組
func (c *Client) Revoke(ctx context.Context, databaseID uint64) error {
	const op = "teamspeak.Revoke"

	groups, err := c.ServerGroupsByClientID(ctx, databaseID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[%s] Fail to list server groups, err=%w", op, err)
	}

	var errs []error
	for _, group := range groups {
		_, err := c.Send(ctx, "servergroupdelclient", map[string]string{
			"sgid":   strconv.FormatUint(group.ID, 10),
			"cldbid": strconv.FormatUint(databaseID, 10),
		})
		if err != nil {
			c.logger.Warn("fail to revoke server group",
				slog.Uint64("sgid", group.ID),
				slog.Uint64("cldbid", databaseID),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
