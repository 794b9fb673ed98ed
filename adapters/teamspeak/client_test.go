package teamspeak

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	ts3 "github.com/multiplay/go-ts3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type command struct {
	name string
	args map[string]string
}

// fakeServer 模擬 ServerQuery，handler 回傳資料行 (不含 error 行) 與錯誤行
type fakeServer struct {
	listener net.Listener
	handler  func(cmd command) (data string, errLine string)

	mu       sync.Mutex
	commands []command
	conns    int
	wg       sync.WaitGroup
}

func newFakeServer(t *testing.T, handler func(cmd command) (string, string)) *fakeServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{listener: listener, handler: handler}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(func() {
		listener.Close()
		s.wg.Wait()
	})
	return s
}

func (s *fakeServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns++
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	w := bufio.NewWriter(conn)
	w.WriteString("TS3\n\rWelcome to the TeamSpeak 3 ServerQuery interface.\n\r")
	w.Flush()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := parseCommand(strings.TrimSpace(line))
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		switch cmd.name {
		case "quit":
			w.WriteString("error id=0 msg=ok\n\r")
			w.Flush()
			return
		case "login", "use":
			w.WriteString("error id=0 msg=ok\n\r")
		default:
			data, errLine := s.handler(cmd)
			if data != "" {
				w.WriteString(data + "\n\r")
			}
			if errLine == "" {
				errLine = "error id=0 msg=ok"
			}
			w.WriteString(errLine + "\n\r")
		}
		w.Flush()
	}
}

func (s *fakeServer) addr() string {
	return s.listener.Addr().String()
}

// received 回傳除了 login/use/quit 之外收到的指令
func (s *fakeServer) received() []command {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []command
	for _, cmd := range s.commands {
		switch cmd.name {
		case "login", "use", "quit":
		default:
			out = append(out, cmd)
		}
	}
	return out
}

func (s *fakeServer) all() []command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]command(nil), s.commands...)
}

func parseCommand(line string) command {
	fields := strings.Fields(line)
	cmd := command{name: fields[0], args: map[string]string{}}
	for _, field := range fields[1:] {
		k, v, _ := strings.Cut(field, "=")
		cmd.args[k] = unescape(v)
	}
	return cmd
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "a b|c/d\\e\n", unescape(`a\sb\pc\/d\\e\n`))
	// "\\s" 是反斜線加上 s，不是空白
	assert.Equal(t, `\s`, unescape(`\\s`))
}

func TestParseRecords(t *testing.T) {
	records := parseRecords(`clid=1 client_nickname=Alpha|clid=2 client_nickname=Alpha\sBravo`)
	assert.Equal(t, []map[string]string{
		{"clid": "1", "client_nickname": "Alpha"},
		{"clid": "2", "client_nickname": "Alpha Bravo"},
	}, records)
}

func TestToQueryError(t *testing.T) {
	assert.NoError(t, toQueryError(nil))

	err := toQueryError(&ts3.Error{ID: 512, Msg: "invalid clientID"})
	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, 512, queryErr.ID)
	assert.Equal(t, "invalid clientID", queryErr.Msg)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, toQueryError(&ts3.Error{ID: 1281, Msg: "database empty result set"}), ErrNotFound)
	assert.NotErrorIs(t, toQueryError(&ts3.Error{ID: 2568, Msg: "insufficient client permissions"}), ErrNotFound)

	other := errors.New("connection reset")
	assert.Same(t, other, toQueryError(other))
}

func TestClient_SendQueryError(t *testing.T) {
	server := newFakeServer(t, func(cmd command) (string, string) {
		return "", `error id=1281 msg=database\sempty\sresult\sset`
	})
	client := NewClient(server.addr(), "", "")

	_, err := client.Send(context.Background(), "servergroupsbyclientid", map[string]string{"cldbid": "7"})
	assert.ErrorIs(t, err, ErrNotFound)
	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "database empty result set", queryErr.Msg)
}

func TestClient_Send(t *testing.T) {
	server := newFakeServer(t, func(cmd command) (string, string) {
		return "virtualserver_name=UO", ""
	})
	client := NewClient(server.addr(), "serveradmin", "secret pass", WithServerID(3))

	records, err := client.Send(context.Background(), "serverinfo", nil)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"virtualserver_name": "UO"}}, records)

	require.Eventually(t, func() bool { return len(server.all()) == 4 }, time.Second, 10*time.Millisecond)
	cmds := server.all()
	assert.Equal(t, "login", cmds[0].name)
	assert.Equal(t, "serveradmin", cmds[0].args["client_login_name"])
	assert.Equal(t, "secret pass", cmds[0].args["client_login_password"])
	assert.Equal(t, command{name: "use", args: map[string]string{"sid": "3"}}, cmds[1])
	assert.Equal(t, "serverinfo", cmds[2].name)
	assert.Equal(t, "quit", cmds[3].name)
}

func TestClient_SendFreshConnectionPerCall(t *testing.T) {
	server := newFakeServer(t, func(cmd command) (string, string) {
		return "", ""
	})
	client := NewClient(server.addr(), "serveradmin", "secret")

	for range 3 {
		_, err := client.Send(context.Background(), "version", nil)
		require.NoError(t, err)
	}
	server.mu.Lock()
	defer server.mu.Unlock()
	assert.Equal(t, 3, server.conns)
}

func TestClient_SendContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient("127.0.0.1:1", "", "")

	_, err := client.Send(ctx, "version", nil)
	assert.Error(t, err)
}

func TestClient_FindClient(t *testing.T) {
	server := newFakeServer(t, func(cmd command) (string, string) {
		switch cmd.name {
		case "clientfind":
			switch cmd.args["pattern"] {
			case "Alpha":
				return `clid=4 client_nickname=Alpha\sBravo|clid=9 client_nickname=Alpha`, ""
			case "Bravo":
				// 只有模糊比對的結果
				return `clid=4 client_nickname=Alpha\sBravo`, ""
			case "Twin":
				return `clid=5 client_nickname=Twin|clid=6 client_nickname=Twin`, ""
			}
			return "", `error id=512 msg=invalid\sclientID`
		case "clientinfo":
			if cmd.args["clid"] != "9" {
				return "", `error id=512 msg=invalid\sclientID`
			}
			return `client_nickname=Alpha client_unique_identifier=abc\/def= client_database_id=42 connection_client_ip=10.0.0.5`, ""
		}
		return "", "error id=256 msg=command\\snot\\sfound"
	})
	client := NewClient(server.addr(), "serveradmin", "secret")
	ctx := context.Background()

	info, err := client.FindClient(ctx, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, &ClientInfo{
		ClientID:         "9",
		Nickname:         "Alpha",
		UniqueIdentifier: "abc/def=",
		DatabaseID:       42,
		IP:               "10.0.0.5",
	}, info)

	_, err = client.FindClient(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("partial match only", func(t *testing.T) {
		_, err := client.FindClient(ctx, "Bravo")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ambiguous nickname", func(t *testing.T) {
		_, err := client.FindClient(ctx, "Twin")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	// 只有唯一且完全相同的暱稱會進一步查詢 clientinfo
	var infoCalls []string
	for _, cmd := range server.received() {
		if cmd.name == "clientinfo" {
			infoCalls = append(infoCalls, cmd.args["clid"])
		}
	}
	assert.Equal(t, []string{"9"}, infoCalls)
}

func TestClient_AssignContinuesOnError(t *testing.T) {
	server := newFakeServer(t, func(cmd command) (string, string) {
		if cmd.args["sgid"] == "11" {
			return "", `error id=2568 msg=insufficient\sclient\spermissions`
		}
		return "", ""
	})
	client := NewClient(server.addr(), "serveradmin", "secret")

	err := client.Assign(context.Background(), []uint64{90, 11, 86}, 42)
	require.Error(t, err)
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, 2568, queryErr.ID)

	var sgids []string
	for _, cmd := range server.received() {
		assert.Equal(t, "servergroupaddclient", cmd.name)
		assert.Equal(t, "42", cmd.args["cldbid"])
		sgids = append(sgids, cmd.args["sgid"])
	}
	assert.Equal(t, []string{"90", "11", "86"}, sgids)
}

func TestClient_Revoke(t *testing.T) {
	server := newFakeServer(t, func(cmd command) (string, string) {
		switch cmd.name {
		case "servergroupsbyclientid":
			if cmd.args["cldbid"] == "7" {
				return "", `error id=1281 msg=database\sempty\sresult\sset`
			}
			return `name=Members sgid=90 cldbid=42|name=*\sRegulars sgid=86 cldbid=42`, ""
		case "servergroupdelclient":
			return "", ""
		}
		return "", "error id=256 msg=command\\snot\\sfound"
	})
	client := NewClient(server.addr(), "serveradmin", "secret")
	ctx := context.Background()

	groups, err := client.ServerGroupsByClientID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []ServerGroup{{ID: 90, Name: "Members"}, {ID: 86, Name: "* Regulars"}}, groups)

	require.NoError(t, client.Revoke(ctx, 42))
	var deleted []string
	for _, cmd := range server.received() {
		if cmd.name == "servergroupdelclient" {
			deleted = append(deleted, cmd.args["sgid"])
		}
	}
	assert.Equal(t, []string{"90", "86"}, deleted)

	// 沒有任何群組時視為已移除
	assert.NoError(t, client.Revoke(ctx, 7))
}
