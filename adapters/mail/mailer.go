// Package mail 寄送一次性驗證碼信件
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"strconv"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const (
	DefaultSubject  = "Authentication Token"
	DefaultFromName = "United Operations"
	DefaultTimeout  = 15 * time.Second
)

var tokenTemplate = template.Must(template.New("token").Parse(`You have recently requested to confirm your identity with the United Operations community.
<br><br>
Please confirm your identity with this one-time-use token:
<br><br>
<span style="background: #000; color: #b19e71; font-size: 3em;">{{ .Token }}</span>
<br><br>
This token should be entered in the appropriate field of the requesting application, and will expire in {{ .Minutes }} minutes!
<br><br>
- UO Authenticator
`))

// IMailer 定義了寄送驗證碼的操作介面
type IMailer interface {
	SendToken(ctx context.Context, to, token string, ttl time.Duration) error
}

type SMTPMailer struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	fromName    string
	implicitTLS bool
	tlsConfig   *tls.Config
	timeout     time.Duration
	logger      *slog.Logger
}

type SMTPMailerOption func(*SMTPMailer)

// WithAuth 設置 SMTP PLAIN 驗證帳密
func WithAuth(username, password string) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.username = username
		m.password = password
	}
}

// WithImplicitTLS 連線時直接使用 TLS (例如 465 port)，否則在支援時使用 STARTTLS
func WithImplicitTLS(enabled bool) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.implicitTLS = enabled
	}
}

func WithTLSConfig(config *tls.Config) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.tlsConfig = config
	}
}

func WithFromName(name string) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.fromName = name
	}
}

func WithTimeout(d time.Duration) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.timeout = d
	}
}

func WithLogger(logger *slog.Logger) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.logger = logger
	}
}

// NewSMTPMailer 建立 mailer，addr 為 host:port
func NewSMTPMailer(addr, from string, opts ...SMTPMailerOption) (*SMTPMailer, error) {
	const op = "mail.NewSMTPMailer"
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse addr=%s, err=%w", op, addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("[%s] Invalid port in addr=%s, err=%w", op, addr, err)
	}
	m := &SMTPMailer{
		host:     host,
		port:     port,
		from:     from,
		fromName: DefaultFromName,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	// 寄件者在啟動時就檢查，避免到寄信時才失敗
	if err := gomail.NewMsg().FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("[%s] Invalid sender %q, err=%w", op, from, err)
	}
	if m.tlsConfig == nil {
		m.tlsConfig = &tls.Config{ServerName: host}
	}
	m.logger = m.logger.With(slog.String("caller", "mail.SMTPMailer"))
	return m, nil
}

// SendToken 寄送驗證碼給使用者
func (m *SMTPMailer) SendToken(ctx context.Context, to, token string, ttl time.Duration) error {
	const op = "mail.SendToken"

	msg, err := m.buildMessage(to, token, ttl)
	if err != nil {
		return fmt.Errorf("[%s] Fail to build message, err=%w", op, err)
	}
	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("[%s] Fail to create smtp client, err=%w", op, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("[%s] Fail to send message, err=%w", op, err)
	}
	m.logger.Info("token mail sent", slog.String("to", to))
	return nil
}

// buildMessage 建立 HTML 信件，收件者不是單一合法地址時回傳錯誤
func (m *SMTPMailer) buildMessage(to, token string, ttl time.Duration) (*gomail.Msg, error) {
	body, err := renderBody(token, ttl)
	if err != nil {
		return nil, err
	}
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("invalid sender, err=%w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q, err=%w", to, err)
	}
	msg.Subject(DefaultSubject)
	msg.SetDate()
	msg.SetBodyString(gomail.TypeTextHTML, body)
	return msg, nil
}

func renderBody(token string, ttl time.Duration) (string, error) {
	var html bytes.Buffer
	err := tokenTemplate.Execute(&html, map[string]any{
		"Token":   token,
		"Minutes": int(ttl.Minutes()),
	})
	if err != nil {
		return "", err
	}
	return html.String(), nil
}

func (m *SMTPMailer) newClient() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.port),
		gomail.WithTimeout(m.timeout),
		gomail.WithTLSConfig(m.tlsConfig),
	}
	if m.implicitTLS {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.username),
			gomail.WithPassword(m.password),
		)
	}
	return gomail.NewClient(m.host, opts...)
}
