package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// LogMailer only records outgoing mail. It is used when no SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

const defaultSMTPTimeout = 10 * time.Second

// SMTPConfig describes the relay used by SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer delivers messages through an SMTP relay. STARTTLS is used when the
// relay offers it and PLAIN auth when a username is configured.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer net.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &SMTPMailer{cfg: cfg, dialer: net.Dialer{Timeout: cfg.Timeout}}
}

// Send delivers msg. Every SMTP command is bounded by the configured timeout and
// the connection is torn down as soon as ctx is done.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := m.compose(msg, time.Now())
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}

	conn, err := m.dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.cfg.Host, m.cfg.Port))
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := m.deliver(conn, msg.To, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, ctxErr)
		}
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) deliver(conn net.Conn, to string, body []byte) error {
	c := smtp.NewClient(conn)
	defer c.Close()
	c.CommandTimeout = m.cfg.Timeout
	c.SubmissionTimeout = m.cfg.Timeout

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	if m.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)); err != nil {
			return err
		}
	}
	if err := c.SendMail(m.cfg.From, []string{to}, bytes.NewReader(body)); err != nil {
		return err
	}
	return c.Quit()
}

func (m *SMTPMailer) compose(msg Message, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*mail.Address{{Address: m.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, msg.Body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	_ Mailer = (*LogMailer)(nil)
	_ Mailer = (*SMTPMailer)(nil)
)
