package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Name is the channel name used in logs and metrics.
const Name = "email"

const (
	// DefaultAddr is the outbound relay used when none is configured.
	DefaultAddr    = "smtp.gmail.com:587"
	defaultTimeout = 15 * time.Second
)

// Config holds SMTP credentials and envelope addresses.
type Config struct {
	Addr     string // host:port, defaults to DefaultAddr
	Username string
	Password string
	From     string
	To       string
}

// Complete reports whether every credential and address is present.
func (c Config) Complete() bool {
	return c.Username != "" && c.Password != "" && c.From != "" && c.To != ""
}

// Option configures an email Notifier.
type Option func(*Notifier)

// WithTimeout bounds the whole SMTP session. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) { n.timeout = d }
}

// WithTLSConfig sets the TLS configuration used for STARTTLS.
// ServerName defaults to the relay host.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(n *Notifier) { n.tlsConfig = cfg }
}

// Notifier sends plain-text alert mails over an authenticated STARTTLS session.
type Notifier struct {
	cfg       Config
	host      string
	timeout   time.Duration
	tlsConfig *tls.Config
	now       func() time.Time
}

// New creates an email notifier. Incomplete configuration disables it.
func New(cfg Config, opts ...Option) *Notifier {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		host = cfg.Addr
	}
	n := &Notifier{
		cfg:     cfg,
		host:    host,
		timeout: defaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Name() string { return Name }

func (n *Notifier) Enabled() bool { return n.cfg.Complete() }

// Send mails title as the subject and body as the text. Disabled notifiers
// return nil without I/O.
func (n *Notifier) Send(ctx context.Context, title, body string) error {
	if !n.Enabled() {
		return nil
	}
	if err := n.deliver(ctx, n.compose(title, body)); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

func (n *Notifier) deliver(ctx context.Context, msg []byte) error {
	deadline := time.Now().Add(n.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", n.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", n.cfg.Addr, err)
	}
	conn.SetDeadline(deadline)

	// Unblock the session if ctx is cancelled mid-conversation.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("greeting: %w", err)
	}
	defer c.Close()

	if err := c.StartTLS(n.tls()); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := c.Auth(smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(n.cfg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	return c.Quit()
}

func (n *Notifier) tls() *tls.Config {
	if n.tlsConfig == nil {
		return &tls.Config{ServerName: n.host, MinVersion: tls.VersionTLS12}
	}
	cfg := n.tlsConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = n.host
	}
	return cfg
}

// compose builds an RFC 5322 plain-text message with CRLF line endings.
func (n *Notifier) compose(title, body string) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", n.cfg.From)
	header("To", n.cfg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", oneLine(title)))
	header("Date", n.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
