package telegram

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/crimson-sun/authwatch/internal/output"
	"github.com/crimson-sun/authwatch/internal/output/httpclient"
)

// Name is the channel name used in logs and metrics.
const Name = "telegram"

// DefaultAPIBase is the Bot API root.
const DefaultAPIBase = "https://api.telegram.org"

// Option configures a telegram Notifier.
type Option func(*Notifier)

// WithAPIBase overrides the Bot API root URL.
func WithAPIBase(base string) Option {
	return func(n *Notifier) { n.apiBase = strings.TrimRight(base, "/") }
}

// WithClient overrides the HTTP client.
func WithClient(c *httpclient.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// Notifier sends alerts through a chat bot's sendMessage method.
type Notifier struct {
	token   string
	chatID  string
	apiBase string
	client  *httpclient.Client
}

// New creates a bot notifier. It is disabled unless both token and chatID are set.
func New(token, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		token:   token,
		chatID:  chatID,
		apiBase: DefaultAPIBase,
		client:  httpclient.New(httpclient.WithTimeout(httpclient.DefaultTimeout)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Name() string { return Name }

func (n *Notifier) Enabled() bool { return n.token != "" && n.chatID != "" }

// Send posts chat_id and text as form data. Disabled notifiers return nil without I/O.
func (n *Notifier) Send(ctx context.Context, title, body string) error {
	if !n.Enabled() {
		return nil
	}
	form := url.Values{
		"chat_id": {n.chatID},
		"text":    {output.Message(title, body)},
	}
	if err := n.client.PostForm(ctx, n.endpoint(), form); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

func (n *Notifier) endpoint() string {
	return n.apiBase + "/bot" + n.token + "/sendMessage"
}
