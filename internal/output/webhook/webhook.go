package webhook

import (
	"context"
	"fmt"

	"github.com/crimson-sun/authwatch/internal/output"
	"github.com/crimson-sun/authwatch/internal/output/httpclient"
)

// Name is the channel name used in logs and metrics.
const Name = "webhook"

// Option configures a webhook Notifier.
type Option func(*Notifier)

// WithClient overrides the HTTP client.
func WithClient(c *httpclient.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// Notifier posts alerts to a Slack-style incoming webhook as {"text": "..."}.
type Notifier struct {
	url    string
	client *httpclient.Client
}

type payload struct {
	Text string `json:"text"`
}

// New creates a webhook notifier. An empty url disables it.
func New(url string, opts ...Option) *Notifier {
	n := &Notifier{
		url:    url,
		client: httpclient.New(httpclient.WithTimeout(httpclient.DefaultTimeout)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Name() string { return Name }

func (n *Notifier) Enabled() bool { return n.url != "" }

// Send posts the alert once. Disabled notifiers return nil without I/O.
func (n *Notifier) Send(ctx context.Context, title, body string) error {
	if !n.Enabled() {
		return nil
	}
	if err := n.client.PostJSON(ctx, n.url, payload{Text: output.Message(title, body)}); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}
