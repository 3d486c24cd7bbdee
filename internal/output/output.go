package output

import (
	"context"
	"time"

	"github.com/crimson-sun/authwatch/internal/model"
)

// Sink defines the interface for local alert destinations (audit log, console).
type Sink interface {
	Write(ctx context.Context, alert model.Alert) error
	Close() error
}

// Notifier delivers an alert over one external channel.
// A notifier with incomplete configuration is disabled: Send returns nil
// without performing any I/O.
type Notifier interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, title, body string) error
}

// Outcome is the result of one delivery attempt on one channel.
type Outcome struct {
	Channel string
	Skipped bool // channel disabled, nothing sent
	Err     error
	Elapsed time.Duration
}

// OK reports whether the delivery succeeded or was skipped.
func (o Outcome) OK() bool { return o.Err == nil }
