// Package dispatch turns alert-worthy classifications into alerts and routes
// them to the console, the audit sink and the notification channels.
package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/crimson-sun/authwatch/internal/model"
	"github.com/crimson-sun/authwatch/internal/output"
	"github.com/crimson-sun/authwatch/internal/telemetry"
)

// Console echoes alerts and informational events for an operator.
type Console interface {
	Write(ctx context.Context, alert model.Alert) error
	Info(ev model.Event) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConsole sets the console echo. Default: none.
func WithConsole(c Console) Option {
	return func(d *Dispatcher) { d.console = c }
}

// WithAudit sets the audit sink. Default: none.
func WithAudit(s output.Sink) Option {
	return func(d *Dispatcher) { d.audit = s }
}

// WithNotifier sets the notifier that fans alerts out to external channels.
// Default: none.
func WithNotifier(n output.Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithClock overrides the alert timestamp source. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// deliverer reports a per-channel outcome for a fan-out; multi.Multi is one.
type deliverer interface {
	Deliver(ctx context.Context, title, body string) []output.Outcome
}

// Dispatcher delivers each alert to every configured destination.
// Destination failures are logged and counted, never returned.
type Dispatcher struct {
	console  Console
	audit    output.Sink
	notifier output.Notifier
	now      func() time.Time
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one classified event. Informational events are echoed to
// the console. For alert-worthy events the alert is echoed, appended to the
// audit sink and then handed to the notifier; the audit append happens
// before and regardless of any channel delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.Event) {
	alert, ok := model.NewAlert(ev, d.now())
	if !ok {
		if d.console != nil {
			if err := d.console.Info(ev); err != nil {
				slog.Warn("console echo failed", "error", err)
			}
		}
		return
	}

	telemetry.AlertsDispatched.WithLabelValues(alert.Title).Inc()
	slog.Debug("alert", "id", alert.ID, "title", alert.Title, "kind", ev.Kind.String())

	if d.console != nil {
		if err := d.console.Write(ctx, alert); err != nil {
			slog.Warn("console echo failed", "id", alert.ID, "error", err)
		}
	}

	if d.audit != nil {
		if err := d.audit.Write(ctx, alert); err != nil {
			telemetry.AuditErrors.Inc()
			slog.Error("audit write failed", "id", alert.ID, "title", alert.Title, "error", err)
		}
	}

	if d.notifier != nil {
		d.notify(ctx, alert)
	}
}

func (d *Dispatcher) notify(ctx context.Context, alert model.Alert) {
	dl, ok := d.notifier.(deliverer)
	if !ok {
		if err := d.notifier.Send(ctx, alert.Title, alert.Body); err != nil {
			slog.Debug("alert fan-out incomplete", "id", alert.ID, "error", err)
		}
		return
	}
	for _, o := range dl.Deliver(ctx, alert.Title, alert.Body) {
		switch {
		case o.Skipped:
			telemetry.Deliveries.WithLabelValues(o.Channel, telemetry.ResultSkipped).Inc()
		case o.Err != nil:
			slog.Debug("alert not handed to channel", "id", alert.ID, "channel", o.Channel, "error", o.Err)
		}
	}
}

// Close flushes the notifier (if it buffers) and closes the audit sink.
func (d *Dispatcher) Close() error {
	var errs []error
	if c, ok := d.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.audit != nil {
		if err := d.audit.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
