package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimson-sun/authwatch/internal/output"
	"github.com/crimson-sun/authwatch/internal/telemetry"
)

var _ output.Notifier = observed{}

// observed logs and counts every delivery made through a notifier.
type observed struct {
	output.Notifier
}

// Observe wraps n so each Send is logged per channel and counted in
// authwatch_deliveries_total.
func Observe(n output.Notifier) output.Notifier {
	return observed{n}
}

// ObserveAll wraps every notifier with Observe.
func ObserveAll(ns ...output.Notifier) []output.Notifier {
	out := make([]output.Notifier, len(ns))
	for i, n := range ns {
		out[i] = Observe(n)
	}
	return out
}

func (o observed) Send(ctx context.Context, title, body string) (err error) {
	name := o.Name()
	if !o.Enabled() {
		telemetry.Deliveries.WithLabelValues(name, telemetry.ResultSkipped).Inc()
		return nil
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			telemetry.Deliveries.WithLabelValues(name, telemetry.ResultFailed).Inc()
			slog.Error("notification panicked", "channel", name, "title", title, "panic", r)
		}
	}()
	err = o.Notifier.Send(ctx, title, body)
	if err != nil {
		telemetry.Deliveries.WithLabelValues(name, telemetry.ResultFailed).Inc()
		slog.Warn("notification failed", "channel", name, "title", title,
			"elapsed", time.Since(start), "error", err)
		return err
	}
	telemetry.Deliveries.WithLabelValues(name, telemetry.ResultDelivered).Inc()
	slog.Debug("notification delivered", "channel", name, "title", title, "elapsed", time.Since(start))
	return nil
}
