package dispatch

import (
	"log/slog"

	"github.com/crimson-sun/authwatch/internal/output"
	"github.com/crimson-sun/authwatch/internal/output/async"
	"github.com/crimson-sun/authwatch/internal/output/multi"
	"github.com/crimson-sun/authwatch/internal/telemetry"
)

// Queue gives n its own delivery queue and workers. Deliveries are observed
// (see Observe); alerts dropped on a full queue count as "dropped".
func Queue(n output.Notifier, opts ...async.Option) *async.Async {
	name := n.Name()
	base := []async.Option{
		// failures were already logged and counted by Observe
		async.WithOnError(func(err error) {
			slog.Debug("queued notification failed", "channel", name, "error", err)
		}),
		async.WithOnDrop(func(string) {
			telemetry.Deliveries.WithLabelValues(name, telemetry.ResultDropped).Inc()
		}),
	}
	return async.New(Observe(n), append(base, opts...)...)
}

// Fanout queues every channel separately and fans alerts out over the
// queues, so a slow channel only ever backs up its own queue.
func Fanout(channels []output.Notifier, opts ...async.Option) *multi.Multi {
	queues := make([]output.Notifier, len(channels))
	for i, n := range channels {
		queues[i] = Queue(n, opts...)
	}
	return multi.New(queues...)
}
