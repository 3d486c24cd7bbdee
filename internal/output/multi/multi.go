package multi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crimson-sun/authwatch/internal/output"
)

// Multi fans out each alert to several notifiers at once.
// Every notifier gets its own attempt; a failing, slow or panicking
// notifier does not affect the others.
type Multi struct {
	notifiers []output.Notifier
}

// New creates a Multi that fans out to the given notifiers.
func New(notifiers ...output.Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Name() string { return "multi" }

// Enabled reports whether at least one wrapped notifier is enabled.
func (m *Multi) Enabled() bool {
	for _, n := range m.notifiers {
		if n.Enabled() {
			return true
		}
	}
	return false
}

// Deliver sends title and body to every notifier concurrently and returns one
// Outcome per notifier, in the order the notifiers were given.
func (m *Multi) Deliver(ctx context.Context, title, body string) []output.Outcome {
	outcomes := make([]output.Outcome, len(m.notifiers))
	if len(m.notifiers) == 0 {
		return outcomes
	}

	p := pool.New().WithMaxGoroutines(len(m.notifiers))
	for i, n := range m.notifiers {
		p.Go(func() {
			outcomes[i] = deliverOne(ctx, n, title, body)
		})
	}
	p.Wait()
	return outcomes
}

// Send delivers to every notifier and joins the failures.
func (m *Multi) Send(ctx context.Context, title, body string) error {
	var errs []error
	for _, o := range m.Deliver(ctx, title, body) {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Channel, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every wrapped notifier that buffers (implements io.Closer),
// concurrently, and joins their errors.
func (m *Multi) Close() error {
	errs := make([]error, len(m.notifiers))
	p := pool.New()
	for i, n := range m.notifiers {
		c, ok := n.(io.Closer)
		if !ok {
			continue
		}
		p.Go(func() {
			if err := c.Close(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", n.Name(), err)
			}
		})
	}
	p.Wait()
	return errors.Join(errs...)
}

func deliverOne(ctx context.Context, n output.Notifier, title, body string) (o output.Outcome) {
	o.Channel = n.Name()
	if !n.Enabled() {
		o.Skipped = true
		return o
	}

	start := time.Now()
	defer func() {
		o.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("panic: %v", r)
		}
	}()
	o.Err = n.Send(ctx, title, body)
	return o
}
