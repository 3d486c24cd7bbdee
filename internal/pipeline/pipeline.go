package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/crimson-sun/authwatch/internal/connector"
	"github.com/crimson-sun/authwatch/internal/model"
)

// Processor classifies raw log lines.
type Processor interface {
	Process(raw model.RawLog) (model.Event, error)
	ProcessBatch(raws []model.RawLog) ([]model.Event, error)
}

// Dispatcher acts on classified events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.Event)
	Close() error
}

// Pipeline connects a connector, a processor and a dispatcher.
type Pipeline struct {
	connector   connector.Connector
	processor   Processor
	dispatcher  Dispatcher
	skippedLogs atomic.Int64
}

// Summary reports the outcome of a one-shot Query.
type Summary struct {
	Lines   int
	Alerts  int
	Skipped int
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, proc Processor, d Dispatcher) *Pipeline {
	return &Pipeline{
		connector:  conn,
		processor:  proc,
		dispatcher: d,
	}
}

// Stream follows the connector and handles each line in arrival order.
// A line that fails to classify or dispatch is logged and skipped.
// Returns nil when the source ends and ctx.Err() when ctx is cancelled.
func (p *Pipeline) Stream(ctx context.Context, cfg connector.ConnectorConfig) error {
	ch, err := p.connector.Stream(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.handle(ctx, raw)
		}
	}
}

// Query runs the pipeline once over historical lines.
func (p *Pipeline) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) (Summary, error) {
	raws, err := p.connector.Query(ctx, cfg, params)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline query: %w", err)
	}

	sum := Summary{Lines: len(raws)}
	events, err := p.processor.ProcessBatch(raws)
	if err != nil || len(events) != len(raws) {
		slog.Debug("batch classification failed, falling back to per-line", "error", err)
		events = events[:0]
		for _, raw := range raws {
			ev, err := p.processor.Process(raw)
			if err != nil {
				p.skip(raw, err)
				sum.Skipped++
				continue
			}
			events = append(events, ev)
		}
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if ev.AlertWorthy {
			sum.Alerts++
		}
		p.dispatch(ctx, ev)
	}
	return sum, nil
}

// Close reports skipped lines and closes the dispatcher.
func (p *Pipeline) Close() error {
	if n := p.skippedLogs.Load(); n > 0 {
		slog.Info("pipeline closed", "skipped_logs", n)
	}
	return p.dispatcher.Close()
}

// Skipped returns how many lines could not be handled.
func (p *Pipeline) Skipped() int64 {
	return p.skippedLogs.Load()
}

func (p *Pipeline) handle(ctx context.Context, raw model.RawLog) {
	ev, err := p.processor.Process(raw)
	if err != nil {
		p.skip(raw, err)
		return
	}
	p.dispatch(ctx, ev)
}

func (p *Pipeline) dispatch(ctx context.Context, ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.skippedLogs.Add(1)
			slog.Error("dispatch panicked", "panic", r, "raw", ev.Raw)
		}
	}()
	p.dispatcher.Dispatch(ctx, ev)
}

func (p *Pipeline) skip(raw model.RawLog, err error) {
	p.skippedLogs.Add(1)
	slog.Warn("skipping log line", "source", raw.Source, "error", err)
}
