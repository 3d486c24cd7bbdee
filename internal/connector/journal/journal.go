// Package journal follows the systemd journal through journalctl.
package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/authwatch/internal/connector"
	"github.com/crimson-sun/authwatch/internal/model"
)

// Name is the provider name the journal connector registers under.
const Name = "journal"

const (
	defaultBinary = "journalctl"
	sinceLayout   = "2006-01-02 15:04:05"
)

func init() {
	connector.Register(Name, func() connector.Connector {
		return New()
	})
}

// Option configures a journal Connector.
type Option func(*Connector)

// WithBinary overrides the journalctl executable.
func WithBinary(path string) Option {
	return func(c *Connector) { c.binary = path }
}

// WithBufferSize sets the capacity of the Stream channel. Default: 64.
func WithBufferSize(n int) Option {
	return func(c *Connector) { c.bufSize = n }
}

// Connector implements connector.Connector over journalctl's short output.
type Connector struct {
	binary  string
	bufSize int
}

// New creates a journal Connector.
func New(opts ...Option) *Connector {
	c := &Connector{binary: defaultBinary, bufSize: 64}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StreamArgs returns the journalctl arguments used to follow the journal.
func StreamArgs(cfg connector.ConnectorConfig) []string {
	args := []string{"-f", "-o", "short"}
	if cfg.Unit != "" {
		args = append(args, "-u", cfg.Unit)
	}
	return args
}

// QueryArgs returns the journalctl arguments for a historical query.
func QueryArgs(cfg connector.ConnectorConfig, params connector.QueryParams) []string {
	args := []string{"-o", "short", "--no-pager"}
	if !params.Start.IsZero() {
		args = append(args, "--since", params.Start.Local().Format(sinceLayout))
	}
	if !params.End.IsZero() {
		args = append(args, "--until", params.End.Local().Format(sinceLayout))
	}
	if params.Limit > 0 {
		args = append(args, "-n", strconv.Itoa(params.Limit))
	}
	if cfg.Unit != "" {
		args = append(args, "-u", cfg.Unit)
	}
	return args
}

// Stream starts journalctl -f and emits its stdout lines in order.
// Cancelling ctx kills the process; the channel is closed once it exits.
func (c *Connector) Stream(ctx context.Context, cfg connector.ConnectorConfig) (<-chan model.RawLog, error) {
	cmd := exec.CommandContext(ctx, c.binary, StreamArgs(cfg)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("journal connector: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("journal connector: start %s: %w", c.binary, err)
	}
	slog.Info("following journal", "binary", c.binary, "unit", cfg.Unit, "pid", cmd.Process.Pid)

	ch := make(chan model.RawLog, c.bufSize)
	go func() {
		defer close(ch)
		if err := scanLines(ctx, stdout, ch); err != nil {
			slog.Warn("journal read error", "error", err)
			// stdout is no longer drained; don't wait on a live follower
			_ = cmd.Process.Kill()
		}
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			slog.Warn("journalctl exited", "error", err)
		}
	}()
	return ch, nil
}

// Query runs journalctl once and returns every line it printed.
func (c *Connector) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) ([]model.RawLog, error) {
	cmd := exec.CommandContext(ctx, c.binary, QueryArgs(cfg, params)...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("journal connector: query: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("journal connector: query: %w", err)
	}

	var logs []model.RawLog
	err = connector.ReadLines(bytes.NewReader(out), connector.MaxLineBytes, func(raw string, truncated bool) bool {
		if line, ok := normalize(raw, truncated); ok {
			logs = append(logs, model.RawLog{Timestamp: time.Now(), Source: Name, Raw: line})
		}
		return true
	})
	if err != nil {
		return logs, fmt.Errorf("journal connector: query: %w", err)
	}
	return logs, nil
}

func scanLines(ctx context.Context, r io.Reader, ch chan<- model.RawLog) error {
	err := connector.ReadLines(r, connector.MaxLineBytes, func(raw string, truncated bool) bool {
		line, ok := normalize(raw, truncated)
		if !ok {
			return true
		}
		select {
		case ch <- model.RawLog{Timestamp: time.Now(), Source: Name, Raw: line}:
			return true
		case <-ctx.Done():
			return false
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// normalize repairs invalid UTF-8 and drops journalctl's own "-- ... --" markers.
func normalize(line string, truncated bool) (string, bool) {
	line = strings.ToValidUTF8(strings.TrimRight(line, "\r"), "�")
	if truncated {
		slog.Warn("journal line truncated", "limit_bytes", connector.MaxLineBytes)
	}
	if strings.HasPrefix(line, "-- ") && strings.HasSuffix(line, " --") {
		slog.Debug("dropping journal marker line", "line", line)
		return "", false
	}
	return line, true
}
