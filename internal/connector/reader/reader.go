// Package reader turns any line-oriented io.Reader (stdin by default) into a
// log source, for piping saved journal output through authwatch.
package reader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/crimson-sun/authwatch/internal/connector"
	"github.com/crimson-sun/authwatch/internal/model"
)

// Name is the provider name the reader connector registers under.
const Name = "stdin"

func init() {
	connector.Register(Name, func() connector.Connector {
		return New(os.Stdin)
	})
}

// Connector reads newline-separated lines from r.
type Connector struct {
	r io.Reader
}

// New creates a Connector over r.
func New(r io.Reader) *Connector {
	return &Connector{r: r}
}

// Stream emits each line of r in order and closes the channel at EOF or
// when ctx is cancelled.
func (c *Connector) Stream(ctx context.Context, _ connector.ConnectorConfig) (<-chan model.RawLog, error) {
	ch := make(chan model.RawLog)
	go func() {
		defer close(ch)
		err := connector.ReadLines(c.r, connector.MaxLineBytes, func(text string, truncated bool) bool {
			select {
			case ch <- line(text, truncated):
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			slog.Warn("input read error", "error", err)
		}
	}()
	return ch, nil
}

// Query reads r to EOF. Lines carry no parsed timestamp, so only
// params.Limit applies: the last Limit lines are kept.
func (c *Connector) Query(ctx context.Context, _ connector.ConnectorConfig, params connector.QueryParams) ([]model.RawLog, error) {
	var logs []model.RawLog
	err := connector.ReadLines(c.r, connector.MaxLineBytes, func(text string, truncated bool) bool {
		if ctx.Err() != nil {
			return false
		}
		logs = append(logs, line(text, truncated))
		return true
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("reader connector: query: %w", err)
	}
	if params.Limit > 0 && len(logs) > params.Limit {
		logs = logs[len(logs)-params.Limit:]
	}
	return logs, nil
}

func line(text string, truncated bool) model.RawLog {
	if truncated {
		slog.Warn("input line truncated", "limit_bytes", connector.MaxLineBytes)
	}
	return model.RawLog{
		Timestamp: time.Now(),
		Source:    Name,
		Raw:       strings.ToValidUTF8(strings.TrimRight(text, "\r"), "�"),
	}
}
