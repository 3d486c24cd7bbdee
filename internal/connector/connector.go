package connector

import (
	"context"
	"time"

	"github.com/crimson-sun/authwatch/internal/model"
)

// Connector defines the interface all log source connectors must implement.
type Connector interface {
	// Stream starts following the source and sends lines as they arrive, in
	// order. The channel is closed when the source ends or ctx is cancelled.
	Stream(ctx context.Context, cfg ConnectorConfig) (<-chan model.RawLog, error)

	// Query fetches a batch of historical lines matching the given parameters.
	Query(ctx context.Context, cfg ConnectorConfig, params QueryParams) ([]model.RawLog, error)
}

// ConnectorConfig holds source-specific settings.
type ConnectorConfig struct {
	Provider string
	Unit     string // journal unit filter; empty follows the whole journal
	Extra    map[string]string
}

// QueryParams defines filters for historical queries.
// Zero values mean unbounded.
type QueryParams struct {
	Start time.Time
	End   time.Time
	Limit int
}
