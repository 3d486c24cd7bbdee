package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/authwatch/internal/connector"
)

// scanTimeLayouts are accepted by --since and --until.
var scanTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (a *app) newScanCmd() *cobra.Command {
	var (
		since, until string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Classify historical journal lines once and alert on matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := queryParams(since, until, limit, time.Now())
			if err != nil {
				return err
			}

			m, err := assemble(a.cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			sum, err := m.pipeline.Query(cmd.Context(), m.connCfg, params)
			if closeErr := m.pipeline.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "scanned %d lines: %d alerts, %d skipped\n", sum.Lines, sum.Alerts, sum.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "start time (RFC3339, \"2006-01-02 15:04:05\", or a duration such as 1h)")
	cmd.Flags().StringVar(&until, "until", "", "end time, same formats as --since")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "only the most recent N lines")
	return cmd
}

// queryParams parses the scan flags. Durations are taken relative to now.
func queryParams(since, until string, limit int, now time.Time) (connector.QueryParams, error) {
	var p connector.QueryParams
	var err error
	if p.Start, err = parseScanTime(since, now); err != nil {
		return p, fmt.Errorf("cli: --since: %w", err)
	}
	if p.End, err = parseScanTime(until, now); err != nil {
		return p, fmt.Errorf("cli: --until: %w", err)
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return p, errors.New("cli: --until is before --since")
	}
	if limit < 0 {
		return p, fmt.Errorf("cli: --limit %d is negative", limit)
	}
	p.Limit = limit
	return p, nil
}

func parseScanTime(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range scanTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
