package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/datamartlab/logmart/internal/logrec"
	"github.com/datamartlab/logmart/internal/store"
)

// LogsOptions holds flags for the logs command.
type LogsOptions struct {
	*RootOptions
	Database string
	Table    string
	From     string
	To       string
}

// NewLogsCommand creates the logs command: query the change log by
// target table or time range.
func NewLogsCommand(rootOpts *RootOptions, cfg Config) *cobra.Command {
	opts := &LogsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Query the change log",
		Long: `List stored log entries, filtered by target table or by event-time
range (YYYY-MM-DD bounds, end exclusive).

Examples:
  logmart logs --db ./logmart.db --table Products
  logmart logs --db ./logmart.db --from 2024-08-01 --to 2024-09-01`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", cfg.DB, "change-log database DSN")
	cmd.Flags().StringVar(&opts.Table, "table", "", "filter by target table")
	cmd.Flags().StringVar(&opts.From, "from", "", "start of event-time range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "end of event-time range, exclusive (YYYY-MM-DD)")

	return cmd
}

func runLogs(opts *LogsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open change log", err)
	}
	defer st.Close()

	var entries []logrec.Entry
	switch {
	case opts.Table != "":
		entries, err = st.ByTable(ctx, opts.Table)
	case opts.From != "" && opts.To != "":
		from, perr := time.Parse("2006-01-02", opts.From)
		if perr != nil {
			return WrapExitError(ExitCommandError, "invalid --from", perr)
		}
		to, perr := time.Parse("2006-01-02", opts.To)
		if perr != nil {
			return WrapExitError(ExitCommandError, "invalid --to", perr)
		}
		entries, err = st.ByTimeRange(ctx, from, to)
	default:
		return WrapExitError(ExitCommandError, "either --table or both --from and --to are required", nil)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		type jsonEntry struct {
			LogID       int64  `json:"log_id"`
			ActorID     string `json:"actor_id"`
			EventTime   string `json:"event_time"`
			Operation   string `json:"operation"`
			TargetTable string `json:"target_table"`
			TargetID    string `json:"target_id"`
			FieldName   string `json:"field_name"`
			DetailKind  string `json:"detail_kind"`
			Detail      string `json:"detail"`
		}
		list := make([]jsonEntry, len(entries))
		for i, e := range entries {
			list[i] = jsonEntry{
				LogID:       e.LogID,
				ActorID:     e.ActorID,
				EventTime:   e.EventTime.Format(logrec.TimestampLayout),
				Operation:   string(e.Operation),
				TargetTable: e.TargetTable,
				TargetID:    e.TargetID,
				FieldName:   e.FieldName,
				DetailKind:  string(e.Detail.Kind()),
				Detail:      e.Detail.String(),
			}
		}
		return writeJSON(out, list)
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%6d  %s  %-6s %-10s %-10s %-14s %s\n",
			e.LogID,
			e.EventTime.Format(logrec.TimestampLayout),
			e.Operation, e.TargetTable, e.TargetID, e.FieldName,
			e.Detail.String())
	}
	fmt.Fprintf(out, "%d entries\n", len(entries))
	return nil
}
