package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/datamartlab/logmart/internal/normalize"
	"github.com/datamartlab/logmart/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
	RulesDir string
	Input    string // CSV path; "-" or empty reads stdin
}

// NewLoadCommand creates the load command: normalize a raw batch and
// append it to the change log.
func NewLoadCommand(rootOpts *RootOptions, cfg Config) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Normalize a raw audit batch into the change log",
		Long: `Read raw audit records (CSV with the seven log columns), normalize
each into a typed log entry, and append the accepted entries to the
change-log store. Records whose event time cannot be resolved, or whose
detail cannot be coerced to its declared class, are dropped and reported;
drops never fail the batch.

Examples:
  logmart load --db ./logmart.db --input logs.csv
  cat logs.csv | logmart load --db ./logmart.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", cfg.DB, "change-log database DSN")
	cmd.Flags().StringVar(&opts.RulesDir, "rules", cfg.Rules, "directory of CUE rule files (built-in defaults if unset)")
	cmd.Flags().StringVar(&opts.Input, "input", "-", "CSV file to read (- for stdin)")

	return cmd
}

func runLoad(opts *LoadOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	ruleSet, err := loadRules(opts.RulesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rules", err)
	}

	var in io.Reader = cmd.InOrStdin()
	if opts.Input != "" && opts.Input != "-" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		in = f
	}

	batch, err := normalize.ReadCSV(in)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read batch", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open change log", err)
	}
	defer st.Close()

	normalizer := &normalize.Normalizer{Log: st, Rules: ruleSet}
	report, err := normalizer.Run(ctx, batch)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to append batch", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, report)
	}
	fmt.Fprintf(out, "accepted: %d\ndropped: %d\n", report.Accepted, report.Dropped)
	for _, d := range report.Diagnostics {
		fmt.Fprintf(out, "  row %d dropped (%s): %s\n", d.Row, d.Reason, d.Message)
	}
	return nil
}
