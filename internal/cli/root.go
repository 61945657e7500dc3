// Package cli implements the logmart command line interface: the
// triggering surface for normalizing raw audit batches into the change
// log and replaying them into the warehouse.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/datamartlab/logmart/internal/rules"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the logmart CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cfg, err := ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logmart: %v\n", err)
		os.Exit(ExitCommandError)
	}

	cmd := &cobra.Command{
		Use:   "logmart",
		Short: "Audit-log normalization and warehouse replay",
		Long: `logmart ingests field-level audit logs from an operational system,
normalizes them into a typed append-only change log, and replays them
idempotently into a dimensional analytical store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLoadCommand(opts, cfg))
	cmd.AddCommand(NewReplayCommand(opts, cfg))
	cmd.AddCommand(NewLogsCommand(opts, cfg))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadRules resolves the rule set for a command: the rules directory if
// one was given, the built-in default set otherwise.
func loadRules(dir string) (rules.Set, error) {
	if dir == "" {
		return rules.Default(), nil
	}
	return rules.Load(dir)
}
