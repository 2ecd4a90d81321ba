package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID    string
		summarize bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Aggregate a user's reflections into per-session statistics",
		Long: `Group a user's reflections by (session, thread) and report totals,
average drift, and activity window per group, most recently active
first. With --summarize, a narrative digest of the statistics is
requested from the configured summarizer; a summarizer failure never
fails the scan.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(rootOpts, cmd, userID, summarize)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "include a narrative digest")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runScan(opts *RootOptions, cmd *cobra.Command, userID string, summarize bool) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	deps, err := buildDeps(opts, opts.DBPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := deps.aggregator.Scan(cmd.Context(), userID, summarize)
	if err != nil {
		return reportDomainError(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d session(s)\n", result.SessionCount)
	for _, s := range result.Sessions {
		fmt.Fprintf(&b, "  %s/%s: %d reflection(s), avg drift %.4f, %s .. %s\n",
			s.SessionID, s.ThreadID, s.Total, s.AvgDrift,
			s.FirstTS.Format(timestampLayout), s.LastTS.Format(timestampLayout))
	}
	if result.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", result.Summary)
	}
	if result.SummaryError != "" {
		fmt.Fprintf(&b, "\n(summary unavailable: %s)\n", result.SummaryError)
	}
	return formatter.Success(strings.TrimRight(b.String(), "\n"))
}
