package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewContextCommand creates the context command.
func NewContextCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID    string
		threadID  string
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Synthesize a continuity narrative for one session",
		Long: `Fetch a chronological window of reflections for an exact
(user, thread, session) triple and synthesize a narrative through the
configured summarizer. Requires summarizer.enabled in the config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContext(rootOpts, cmd, userID, threadID, sessionID, limit)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVar(&threadID, "thread", "", "thread id (default \"general\")")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default \"continuity\")")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "window size (default 5, capped at 200)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runContext(opts *RootOptions, cmd *cobra.Command, userID, threadID, sessionID string, limit int) error {
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

	result, err := deps.orch.Context(cmd.Context(), userID, threadID, sessionID, limit)
	if err != nil {
		return reportDomainError(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("%s\n\n(%d reflection(s) synthesized)",
		result.Summary, result.ReflectionCount))
}
