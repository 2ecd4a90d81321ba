package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reflectd/internal/reflection"
)

// NewRecallCommand creates the recall command.
func NewRecallCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter reflection.Filter
		limit  int
		asc    bool
	)

	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Query stored reflections",
		Long: `Query reflections by any combination of user, thread, session,
slide, and seal. Filters are conjunctive. Results are ordered by
timestamp, newest first unless --asc is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			order := reflection.OrderDesc
			if asc {
				order = reflection.OrderAsc
			}
			return runRecall(rootOpts, cmd, filter, order, limit)
		},
	}

	cmd.Flags().StringVarP(&filter.UserID, "user", "u", "", "filter by user id")
	cmd.Flags().StringVar(&filter.ThreadID, "thread", "", "filter by thread id")
	cmd.Flags().StringVar(&filter.SessionID, "session", "", "filter by session id")
	cmd.Flags().StringVar(&filter.SlideID, "slide", "", "filter by slide token")
	cmd.Flags().StringVar(&filter.Seal, "seal", "", "filter by seal label")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max results (default 5, capped at 200)")
	cmd.Flags().BoolVar(&asc, "asc", false, "oldest first")

	return cmd
}

func runRecall(opts *RootOptions, cmd *cobra.Command, filter reflection.Filter, order reflection.Order, limit int) error {
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

	reflections, err := deps.store.Query(cmd.Context(), filter, order, limit)
	if err != nil {
		return reportDomainError(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"count":       len(reflections),
			"reflections": reflections,
		})
	}

	if len(reflections) == 0 {
		return formatter.Success("no reflections found")
	}

	var b strings.Builder
	for i, r := range reflections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] %s %s/%s/%s drift=%.4f seal=%s\n",
			r.ID, r.CreatedAt.Format(timestampLayout),
			r.UserID, r.ThreadID, r.SessionID, r.DriftScore, r.Seal)
		b.WriteString(indent(r.Content))
	}
	return formatter.Success(strings.TrimRight(b.String(), "\n"))
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
