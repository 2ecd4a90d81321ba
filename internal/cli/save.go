package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/store"
)

// SaveResult holds the outcome of one save.
type SaveResult struct {
	ID           int64   `json:"id"`
	SlideID      string  `json:"slide_id"`
	CreatedAt    string  `json:"created_at"`
	DriftStatus  string  `json:"drift_status"`
	DriftClamped float64 `json:"drift_clamped"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID    string
		threadID  string
		sessionID string
		slideID   string
		driftIn   float64
		seal      string
	)

	cmd := &cobra.Command{
		Use:   "save <content>",
		Short: "Append a reflection to the store",
		Long: `Append one timestamped reflection. Records are immutable once
written; there is no update or delete. The drift score is persisted
exactly as supplied, and the command reports how the governor would
classify it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, cmd, store.AppendRequest{
				UserID:     userID,
				ThreadID:   threadID,
				SessionID:  sessionID,
				SlideID:    slideID,
				Content:    args[0],
				DriftScore: driftIn,
				Seal:       seal,
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "owning user id (required)")
	cmd.Flags().StringVar(&threadID, "thread", "", "thread id (default \"general\")")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default \"continuity\")")
	cmd.Flags().StringVar(&slideID, "slide", "", "slide correlation token (generated when empty)")
	cmd.Flags().Float64Var(&driftIn, "drift", 0, "raw drift score")
	cmd.Flags().StringVar(&seal, "seal", "", "seal label (default \"lawful\")")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runSave(opts *RootOptions, cmd *cobra.Command, req store.AppendRequest) error {
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

	saved, err := deps.store.Append(cmd.Context(), req)
	if err != nil {
		return reportDomainError(formatter, err)
	}

	cls := drift.Classify(req.DriftScore, deps.thresholds)
	result := SaveResult{
		ID:           saved.ID,
		SlideID:      saved.SlideID,
		CreatedAt:    saved.CreatedAt.Format(timestampLayout),
		DriftStatus:  string(cls.Status),
		DriftClamped: cls.DriftClamped,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("saved reflection %d (drift %s, clamped %.4f)",
		result.ID, result.DriftStatus, result.DriftClamped))
}
