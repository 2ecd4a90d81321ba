package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reflectd/internal/harness"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run one continuity validation cycle",
		Long: `Run a single continuity validation cycle: health check, session
scan, context validation, then archive the result as a sealed
reflection. A failed step aborts the cycle without retry and exits
non-zero. Use --plan to override the stock cycle parameters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, planPath)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "YAML plan file overriding the cycle defaults")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, planPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := harness.DefaultConfig()
	if planPath != "" {
		plan, err := harness.LoadPlan(planPath)
		if err != nil {
			_ = formatter.Error("PLAN", err.Error(), "")
			return WrapExitError(ExitCommandError, "load plan", err)
		}
		cfg = plan.Config()
	}

	deps, err := buildDeps(opts, opts.DBPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	h := harness.New(deps.store, deps.aggregator, deps.orch, cfg, deps.logger)
	result := h.RunOnce(cmd.Context())

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Ok {
		lawful := "lawful"
		if !result.Lawful {
			lawful = "unlawful"
		}
		_ = formatter.Success(fmt.Sprintf(
			"cycle ok: archived reflection %d (%d session(s), avg drift %.4f, %s)",
			result.ArchivedID, result.SessionCount, result.AvgDrift, lawful))
	} else {
		_ = formatter.Error(string(result.FailedAt), result.Reason, "")
	}

	if !result.Ok {
		return NewExitError(ExitFailure, fmt.Sprintf("cycle failed at %s", result.FailedAt))
	}
	return nil
}
