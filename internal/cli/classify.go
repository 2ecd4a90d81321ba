package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reflectd/internal/drift"
)

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		clamp      float64
		warn       float64
		stop       float64
		policyPath string
	)

	cmd := &cobra.Command{
		Use:   "classify <drift-score>",
		Short: "Classify a drift score against the governance bounds",
		Long: `Classify a raw drift score. The clamped value is bounded to the
clamp interval, while the status comes from the unclamped magnitude:
OK below the warn bound, WARN at or above it, STOP at or above the
stop bound. Purely computational; the database is not touched.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var score float64
			if _, err := fmt.Sscanf(args[0], "%g", &score); err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid drift score %q", args[0]))
			}
			return runClassify(rootOpts, cmd, score, drift.Thresholds{
				Clamp: clamp,
				Warn:  warn,
				Stop:  stop,
			}, policyPath)
		},
	}

	cmd.Flags().Float64Var(&clamp, "clamp", 0, "clamp bound (default 0.05)")
	cmd.Flags().Float64Var(&warn, "warn", 0, "warn bound (default 0.08)")
	cmd.Flags().Float64Var(&stop, "stop", 0, "stop bound (default 0.12)")
	cmd.Flags().StringVar(&policyPath, "policy", "", "CUE drift-policy file overriding the bounds")

	return cmd
}

func runClassify(opts *RootOptions, cmd *cobra.Command, score float64, t drift.Thresholds, policyPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if policyPath != "" {
		loaded, err := LoadPolicy(policyPath)
		if err != nil {
			_ = formatter.Error("POLICY", err.Error(), "")
			return WrapExitError(ExitCommandError, "load drift policy", err)
		}
		t = loaded
	}

	cls := drift.Classify(score, t)

	if opts.Format == "json" {
		return formatter.Success(cls)
	}
	return formatter.Success(fmt.Sprintf("%s (in %.4f, clamped %.4f, bounds %.4f/%.4f/%.4f)",
		cls.Status, cls.DriftIn, cls.DriftClamped,
		cls.Thresholds.Clamp, cls.Thresholds.Warn, cls.Thresholds.Stop))
}
