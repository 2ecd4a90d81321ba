package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/roach88/reflectd/internal/config"
	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/session"
	"github.com/roach88/reflectd/internal/store"
	"github.com/roach88/reflectd/internal/synth"
)

// timestampLayout is how timestamps are rendered in command output,
// matching the persistence format.
const timestampLayout = time.RFC3339Nano

// runtimeDeps bundles the wired collaborators a command needs. Data
// commands resolve the database from the --db flag; serve resolves it
// from the config file so the daemon and ad-hoc commands can point at
// different stores.
type runtimeDeps struct {
	cfg        *config.Config
	store      *store.Store
	aggregator *session.Aggregator
	orch       *synth.Orchestrator
	summarizer synth.Summarizer
	thresholds drift.Thresholds
	logger     *slog.Logger
}

func (d *runtimeDeps) Close() error {
	return d.store.Close()
}

// buildDeps loads config, opens the store, and wires the collaborators.
// dbPath overrides the configured database location when non-empty.
func buildDeps(opts *RootOptions, dbPath string) (*runtimeDeps, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	logger := newLogger(opts.Verbose)

	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	var summarizer synth.Summarizer
	if cfg.Summarizer.Enabled {
		s, err := synth.NewOpenAISummarizer(synth.OpenAIConfig{
			Model:             cfg.Summarizer.Model,
			Token:             cfg.Summarizer.Token.Value(),
			BaseURL:           cfg.Summarizer.BaseURL,
			Timeout:           cfg.Summarizer.Timeout.Duration(),
			RequestsPerMinute: cfg.Summarizer.RequestsPerMinute,
		})
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "configure summarizer", err)
		}
		summarizer = s
	}

	thresholds := drift.Thresholds{}
	if cfg.Drift.Policy != "" {
		thresholds, err = LoadPolicy(cfg.Drift.Policy)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "load drift policy", err)
		}
	}

	agg := session.NewAggregator(st, summarizer, logger)
	orch := synth.NewOrchestrator(st, agg, summarizer, logger)

	return &runtimeDeps{
		cfg:        cfg,
		store:      st,
		aggregator: agg,
		orch:       orch,
		summarizer: summarizer,
		thresholds: thresholds,
		logger:     logger,
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
