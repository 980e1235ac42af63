package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animus-labs/expense-tracker/internal/diagnostics"
	"github.com/animus-labs/expense-tracker/internal/pipeline"
	"github.com/animus-labs/expense-tracker/internal/repo"
	"github.com/animus-labs/expense-tracker/internal/report"
	"github.com/animus-labs/expense-tracker/internal/runlog"
	"github.com/animus-labs/expense-tracker/internal/runtimeexec"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Snapshot expenses, run the analyzer and open the trend report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				// The store is read in the snapshot stage, so a store that
				// cannot be opened fails the run there.
				return a.notify(pipeline.Outcome{}, &pipeline.Error{
					Kind:    pipeline.KindUnexpected,
					Stage:   pipeline.StateSnapshotting,
					Message: err.Error(),
					Err:     err,
				})
			}
			defer closeStore()
			return a.runPipeline(cmd, store)
		},
	}
}

func (a *app) runPipeline(cmd *cobra.Command, store repo.ExpenseRepository) error {
	var recorder runlog.Recorder = runlog.NoopRecorder{}
	if path := a.cfg.RunLogPath(); path != "" {
		rec, err := runlog.NewFileRecorder(path)
		if err != nil {
			return a.notify(pipeline.Outcome{}, err)
		}
		recorder = rec
	}

	p, err := pipeline.New(pipeline.Options{
		Layout:       a.cfg.Layout,
		Records:      store,
		Runner:       runtimeexec.NewProcessRunner(a.logger),
		Classifier:   diagnostics.New(a.cfg.NoiseMarkers...),
		Opener:       report.NewOpener(a.launcher),
		Recorder:     recorder,
		AutoOpen:     a.cfg.AutoOpen,
		DelegateOpen: a.cfg.DelegateOpen,
		Logger:       a.logger,
		Observer: func(s pipeline.State) {
			a.logger.Debug("pipeline state", "state", string(s))
		},
	})
	if err != nil {
		return a.notify(pipeline.Outcome{}, err)
	}

	return a.notify(p.Run(cmd.Context()))
}

// notify prints the single notification for a run attempt. Failures go to
// stderr and come back as errReported.
func (a *app) notify(out pipeline.Outcome, runErr error) error {
	n := pipeline.Describe(out, runErr)
	w := a.stdout
	if runErr != nil {
		w = a.stderr
	}
	fmt.Fprintf(w, "%s: %s\n", n.Title, n.Message)
	if runErr != nil {
		return errReported
	}
	return nil
}
