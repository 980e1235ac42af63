package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/animus-labs/expense-tracker/internal/analyzer"
	"github.com/animus-labs/expense-tracker/internal/diagnostics"
	"github.com/animus-labs/expense-tracker/internal/domain"
	"github.com/animus-labs/expense-tracker/internal/report"
	"github.com/animus-labs/expense-tracker/internal/runlog"
	"github.com/animus-labs/expense-tracker/internal/runtimeexec"
	"github.com/animus-labs/expense-tracker/internal/snapshot"
)

// RecordSource reads every expense ordered by date ascending.
type RecordSource interface {
	ListByDate(ctx context.Context) ([]domain.Expense, error)
}

type StrategyResolver interface {
	Resolve() (analyzer.Strategy, error)
}

type ReportOpener interface {
	Open(path string) error
}

type Options struct {
	Layout  analyzer.Layout
	Records RecordSource

	// Resolver defaults to analyzer.NewResolver(Layout).
	Resolver StrategyResolver
	// Runner defaults to a host ProcessRunner.
	Runner     runtimeexec.Runner
	Classifier diagnostics.Classifier
	// Opener defaults to the host's default handler.
	Opener   ReportOpener
	Recorder runlog.Recorder
	// Guard defaults to a process-wide guard.
	Guard *Guard

	// AutoOpen launches the report once it is verified. When false the run
	// still fails if the report is missing.
	AutoOpen bool
	// DelegateOpen passes --open to the analyzer and skips the launcher so the
	// report is never opened twice.
	DelegateOpen bool
	Env          map[string]string

	Observer Observer
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

// OpenMode records who is responsible for showing the report.
type OpenMode string

const (
	NotOpened        OpenMode = "not_opened"
	OpenedByPipeline OpenMode = "pipeline"
	OpenedByAnalyzer OpenMode = "analyzer"
)

// Outcome summarizes a finished run. ExitCode is meaningful only when Ran is
// true; Opening is set once the run reaches StateOpening.
type Outcome struct {
	RunID      string
	State      State
	Strategy   analyzer.Strategy
	ReportPath string
	Records    int
	Ran        bool
	ExitCode   int
	Suppressed int
	Opening    OpenMode
	StartedAt  time.Time
	FinishedAt time.Time
}

type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Records == nil {
		return nil, errors.New("record source is required")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Resolver == nil {
		opts.Resolver = analyzer.NewResolver(opts.Layout)
	}
	if opts.Runner == nil {
		opts.Runner = runtimeexec.NewProcessRunner(opts.Logger)
	}
	if len(opts.Classifier.Markers()) == 0 {
		opts.Classifier = diagnostics.New()
	}
	if opts.Opener == nil {
		opts.Opener = report.NewOpener(nil)
	}
	if opts.Recorder == nil {
		opts.Recorder = runlog.NoopRecorder{}
	}
	if opts.Guard == nil {
		opts.Guard = defaultGuard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Pipeline{opts: opts, logger: opts.Logger}, nil
}

// Run executes one analysis. It returns ErrBusy if another run holds the same
// directory, otherwise a nil error with StateDone or a *Error with
// StateFailed.
func (p *Pipeline) Run(ctx context.Context) (out Outcome, err error) {
	release, err := p.opts.Guard.Acquire(p.opts.Layout.Dir)
	if err != nil {
		return Outcome{State: StateIdle}, err
	}
	defer release()

	out = Outcome{
		RunID:      p.opts.NewID(),
		State:      StateIdle,
		ReportPath: p.opts.Layout.ReportPath(),
		StartedAt:  p.opts.Now(),
	}
	logger := p.logger.With("run_id", out.RunID)

	defer func() {
		if r := recover(); r != nil {
			stage := out.State
			err = &Error{Kind: KindUnexpected, Stage: stage, Message: fmt.Sprint(r)}
			logger.Error("analysis panicked", "stage", stage, "panic", r)
		}
		if err != nil {
			p.transition(&out, StateFailed)
		}
		out.FinishedAt = p.opts.Now()
		p.record(ctx, logger, out, err)
	}()

	logger.Info("analysis started", "dir", p.opts.Layout.Dir)
	err = p.run(ctx, logger, &out)
	return out, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, out *Outcome) error {
	snapshotPath := p.opts.Layout.SnapshotPath()

	p.transition(out, StateSnapshotting)
	expenses, err := p.opts.Records.ListByDate(ctx)
	if err != nil {
		return p.fail(logger, stageError(KindUnexpected, StateSnapshotting, fmt.Errorf("read expenses: %w", err)))
	}
	out.Records = len(expenses)
	if err := snapshot.Write(snapshotPath, expenses); err != nil {
		return p.fail(logger, stageError(KindSnapshotWrite, StateSnapshotting, err))
	}
	logger.Debug("snapshot written", "path", snapshotPath, "records", out.Records)

	p.transition(out, StateResolvingStrategy)
	strategy, err := p.opts.Resolver.Resolve()
	if err != nil {
		kind := KindUnexpected
		if errors.Is(err, analyzer.ErrUnavailable) {
			kind = KindAnalyzerUnavailable
		}
		return p.fail(logger, stageError(kind, StateResolvingStrategy, err))
	}
	out.Strategy = strategy
	logger.Info("analyzer resolved", "strategy", string(strategy.Kind), "program", strategy.Program)

	p.transition(out, StateRunning)
	if err := removeStaleReport(out.ReportPath); err != nil {
		return p.fail(logger, stageError(KindUnexpected, StateRunning, err))
	}
	res, err := p.opts.Runner.Run(ctx, runtimeexec.Request{
		Strategy:     strategy,
		SnapshotPath: snapshotPath,
		ReportPath:   out.ReportPath,
		AutoOpen:     p.opts.DelegateOpen,
		Env:          p.opts.Env,
	})
	if err != nil {
		kind := KindUnexpected
		if errors.Is(err, runtimeexec.ErrStart) {
			kind = KindProcessStart
		}
		return p.fail(logger, stageError(kind, StateRunning, err))
	}
	out.Ran = true
	out.ExitCode = res.ExitCode
	if res.ExitCode != 0 {
		logger.Warn("analyzer exited non-zero", "exit_code", res.ExitCode)
	}
	if res.Stdout != "" {
		logger.Debug("analyzer stdout", "output", res.Stdout)
	}

	p.transition(out, StateClassifying)
	verdict := p.opts.Classifier.Classify(res.Stderr)
	out.Suppressed = verdict.Suppressed
	if verdict.Failed {
		return p.fail(logger, &Error{
			Kind:    KindAnalyzerDiagnostic,
			Stage:   StateClassifying,
			Message: verdict.Message,
		})
	}

	p.transition(out, StateOpening)
	out.Opening = p.openMode()
	if out.Opening == OpenedByPipeline {
		err = p.opts.Opener.Open(out.ReportPath)
	} else {
		err = report.Check(out.ReportPath)
	}
	if err != nil {
		kind := KindUnexpected
		if errors.Is(err, report.ErrReportMissing) {
			kind = KindReportMissing
		}
		return p.fail(logger, stageError(kind, StateOpening, err))
	}

	p.transition(out, StateDone)
	logger.Info("analysis finished",
		"report", out.ReportPath,
		"records", out.Records,
		"suppressed", out.Suppressed,
	)
	return nil
}

func (p *Pipeline) openMode() OpenMode {
	switch {
	case p.opts.DelegateOpen:
		return OpenedByAnalyzer
	case p.opts.AutoOpen:
		return OpenedByPipeline
	default:
		return NotOpened
	}
}

// removeStaleReport deletes the previous run's report so that an analyzer
// which writes nothing is caught at the opening stage.
func removeStaleReport(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous report: %w", err)
	}
	return nil
}

func (p *Pipeline) transition(out *Outcome, next State) {
	out.State = next
	if p.opts.Observer != nil {
		p.opts.Observer(next)
	}
}

func (p *Pipeline) fail(logger *slog.Logger, err *Error) error {
	logger.Error("analysis failed", "stage", string(err.Stage), "kind", string(err.Kind), "error", err.Message)
	return err
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, out Outcome, runErr error) {
	entry := runlog.Entry{
		RunID:      out.RunID,
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
		State:      string(out.State),
		Strategy:   string(out.Strategy.Kind),
		Records:    out.Records,
	}
	if out.Ran {
		code := out.ExitCode
		entry.ExitCode = &code
	}
	var perr *Error
	if errors.As(runErr, &perr) {
		entry.ErrorKind = string(perr.Kind)
		entry.Stage = string(perr.Stage)
		entry.Message = perr.Message
	}
	if err := p.opts.Recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("run log write failed", "error", err)
	}
}
