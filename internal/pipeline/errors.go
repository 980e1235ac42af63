package pipeline

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindSnapshotWrite       Kind = "snapshot_write"
	KindAnalyzerUnavailable Kind = "analyzer_unavailable"
	KindProcessStart        Kind = "process_start"
	KindAnalyzerDiagnostic  Kind = "analyzer_diagnostic"
	KindReportMissing       Kind = "report_missing"
	KindUnexpected          Kind = "unexpected"
)

// Error is the single terminal failure of a run. Message is what the user is
// shown; for analyzer diagnostics it is the filtered stderr text.
type Error struct {
	Kind    Kind
	Stage   State
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Stage == "" {
		return string(e.Kind)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s failed at %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s failed at %s: %s", e.Kind, e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrSnapshotWrite       = &Error{Kind: KindSnapshotWrite}
	ErrAnalyzerUnavailable = &Error{Kind: KindAnalyzerUnavailable}
	ErrProcessStart        = &Error{Kind: KindProcessStart}
	ErrAnalyzerDiagnostic  = &Error{Kind: KindAnalyzerDiagnostic}
	ErrReportMissing       = &Error{Kind: KindReportMissing}
	ErrUnexpected          = &Error{Kind: KindUnexpected}
)

// ErrBusy is returned when a run is already in flight for the same analyzer
// directory. No stage runs and nothing is recorded.
var ErrBusy = errors.New("analysis already running")

func stageError(kind Kind, stage State, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: err.Error(), Err: err}
}
