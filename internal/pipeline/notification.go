package pipeline

import (
	"errors"
	"fmt"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is the one message shown to the user for a run.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Describe maps the result of Run to its notification. On success the
// message says where the report went, following out.Opening.
func Describe(out Outcome, err error) Notification {
	if err == nil {
		return Notification{Level: LevelInfo, Title: "Analysis complete", Message: successMessage(out)}
	}
	if errors.Is(err, ErrBusy) {
		return Notification{Level: LevelWarning, Title: "Analysis in progress", Message: "An analysis is already running for this folder."}
	}

	var perr *Error
	if !errors.As(err, &perr) {
		return Notification{Level: LevelError, Title: "Unexpected error", Message: err.Error()}
	}
	n := Notification{Level: LevelError, Message: perr.Message}
	switch perr.Kind {
	case KindAnalyzerDiagnostic:
		n.Title = "Analyzer error"
	case KindReportMissing:
		n.Title = "Report not found"
		n.Message = fmt.Sprintf("The analyzer finished without producing a report. %s", perr.Message)
	case KindAnalyzerUnavailable:
		n.Title = "Analyzer not found"
		n.Message = fmt.Sprintf("Install the bundled analyzer or create the Python environment. %s", perr.Message)
	case KindSnapshotWrite:
		n.Title = "Export failed"
	case KindProcessStart:
		n.Title = "Could not start analyzer"
	default:
		n.Title = "Unexpected error"
	}
	return n
}

func successMessage(out Outcome) string {
	switch out.Opening {
	case OpenedByPipeline:
		return "Analysis complete! Report opened."
	case OpenedByAnalyzer:
		return fmt.Sprintf("Analysis complete! The analyzer is opening %s.", out.ReportPath)
	default:
		return fmt.Sprintf("Analysis complete! Report written to %s.", out.ReportPath)
	}
}
