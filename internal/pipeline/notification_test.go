package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   Level
		title   string
		message string
	}{
		{name: "success", err: nil, level: LevelInfo, title: "Analysis complete"},
		{name: "busy", err: ErrBusy, level: LevelWarning, title: "Analysis in progress"},
		{
			name:    "diagnostic",
			err:     &Error{Kind: KindAnalyzerDiagnostic, Stage: StateClassifying, Message: "ERROR: invalid amount on row 2"},
			level:   LevelError,
			title:   "Analyzer error",
			message: "ERROR: invalid amount on row 2",
		},
		{name: "missing", err: &Error{Kind: KindReportMissing, Stage: StateOpening, Message: "trend.html"}, level: LevelError, title: "Report not found"},
		{name: "unavailable", err: &Error{Kind: KindAnalyzerUnavailable, Stage: StateResolvingStrategy}, level: LevelError, title: "Analyzer not found"},
		{name: "snapshot", err: &Error{Kind: KindSnapshotWrite, Stage: StateSnapshotting, Message: "disk full"}, level: LevelError, title: "Export failed", message: "disk full"},
		{name: "start", err: &Error{Kind: KindProcessStart, Stage: StateRunning, Message: "permission denied"}, level: LevelError, title: "Could not start analyzer", message: "permission denied"},
		{name: "unexpected", err: &Error{Kind: KindUnexpected, Stage: StateRunning, Message: "boom"}, level: LevelError, title: "Unexpected error", message: "boom"},
		{name: "wrapped", err: fmt.Errorf("cli: %w", &Error{Kind: KindSnapshotWrite, Message: "disk full"}), level: LevelError, title: "Export failed", message: "disk full"},
		{name: "foreign", err: errors.New("config missing"), level: LevelError, title: "Unexpected error", message: "config missing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := Describe(Outcome{}, tc.err)
			if n.Level != tc.level || n.Title != tc.title {
				t.Fatalf("got %+v", n)
			}
			if tc.message != "" && n.Message != tc.message {
				t.Fatalf("message=%q want %q", n.Message, tc.message)
			}
			if n.Message == "" {
				t.Fatalf("empty message")
			}
		})
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &Error{Kind: KindReportMissing, Stage: StateOpening, Message: "x"})
	if !errors.Is(err, ErrReportMissing) {
		t.Fatalf("expected ErrReportMissing match")
	}
	if errors.Is(err, ErrAnalyzerDiagnostic) {
		t.Fatalf("unexpected kind match")
	}
	if !strings.Contains(err.Error(), "report_missing failed at opening") {
		t.Fatalf("error=%q", err.Error())
	}
}

func TestDescribeSuccessFollowsOpenMode(t *testing.T) {
	tests := []struct {
		mode OpenMode
		want string
	}{
		{mode: OpenedByPipeline, want: "Analysis complete! Report opened."},
		{mode: OpenedByAnalyzer, want: "Analysis complete! The analyzer is opening /ml/trend.html."},
		{mode: NotOpened, want: "Analysis complete! Report written to /ml/trend.html."},
	}
	for _, tc := range tests {
		n := Describe(Outcome{State: StateDone, ReportPath: "/ml/trend.html", Opening: tc.mode}, nil)
		if n.Level != LevelInfo || n.Message != tc.want {
			t.Fatalf("%s: got %+v, want message %q", tc.mode, n, tc.want)
		}
	}
}
