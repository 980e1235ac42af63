// Package runlog keeps an append-only ledger of analysis runs.
package runlog

import (
	"context"
	"time"
)

// Entry is the ledger view of one finished run.
type Entry struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	State      string
	ErrorKind  string
	Stage      string
	Message    string
	Strategy   string
	ExitCode   *int
	Records    int
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NoopRecorder discards entries.
type NoopRecorder struct{}

func (NoopRecorder) Record(ctx context.Context, entry Entry) error {
	return nil
}
