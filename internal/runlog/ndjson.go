package runlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const timeFormatRFC3339Nano = "2006-01-02T15:04:05.999999999Z07:00"

// NDJSONRecorder appends each entry as one JSON line. A path-backed recorder
// opens the file per entry so concurrent CLI invocations interleave whole lines.
type NDJSONRecorder struct {
	mu   sync.Mutex
	path string
	w    io.Writer
}

func NewNDJSONRecorder(w io.Writer) *NDJSONRecorder {
	return &NDJSONRecorder{w: w}
}

func NewFileRecorder(path string) (*NDJSONRecorder, error) {
	if path == "" {
		return nil, errors.New("run log path is required")
	}
	return &NDJSONRecorder{path: path}, nil
}

func (r *NDJSONRecorder) Record(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := encodeLine(entry)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w != nil {
		_, err := r.w.Write(line)
		return err
	}
	return appendFile(r.path, line)
}

func appendFile(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create run log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append run log: %w", err)
	}
	return f.Close()
}

type ledgerLine struct {
	RunID      string `json:"run_id"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	State      string `json:"state"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Message    string `json:"message,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	Records    int    `json:"records"`
}

func encodeLine(entry Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	err := enc.Encode(ledgerLine{
		RunID:      entry.RunID,
		StartedAt:  entry.StartedAt.UTC().Format(timeFormatRFC3339Nano),
		FinishedAt: entry.FinishedAt.UTC().Format(timeFormatRFC3339Nano),
		State:      entry.State,
		ErrorKind:  entry.ErrorKind,
		Stage:      entry.Stage,
		Message:    entry.Message,
		Strategy:   entry.Strategy,
		ExitCode:   entry.ExitCode,
		Records:    entry.Records,
	})
	if err != nil {
		return nil, fmt.Errorf("encode run log entry: %w", err)
	}
	return buf.Bytes(), nil
}
