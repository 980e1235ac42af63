// Package runtimeexec launches the analyzer as a child process and captures
// everything it writes.
package runtimeexec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/animus-labs/expense-tracker/internal/analyzer"
)

// Runner is the execution surface the pipeline depends on.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Request is one analyzer invocation.
type Request struct {
	Strategy     analyzer.Strategy
	SnapshotPath string
	ReportPath   string
	// AutoOpen adds --open so the analyzer may show the report itself.
	AutoOpen bool
	Env      map[string]string
}

// CommandLine returns the program and its full argument list: the strategy's
// own arguments followed by the output-path flag and, optionally, --open.
func (r Request) CommandLine() (string, []string) {
	args := make([]string, 0, len(r.Strategy.Args)+3)
	args = append(args, r.Strategy.Args...)
	args = append(args, "--out", r.ReportPath)
	if r.AutoOpen {
		args = append(args, "--open")
	}
	return r.Strategy.Program, args
}

func (r Request) Validate() error {
	if r.Strategy.Program == "" {
		return errors.New("strategy program is required")
	}
	if r.Strategy.Dir == "" {
		return errors.New("strategy dir is required")
	}
	if r.ReportPath == "" {
		return errors.New("report path is required")
	}
	return nil
}

// Result holds both captured streams and the exit status of a process that
// did start. A non-zero ExitCode is not an error at this layer.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

var ErrStart = errors.New("analyzer_start_failed")

// StartError reports that the program could not be launched at all.
type StartError struct {
	Program string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Program, e.Err)
}

func (e *StartError) Unwrap() []error {
	return []error{ErrStart, e.Err}
}
