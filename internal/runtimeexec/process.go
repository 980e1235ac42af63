package runtimeexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	EnvSnapshotPath = "EXPENSE_SNAPSHOT_PATH"
	EnvReportPath   = "EXPENSE_REPORT_PATH"
)

// DefaultWaitDelay bounds how long output is still collected after the
// analyzer exits.
const DefaultWaitDelay = 2 * time.Second

// ProcessRunner runs the analyzer on the host and blocks until it exits.
type ProcessRunner struct {
	logger *slog.Logger
	// WaitDelay is how long the readers keep draining once the analyzer has
	// exited. A child the analyzer spawned, such as a browser, may hold the
	// streams open long after that.
	WaitDelay time.Duration
}

func NewProcessRunner(logger *slog.Logger) *ProcessRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessRunner{logger: logger, WaitDelay: DefaultWaitDelay}
}

// Run starts the child and drains stdout and stderr on two goroutines while a
// third waits for exit. The caller's cancellation is not forwarded: once
// started, the analyzer runs to completion.
func (r *ProcessRunner) Run(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	program, args := req.CommandLine()

	cmd := exec.CommandContext(context.WithoutCancel(ctx), program, args...)
	cmd.Dir = req.Strategy.Dir
	cmd.Env = buildEnv(req)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return Result{}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return Result{}, fmt.Errorf("stderr pipe: %w", err)
	}
	defer closeAll(stdoutR, stderrR)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	r.logger.Debug("starting analyzer", "program", program, "args", args, "dir", cmd.Dir)
	started := time.Now()
	err = cmd.Start()
	// The child holds its own copies; ours must go so the readers see EOF.
	closeAll(stdoutW, stderrW)
	if err != nil {
		return Result{}, &StartError{Program: program, Err: err}
	}

	var outBuf, errBuf bytes.Buffer
	var waitErr error
	var g errgroup.Group
	g.Go(func() error { return r.drain("stdout", &outBuf, stdoutR) })
	g.Go(func() error { return r.drain("stderr", &errBuf, stderrR) })
	g.Go(func() error {
		waitErr = cmd.Wait()
		deadline := time.Now().Add(r.waitDelay())
		for _, f := range []*os.File{stdoutR, stderrR} {
			if err := f.SetReadDeadline(deadline); err != nil {
				// No deadline support for this pipe; unblock the reader.
				_ = f.Close()
			}
		}
		return nil
	})
	drainErr := g.Wait()

	res := Result{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(started),
	}
	if drainErr != nil {
		return res, drainErr
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return res, fmt.Errorf("wait %s: %w", program, waitErr)
	}

	r.logger.Debug("analyzer exited",
		"program", program,
		"exit_code", res.ExitCode,
		"stdout_bytes", len(res.Stdout),
		"stderr_bytes", len(res.Stderr),
		"duration", res.Duration,
	)
	return res, nil
}

// drain copies one stream until EOF. Hitting the post-exit deadline only
// means another process still holds the stream; what was read is kept.
func (r *ProcessRunner) drain(name string, dst *bytes.Buffer, src *os.File) error {
	_, err := io.Copy(dst, src)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, os.ErrClosed):
		r.logger.Warn("analyzer output still open after exit", "stream", name)
		return nil
	default:
		return fmt.Errorf("read %s: %w", name, err)
	}
}

func (r *ProcessRunner) waitDelay() time.Duration {
	if r.WaitDelay <= 0 {
		return DefaultWaitDelay
	}
	return r.WaitDelay
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func buildEnv(req Request) []string {
	out := os.Environ()
	if req.SnapshotPath != "" {
		out = append(out, EnvSnapshotPath+"="+req.SnapshotPath)
	}
	out = append(out, EnvReportPath+"="+req.ReportPath)

	keys := make([]string, 0, len(req.Env))
	for k := range req.Env {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+req.Env[k])
	}
	return out
}
