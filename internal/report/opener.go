// Package report checks for the analyzer's output and hands it to the host.
package report

import (
	"errors"
	"fmt"
	"os"
)

var ErrReportMissing = errors.New("report not generated")

// Launcher opens a file with the host's default handler.
type Launcher interface {
	Launch(path string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(path string) error

func (f LauncherFunc) Launch(path string) error {
	return f(path)
}

type Opener struct {
	launcher Launcher
}

// NewOpener uses the host launcher when launcher is nil.
func NewOpener(launcher Launcher) *Opener {
	if launcher == nil {
		launcher = HostLauncher{}
	}
	return &Opener{launcher: launcher}
}

// Open launches the report exactly once if it exists as a regular file.
func (o *Opener) Open(path string) error {
	if err := Check(path); err != nil {
		return err
	}
	if err := o.launcher.Launch(path); err != nil {
		return fmt.Errorf("open report %s: %w", path, err)
	}
	return nil
}

// Check reports ErrReportMissing unless path is an existing regular file.
func Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrReportMissing, path)
		}
		return fmt.Errorf("stat report: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrReportMissing, path)
	}
	return nil
}
