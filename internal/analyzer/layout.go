// Package analyzer describes where the external analyzer lives and decides
// how to invoke it.
package analyzer

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
)

// Layout is the analyzer working directory and the well-known files inside
// it. Relative file names resolve against Dir.
type Layout struct {
	Dir          string
	SnapshotFile string
	ReportFile   string
	Executable   string
	Script       string
	Interpreters []string
}

// DefaultLayout returns the layout the analyzer bundle ships with.
func DefaultLayout(dir string) Layout {
	return Layout{
		Dir:          dir,
		SnapshotFile: "expenses.csv",
		ReportFile:   "trend.html",
		Executable:   DefaultExecutable(),
		Script:       "analyzer.py",
		Interpreters: DefaultInterpreters(),
	}
}

func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "analyzer.exe"
	}
	return "analyzer"
}

// DefaultInterpreters lists virtualenv interpreters in the order they are
// tried.
func DefaultInterpreters() []string {
	if runtime.GOOS == "windows" {
		return []string{
			filepath.Join(".venv", "Scripts", "python.exe"),
			filepath.Join("venv", "Scripts", "python.exe"),
		}
	}
	return []string{
		filepath.Join(".venv", "bin", "python3"),
		filepath.Join(".venv", "bin", "python"),
		filepath.Join("venv", "bin", "python3"),
	}
}

func (l Layout) Validate() error {
	if strings.TrimSpace(l.Dir) == "" {
		return errors.New("analyzer dir is required")
	}
	if strings.TrimSpace(l.SnapshotFile) == "" {
		return errors.New("snapshot file is required")
	}
	if strings.TrimSpace(l.ReportFile) == "" {
		return errors.New("report file is required")
	}
	if strings.TrimSpace(l.Executable) == "" && strings.TrimSpace(l.Script) == "" {
		return errors.New("executable or script is required")
	}
	return nil
}

func (l Layout) SnapshotPath() string   { return l.resolve(l.SnapshotFile) }
func (l Layout) ReportPath() string     { return l.resolve(l.ReportFile) }
func (l Layout) ExecutablePath() string { return l.resolve(l.Executable) }
func (l Layout) ScriptPath() string     { return l.resolve(l.Script) }

// InterpreterPaths resolves every configured interpreter, in order.
func (l Layout) InterpreterPaths() []string {
	out := make([]string, 0, len(l.Interpreters))
	for _, interp := range l.Interpreters {
		if strings.TrimSpace(interp) == "" {
			continue
		}
		out = append(out, l.resolve(interp))
	}
	return out
}

func (l Layout) resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(l.Dir, name)
}
