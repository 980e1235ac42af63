package analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testLayout(dir string) Layout {
	l := DefaultLayout(dir)
	l.Executable = "analyzer-bin"
	l.Interpreters = []string{filepath.Join(".venv", "bin", "python3"), filepath.Join(".venv", "bin", "python")}
	return l
}

func TestResolvePrefersBundledExecutable(t *testing.T) {
	dir := t.TempDir()
	l := testLayout(dir)
	touch(t, l.ExecutablePath())
	touch(t, l.ScriptPath())
	touch(t, l.InterpreterPaths()[0])

	got, err := NewResolver(l).Resolve()
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	want := Strategy{Kind: KindBundledExecutable, Program: l.ExecutablePath(), Dir: dir}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFallsBackToInterpreter(t *testing.T) {
	dir := t.TempDir()
	l := testLayout(dir)
	touch(t, l.ScriptPath())
	touch(t, l.InterpreterPaths()[1])

	got, err := NewResolver(l).Resolve()
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	want := Strategy{
		Kind:    KindInterpreterScript,
		Program: l.InterpreterPaths()[1],
		Args:    []string{l.ScriptPath()},
		Dir:     dir,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRequiresBothInterpreterAndScript(t *testing.T) {
	cases := []struct {
		name  string
		files func(l Layout) []string
	}{
		{name: "nothing", files: func(Layout) []string { return nil }},
		{name: "script only", files: func(l Layout) []string { return []string{l.ScriptPath()} }},
		{name: "interpreter only", files: func(l Layout) []string { return []string{l.InterpreterPaths()[0]} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			l := testLayout(dir)
			for _, f := range tc.files(l) {
				touch(t, f)
			}
			_, err := NewResolver(l).Resolve()
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Resolve() err=%v, want ErrUnavailable", err)
			}
			var unavailable *UnavailableError
			if !errors.As(err, &unavailable) || len(unavailable.Checked) == 0 {
				t.Fatalf("expected checked paths in %v", err)
			}
		})
	}
}

func TestResolveIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	l := testLayout(dir)
	if err := os.MkdirAll(l.ExecutablePath(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := NewResolver(l).Resolve(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Resolve() err=%v, want ErrUnavailable", err)
	}
}

func TestResolveRejectsInvalidLayout(t *testing.T) {
	_, err := NewResolver(Layout{}).Resolve()
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Fatalf("Resolve() err=%v, want layout validation error", err)
	}
}

func TestLayoutResolvesAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "python3")
	l := testLayout(dir)
	l.Interpreters = []string{abs, " "}
	if diff := cmp.Diff([]string{abs}, l.InterpreterPaths()); diff != "" {
		t.Fatalf("InterpreterPaths() mismatch (-want +got):\n%s", diff)
	}
	if got := l.SnapshotPath(); got != filepath.Join(dir, "expenses.csv") {
		t.Fatalf("SnapshotPath()=%s", got)
	}
}
