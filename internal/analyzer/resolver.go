package analyzer

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind names one way of invoking the analyzer.
type Kind string

const (
	KindBundledExecutable Kind = "bundled_executable"
	KindInterpreterScript Kind = "interpreter_script"
)

// Strategy is the resolved program, its leading arguments and the directory
// it must run in. It is chosen once per run and not modified afterwards.
type Strategy struct {
	Kind    Kind
	Program string
	Args    []string
	Dir     string
}

var ErrUnavailable = errors.New("no analyzer available")

// UnavailableError lists every path that was checked without success.
type UnavailableError struct {
	Dir     string
	Checked []string
}

func (e *UnavailableError) Error() string {
	if len(e.Checked) == 0 {
		return fmt.Sprintf("%s in %s", ErrUnavailable, e.Dir)
	}
	return fmt.Sprintf("%s in %s (checked: %s)", ErrUnavailable, e.Dir, strings.Join(e.Checked, ", "))
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

type candidate func(l Layout, checked *[]string) (Strategy, bool)

// Resolver walks the candidates in priority order: the self-contained
// executable first, then interpreter plus script.
type Resolver struct {
	layout     Layout
	candidates []candidate
}

func NewResolver(layout Layout) *Resolver {
	return &Resolver{
		layout:     layout,
		candidates: []candidate{bundledExecutable, interpreterScript},
	}
}

func (r *Resolver) Resolve() (Strategy, error) {
	if err := r.layout.Validate(); err != nil {
		return Strategy{}, err
	}
	checked := make([]string, 0, 4)
	for _, try := range r.candidates {
		if strategy, ok := try(r.layout, &checked); ok {
			return strategy, nil
		}
	}
	return Strategy{}, &UnavailableError{Dir: r.layout.Dir, Checked: checked}
}

func bundledExecutable(l Layout, checked *[]string) (Strategy, bool) {
	path := l.ExecutablePath()
	if path == "" {
		return Strategy{}, false
	}
	*checked = append(*checked, path)
	if !isRegularFile(path) {
		return Strategy{}, false
	}
	return Strategy{Kind: KindBundledExecutable, Program: path, Dir: l.Dir}, true
}

func interpreterScript(l Layout, checked *[]string) (Strategy, bool) {
	script := l.ScriptPath()
	if script == "" {
		return Strategy{}, false
	}
	*checked = append(*checked, script)
	if !isRegularFile(script) {
		return Strategy{}, false
	}
	for _, interp := range l.InterpreterPaths() {
		*checked = append(*checked, interp)
		if isRegularFile(interp) {
			return Strategy{
				Kind:    KindInterpreterScript,
				Program: interp,
				Args:    []string{script},
				Dir:     l.Dir,
			}, true
		}
	}
	return Strategy{}, false
}

// isRegularFile follows symlinks, so a virtualenv python that links to the
// system interpreter counts.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
