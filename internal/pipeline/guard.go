package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Guard keeps one in-flight flag per analyzer directory.
type Guard struct {
	flags sync.Map // clean absolute dir -> *atomic.Bool
}

func NewGuard() *Guard {
	return &Guard{}
}

var defaultGuard = NewGuard()

// Acquire marks dir as busy. The returned release is idempotent and must be
// called on every exit path.
func (g *Guard) Acquire(dir string) (func(), error) {
	key, err := guardKey(dir)
	if err != nil {
		return nil, err
	}
	v, _ := g.flags.LoadOrStore(key, new(atomic.Bool))
	flag := v.(*atomic.Bool)
	if !flag.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	var once sync.Once
	return func() {
		once.Do(func() { flag.Store(false) })
	}, nil
}

// Busy reports whether a run currently holds dir.
func (g *Guard) Busy(dir string) bool {
	key, err := guardKey(dir)
	if err != nil {
		return false
	}
	v, ok := g.flags.Load(key)
	return ok && v.(*atomic.Bool).Load()
}

func guardKey(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("guard dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve guard dir: %w", err)
	}
	return filepath.Clean(abs), nil
}
