package pipeline

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGuardRejectsOverlap(t *testing.T) {
	g := NewGuard()
	dir := t.TempDir()

	release, err := g.Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := g.Acquire(filepath.Join(dir, ".", "sub", "..")); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for equivalent path, got %v", err)
	}
	if _, err := g.Acquire(t.TempDir()); err != nil {
		t.Fatalf("other dir should be free: %v", err)
	}

	release()
	release()
	again, err := g.Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}

func TestGuardConcurrentAcquire(t *testing.T) {
	g := NewGuard()
	dir := t.TempDir()

	var won atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := g.Acquire(dir); err == nil {
				won.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	if n := won.Load(); n != 1 {
		t.Fatalf("expected exactly one winner, got %d", n)
	}
}

func TestGuardRequiresDir(t *testing.T) {
	if _, err := NewGuard().Acquire(" "); err == nil {
		t.Fatalf("expected error")
	}
}
