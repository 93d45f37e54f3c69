package latch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLatch_ZeroValueIsIdle(t *testing.T) {
	var l Latch
	if l.State() != Idle {
		t.Errorf("State() = %v, want idle", l.State())
	}
}

func TestLatch_RejectsSecondAcquire(t *testing.T) {
	l := New("generate")
	if !l.TryAcquire() {
		t.Fatal("first TryAcquire() failed")
	}
	if l.TryAcquire() {
		t.Fatal("second TryAcquire() succeeded while in flight")
	}
	if l.State() != InFlight {
		t.Errorf("State() = %v, want in-flight", l.State())
	}

	l.Release()
	if !l.TryAcquire() {
		t.Error("TryAcquire() failed after Release()")
	}
}

func TestLatch_DoReleasesOnError(t *testing.T) {
	l := New("upload")
	boom := errors.New("boom")

	if err := l.Do(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want boom", err)
	}
	if l.State() != Idle {
		t.Errorf("State() = %v after failed Do(), want idle", l.State())
	}
}

func TestLatch_DoReleasesOnPanic(t *testing.T) {
	l := New("upload")
	func() {
		defer func() { _ = recover() }()
		_ = l.Do(func() error { panic("boom") })
	}()
	if l.State() != Idle {
		t.Errorf("State() = %v after panic, want idle", l.State())
	}
}

func TestLatch_DoWhileBusy(t *testing.T) {
	l := New("generate")
	entered := make(chan struct{})
	finish := make(chan struct{})

	go func() {
		_ = l.Do(func() error {
			close(entered)
			<-finish
			return nil
		})
	}()
	<-entered

	called := false
	if err := l.Do(func() error { called = true; return nil }); !errors.Is(err, ErrBusy) {
		t.Errorf("Do() error = %v, want ErrBusy", err)
	}
	if called {
		t.Error("Do() ran fn while busy")
	}
	close(finish)
}

func TestLatch_OnlyOneWinner(t *testing.T) {
	l := New("generate")
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if l.TryAcquire() {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if winners.Load() != 1 {
		t.Errorf("%d goroutines acquired the latch, want 1", winners.Load())
	}
}
