// Package latch provides a single-flight guard: at most one request of a kind
// may be outstanding, and a second one is rejected rather than queued.
package latch

import (
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when a request of the same kind is already in flight.
var ErrBusy = errors.New("a request of this kind is already in flight")

// State is the state of a Latch.
type State int32

const (
	Idle State = iota
	InFlight
)

func (s State) String() string {
	if s == InFlight {
		return "in-flight"
	}
	return "idle"
}

// Latch guards one kind of outbound request. The zero value is Idle.
type Latch struct {
	name  string
	state atomic.Int32
}

// New returns an idle latch. name is used in logs and status output.
func New(name string) *Latch {
	return &Latch{name: name}
}

// Name returns the kind of request the latch guards.
func (l *Latch) Name() string {
	return l.name
}

// TryAcquire moves the latch from Idle to InFlight. It reports false, and
// changes nothing, when the latch is already InFlight.
func (l *Latch) TryAcquire() bool {
	return l.state.CompareAndSwap(int32(Idle), int32(InFlight))
}

// Release moves the latch back to Idle.
func (l *Latch) Release() {
	l.state.Store(int32(Idle))
}

// State returns the current state.
func (l *Latch) State() State {
	return State(l.state.Load())
}

// Do runs fn while holding the latch. It returns ErrBusy without calling fn
// when another call is in flight. The latch is released however fn returns.
func (l *Latch) Do(fn func() error) error {
	if !l.TryAcquire() {
		return ErrBusy
	}
	defer l.Release()
	return fn()
}
