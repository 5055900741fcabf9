// Package devstate is the shared lifecycle guard every hal/drivers
// implementation embeds: it holds the uninitialized/running/suspended
// state capability.LifecycleBlock exposes, and the single Guard check
// every base-interface operation runs first. Guard reports
// NotInitialized before Init and Suspended while suspended; it does not
// check for a nil driver, so calling an operation on a nil driver
// panics rather than returning NullPointer.
package devstate

import (
	"sync"

	"github.com/gosmicro/hal/hal/capability"
	"github.com/gosmicro/hal/status"
)

type State struct {
	mu    sync.Mutex
	state capability.LifecycleState
}

// Guard returns the status code a base-interface operation should
// return immediately, or status.Ok if the operation may proceed.
func (s *State) Guard() status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case capability.LifecycleUninitialized:
		return status.NotInitialized
	case capability.LifecycleSuspended:
		return status.Suspended
	default:
		return status.Ok
	}
}

func (s *State) Get() capability.LifecycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// MarkRunning transitions to running unconditionally; drivers call this
// once their own Init logic succeeds.
func (s *State) MarkRunning() {
	s.mu.Lock()
	s.state = capability.LifecycleRunning
	s.mu.Unlock()
}

// MarkUninitialized transitions to uninitialized unconditionally.
func (s *State) MarkUninitialized() {
	s.mu.Lock()
	s.state = capability.LifecycleUninitialized
	s.mu.Unlock()
}

// Suspend transitions running to suspended; any other state is
// InvalidState.
func (s *State) Suspend() status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != capability.LifecycleRunning {
		return status.InvalidState
	}
	s.state = capability.LifecycleSuspended
	return status.Ok
}

// Resume transitions suspended back to running; any other state is
// InvalidState.
func (s *State) Resume() status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != capability.LifecycleSuspended {
		return status.InvalidState
	}
	s.state = capability.LifecycleRunning
	return status.Ok
}
