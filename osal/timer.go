package osal

import (
	"sync"
	"time"

	"github.com/gosmicro/hal/status"
)

// TimerState is the lifecycle state of a software Timer.
type TimerState int

const (
	TimerStopped TimerState = iota
	TimerRunning
	TimerExpiredOneShot
)

// TimerKind selects whether a timer fires once or repeatedly.
type TimerKind int

const (
	TimerOneShot TimerKind = iota
	TimerPeriodic
)

// Timer is a software timer backed by the OSAL scheduling backend
// (spec.md §4.3.1). Callbacks run on their own goroutine, one per timer,
// so a slow callback never delays other timers.
type Timer struct {
	mu       sync.Mutex
	kind     TimerKind
	period   time.Duration
	state    TimerState
	callback func()

	generation int
	stopCh     chan struct{}
}

// TimerCreate allocates a timer. period must be positive.
func TimerCreate(kind TimerKind, period time.Duration, callback func()) (*Timer, status.Code) {
	if period <= 0 || callback == nil {
		return nil, status.InvalidParam
	}
	diagCreated(kindTimer)
	return &Timer{kind: kind, period: period, callback: callback, state: TimerStopped}, status.Ok
}

// Delete stops the timer and releases its diagnostic accounting.
func (t *Timer) Delete() status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.Stop()
	diagDeleted(kindTimer)
	return status.Ok
}

// Start (re)arms the timer, transitioning stopped|running|expired_one_shot
// to running and arming the deadline at now + period — calling Start on
// an already-running timer rearms it from now, per spec.md §4.3.8.
func (t *Timer) Start() status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.mu.Lock()
	if t.state == TimerRunning {
		t.generation++
		stop := t.stopCh
		t.mu.Unlock()
		if stop != nil {
			close(stop)
		}
		t.mu.Lock()
	}
	t.generation++
	gen := t.generation
	t.state = TimerRunning
	stop := make(chan struct{})
	t.stopCh = stop
	period := t.period
	kind := t.kind
	t.mu.Unlock()

	go t.run(gen, stop, period, kind)
	return status.Ok
}

// run drives the timer's deadline off the previous deadline rather than
// "now + period" on every tick, so periodic callback latency does not
// accumulate drift across ticks.
func (t *Timer) run(gen int, stop chan struct{}, period time.Duration, kind TimerKind) {
	deadline := backend().Now().Add(period)
	for {
		now := backend().Now()
		wait := deadline.Sub(now)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		t.mu.Lock()
		if t.generation != gen {
			t.mu.Unlock()
			return
		}
		if kind == TimerOneShot {
			t.state = TimerExpiredOneShot
		}
		cb := t.callback
		t.mu.Unlock()

		if cb != nil {
			cb()
		}

		if kind == TimerOneShot {
			return
		}
		deadline = deadline.Add(period)
	}
}

// Stop disarms the timer. It is idempotent.
func (t *Timer) Stop() status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.mu.Lock()
	if t.state != TimerRunning {
		t.state = TimerStopped
		t.mu.Unlock()
		return status.Ok
	}
	t.state = TimerStopped
	t.generation++
	stop := t.stopCh
	t.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	return status.Ok
}

// Reset restarts the timer's period from now, whether or not it was
// already running.
func (t *Timer) Reset() status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.Stop()
	return t.Start()
}

// SetPeriod changes the timer's period. It takes effect the next time
// the timer is (re)started.
func (t *Timer) SetPeriod(period time.Duration) status.Code {
	if t == nil {
		return status.NullPointer
	}
	if period <= 0 {
		return status.InvalidParam
	}
	t.mu.Lock()
	t.period = period
	t.mu.Unlock()
	return status.Ok
}

// IsActive reports whether the timer is currently running.
func (t *Timer) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == TimerRunning
}

// State returns the timer's current lifecycle state.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
