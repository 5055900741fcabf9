package osal

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/gosmicro/hal/internal/config"
	"github.com/gosmicro/hal/status"
)

// TaskID identifies the goroutine backing an OSAL task. Zero is never a
// valid id.
type TaskID uint64

// TaskState mirrors the lifecycle states a task can observe itself in.
type TaskState int

const (
	TaskReady TaskState = iota
	TaskSuspendedState
	TaskDeleted
)

// TaskConfig describes a task to be created, per spec.md §3: a name, an
// entry point, an argument, a priority in [0,31], and a nominal stack
// size. StackSize has no meaning on the host (goroutines grow their own
// stacks) but is still validated, since a caller porting real embedded
// code expects the same validation contract on every backend.
type TaskConfig struct {
	Name      string
	Func      func(arg any)
	Arg       any
	Priority  int
	StackSize int
}

// Task is an OSAL task handle.
type Task struct {
	id       TaskID
	name     string
	priority int

	mu        sync.Mutex
	state     TaskState
	resumeGen *notifier
}

func (t *Task) Name() string      { return t.name }
func (t *Task) Priority() int     { return t.priority }
func (t *Task) ID() TaskID        { return t.id }
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

var taskRegistry = struct {
	mu  sync.Mutex
	byID map[TaskID]*Task
}{byID: map[TaskID]*Task{}}

// goroutineID extracts the runtime-assigned goroutine id from the
// current goroutine's stack trace header ("goroutine 37 [running]: ...").
// The Go runtime does not expose this through any supported API; parsing
// it is a well-known, narrowly-scoped trick for emulating a thread-local
// "current task" identity, used here only to resolve ownership for
// Mutex/GetCurrent and never for scheduling decisions.
func goroutineID() TaskID {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if idx := bytes.IndexByte(buf, ' '); idx >= 0 {
		buf = buf[:idx]
	}
	id, _ := strconv.ParseUint(string(buf), 10, 64)
	return TaskID(id)
}

// TaskCreate validates cfg and spawns the task's goroutine. Out-of-memory
// has no realistic analogue for a goroutine spawn on a hosted build, so
// unlike the embedded source this never returns NoMemory; every other
// validation in spec.md §4.3.3 is enforced.
func TaskCreate(cfg TaskConfig) (*Task, status.Code) {
	if cfg.Func == nil {
		return nil, status.InvalidParam
	}
	maxPriority := config.Get().TaskPriorityMax
	if cfg.Priority < 0 || cfg.Priority > maxPriority {
		return nil, status.InvalidParam
	}
	if cfg.StackSize <= 0 {
		return nil, status.InvalidParam
	}

	t := &Task{
		name:      cfg.Name,
		priority:  cfg.Priority,
		state:     TaskReady,
		resumeGen: newNotifier(),
	}

	ready := make(chan TaskID, 1)
	go func() {
		t.id = goroutineID()
		taskRegistry.mu.Lock()
		taskRegistry.byID[t.id] = t
		taskRegistry.mu.Unlock()
		ready <- t.id

		defer func() {
			taskRegistry.mu.Lock()
			delete(taskRegistry.byID, t.id)
			taskRegistry.mu.Unlock()
		}()

		cfg.Func(cfg.Arg)
	}()
	t.id = <-ready

	log.Debug("task created", "name", cfg.Name, "priority", cfg.Priority)
	return t, status.Ok
}

// TaskGetCurrent resolves the calling goroutine's Task handle. It
// returns NotFound when called from a goroutine that was not spawned by
// TaskCreate (e.g. the test or main goroutine).
func TaskGetCurrent() (*Task, status.Code) {
	taskRegistry.mu.Lock()
	t, ok := taskRegistry.byID[goroutineID()]
	taskRegistry.mu.Unlock()
	if !ok {
		return nil, status.NotFound
	}
	return t, status.Ok
}

func currentTaskID() TaskID {
	return goroutineID()
}

// taskCheckpoint is the internal suspension point every blocking OSAL
// call and TaskDelay/Yield pass through: it parks the calling task while
// suspended and terminates it via runtime.Goexit once deleted.
func taskCheckpoint() {
	taskRegistry.mu.Lock()
	t, ok := taskRegistry.byID[goroutineID()]
	taskRegistry.mu.Unlock()
	if !ok {
		return
	}
	for {
		t.mu.Lock()
		st := t.state
		t.mu.Unlock()
		switch st {
		case TaskDeleted:
			runtime.Goexit()
		case TaskSuspendedState:
			<-t.resumeGen.channel()
			continue
		default:
			return
		}
	}
}

// TaskDelay suspends the calling task for at least ms milliseconds
// (spec.md §4.3.3). Under the cooperative backend this is a busy-wait;
// under the preemptive backend it parks the goroutine.
func TaskDelay(ms int64) status.Code {
	if ms < 0 {
		return status.InvalidParam
	}
	backend().Delay(msDuration(ms))
	taskCheckpoint()
	return status.Ok
}

// TaskYield gives other ready tasks a turn.
func TaskYield() {
	Yield()
	taskCheckpoint()
}

// TaskSuspend marks t suspended. The task actually pauses the next time
// it passes through a suspension point (TaskDelay, TaskYield, or a
// blocking primitive).
func TaskSuspend(t *Task) status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TaskDeleted {
		return status.InvalidState
	}
	t.state = TaskSuspendedState
	return status.Ok
}

// TaskResume releases a task parked by TaskSuspend.
func TaskResume(t *Task) status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.mu.Lock()
	if t.state == TaskDeleted {
		t.mu.Unlock()
		return status.InvalidState
	}
	t.state = TaskReady
	t.mu.Unlock()
	t.resumeGen.broadcast()
	return status.Ok
}

// TaskDelete marks t for termination; the task goroutine exits the next
// time it passes through a suspension point.
func TaskDelete(t *Task) status.Code {
	if t == nil {
		return status.NullPointer
	}
	t.mu.Lock()
	t.state = TaskDeleted
	t.mu.Unlock()
	t.resumeGen.broadcast()
	return status.Ok
}
