package osal

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosmicro/hal/status"
)

func TestTaskCreateValidation(t *testing.T) {
	_, code := TaskCreate(TaskConfig{Func: nil, Priority: 0, StackSize: 1})
	require.Equal(t, status.InvalidParam, code)

	_, code = TaskCreate(TaskConfig{Func: func(any) {}, Priority: 99, StackSize: 1})
	require.Equal(t, status.InvalidParam, code)

	_, code = TaskCreate(TaskConfig{Func: func(any) {}, Priority: 0, StackSize: 0})
	require.Equal(t, status.InvalidParam, code)
}

func TestTaskGetCurrentInsideTaskFunc(t *testing.T) {
	seen := make(chan *Task, 1)
	tsk, code := TaskCreate(TaskConfig{
		Func: func(any) {
			cur, code := TaskGetCurrent()
			require.Equal(t, status.Ok, code)
			seen <- cur
		},
		Priority:  3,
		StackSize: 4096,
	})
	require.Equal(t, status.Ok, code)

	select {
	case cur := <-seen:
		require.Same(t, tsk, cur)
	case <-time.After(time.Second):
		t.Fatal("task function did not observe itself via TaskGetCurrent")
	}
}

func TestTaskGetCurrentOutsideAnyTaskIsNotFound(t *testing.T) {
	_, code := TaskGetCurrent()
	require.Equal(t, status.NotFound, code)
}

func TestTaskSuspendResumeBlocksAtCheckpoint(t *testing.T) {
	var afterDelay int32
	tsk, _ := TaskCreate(TaskConfig{
		Func: func(any) {
			TaskDelay(5)
			atomic.StoreInt32(&afterDelay, 1)
			for {
				TaskYield()
				if atomic.LoadInt32(&afterDelay) == 2 {
					return
				}
			}
		},
		Priority:  1,
		StackSize: 4096,
	})

	require.Eventually(t, func() bool { return atomic.LoadInt32(&afterDelay) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, status.Ok, TaskSuspend(tsk))
	require.Equal(t, TaskSuspendedState, tsk.State())

	require.Equal(t, status.Ok, TaskResume(tsk))
	atomic.StoreInt32(&afterDelay, 2)
	require.Eventually(t, func() bool { return tsk.State() != TaskSuspendedState }, time.Second, time.Millisecond)
}

func TestTaskDeleteTerminatesAtCheckpoint(t *testing.T) {
	done := make(chan struct{})
	tsk, _ := TaskCreate(TaskConfig{
		Func: func(any) {
			defer close(done)
			for i := 0; i < 1000; i++ {
				TaskYield()
			}
		},
		Priority:  1,
		StackSize: 4096,
	})
	require.Equal(t, status.Ok, TaskDelete(tsk))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deleted task goroutine never exited")
	}
}

func TestTaskSuspendDeletedTaskIsInvalidState(t *testing.T) {
	tsk, _ := TaskCreate(TaskConfig{Func: func(any) { TaskYield() }, Priority: 0, StackSize: 4096})
	TaskDelete(tsk)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, status.InvalidState, TaskSuspend(tsk))
}
