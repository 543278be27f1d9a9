package bpmn

import (
	"golang.org/x/sync/errgroup"
)

// Executor runs work handed over by the engine after a workflow instance was unlocked,
// for example the first execution of an asynchronous continuation.
// Every task handed to an executor is backed by a durable job, so an executor may drop tasks;
// the job scheduler picks them up on its next poll.
type Executor interface {
	Execute(task func())
}

// SyncExecutor runs tasks on the calling goroutine. Engine calls return only after all
// follow-up work finished, which keeps tests deterministic.
type SyncExecutor struct{}

func (SyncExecutor) Execute(task func()) {
	task()
}

// PoolExecutor runs tasks on a bounded number of goroutines and drops tasks while all of them are busy.
type PoolExecutor struct {
	group *errgroup.Group
}

func NewPoolExecutor(size int) *PoolExecutor {
	group := &errgroup.Group{}
	if size > 0 {
		group.SetLimit(size)
	}
	return &PoolExecutor{group: group}
}

func (e *PoolExecutor) Execute(task func()) {
	e.group.TryGo(func() error {
		task()
		return nil
	})
}

// Wait blocks until all running tasks returned.
func (e *PoolExecutor) Wait() {
	_ = e.group.Wait()
}
