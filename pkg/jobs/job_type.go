// Package jobs executes durable deferred work: timers, asynchronous continuations and scheduled workflow starts.
//
// A Scheduler polls two pools. Jobs bound to a workflow instance lock that instance before they execute
// and flush it afterwards; free jobs run without an instance lock. Failed executions are retried with
// the backoff of the job type until the retry budget is exhausted, then the job is marked dead.
package jobs

import (
	"context"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// JobType implements the work behind runtime.Job.Type.
type JobType interface {
	Type() string
	Execute(ctx context.Context, c *Controller) error
}

// RetryPolicy can be implemented by a JobType to replace DefaultRetryPolicy.
type RetryPolicy interface {
	MaxRetries() int
	// RetryDelay returns the delay before the given attempt, attempts start at 1.
	RetryDelay(attempt int) time.Duration
}

type DefaultRetryPolicy struct{}

func (DefaultRetryPolicy) MaxRetries() int {
	return 3
}

func (DefaultRetryPolicy) RetryDelay(attempt int) time.Duration {
	switch {
	case attempt <= 1:
		return 3 * time.Second
	case attempt == 2:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// JobTypeFunc adapts a function to a JobType with the default retry policy.
type JobTypeFunc struct {
	Name string
	Func func(ctx context.Context, c *Controller) error
}

func (f JobTypeFunc) Type() string {
	return f.Name
}

func (f JobTypeFunc) Execute(ctx context.Context, c *Controller) error {
	return f.Func(ctx, c)
}

// InstanceRunner gives bound jobs access to their workflow instance. It is implemented by the engine.
type InstanceRunner interface {
	// LockInstance locks the instance for the activity instance, see storage.WorkflowInstanceStorageWriter.
	LockInstance(ctx context.Context, workflowInstanceId int64, activityInstanceId int64) (*runtime.WorkflowInstance, error)
	// ContinueInstance runs the pending work of a locked instance and flushes and unlocks it.
	// The instance is unlocked even when an error is returned.
	ContinueInstance(ctx context.Context, wi *runtime.WorkflowInstance) error
	// ReleaseInstance unlocks the instance and drops its pending changes.
	ReleaseInstance(ctx context.Context, wi *runtime.WorkflowInstance) error
}

type DeadJobListener interface {
	JobDied(ctx context.Context, job runtime.Job, cause error)
}

type DeadJobListenerFunc func(ctx context.Context, job runtime.Job, cause error)

func (f DeadJobListenerFunc) JobDied(ctx context.Context, job runtime.Job, cause error) {
	f(ctx, job, cause)
}
