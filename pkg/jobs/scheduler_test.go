package jobs

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/pbinitiative/zenflow/pkg/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testRunner struct {
	lockErr   error
	locked    []int64
	continued []int64
	released  []int64
}

func (r *testRunner) LockInstance(ctx context.Context, workflowInstanceId int64, activityInstanceId int64) (*runtime.WorkflowInstance, error) {
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	r.locked = append(r.locked, workflowInstanceId)
	wi := runtime.NewWorkflowInstance(workflowInstanceId, runtime.WorkflowDefinition{WorkflowId: "test"}, time.Now())
	return wi, nil
}

func (r *testRunner) ContinueInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	r.continued = append(r.continued, wi.Id)
	return nil
}

func (r *testRunner) ReleaseInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	r.released = append(r.released, wi.Id)
	return nil
}

type generousPolicy struct {
	JobTypeFunc
}

func (generousPolicy) MaxRetries() int {
	return 10
}

func (generousPolicy) RetryDelay(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

func newTestScheduler(t *testing.T, store Store, runner InstanceRunner, options ...SchedulerOption) (*Scheduler, *testClock) {
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	options = append([]SchedulerOption{
		SchedulerWithClock(clock.Now),
		SchedulerWithOwner("node-test"),
		SchedulerWithContentionDelay(5 * time.Second),
	}, options...)
	return NewScheduler(store, runner, options...), clock
}

func newJob(jobType string, due time.Time) runtime.Job {
	return runtime.Job{
		Id:        rand.Int63(),
		Type:      jobType,
		Due:       due,
		CreatedAt: due,
	}
}

func TestFailingJobIsRetriedWithBackoffUntilDead(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	var died []runtime.Job
	scheduler, clock := newTestScheduler(t, store, nil, SchedulerWithDeadJobListener(DeadJobListenerFunc(func(ctx context.Context, job runtime.Job, cause error) {
		died = append(died, job)
	})))
	attempts := 0
	scheduler.RegisterJobType(JobTypeFunc{Name: "failing", Func: func(ctx context.Context, c *Controller) error {
		attempts++
		return errors.New("boom")
	}})

	// given
	job := newJob("failing", clock.Now())
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when / then
	expectedDelays := []time.Duration{3 * time.Second, time.Hour, 24 * time.Hour}
	for i, delay := range expectedDelays {
		executed, err := scheduler.PollOnce(t.Context(), false)
		require.NoError(t, err)
		assert.Equal(t, 1, executed)

		stored, err := store.FindJobById(t.Context(), job.Id)
		require.NoError(t, err)
		require.NotNil(t, stored.Retries)
		assert.Equal(t, 2-i, *stored.Retries)
		assert.Equal(t, clock.Now().Add(delay), stored.Due)
		assert.Nil(t, stored.Lock)
		assert.False(t, stored.Dead)
		assert.Len(t, stored.Executions, i+1)
		assert.Equal(t, "boom", stored.Executions[i].Error)

		// not due before the delay passed
		executed, err = scheduler.PollOnce(t.Context(), false)
		require.NoError(t, err)
		assert.Equal(t, 0, executed)
		clock.Advance(delay)
	}

	executed, err := scheduler.PollOnce(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	assert.Equal(t, 4, attempts)

	_, err = store.FindJobById(t.Context(), job.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	archived, err := store.FindArchivedJobs(t.Context(), storage.JobQuery{JobId: job.Id})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.True(t, archived[0].Dead)
	assert.NotNil(t, archived[0].Done)
	assert.Equal(t, 0, *archived[0].Retries)
	require.Len(t, died, 1)
	assert.Equal(t, job.Id, died[0].Id)

	// never retried again
	clock.Advance(48 * time.Hour)
	executed, err = scheduler.PollOnce(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, executed)
	assert.Equal(t, 4, attempts)
}

func TestExecutionHistoryDropsOldestEntries(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	scheduler, clock := newTestScheduler(t, store, nil, SchedulerWithMaxJobExecutions(5))
	scheduler.RegisterJobType(generousPolicy{JobTypeFunc{Name: "generous", Func: func(ctx context.Context, c *Controller) error {
		return errors.New("boom")
	}}})

	// given
	job := newJob("generous", clock.Now())
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	var firstKept time.Time
	for i := range 7 {
		if i == 2 {
			firstKept = clock.Now()
		}
		_, err := scheduler.PollOnce(t.Context(), false)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	// then
	stored, err := store.FindJobById(t.Context(), job.Id)
	require.NoError(t, err)
	assert.Len(t, stored.Executions, 5)
	assert.Equal(t, firstKept, stored.Executions[0].Time)
	assert.Equal(t, 3, *stored.Retries)
}

func TestRescheduleIsNotAFailure(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	scheduler, clock := newTestScheduler(t, store, nil)
	runs := 0
	scheduler.RegisterJobType(JobTypeFunc{Name: "polling", Func: func(ctx context.Context, c *Controller) error {
		runs++
		if runs == 1 {
			c.Data()["seen"] = true
			c.RescheduleFromNow(time.Minute)
		}
		return nil
	}})

	// given
	job := newJob("polling", clock.Now())
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	_, err := scheduler.PollOnce(t.Context(), false)
	require.NoError(t, err)

	// then
	stored, err := store.FindJobById(t.Context(), job.Id)
	require.NoError(t, err)
	assert.Nil(t, stored.Retries)
	assert.Equal(t, clock.Now().Add(time.Minute), stored.Due)
	assert.Equal(t, true, stored.Data["seen"])
	assert.Empty(t, stored.Executions[0].Error)

	clock.Advance(time.Minute)
	_, err = scheduler.PollOnce(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
	archived, err := store.FindArchivedJobs(t.Context(), storage.JobQuery{JobId: job.Id})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.False(t, archived[0].Dead)
}

func TestBoundJobRunsWithInstanceLock(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	runner := &testRunner{}
	scheduler, clock := newTestScheduler(t, store, runner)
	var seen *runtime.WorkflowInstance
	scheduler.RegisterJobType(JobTypeFunc{Name: "bound", Func: func(ctx context.Context, c *Controller) error {
		seen = c.WorkflowInstance()
		return nil
	}})

	// given
	job := newJob("bound", clock.Now())
	job.WorkflowInstanceId = 42
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	executed, err := scheduler.PollOnce(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, executed, "bound jobs are not polled by the free pool")
	executed, err = scheduler.PollOnce(t.Context(), true)
	require.NoError(t, err)

	// then
	assert.Equal(t, 1, executed)
	require.NotNil(t, seen)
	assert.Equal(t, int64(42), seen.Id)
	assert.Equal(t, []int64{42}, runner.locked)
	assert.Equal(t, []int64{42}, runner.continued)
	assert.Empty(t, runner.released)
}

func TestFailingBoundJobReleasesInstance(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	runner := &testRunner{}
	scheduler, clock := newTestScheduler(t, store, runner)
	scheduler.RegisterJobType(JobTypeFunc{Name: "bound", Func: func(ctx context.Context, c *Controller) error {
		panic("handler crashed")
	}})

	// given
	job := newJob("bound", clock.Now())
	job.WorkflowInstanceId = 7
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	_, err := scheduler.PollOnce(t.Context(), true)
	require.NoError(t, err)

	// then
	assert.Equal(t, []int64{7}, runner.released)
	assert.Empty(t, runner.continued)
	stored, err := store.FindJobById(t.Context(), job.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, *stored.Retries)
	assert.Contains(t, stored.Executions[0].Error, "handler crashed")
}

func TestLockedInstancePostponesJob(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	runner := &testRunner{lockErr: storage.ErrInstanceLocked}
	scheduler, clock := newTestScheduler(t, store, runner)
	scheduler.RegisterJobType(JobTypeFunc{Name: "bound", Func: func(ctx context.Context, c *Controller) error {
		return nil
	}})

	// given
	job := newJob("bound", clock.Now())
	job.WorkflowInstanceId = 7
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	_, err := scheduler.PollOnce(t.Context(), true)
	require.NoError(t, err)

	// then
	stored, err := store.FindJobById(t.Context(), job.Id)
	require.NoError(t, err)
	assert.Nil(t, stored.Retries)
	assert.Empty(t, stored.Executions)
	assert.Equal(t, clock.Now().Add(5*time.Second), stored.Due)
}

func TestJobOfEndedActivityIsArchived(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	runner := &testRunner{lockErr: storage.ErrNotFound}
	scheduler, clock := newTestScheduler(t, store, runner)
	scheduler.RegisterJobType(JobTypeFunc{Name: "bound", Func: func(ctx context.Context, c *Controller) error {
		return nil
	}})

	// given
	job := newJob("bound", clock.Now())
	job.WorkflowInstanceId = 7
	job.ActivityInstanceId = 8
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	_, err := scheduler.PollOnce(t.Context(), true)
	require.NoError(t, err)

	// then
	archived, err := store.FindArchivedJobs(t.Context(), storage.JobQuery{JobId: job.Id})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.False(t, archived[0].Dead)
	assert.NotNil(t, archived[0].Done)
}

func TestExecuteJobByIdIgnoresDueDate(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	scheduler, clock := newTestScheduler(t, store, nil)
	runs := 0
	scheduler.RegisterJobType(JobTypeFunc{Name: "later", Func: func(ctx context.Context, c *Controller) error {
		runs++
		return nil
	}})

	// given
	job := newJob("later", clock.Now().Add(time.Hour))
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	err := scheduler.ExecuteJobById(t.Context(), job.Id)
	require.NoError(t, err)
	err = scheduler.ExecuteJobById(t.Context(), job.Id)
	require.NoError(t, err)

	// then
	assert.Equal(t, 1, runs)
}

func TestSchedulerPollsInBackground(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	scheduler := NewScheduler(store, nil, SchedulerWithPollInterval(10*time.Millisecond))
	var runs atomic.Int32
	scheduler.RegisterJobType(JobTypeFunc{Name: "background", Func: func(ctx context.Context, c *Controller) error {
		runs.Add(1)
		return nil
	}})
	scheduler.Start(t.Context())
	defer scheduler.Stop()

	// when
	for range 3 {
		require.NoError(t, store.SaveJob(t.Context(), newJob("background", time.Now())))
	}

	// then
	assert.Eventually(t, func() bool {
		return runs.Load() == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUnknownJobTypeFails(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	scheduler, clock := newTestScheduler(t, store, nil)

	// given
	job := newJob("unknown", clock.Now())
	require.NoError(t, store.SaveJob(t.Context(), job))

	// when
	_, err := scheduler.PollOnce(t.Context(), false)
	require.NoError(t, err)

	// then
	stored, err := store.FindJobById(t.Context(), job.Id)
	require.NoError(t, err)
	assert.Contains(t, stored.Executions[0].Error, "no job type")
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy{}
	assert.Equal(t, 3, policy.MaxRetries())
	assert.Equal(t, 3*time.Second, policy.RetryDelay(1))
	assert.Equal(t, time.Hour, policy.RetryDelay(2))
	assert.Equal(t, 24*time.Hour, policy.RetryDelay(3))
	assert.Equal(t, 24*time.Hour, policy.RetryDelay(7))
}

func TestClaimOfDeadNodeExpires(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	scheduler, clock := newTestScheduler(t, store, nil, SchedulerWithLockLease(time.Minute))
	executed := 0
	scheduler.RegisterJobType(JobTypeFunc{Name: "work", Func: func(ctx context.Context, c *Controller) error {
		executed++
		return nil
	}})
	job := newJob("work", clock.Now())
	require.NoError(t, store.SaveJob(t.Context(), job))

	// given
	_, err := store.LockNextDueJob(t.Context(), false, clock.Now(), time.Time{}, runtime.Lock{Time: clock.Now(), Owner: "dead-node"})
	require.NoError(t, err)

	// when
	clock.Advance(30 * time.Second)
	n, err := scheduler.PollOnce(t.Context(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// when
	clock.Advance(31 * time.Second)
	n, err = scheduler.PollOnce(t.Context(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, executed)
	archived, err := store.FindArchivedJobs(t.Context(), storage.JobQuery{JobId: job.Id})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "node-test", archived[0].Executions[0].Owner)
}
