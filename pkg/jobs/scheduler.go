package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	otelPkg "github.com/pbinitiative/zenflow/pkg/otel"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	errInstanceContention = errors.New("workflow instance of the job is locked")
	errObsolete           = errors.New("job target no longer exists")
	errPanic              = errors.New("job panicked")
)

type Store interface {
	storage.JobStorageReader
	storage.JobStorageWriter
}

type Scheduler struct {
	store  Store
	runner InstanceRunner

	typesMu sync.RWMutex
	types   map[string]JobType

	owner            string
	pollInterval     time.Duration
	instanceWorkers  int
	freeWorkers      int
	batchSize        int
	maxJobExecutions int
	contentionDelay  time.Duration
	lockLease        time.Duration
	now              func() time.Time
	logger           hclog.Logger
	metrics          *otelPkg.EngineMetrics
	tracer           trace.Tracer
	deadJobListeners []DeadJobListener

	boundBreaker *gobreaker.CircuitBreaker[runtime.Job]
	freeBreaker  *gobreaker.CircuitBreaker[runtime.Job]

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewScheduler creates a stopped scheduler. runner may be nil when only free jobs are scheduled.
func NewScheduler(store Store, runner InstanceRunner, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:            store,
		runner:           runner,
		types:            map[string]JobType{},
		owner:            "zenflow",
		pollInterval:     time.Second,
		instanceWorkers:  4,
		freeWorkers:      2,
		batchSize:        32,
		maxJobExecutions: 5,
		contentionDelay:  time.Second,
		lockLease:        5 * time.Minute,
		now:              time.Now,
		logger:           hclog.Default().Named("job-scheduler"),
		tracer:           otel.Tracer("zenflow-jobs"),
	}
	for _, option := range options {
		option(s)
	}
	s.boundBreaker = newPollBreaker("jobs-bound")
	s.freeBreaker = newPollBreaker("jobs-free")
	return s
}

// newPollBreaker stops polling a failing store for a while. An empty poll is a success.
func newPollBreaker(name string) *gobreaker.CircuitBreaker[runtime.Job] {
	return gobreaker.NewCircuitBreaker[runtime.Job](gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, storage.ErrNotFound)
		},
	})
}

func (s *Scheduler) RegisterJobType(jobType JobType) {
	s.typesMu.Lock()
	defer s.typesMu.Unlock()
	s.types[jobType.Type()] = jobType
}

func (s *Scheduler) jobType(name string) (JobType, bool) {
	s.typesMu.RLock()
	defer s.typesMu.RUnlock()
	jobType, ok := s.types[name]
	return jobType, ok
}

func (s *Scheduler) Owner() string {
	return s.owner
}

// Now returns the scheduler clock.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Start runs the poll loops of both pools until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.run(ctx, true, s.instanceWorkers)
	})
	g.Go(func() error {
		return s.run(ctx, false, s.freeWorkers)
	})
	s.cancel = cancel
	s.group = g
}

// Stop ends polling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	if err := s.group.Wait(); err != nil {
		s.logger.Error(fmt.Sprintf("Job scheduler stopped with error: %s", err))
	}
	s.cancel = nil
	s.group = nil
}

func (s *Scheduler) run(ctx context.Context, bound bool, workers int) error {
	var pool errgroup.Group
	pool.SetLimit(max(workers, 1))
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return pool.Wait()
		case <-ticker.C:
			s.poll(ctx, bound, &pool)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context, bound bool, pool *errgroup.Group) {
	for range s.batchSize {
		if ctx.Err() != nil {
			return
		}
		job, err := s.claim(ctx, bound)
		if err != nil {
			s.logPollError(bound, err)
			return
		}
		// running jobs finish even when the scheduler stops
		jobCtx := context.WithoutCancel(ctx)
		pool.Go(func() error {
			s.execute(jobCtx, job)
			return nil
		})
	}
}

func (s *Scheduler) logPollError(bound bool, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.logger.Debug(fmt.Sprintf("Polling of jobs (bound=%t) is paused: %s", bound, err))
	default:
		s.logger.Error(fmt.Sprintf("Failed to poll jobs (bound=%t): %s", bound, err))
	}
}

// PollOnce claims and executes due jobs of one pool in the calling goroutine.
// It returns the number of executed jobs.
func (s *Scheduler) PollOnce(ctx context.Context, bound bool) (int, error) {
	executed := 0
	for executed < s.batchSize {
		job, err := s.claim(ctx, bound)
		if errors.Is(err, storage.ErrNotFound) {
			return executed, nil
		}
		if err != nil {
			return executed, err
		}
		s.execute(ctx, job)
		executed++
	}
	return executed, nil
}

func (s *Scheduler) claim(ctx context.Context, bound bool) (runtime.Job, error) {
	breaker := s.freeBreaker
	if bound {
		breaker = s.boundBreaker
	}
	now := s.now()
	var staleBefore time.Time
	if s.lockLease > 0 {
		staleBefore = now.Add(-s.lockLease)
	}
	return breaker.Execute(func() (runtime.Job, error) {
		return s.store.LockNextDueJob(ctx, bound, now, staleBefore, runtime.Lock{Time: now, Owner: s.owner})
	})
}

// ExecuteJobById runs one job right away, regardless of its due date.
// A job that is already claimed by somebody else or gone is skipped.
func (s *Scheduler) ExecuteJobById(ctx context.Context, id int64) error {
	job, err := s.store.LockJob(ctx, id, runtime.Lock{Time: s.now(), Owner: s.owner})
	if errors.Is(err, storage.ErrInstanceLocked) || errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug(fmt.Sprintf("Job %d is not available for execution: %s", id, err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to lock job %d: %w", id, err)
	}
	s.execute(ctx, job)
	return nil
}

func (s *Scheduler) execute(ctx context.Context, job runtime.Job) {
	ctx, span := s.tracer.Start(ctx, fmt.Sprintf("job:%s", job.Type), trace.WithAttributes(
		attribute.Int64(otelPkg.AttributeJobId, job.Id),
		attribute.String(otelPkg.AttributeJobType, job.Type),
		attribute.Int64(otelPkg.AttributeWorkflowInstanceId, job.WorkflowInstanceId),
	))
	defer span.End()

	start := s.now()
	ctrl := &Controller{job: &job, now: s.now}
	err := s.runJob(ctx, ctrl)
	duration := s.now().Sub(start)

	if errors.Is(err, errInstanceContention) {
		s.logger.Debug(fmt.Sprintf("Workflow instance %d of job %d is locked, job is postponed", job.WorkflowInstanceId, job.Id))
		s.save(ctx, &job, s.now().Add(s.contentionDelay))
		return
	}

	execution := runtime.JobExecution{Time: start, Duration: duration, Owner: s.owner}
	if err != nil && !errors.Is(err, errObsolete) {
		execution.Error = err.Error()
	}
	job.AddExecution(execution, s.maxJobExecutions)
	s.recordDuration(ctx, job, duration)

	switch {
	case errors.Is(err, errObsolete):
		s.logger.Debug(fmt.Sprintf("Job %d is obsolete: %s", job.Id, err))
		s.complete(ctx, &job)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.fail(ctx, &job, err)
	case ctrl.rescheduled:
		s.save(ctx, &job, ctrl.due)
	default:
		s.complete(ctx, &job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, ctrl *Controller) error {
	job := ctrl.job
	jobType, ok := s.jobType(job.Type)
	if !ok {
		return fmt.Errorf("no job type %q is registered", job.Type)
	}
	if !job.IsBoundToInstance() {
		return protect(func() error {
			return jobType.Execute(ctx, ctrl)
		})
	}
	if s.runner == nil {
		return fmt.Errorf("job %d is bound to workflow instance %d but no instance runner is configured", job.Id, job.WorkflowInstanceId)
	}

	wi, err := s.runner.LockInstance(ctx, job.WorkflowInstanceId, job.ActivityInstanceId)
	switch {
	case errors.Is(err, storage.ErrInstanceLocked):
		return errors.Join(errInstanceContention, err)
	case errors.Is(err, storage.ErrNotFound):
		return errors.Join(errObsolete, err)
	case err != nil:
		return fmt.Errorf("failed to lock workflow instance %d: %w", job.WorkflowInstanceId, err)
	}
	ctrl.instance = wi

	err = protect(func() error {
		return jobType.Execute(ctx, ctrl)
	})
	if err != nil {
		return errors.Join(err, s.runner.ReleaseInstance(ctx, wi))
	}
	err = protect(func() error {
		return s.runner.ContinueInstance(ctx, wi)
	})
	if errors.Is(err, errPanic) {
		err = errors.Join(err, s.runner.ReleaseInstance(ctx, wi))
	}
	return err
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn()
}

func (s *Scheduler) retryPolicy(jobType string) RetryPolicy {
	if t, ok := s.jobType(jobType); ok {
		if policy, ok := t.(RetryPolicy); ok {
			return policy
		}
	}
	return DefaultRetryPolicy{}
}

// fail applies the retry budget: the first failure initializes it, every failure with budget left
// consumes one retry and backs off, a failure without budget kills the job.
func (s *Scheduler) fail(ctx context.Context, job *runtime.Job, cause error) {
	s.logger.Error(fmt.Sprintf("Job %d of type %s failed: %s", job.Id, job.Type, cause))
	if s.metrics != nil {
		s.metrics.JobsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("type", job.Type)))
	}
	policy := s.retryPolicy(job.Type)
	if job.Retries == nil {
		retries := policy.MaxRetries()
		job.Retries = &retries
	}
	if *job.Retries > 0 {
		retries := *job.Retries - 1
		job.Retries = &retries
		attempt := policy.MaxRetries() - retries
		s.save(ctx, job, s.now().Add(policy.RetryDelay(attempt)))
		return
	}

	now := s.now()
	job.Dead = true
	job.Done = &now
	job.Lock = nil
	if err := s.store.ArchiveJob(ctx, *job); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to archive dead job %d: %s", job.Id, err))
	}
	s.logger.Error(fmt.Sprintf("Job %d of type %s is dead after %d executions", job.Id, job.Type, len(job.Executions)))
	if s.metrics != nil {
		s.metrics.JobsDead.Add(ctx, 1, metric.WithAttributes(attribute.String("type", job.Type)))
	}
	for _, listener := range s.deadJobListeners {
		listener.JobDied(ctx, *job, cause)
	}
}

func (s *Scheduler) complete(ctx context.Context, job *runtime.Job) {
	now := s.now()
	job.Done = &now
	job.Lock = nil
	if err := s.store.ArchiveJob(ctx, *job); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to archive job %d: %s", job.Id, err))
		return
	}
	if s.metrics != nil {
		s.metrics.JobsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("type", job.Type)))
	}
}

func (s *Scheduler) save(ctx context.Context, job *runtime.Job, due time.Time) {
	job.Due = due
	job.Lock = nil
	if err := s.store.SaveJob(ctx, *job); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to save job %d: %s", job.Id, err))
	}
}

func (s *Scheduler) recordDuration(ctx context.Context, job runtime.Job, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.JobDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attribute.String("type", job.Type)))
}
