package jobs

import (
	"time"

	"github.com/hashicorp/go-hclog"
	otelPkg "github.com/pbinitiative/zenflow/pkg/otel"
)

type SchedulerOption = func(*Scheduler)

// SchedulerWithOwner sets the lock owner written to claimed jobs, usually the node id.
func SchedulerWithOwner(owner string) SchedulerOption {
	return func(s *Scheduler) {
		s.owner = owner
	}
}

func SchedulerWithPollInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.pollInterval = interval
	}
}

// SchedulerWithWorkers sets the number of concurrently executed jobs of the bound and the free pool.
func SchedulerWithWorkers(instanceWorkers int, freeWorkers int) SchedulerOption {
	return func(s *Scheduler) {
		s.instanceWorkers = instanceWorkers
		s.freeWorkers = freeWorkers
	}
}

// SchedulerWithBatchSize limits how many jobs one poll tick claims.
func SchedulerWithBatchSize(size int) SchedulerOption {
	return func(s *Scheduler) {
		s.batchSize = size
	}
}

func SchedulerWithMaxJobExecutions(max int) SchedulerOption {
	return func(s *Scheduler) {
		s.maxJobExecutions = max
	}
}

// SchedulerWithContentionDelay sets how long a bound job waits when its instance is locked.
func SchedulerWithContentionDelay(delay time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.contentionDelay = delay
	}
}

// SchedulerWithLockLease sets how long a claimed job stays claimed. A job whose claim is older, for example
// because its node died, is claimed again. 0 keeps claims forever.
func SchedulerWithLockLease(lease time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.lockLease = lease
	}
}

func SchedulerWithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

func SchedulerWithLogger(logger hclog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func SchedulerWithMetrics(metrics *otelPkg.EngineMetrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = metrics
	}
}

func SchedulerWithDeadJobListener(listener DeadJobListener) SchedulerOption {
	return func(s *Scheduler) {
		s.deadJobListeners = append(s.deadJobListeners, listener)
	}
}
