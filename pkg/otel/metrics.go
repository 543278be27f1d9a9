package otel

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
)

type EngineMetrics struct {
	WorkflowsStarted   metric.Int64Counter
	WorkflowsEnded     metric.Int64Counter
	WorkflowsRunning   metric.Int64UpDownCounter
	ActivitiesExecuted metric.Int64Counter
	JobsCreated        metric.Int64Counter
	JobsCompleted      metric.Int64Counter
	JobsFailed         metric.Int64Counter
	JobsDead           metric.Int64Counter
	JobDuration        metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*EngineMetrics, error) {
	var errJoin error

	workflowsStarted, err := meter.Int64Counter("workflows_started", metric.WithDescription("Number of workflow instances started"))
	errJoin = errors.Join(errJoin, err)

	workflowsEnded, err := meter.Int64Counter("workflows_completed", metric.WithDescription("Number of workflow instances completed"))
	errJoin = errors.Join(errJoin, err)

	workflowsRunning, err := meter.Int64UpDownCounter("workflows_running", metric.WithDescription("Number of workflow instances currently running"))
	errJoin = errors.Join(errJoin, err)

	activitiesExecuted, err := meter.Int64Counter("activities_executed", metric.WithDescription("Number of activity instances executed"))
	errJoin = errors.Join(errJoin, err)

	jobsCreated, err := meter.Int64Counter("jobs_created", metric.WithDescription("Number of jobs created"))
	errJoin = errors.Join(errJoin, err)

	jobsCompleted, err := meter.Int64Counter("jobs_completed", metric.WithDescription("Number of jobs completed"))
	errJoin = errors.Join(errJoin, err)

	jobsFailed, err := meter.Int64Counter("jobs_failed", metric.WithDescription("Number of failed job executions"))
	errJoin = errors.Join(errJoin, err)

	jobsDead, err := meter.Int64Counter("jobs_dead", metric.WithDescription("Number of jobs that ran out of retries"))
	errJoin = errors.Join(errJoin, err)

	jobDuration, err := meter.Float64Histogram("job_duration", metric.WithUnit("ms"), metric.WithDescription("Time a job execution took, milliseconds"))
	errJoin = errors.Join(errJoin, err)

	metrics := EngineMetrics{
		WorkflowsStarted:   workflowsStarted,
		WorkflowsEnded:     workflowsEnded,
		WorkflowsRunning:   workflowsRunning,
		ActivitiesExecuted: activitiesExecuted,
		JobsCreated:        jobsCreated,
		JobsCompleted:      jobsCompleted,
		JobsFailed:         jobsFailed,
		JobsDead:           jobsDead,
		JobDuration:        jobDuration,
	}
	return &metrics, errJoin
}
