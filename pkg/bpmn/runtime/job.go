package runtime

import (
	"time"
)

// Job is a durable unit of deferred or asynchronous work executed by the job scheduler.
type Job struct {
	Id int64 `json:"id"`
	// Key is an optional idempotency key, at most one live job exists per key.
	Key       string    `json:"key,omitempty"`
	Type      string    `json:"type"`
	Due       time.Time `json:"due"`
	CreatedAt time.Time `json:"createdAt"`
	Lock      *Lock     `json:"lock,omitempty"`
	// Retries is nil until the first failure, 0 means the retry budget is exhausted.
	Retries    *int           `json:"retries,omitempty"`
	Executions []JobExecution `json:"executions,omitempty"`
	Done       *time.Time     `json:"done,omitempty"`
	Dead       bool           `json:"dead,omitempty"`

	// Jobs bound to a workflow instance lock the instance before they execute.
	WorkflowInstanceId int64          `json:"workflowInstanceId,omitempty"`
	ActivityInstanceId int64          `json:"activityInstanceId,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
}

type JobExecution struct {
	Time     time.Time     `json:"time"`
	Duration time.Duration `json:"duration"`
	Owner    string        `json:"owner,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (j *Job) IsBoundToInstance() bool {
	return j.WorkflowInstanceId != 0
}

func (j *Job) IsDone() bool {
	return j.Done != nil
}

// IsDue reports whether the job can be claimed at now. A lock taken before staleBefore is abandoned
// and does not keep the job from being claimed again; a zero staleBefore keeps every lock.
func (j *Job) IsDue(now time.Time, staleBefore time.Time) bool {
	if j.Done != nil || j.Due.After(now) {
		return false
	}
	return j.Lock == nil || (!staleBefore.IsZero() && j.Lock.Time.Before(staleBefore))
}

// AddExecution records an execution, dropping the oldest records beyond max.
func (j *Job) AddExecution(execution JobExecution, max int) {
	j.Executions = append(j.Executions, execution)
	if max > 0 && len(j.Executions) > max {
		j.Executions = append([]JobExecution(nil), j.Executions[len(j.Executions)-max:]...)
	}
}
