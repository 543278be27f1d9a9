package jobs

import (
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// Controller is handed to JobType.Execute.
type Controller struct {
	job      *runtime.Job
	instance *runtime.WorkflowInstance
	now      func() time.Time

	rescheduled bool
	due         time.Time
}

func (c *Controller) Job() runtime.Job {
	return *c.job
}

// WorkflowInstance returns the locked instance of a bound job, nil for free jobs.
func (c *Controller) WorkflowInstance() *runtime.WorkflowInstance {
	return c.instance
}

// Data returns the job payload, it is saved with the job when it is rescheduled.
func (c *Controller) Data() map[string]any {
	if c.job.Data == nil {
		c.job.Data = map[string]any{}
	}
	return c.job.Data
}

// RescheduleFor keeps the job alive and runs it again at due. It is not counted as a failure.
func (c *Controller) RescheduleFor(due time.Time) {
	c.rescheduled = true
	c.due = due
}

func (c *Controller) RescheduleFromNow(delay time.Duration) {
	c.RescheduleFor(c.now().Add(delay))
}

func (c *Controller) IsRescheduled() bool {
	return c.rescheduled
}
