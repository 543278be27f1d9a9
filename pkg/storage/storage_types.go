package storage

import (
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// WorkflowInstanceQuery filters workflow instances, zero fields match everything.
type WorkflowInstanceQuery struct {
	WorkflowInstanceId int64
	WorkflowId         string
	BusinessKey        string
	// ActivityId matches instances with an open activity instance of this activity.
	ActivityId string
	Ended      *bool
	Locked     *bool
	Limit      int
}

func (q WorkflowInstanceQuery) Matches(wi *runtime.WorkflowInstance) bool {
	if q.WorkflowInstanceId != 0 && wi.Id != q.WorkflowInstanceId {
		return false
	}
	if q.WorkflowId != "" && wi.WorkflowId != q.WorkflowId {
		return false
	}
	if q.BusinessKey != "" && wi.BusinessKey != q.BusinessKey {
		return false
	}
	if q.Ended != nil && wi.IsEnded() != *q.Ended {
		return false
	}
	if q.Locked != nil && wi.IsLocked() != *q.Locked {
		return false
	}
	if q.ActivityId != "" && wi.FindOpenActivityInstance(q.ActivityId) == nil {
		return false
	}
	return true
}

// JobQuery filters live or archived jobs, zero fields match everything.
type JobQuery struct {
	JobId              int64
	Key                string
	Type               string
	WorkflowInstanceId int64
	Dead               *bool
	Limit              int
}

func (q JobQuery) Matches(job runtime.Job) bool {
	if q.JobId != 0 && job.Id != q.JobId {
		return false
	}
	if q.Key != "" && job.Key != q.Key {
		return false
	}
	if q.Type != "" && job.Type != q.Type {
		return false
	}
	if q.WorkflowInstanceId != 0 && job.WorkflowInstanceId != q.WorkflowInstanceId {
		return false
	}
	if q.Dead != nil && job.Dead != *q.Dead {
		return false
	}
	return true
}
