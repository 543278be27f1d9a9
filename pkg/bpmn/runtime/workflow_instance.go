package runtime

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// UnlockListener is called after the unlock of a workflow instance was committed to the store.
type UnlockListener func(wi *WorkflowInstance)

// WorkflowInstance is the root of the instance tree. Activity instances are kept in an arena addressed
// by id; parent relations are ids only so the tree serializes without cycles.
// A WorkflowInstance must only be mutated while its Lock is held by the mutating engine.
type WorkflowInstance struct {
	ScopeInstance
	WorkflowId      string `json:"workflowId"`
	WorkflowKey     int64  `json:"workflowKey"`
	WorkflowVersion int    `json:"workflowVersion"`
	TenantId        string `json:"tenantId,omitempty"`
	BusinessKey     string `json:"businessKey,omitempty"`

	ActivityInstances map[int64]*ActivityInstance `json:"activityInstances,omitempty"`
	// Work and WorkAsync hold ids of activity instances with a pending work state, FIFO.
	Work      []int64 `json:"work,omitempty"`
	WorkAsync []int64 `json:"workAsync,omitempty"`
	Lock      *Lock   `json:"lock,omitempty"`

	CallerWorkflowInstanceId int64 `json:"callerWorkflowInstanceId,omitempty"`
	CallerActivityInstanceId int64 `json:"callerActivityInstanceId,omitempty"`
	// IsAsync is set while the instance runs inside an asynchronous continuation.
	IsAsync bool `json:"isAsync,omitempty"`

	unlockListeners []UnlockListener
	pendingJobs     []Job
	changed         bool
}

func NewWorkflowInstance(id int64, definition WorkflowDefinition, start time.Time) *WorkflowInstance {
	return &WorkflowInstance{
		ScopeInstance: ScopeInstance{
			Id:    id,
			Start: start,
		},
		WorkflowId:        definition.WorkflowId,
		WorkflowKey:       definition.Key,
		WorkflowVersion:   definition.Version,
		ActivityInstances: map[int64]*ActivityInstance{},
		changed:           true,
	}
}

func (wi *WorkflowInstance) IsLocked() bool {
	return wi.Lock != nil
}

func (wi *WorkflowInstance) IsSubWorkflow() bool {
	return wi.CallerWorkflowInstanceId != 0
}

func (wi *WorkflowInstance) ActivityInstance(id int64) *ActivityInstance {
	return wi.ActivityInstances[id]
}

// Scope returns the scope instance with the given id: the workflow instance or one of its activity instances.
func (wi *WorkflowInstance) Scope(id int64) *ScopeInstance {
	if id == wi.Id {
		return &wi.ScopeInstance
	}
	if ai, ok := wi.ActivityInstances[id]; ok {
		return &ai.ScopeInstance
	}
	return nil
}

// Parent returns the activity instance ai is nested in, nil when it is a direct child of the workflow instance.
func (wi *WorkflowInstance) Parent(ai *ActivityInstance) *ActivityInstance {
	return wi.ActivityInstances[ai.ParentId]
}

// AddActivityInstance registers ai in the arena and appends it to its parent's children.
func (wi *WorkflowInstance) AddActivityInstance(ai *ActivityInstance) error {
	parent := wi.Scope(ai.ParentId)
	if parent == nil {
		return fmt.Errorf("parent scope %d of activity instance %d does not exist", ai.ParentId, ai.Id)
	}
	if wi.ActivityInstances == nil {
		wi.ActivityInstances = map[int64]*ActivityInstance{}
	}
	wi.ActivityInstances[ai.Id] = ai
	parent.Children = append(parent.Children, ai.Id)
	wi.changed = true
	return nil
}

// Children returns the activity instances started in the scope with the given id, in creation order.
func (wi *WorkflowInstance) Children(scopeId int64) []*ActivityInstance {
	scope := wi.Scope(scopeId)
	if scope == nil {
		return nil
	}
	res := make([]*ActivityInstance, 0, len(scope.Children))
	for _, id := range scope.Children {
		if ai, ok := wi.ActivityInstances[id]; ok {
			res = append(res, ai)
		}
	}
	return res
}

// HasOpenChildren reports whether any activity instance directly in the scope is not ended.
func (wi *WorkflowInstance) HasOpenChildren(scopeId int64) bool {
	for _, child := range wi.Children(scopeId) {
		if !child.IsEnded() {
			return true
		}
	}
	return false
}

// OpenActivityInstances walks the whole tree depth first and returns every activity instance that is not ended.
func (wi *WorkflowInstance) OpenActivityInstances() []*ActivityInstance {
	res := make([]*ActivityInstance, 0)
	var walk func(scopeId int64)
	walk = func(scopeId int64) {
		for _, child := range wi.Children(scopeId) {
			if !child.IsEnded() {
				res = append(res, child)
			}
			walk(child.Id)
		}
	}
	walk(wi.Id)
	return res
}

func (wi *WorkflowInstance) HasOpenActivityInstances() bool {
	for _, ai := range wi.ActivityInstances {
		if !ai.IsEnded() {
			return true
		}
	}
	return false
}

// FindOpenActivityInstance returns the first open instance of the activity, nil if there is none.
func (wi *WorkflowInstance) FindOpenActivityInstance(activityId string) *ActivityInstance {
	for _, ai := range wi.OpenActivityInstances() {
		if ai.ActivityId == activityId {
			return ai
		}
	}
	return nil
}

// EndScope sets the end time once; it reports false when the scope was already ended.
func (wi *WorkflowInstance) EndScope(scopeId int64, end time.Time) bool {
	scope := wi.Scope(scopeId)
	if scope == nil || scope.End != nil {
		return false
	}
	scope.End = &end
	wi.changed = true
	return true
}

func (wi *WorkflowInstance) SetWorkState(ai *ActivityInstance, state WorkState) {
	if ai.WorkState == state {
		return
	}
	ai.WorkState = state
	wi.changed = true
}

// PushWork appends the activity instance to the synchronous or the asynchronous work queue.
func (wi *WorkflowInstance) PushWork(activityInstanceId int64, async bool) {
	if async {
		wi.WorkAsync = append(wi.WorkAsync, activityInstanceId)
	} else {
		wi.Work = append(wi.Work, activityInstanceId)
	}
	wi.changed = true
}

// PopWork removes the oldest item of the synchronous queue.
func (wi *WorkflowInstance) PopWork() (*ActivityInstance, bool) {
	for len(wi.Work) > 0 {
		id := wi.Work[0]
		wi.Work = wi.Work[1:]
		wi.changed = true
		if ai, ok := wi.ActivityInstances[id]; ok {
			return ai, true
		}
	}
	return nil, false
}

// PromoteAsyncWork moves all asynchronous work behind the synchronous queue.
func (wi *WorkflowInstance) PromoteAsyncWork() {
	if len(wi.WorkAsync) == 0 {
		return
	}
	wi.Work = append(wi.Work, wi.WorkAsync...)
	wi.WorkAsync = nil
	wi.changed = true
}

func (wi *WorkflowInstance) HasWork() bool {
	return len(wi.Work) > 0
}

func (wi *WorkflowInstance) HasAsyncWork() bool {
	return len(wi.WorkAsync) > 0
}

func (wi *WorkflowInstance) AddUnlockListener(listener UnlockListener) {
	wi.unlockListeners = append(wi.unlockListeners, listener)
}

// TakeUnlockListeners returns the registered unlock listeners and forgets them.
func (wi *WorkflowInstance) TakeUnlockListeners() []UnlockListener {
	listeners := wi.unlockListeners
	wi.unlockListeners = nil
	return listeners
}

// ScheduleJob queues a job that is saved together with the next flush of the instance.
// Jobs queued before an unlock without flush are dropped.
func (wi *WorkflowInstance) ScheduleJob(job Job) {
	wi.pendingJobs = append(wi.pendingJobs, job)
	wi.changed = true
}

func (wi *WorkflowInstance) PendingJobs() []Job {
	return wi.pendingJobs
}

func (wi *WorkflowInstance) MarkChanged() {
	wi.changed = true
}

// HasChanges reports whether the instance was mutated since it was loaded or last flushed.
func (wi *WorkflowInstance) HasChanges() bool {
	return wi.changed
}

// ClearChanges is called by storage once the instance and its pending jobs are durable.
func (wi *WorkflowInstance) ClearChanges() {
	wi.changed = false
	wi.pendingJobs = nil
}

// ActivityInstanceIds returns the ids of all activity instances in ascending order.
func (wi *WorkflowInstance) ActivityInstanceIds() []int64 {
	return slices.Sorted(maps.Keys(wi.ActivityInstances))
}
