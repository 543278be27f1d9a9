package runtime

import (
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
)

// WorkflowDefinition is a deployed version of a workflow.
type WorkflowDefinition struct {
	WorkflowId string    `json:"workflowId"` // The ID as defined in the workflow file
	Version    int       `json:"version"`    // incremented, when another workflow with the same ID is deployed
	Key        int64     `json:"key"`        // The engines key for this given workflow with version
	Data       []byte    `json:"data"`       // validated workflow encoded as JSON
	Checksum   [16]byte  `json:"checksum"`   // identifies identical redeployments
	DeployedAt time.Time `json:"deployedAt"`
}

// WorkState is the pending transition of an activity instance.
type WorkState string

const (
	WorkStateNone                   WorkState = ""
	WorkStateStarting               WorkState = "starting"
	WorkStateStartingMultiContainer WorkState = "startingMultiContainer"
	WorkStateStartingMultiInstance  WorkState = "startingMultiInstance"
	WorkStateNotifying              WorkState = "notifying"
	WorkStateJoining                WorkState = "joining"
	WorkStateWaiting                WorkState = "waiting"
)

// IsStart reports whether the state is processed by starting the activity behaviour.
func (s WorkState) IsStart() bool {
	switch s {
	case WorkStateStarting, WorkStateStartingMultiContainer, WorkStateStartingMultiInstance:
		return true
	}
	return false
}

// Lock marks a workflow instance or job as owned by one engine node.
type Lock struct {
	Time  time.Time `json:"time"`
	Owner string    `json:"owner"`
}

type ScopeInstance struct {
	Id       int64      `json:"id"`
	ParentId int64      `json:"parentId,omitempty"` // 0 for the workflow instance itself
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	// Children are the ids of activity instances started in this scope, in creation order.
	Children  []int64            `json:"children,omitempty"`
	Variables []VariableInstance `json:"variables,omitempty"`
}

func (s *ScopeInstance) IsEnded() bool {
	return s.End != nil
}

// Duration returns the time between start and end, false while the scope is open.
func (s *ScopeInstance) Duration() (time.Duration, bool) {
	if s.End == nil {
		return 0, false
	}
	return s.End.Sub(s.Start), true
}

func (s *ScopeInstance) variable(id string) *VariableInstance {
	for i := range s.Variables {
		if s.Variables[i].VariableId == id {
			return &s.Variables[i]
		}
	}
	return nil
}

type ActivityInstance struct {
	ScopeInstance
	ActivityId string    `json:"activityId"`
	WorkState  WorkState `json:"workState,omitempty"`
	// CalledWorkflowInstanceId links a call activity to the workflow instance it started.
	CalledWorkflowInstanceId int64 `json:"calledWorkflowInstanceId,omitempty"`
}

type VariableInstance struct {
	VariableId string         `json:"variableId"`
	Value      any            `json:"value,omitempty"`
	Type       model.DataType `json:"type,omitempty"`
	ScopeId    int64          `json:"scopeId"`
}
