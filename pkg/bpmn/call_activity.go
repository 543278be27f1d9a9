package bpmn

import (
	"fmt"
	"strconv"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// callActivity starts the latest version of another workflow and waits until that instance ended.
// The called instance id is fixed before the start job is saved, so a retried start job can not start
// the workflow twice.
type callActivity struct {
	BaseActivity
	engine *Engine
}

func newCallActivity(activity *model.Activity, engine *Engine) (ActivityType, error) {
	if activity.CalledWorkflow == "" {
		return nil, fmt.Errorf("call activity %s has no called workflow", activity.Id)
	}
	return &callActivity{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindCallActivity, MultiInstance: true}),
		engine:       engine,
	}, nil
}

var _ CallActivityType = &callActivity{}

func (c *callActivity) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	wi := exec.Instance()
	input, err := resolveInputs(exec, ai.Id, c.Activity.Inputs)
	if err != nil {
		return err
	}
	ai.CalledWorkflowInstanceId = c.engine.generateKey()
	wi.MarkChanged()
	exec.Wait(ai)
	exec.ScheduleJob(runtime.Job{
		Key:  callKey(ai.Id),
		Type: jobTypeStartWorkflow,
		Data: map[string]any{
			dataWorkflowId:               c.Activity.CalledWorkflow,
			dataWorkflowInstanceId:       strconv.FormatInt(ai.CalledWorkflowInstanceId, 10),
			dataCallerWorkflowInstanceId: strconv.FormatInt(wi.Id, 10),
			dataCallerActivityInstanceId: strconv.FormatInt(ai.Id, 10),
			dataTenantId:                 wi.TenantId,
			dataVariables:                input,
		},
	}, true)
	return nil
}

// CallEnded copies the mapped outputs of the called instance and continues onwards.
func (c *callActivity) CallEnded(exec *Execution, ai *runtime.ActivityInstance, called *runtime.WorkflowInstance) error {
	if ai.IsEnded() || ai.WorkState != runtime.WorkStateWaiting {
		return nil
	}
	wi := exec.Instance()
	wi.SetWorkState(ai, runtime.WorkStateNone)
	results := called.VisibleVariables(called.Id)
	for name, variableId := range c.Activity.Outputs {
		if err := wi.SetVariable(ai.Id, variableId, results[name]); err != nil {
			return err
		}
	}
	if c.Activity.ResultVariable != "" {
		if err := wi.SetVariable(ai.Id, c.Activity.ResultVariable, results); err != nil {
			return err
		}
	}
	return exec.Onwards(ai)
}
