package bpmn

import (
	"context"
	"fmt"

	"github.com/mohae/deepcopy"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// ServiceHandler implements a service task. input holds the resolved inputs of the task, or a copy of all
// variables visible to it when the task declares no inputs. The result is written back through the task's
// outputs.
type ServiceHandler func(ctx context.Context, input map[string]any) (map[string]any, error)

// passThroughActivity continues onwards right away. It serves start and end events and tasks without work.
type passThroughActivity struct {
	BaseActivity
}

func newPassThroughActivity(kind string, multiInstance bool) ActivityTypeFactory {
	return func(activity *model.Activity, _ *Engine) (ActivityType, error) {
		return &passThroughActivity{
			BaseActivity: NewBaseActivity(activity, Descriptor{Kind: kind, MultiInstance: multiInstance}),
		}, nil
	}
}

func (a *passThroughActivity) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	return exec.Onwards(ai)
}

type serviceTask struct {
	BaseActivity
	engine *Engine
}

func newServiceTask(activity *model.Activity, engine *Engine) (ActivityType, error) {
	if activity.Handler == "" {
		return nil, fmt.Errorf("service task %s has no handler", activity.Id)
	}
	return &serviceTask{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindServiceTask, MultiInstance: true}),
		engine:       engine,
	}, nil
}

func (t *serviceTask) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	handler, ok := t.engine.serviceHandler(t.Activity.Handler)
	if !ok {
		return newEngineErrorf("no service handler %q is registered for activity %s", t.Activity.Handler, t.Activity.Id)
	}
	input, err := taskInput(exec, ai, t.Activity)
	if err != nil {
		return err
	}
	output, err := handler(exec.Context(), input)
	if err != nil {
		return fmt.Errorf("service handler %s of activity %s failed: %w", t.Activity.Handler, t.Activity.Id, err)
	}
	if err := applyOutputs(exec, ai.Id, t.Activity, output); err != nil {
		return err
	}
	return exec.Onwards(ai)
}

// taskInput resolves the declared inputs, or copies every visible variable so handlers can not alias
// instance state.
func taskInput(exec *Execution, ai *runtime.ActivityInstance, activity *model.Activity) (map[string]any, error) {
	if len(activity.Inputs) > 0 {
		return resolveInputs(exec, ai.Id, activity.Inputs)
	}
	return deepcopy.Copy(exec.Instance().VisibleVariables(ai.Id)).(map[string]any), nil
}

type scriptTask struct {
	BaseActivity
	engine *Engine
}

func newScriptTask(activity *model.Activity, engine *Engine) (ActivityType, error) {
	if activity.Script == "" {
		return nil, fmt.Errorf("script task %s has no script", activity.Id)
	}
	return &scriptTask{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindScriptTask, MultiInstance: true}),
		engine:       engine,
	}, nil
}

// Execute runs the script with the task input as globals. An object result is treated like a service
// handler result, any other value is stored in the result variable.
func (t *scriptTask) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	input, err := taskInput(exec, ai, t.Activity)
	if err != nil {
		return err
	}
	res, err := t.engine.scripts.RunScript(exec.Context(), t.Activity.Script, input)
	if err != nil {
		return fmt.Errorf("script of activity %s failed: %w", t.Activity.Id, err)
	}
	switch v := res.(type) {
	case map[string]any:
		err = applyOutputs(exec, ai.Id, t.Activity, v)
	case nil:
	default:
		if t.Activity.ResultVariable != "" {
			err = exec.Instance().SetVariable(ai.Id, t.Activity.ResultVariable, v)
		}
	}
	if err != nil {
		return err
	}
	return exec.Onwards(ai)
}

// receiveTask waits until a message is sent to it.
type receiveTask struct {
	BaseActivity
}

func newReceiveTask(activity *model.Activity, _ *Engine) (ActivityType, error) {
	return &receiveTask{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindReceiveTask, MultiInstance: true}),
	}, nil
}

func (t *receiveTask) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	exec.Wait(ai)
	return nil
}

func (t *receiveTask) Message(exec *Execution, ai *runtime.ActivityInstance, message Message) error {
	if ai.WorkState != runtime.WorkStateWaiting {
		return newEngineErrorf("activity instance %d of %s is not waiting for a message", ai.Id, t.Activity.Id)
	}
	exec.Instance().SetWorkState(ai, runtime.WorkStateNone)
	if err := applyOutputs(exec, ai.Id, t.Activity, message.Payload); err != nil {
		return err
	}
	return exec.Onwards(ai)
}
