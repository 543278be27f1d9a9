package bpmn

import (
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// ActivityType is the behaviour of one activity of a deployed workflow. Instances are created once per
// activity when the workflow is compiled and shared by all of its activity instances, so implementations
// keep instance state in the runtime.ActivityInstance only.
type ActivityType interface {
	// Execute starts the activity instance. It either continues right away with Execution.Onwards or
	// Execution.TakeTransition, or leaves the instance open until a message, a timer or a child wakes it.
	Execute(exec *Execution, ai *runtime.ActivityInstance) error
	// Message delivers an external message to a waiting activity instance.
	Message(exec *Execution, ai *runtime.ActivityInstance, message Message) error
	// Ended is called on the parent after a child activity instance ended and asked to notify it.
	Ended(exec *Execution, ai *runtime.ActivityInstance, child *runtime.ActivityInstance) error
	// IsAsync reports whether starting the instance is handed over to an asynchronous continuation.
	IsAsync(ai *runtime.ActivityInstance) bool
	Descriptor() Descriptor
}

// CallActivityType is implemented by activity kinds that start another workflow instance and wait for it.
type CallActivityType interface {
	ActivityType
	CallEnded(exec *Execution, ai *runtime.ActivityInstance, called *runtime.WorkflowInstance) error
}

// ActivityTypeFactory creates the behaviour of an activity at deploy time. Errors reject the deployment.
type ActivityTypeFactory func(activity *model.Activity, engine *Engine) (ActivityType, error)

type Descriptor struct {
	Kind string
	// MultiInstance is set when the kind may declare a multi-instance collection.
	MultiInstance bool
	// Join is set for gateways that synchronize incoming branches.
	Join bool
}

type Message struct {
	ActivityId string
	Payload    map[string]any
}

// BaseActivity provides the default parts of ActivityType. Kinds embed it and implement Execute.
type BaseActivity struct {
	Activity   *model.Activity
	descriptor Descriptor
}

func NewBaseActivity(activity *model.Activity, descriptor Descriptor) BaseActivity {
	return BaseActivity{Activity: activity, descriptor: descriptor}
}

func (b BaseActivity) Message(_ *Execution, ai *runtime.ActivityInstance, _ Message) error {
	return newEngineErrorf("activity %s (instance %d) of kind %s does not accept messages", b.Activity.Id, ai.Id, b.descriptor.Kind)
}

// Ended continues onwards once the last open child ended.
func (b BaseActivity) Ended(exec *Execution, ai *runtime.ActivityInstance, _ *runtime.ActivityInstance) error {
	if ai.IsEnded() || exec.Instance().HasOpenChildren(ai.Id) {
		return nil
	}
	return exec.Onwards(ai)
}

func (b BaseActivity) IsAsync(_ *runtime.ActivityInstance) bool {
	return b.Activity.Async
}

func (b BaseActivity) Descriptor() Descriptor {
	return b.descriptor
}

func defaultActivityTypes() map[string]ActivityTypeFactory {
	return map[string]ActivityTypeFactory{
		model.KindStartEvent:       newPassThroughActivity(model.KindStartEvent, false),
		model.KindEndEvent:         newPassThroughActivity(model.KindEndEvent, false),
		model.KindNoneTask:         newPassThroughActivity(model.KindNoneTask, true),
		model.KindServiceTask:      newServiceTask,
		model.KindScriptTask:       newScriptTask,
		model.KindReceiveTask:      newReceiveTask,
		model.KindExclusiveGateway: newExclusiveGateway,
		model.KindParallelGateway:  newParallelGateway,
		model.KindTimerEvent:       newTimerEvent,
		model.KindCallActivity:     newCallActivity,
		model.KindSubProcess:       newSubProcess,
	}
}
