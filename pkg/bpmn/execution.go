package bpmn

import (
	"context"
	"fmt"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	otelPkg "github.com/pbinitiative/zenflow/pkg/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Execution is handed to activity types while a locked workflow instance is processed.
// It must not be retained after the call returns.
type Execution struct {
	ctx      context.Context
	engine   *Engine
	instance *runtime.WorkflowInstance
	workflow *compiledWorkflow
}

func (e *Execution) Context() context.Context {
	return e.ctx
}

func (e *Execution) Engine() *Engine {
	return e.engine
}

func (e *Execution) Instance() *runtime.WorkflowInstance {
	return e.instance
}

func (e *Execution) Workflow() *model.Workflow {
	return e.workflow.model
}

func (e *Execution) Now() time.Time {
	return e.engine.now()
}

// Activity returns the static activity of ai.
func (e *Execution) Activity(ai *runtime.ActivityInstance) *model.Activity {
	return e.workflow.model.FindActivity(ai.ActivityId)
}

func (e *Execution) activityType(activityId string) (ActivityType, error) {
	t, ok := e.workflow.types[activityId]
	if !ok {
		return nil, newEngineErrorf("activity %s is not part of workflow %s version %d", activityId, e.workflow.definition.WorkflowId, e.workflow.definition.Version)
	}
	return t, nil
}

// CreateActivityInstance starts a new instance of the activity in the scope instance with the given id.
func (e *Execution) CreateActivityInstance(parentId int64, activity *model.Activity) (*runtime.ActivityInstance, error) {
	state := runtime.WorkStateStarting
	if activity.IsMultiInstance() {
		state = runtime.WorkStateStartingMultiContainer
	}
	return e.createActivityInstance(parentId, activity, state, nil)
}

func (e *Execution) createActivityInstance(parentId int64, activity *model.Activity, state runtime.WorkState, element any) (*runtime.ActivityInstance, error) {
	wi := e.instance
	activityType, err := e.activityType(activity.Id)
	if err != nil {
		return nil, err
	}
	ai := &runtime.ActivityInstance{
		ScopeInstance: runtime.ScopeInstance{
			Id:       e.engine.generateKey(),
			ParentId: parentId,
			Start:    e.Now(),
		},
		ActivityId: activity.Id,
	}
	if err := wi.AddActivityInstance(ai); err != nil {
		return nil, err
	}
	if state == runtime.WorkStateStartingMultiInstance {
		declared := activity.MultiInstance.Element
		if err := wi.DeclareVariable(ai.Id, declared.Id, declared.Type, element); err != nil {
			return nil, err
		}
	}
	// the container only holds the element instances, they carry the activity variables
	if state != runtime.WorkStateStartingMultiContainer {
		if err := e.declareVariables(ai.Id, activity.Variables); err != nil {
			return nil, err
		}
		if activity.Body != nil {
			if err := e.declareVariables(ai.Id, activity.Body.Variables); err != nil {
				return nil, err
			}
		}
	}
	wi.SetWorkState(ai, state)
	e.exportActivity(exporter.ActivityStarted, ai, activityType)
	wi.PushWork(ai.Id, activityType.IsAsync(ai) && !wi.IsAsync)
	return ai, nil
}

func (e *Execution) declareVariables(scopeId int64, variables []model.Variable) error {
	for _, variable := range variables {
		var value any
		if variable.Initial.IsSet() {
			v, err := resolve(e, scopeId, variable.Initial)
			if err != nil {
				return fmt.Errorf("failed to initialize variable %s: %w", variable.Id, err)
			}
			value = v
		}
		if err := e.instance.DeclareVariable(scopeId, variable.Id, variable.Type, value); err != nil {
			return err
		}
	}
	return nil
}

// StartScope creates instances of the start activities of scope inside the scope instance scopeId.
func (e *Execution) StartScope(scopeId int64, scope *model.Scope) error {
	for _, activity := range scope.StartActivities() {
		if _, err := e.CreateActivityInstance(scopeId, activity); err != nil {
			return err
		}
	}
	return nil
}

// EndActivityInstance ends ai and its open descendants. With notify the parent's Ended hook is queued.
// Ending an ended instance does nothing.
func (e *Execution) EndActivityInstance(ai *runtime.ActivityInstance, notify bool) {
	wi := e.instance
	if ai.IsEnded() {
		return
	}
	for _, child := range wi.Children(ai.Id) {
		e.EndActivityInstance(child, false)
	}
	wi.EndScope(ai.Id, e.Now())
	activityType, _ := e.activityType(ai.ActivityId)
	e.exportActivity(exporter.ActivityEnded, ai, activityType)
	if notify {
		wi.SetWorkState(ai, runtime.WorkStateNotifying)
		wi.PushWork(ai.Id, false)
		return
	}
	wi.SetWorkState(ai, runtime.WorkStateNone)
}

// TakeTransition ends ai if it is still open and starts the target of the transition in the parent scope.
// The parent is notified only when the transition has no target.
func (e *Execution) TakeTransition(ai *runtime.ActivityInstance, transition *model.Transition) error {
	to := transition.ToActivity()
	e.EndActivityInstance(ai, to == nil)
	event := e.event(exporter.TransitionTaken)
	event.ActivityId = ai.ActivityId
	event.ActivityInstanceId = ai.Id
	event.TransitionId = transition.Id
	event.From = transition.From
	event.To = transition.To
	e.engine.export(event)
	if to == nil {
		return nil
	}
	_, err := e.CreateActivityInstance(ai.ParentId, to)
	return err
}

// Onwards leaves ai over every outgoing transition whose condition holds, or over the default transition
// when none does. Element instances of a multi-instance activity end and notify their container instead.
func (e *Execution) Onwards(ai *runtime.ActivityInstance) error {
	wi := e.instance
	if parent := wi.Parent(ai); parent != nil && parent.ActivityId == ai.ActivityId {
		e.EndActivityInstance(ai, true)
		return nil
	}
	activity := e.Activity(ai)
	outgoing := activity.Outgoing()
	if len(outgoing) == 0 {
		e.EndActivityInstance(ai, true)
		return nil
	}
	taken := make([]*model.Transition, 0, len(outgoing))
	for _, t := range outgoing {
		if t == activity.Default() {
			continue
		}
		if t.Condition.IsSet() {
			ok, err := resolve(e, ai.Id, t.Condition)
			if err != nil {
				return fmt.Errorf("failed to evaluate condition of transition %s: %w", t.Id, err)
			}
			if !ok {
				continue
			}
		}
		taken = append(taken, t)
	}
	if len(taken) == 0 && activity.Default() != nil {
		taken = append(taken, activity.Default())
	}
	if len(taken) == 0 {
		e.EndActivityInstance(ai, true)
		return nil
	}
	for _, t := range taken {
		if err := e.TakeTransition(ai, t); err != nil {
			return err
		}
	}
	return nil
}

// Wait leaves ai open until a message, a job or a child continues it.
func (e *Execution) Wait(ai *runtime.ActivityInstance) {
	e.instance.SetWorkState(ai, runtime.WorkStateWaiting)
}

// ScheduleJob saves job together with the next flush of the instance. With runNow the job is handed to the
// engine's executor once the instance is unlocked.
func (e *Execution) ScheduleJob(job runtime.Job, runNow bool) runtime.Job {
	now := e.Now()
	if job.Id == 0 {
		job.Id = e.engine.generateKey()
	}
	job.CreatedAt = now
	if job.Due.IsZero() {
		job.Due = now
	}
	e.instance.ScheduleJob(job)
	e.engine.metrics.JobsCreated.Add(e.ctx, 1, metric.WithAttributes(attribute.String("type", job.Type)))
	if runNow {
		ctx := context.WithoutCancel(e.ctx)
		e.instance.AddUnlockListener(func(_ *runtime.WorkflowInstance) {
			e.engine.runJobNow(ctx, job.Id)
		})
	}
	return job
}

func (e *Execution) event(intent exporter.Intent) exporter.Event {
	return exporter.Event{
		Intent:             intent,
		Time:               e.Now(),
		WorkflowId:         e.instance.WorkflowId,
		WorkflowKey:        e.instance.WorkflowKey,
		WorkflowInstanceId: e.instance.Id,
	}
}

func (e *Execution) exportActivity(intent exporter.Intent, ai *runtime.ActivityInstance, activityType ActivityType) {
	event := e.event(intent)
	event.ActivityId = ai.ActivityId
	event.ActivityInstanceId = ai.Id
	if activityType != nil {
		event.ActivityKind = activityType.Descriptor().Kind
	}
	e.engine.export(event)
}

func (e *Execution) activityAttributes(activityType ActivityType) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("workflowId", e.instance.WorkflowId),
		attribute.String(otelPkg.AttributeActivityKind, activityType.Descriptor().Kind),
	)
}
