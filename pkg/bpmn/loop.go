package bpmn

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// run drains the synchronous work queue of the locked instance. The instance is flushed between two
// work items, so a failing item discards only the changes it made itself.
func (e *Execution) run() error {
	wi := e.instance
	first := true
	for wi.HasWork() {
		if !first {
			if err := e.engine.store.FlushWorkflowInstance(e.ctx, wi); err != nil {
				return errors.Join(newEngineErrorf("failed to flush workflow instance %d", wi.Id), err)
			}
		}
		first = false
		ai, ok := wi.PopWork()
		if !ok {
			break
		}
		if err := e.dispatch(ai); err != nil {
			return err
		}
	}
	return nil
}

func (e *Execution) dispatch(ai *runtime.ActivityInstance) error {
	wi := e.instance
	state := ai.WorkState
	switch {
	case state.IsStart():
		wi.SetWorkState(ai, runtime.WorkStateNone)
		if ai.IsEnded() {
			return nil
		}
		if state == runtime.WorkStateStartingMultiContainer {
			return e.expandMultiInstance(ai)
		}
		activityType, err := e.activityType(ai.ActivityId)
		if err != nil {
			return err
		}
		e.engine.metrics.ActivitiesExecuted.Add(e.ctx, 1, e.activityAttributes(activityType))
		return activityType.Execute(e, ai)
	case state == runtime.WorkStateNotifying, state == runtime.WorkStateJoining:
		// parked join arrivals keep their state until the join fires
		if state == runtime.WorkStateNotifying {
			wi.SetWorkState(ai, runtime.WorkStateNone)
		}
		if err := e.releaseStalledJoin(ai.ParentId); err != nil {
			return err
		}
		parent := wi.Parent(ai)
		if parent == nil {
			return nil
		}
		activityType, err := e.activityType(parent.ActivityId)
		if err != nil {
			return err
		}
		return activityType.Ended(e, parent, ai)
	}
	return nil
}

// releaseStalledJoin fires a join of the scope whose arrivals are parked while every other activity instance
// of the scope has ended. The first parked arrival continues, the others are released.
func (e *Execution) releaseStalledJoin(scopeId int64) error {
	children := e.instance.Children(scopeId)
	for _, child := range children {
		if !child.IsEnded() {
			return nil
		}
	}
	for _, child := range children {
		if child.WorkState != runtime.WorkStateJoining {
			continue
		}
		activityType, err := e.activityType(child.ActivityId)
		if err != nil {
			return err
		}
		if join, ok := activityType.(*parallelGateway); ok && join.canContinue() {
			return join.fire(e, child)
		}
	}
	return nil
}

// runInstance runs the loop and hands the instance back to the store. It always unlocks the instance:
// on failure without flushing, otherwise after the final flush, followed by the unlock listeners.
func (engine *Engine) runInstance(exec *Execution) error {
	wi := exec.instance
	if err := exec.run(); err != nil {
		engine.logger.Error(fmt.Sprintf("Failed to run workflow instance %d: %s", wi.Id, err))
		return errors.Join(err, engine.ReleaseInstance(exec.ctx, wi))
	}

	if wi.HasAsyncWork() {
		exec.ScheduleJob(runtime.Job{
			Key:                asyncContinuationKey(wi.Id),
			Type:               jobTypeAsyncContinuation,
			WorkflowInstanceId: wi.Id,
		}, true)
	} else if !wi.IsEnded() && !wi.HasOpenActivityInstances() {
		exec.endWorkflow()
	}
	if wi.IsAsync {
		wi.IsAsync = false
		wi.MarkChanged()
	}

	if err := engine.store.FlushAndUnlockWorkflowInstance(exec.ctx, wi); err != nil {
		return errors.Join(newEngineErrorf("failed to flush and unlock workflow instance %d", wi.Id), err, engine.ReleaseInstance(exec.ctx, wi))
	}
	for _, listener := range wi.TakeUnlockListeners() {
		listener(wi)
	}
	return nil
}

func (e *Execution) endWorkflow() {
	wi := e.instance
	if !wi.EndScope(wi.Id, e.Now()) {
		return
	}
	e.engine.export(e.event(exporter.WorkflowEnded))
	attrs := metric.WithAttributes(attribute.String("workflowId", wi.WorkflowId))
	e.engine.metrics.WorkflowsEnded.Add(e.ctx, 1, attrs)
	e.engine.metrics.WorkflowsRunning.Add(e.ctx, -1, attrs)
	e.engine.logger.Debug("Workflow instance ended", "workflowInstanceId", wi.Id, "workflowId", wi.WorkflowId)

	if !wi.IsSubWorkflow() {
		return
	}
	e.ScheduleJob(runtime.Job{
		Key:                callEndedKey(wi.CallerActivityInstanceId),
		Type:               jobTypeCallEnded,
		WorkflowInstanceId: wi.CallerWorkflowInstanceId,
		ActivityInstanceId: wi.CallerActivityInstanceId,
		Data: map[string]any{
			dataCalledWorkflowInstanceId: strconv.FormatInt(wi.Id, 10),
		},
	}, true)
}
