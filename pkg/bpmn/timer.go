package bpmn

import (
	"fmt"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/senseyeio/duration"
)

// timerEvent waits for an ISO-8601 duration. The wait is a timer job bound to the activity instance.
type timerEvent struct {
	BaseActivity
	duration duration.Duration
}

func newTimerEvent(activity *model.Activity, _ *Engine) (ActivityType, error) {
	d, err := duration.ParseISO8601(activity.Timer)
	if err != nil {
		return nil, fmt.Errorf("timer %q of activity %s is not an ISO-8601 duration: %w", activity.Timer, activity.Id, err)
	}
	return &timerEvent{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindTimerEvent, MultiInstance: true}),
		duration:     d,
	}, nil
}

func (t *timerEvent) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	exec.Wait(ai)
	exec.ScheduleJob(runtime.Job{
		Key:                timerKey(ai.Id),
		Type:               jobTypeTimer,
		Due:                t.duration.Shift(exec.Now()),
		WorkflowInstanceId: exec.Instance().Id,
		ActivityInstanceId: ai.Id,
	}, false)
	return nil
}

// fire continues the instance after its timer job became due.
func (t *timerEvent) fire(exec *Execution, ai *runtime.ActivityInstance) error {
	if ai.IsEnded() || ai.WorkState != runtime.WorkStateWaiting {
		return nil
	}
	exec.Instance().SetWorkState(ai, runtime.WorkStateNone)
	return exec.Onwards(ai)
}
