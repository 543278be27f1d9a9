package bpmn

import (
	"fmt"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// parallelGateway forks over all outgoing transitions and joins the branches arriving over its
// incoming transitions.
type parallelGateway struct {
	BaseActivity
	incoming int
}

func newParallelGateway(activity *model.Activity, _ *Engine) (ActivityType, error) {
	if len(activity.Incoming()) == 0 {
		return nil, fmt.Errorf("parallel gateway %s has no incoming transition", activity.Id)
	}
	for _, t := range activity.Outgoing() {
		if t.Condition.IsSet() {
			return nil, fmt.Errorf("outgoing transition %s of parallel gateway %s must not have a condition", t.Id, activity.Id)
		}
	}
	return &parallelGateway{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindParallelGateway, Join: true}),
		incoming:     len(activity.Incoming()),
	}, nil
}

// Execute handles one arriving branch. The arrival ends right away. The join fires when the gateway can
// continue and either all other branches are parked here or nothing else in the scope is still running;
// otherwise the arrival is parked.
func (g *parallelGateway) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	wi := exec.Instance()
	exec.EndActivityInstance(ai, false)

	parked := make([]*runtime.ActivityInstance, 0, g.incoming)
	unfinished := false
	for _, sibling := range wi.Children(ai.ParentId) {
		if sibling.Id == ai.Id {
			continue
		}
		if sibling.ActivityId == ai.ActivityId && sibling.WorkState == runtime.WorkStateJoining {
			parked = append(parked, sibling)
			continue
		}
		if !sibling.IsEnded() {
			unfinished = true
		}
	}

	if g.canContinue() && (len(parked) == g.incoming-1 || !unfinished) {
		return g.fire(exec, ai)
	}
	wi.SetWorkState(ai, runtime.WorkStateJoining)
	wi.PushWork(ai.Id, false)
	return nil
}

func (g *parallelGateway) canContinue() bool {
	return len(g.Activity.Outgoing()) > 0
}

// fire releases every arrival parked at the gateway in the scope of ai and continues onwards from ai.
func (g *parallelGateway) fire(exec *Execution, ai *runtime.ActivityInstance) error {
	wi := exec.Instance()
	for _, sibling := range wi.Children(ai.ParentId) {
		if sibling.ActivityId == ai.ActivityId && sibling.WorkState == runtime.WorkStateJoining {
			wi.SetWorkState(sibling, runtime.WorkStateNone)
		}
	}
	return exec.Onwards(ai)
}

type exclusiveGateway struct {
	BaseActivity
}

func newExclusiveGateway(activity *model.Activity, _ *Engine) (ActivityType, error) {
	if len(activity.Outgoing()) == 0 {
		return nil, fmt.Errorf("exclusive gateway %s has no outgoing transition", activity.Id)
	}
	return &exclusiveGateway{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindExclusiveGateway}),
	}, nil
}

// Execute takes the first outgoing transition whose condition holds, in declaration order, else the default.
func (g *exclusiveGateway) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	for _, t := range g.Activity.Outgoing() {
		if t == g.Activity.Default() {
			continue
		}
		if t.Condition.IsSet() {
			ok, err := resolve(exec, ai.Id, t.Condition)
			if err != nil {
				return fmt.Errorf("failed to evaluate condition of transition %s: %w", t.Id, err)
			}
			if !ok {
				continue
			}
		}
		return exec.TakeTransition(ai, t)
	}
	if t := g.Activity.Default(); t != nil {
		return exec.TakeTransition(ai, t)
	}
	return newEngineErrorf("no outgoing transition of exclusive gateway %s can be taken (instance %d)", g.Activity.Id, ai.Id)
}
