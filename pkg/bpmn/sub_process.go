package bpmn

import (
	"fmt"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// subProcess runs its body as a nested scope and continues once no body activity is open anymore.
type subProcess struct {
	BaseActivity
}

func newSubProcess(activity *model.Activity, _ *Engine) (ActivityType, error) {
	if activity.Body == nil {
		return nil, fmt.Errorf("sub-process %s has no body", activity.Id)
	}
	return &subProcess{
		BaseActivity: NewBaseActivity(activity, Descriptor{Kind: model.KindSubProcess, MultiInstance: true}),
	}, nil
}

func (s *subProcess) Execute(exec *Execution, ai *runtime.ActivityInstance) error {
	return exec.StartScope(ai.Id, s.Activity.Body)
}
