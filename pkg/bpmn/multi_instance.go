package bpmn

import (
	"fmt"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

// expandMultiInstance starts one element instance per collection entry inside the container.
// An empty collection passes straight through the container.
func (e *Execution) expandMultiInstance(container *runtime.ActivityInstance) error {
	activity := e.Activity(container)
	collection, err := resolve(e, container.Id, activity.MultiInstance.Collection)
	if err != nil {
		return fmt.Errorf("failed to resolve collection of multi-instance activity %s: %w", activity.Id, err)
	}
	if len(collection) == 0 {
		return e.Onwards(container)
	}
	for _, element := range collection {
		if _, err := e.createActivityInstance(container.Id, activity, runtime.WorkStateStartingMultiInstance, element); err != nil {
			return err
		}
	}
	return nil
}
