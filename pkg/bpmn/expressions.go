package bpmn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/script"
)

// scopeLookup resolves variables as seen from one scope instance.
type scopeLookup struct {
	wi      *runtime.WorkflowInstance
	scopeId int64
}

func (l scopeLookup) Variable(variableId string) (any, bool) {
	return l.wi.GetVariable(l.scopeId, variableId)
}

func (l scopeLookup) Variables() map[string]any {
	return l.wi.VisibleVariables(l.scopeId)
}

type expressionEvaluator struct {
	runtime script.ExpressionRuntime
}

func (e expressionEvaluator) Evaluate(expression string, variables map[string]any) (any, error) {
	// a leading "=" is accepted for FEEL style expressions
	expression = strings.TrimPrefix(strings.TrimSpace(expression), "=")
	res, err := e.runtime.Evaluate(expression, variables)
	if err != nil {
		return nil, &ExpressionEvaluationError{Msg: fmt.Sprintf("failed to evaluate expression %q", expression), Err: err}
	}
	return res, nil
}

// resolve evaluates a binding in the scope instance. Every failure is reported as *ExpressionEvaluationError.
func resolve[T any](exec *Execution, scopeId int64, b model.Binding[T]) (T, error) {
	v, err := model.Resolve(b, scopeLookup{wi: exec.instance, scopeId: scopeId}, expressionEvaluator{runtime: exec.engine.expressions})
	if err == nil {
		return v, nil
	}
	var exprErr *ExpressionEvaluationError
	if errors.As(err, &exprErr) {
		return v, err
	}
	return v, &ExpressionEvaluationError{Msg: fmt.Sprintf("failed to resolve %s", b), Err: err}
}

func resolveInputs(exec *Execution, scopeId int64, inputs map[string]model.Binding[any]) (map[string]any, error) {
	res := make(map[string]any, len(inputs))
	for name, binding := range inputs {
		v, err := resolve(exec, scopeId, binding)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve input %s: %w", name, err)
		}
		res[name] = v
	}
	return res, nil
}

// applyOutputs writes results into variables visible from the scope. Without a mapping every result is
// written under its own name.
func applyOutputs(exec *Execution, scopeId int64, activity *model.Activity, results map[string]any) error {
	wi := exec.instance
	if activity.ResultVariable != "" {
		if err := wi.SetVariable(scopeId, activity.ResultVariable, results); err != nil {
			return err
		}
	}
	if len(activity.Outputs) > 0 {
		for name, variableId := range activity.Outputs {
			if err := wi.SetVariable(scopeId, variableId, results[name]); err != nil {
				return err
			}
		}
		return nil
	}
	if activity.ResultVariable != "" {
		return nil
	}
	for name, value := range results {
		if err := wi.SetVariable(scopeId, name, value); err != nil {
			return err
		}
	}
	return nil
}
