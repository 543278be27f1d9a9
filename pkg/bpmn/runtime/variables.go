package runtime

import (
	"fmt"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
)

// scopeChain returns the scope with the given id followed by its ancestors up to the workflow instance.
func (wi *WorkflowInstance) scopeChain(scopeId int64) []*ScopeInstance {
	chain := make([]*ScopeInstance, 0, 4)
	scope := wi.Scope(scopeId)
	for scope != nil {
		chain = append(chain, scope)
		if scope.Id == wi.Id {
			break
		}
		scope = wi.Scope(scope.ParentId)
	}
	return chain
}

// DeclareVariable creates a variable instance owned by the scope with the given id.
func (wi *WorkflowInstance) DeclareVariable(scopeId int64, variableId string, dataType model.DataType, value any) error {
	scope := wi.Scope(scopeId)
	if scope == nil {
		return fmt.Errorf("scope %d does not exist", scopeId)
	}
	if scope.variable(variableId) != nil {
		return fmt.Errorf("variable %s is already declared in scope %d", variableId, scopeId)
	}
	value, err := dataType.Coerce(value)
	if err != nil {
		return fmt.Errorf("invalid value for variable %s: %w", variableId, err)
	}
	scope.Variables = append(scope.Variables, VariableInstance{
		VariableId: variableId,
		Value:      value,
		Type:       dataType,
		ScopeId:    scope.Id,
	})
	wi.changed = true
	return nil
}

// FindVariable returns the variable instance declared nearest to the scope walking up the parent chain.
func (wi *WorkflowInstance) FindVariable(scopeId int64, variableId string) *VariableInstance {
	for _, scope := range wi.scopeChain(scopeId) {
		if v := scope.variable(variableId); v != nil {
			return v
		}
	}
	return nil
}

func (wi *WorkflowInstance) GetVariable(scopeId int64, variableId string) (any, bool) {
	v := wi.FindVariable(scopeId, variableId)
	if v == nil {
		return nil, false
	}
	return v.Value, true
}

// SetVariable updates the variable in the scope that declares it. Undeclared variables are created
// on the workflow instance.
func (wi *WorkflowInstance) SetVariable(scopeId int64, variableId string, value any) error {
	v := wi.FindVariable(scopeId, variableId)
	if v == nil {
		return wi.DeclareVariable(wi.Id, variableId, model.DataTypeAny, value)
	}
	value, err := v.Type.Coerce(value)
	if err != nil {
		return fmt.Errorf("invalid value for variable %s: %w", variableId, err)
	}
	v.Value = value
	wi.changed = true
	return nil
}

// VisibleVariables returns the values visible from the scope. Nearer declarations hide outer ones.
func (wi *WorkflowInstance) VisibleVariables(scopeId int64) map[string]any {
	chain := wi.scopeChain(scopeId)
	res := map[string]any{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, v := range chain[i].Variables {
			res[v.VariableId] = v.Value
		}
	}
	return res
}
