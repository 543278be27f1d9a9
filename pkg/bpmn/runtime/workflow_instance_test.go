package runtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstance(t *testing.T) *WorkflowInstance {
	wi := NewWorkflowInstance(1, WorkflowDefinition{WorkflowId: "wf", Key: 10, Version: 1}, time.Now())
	return wi
}

func addActivityInstance(t *testing.T, wi *WorkflowInstance, id int64, parentId int64, activityId string) *ActivityInstance {
	ai := &ActivityInstance{
		ScopeInstance: ScopeInstance{Id: id, ParentId: parentId, Start: time.Now()},
		ActivityId:    activityId,
	}
	require.NoError(t, wi.AddActivityInstance(ai))
	return ai
}

func TestVariableScoping(t *testing.T) {
	// given
	wi := newTestInstance(t)
	require.NoError(t, wi.DeclareVariable(wi.Id, "counter", model.DataTypeInteger, 1))
	outer := addActivityInstance(t, wi, 2, wi.Id, "outer")
	require.NoError(t, wi.DeclareVariable(outer.Id, "local", model.DataTypeAny, "outer"))
	inner := addActivityInstance(t, wi, 3, outer.Id, "inner")
	sibling := addActivityInstance(t, wi, 4, wi.Id, "sibling")

	// when
	require.NoError(t, wi.SetVariable(inner.Id, "counter", 5))
	require.NoError(t, wi.SetVariable(inner.Id, "local", "changed"))

	// then
	counter, ok := wi.GetVariable(wi.Id, "counter")
	assert.True(t, ok)
	assert.Equal(t, int64(5), counter)
	assert.Len(t, inner.Variables, 0, "no duplicate is created in the nested scope")

	local, _ := wi.GetVariable(outer.Id, "local")
	assert.Equal(t, "changed", local)

	fromSibling, ok := wi.GetVariable(sibling.Id, "counter")
	assert.True(t, ok)
	assert.Equal(t, int64(5), fromSibling)
	_, ok = wi.GetVariable(sibling.Id, "local")
	assert.False(t, ok)
}

func TestSetUndeclaredVariableCreatesItOnWorkflowInstance(t *testing.T) {
	wi := newTestInstance(t)
	ai := addActivityInstance(t, wi, 2, wi.Id, "a")

	require.NoError(t, wi.SetVariable(ai.Id, "result", "ok"))

	assert.Len(t, ai.Variables, 0)
	assert.Equal(t, "ok", wi.VisibleVariables(wi.Id)["result"])
}

func TestSetVariableCoercesDeclaredType(t *testing.T) {
	wi := newTestInstance(t)
	require.NoError(t, wi.DeclareVariable(wi.Id, "approved", model.DataTypeBoolean, nil))

	assert.Error(t, wi.SetVariable(wi.Id, "approved", 3))
	assert.NoError(t, wi.SetVariable(wi.Id, "approved", "true"))
	v, _ := wi.GetVariable(wi.Id, "approved")
	assert.Equal(t, true, v)
}

func TestVisibleVariablesNearestWins(t *testing.T) {
	wi := newTestInstance(t)
	require.NoError(t, wi.DeclareVariable(wi.Id, "x", model.DataTypeAny, "root"))
	ai := addActivityInstance(t, wi, 2, wi.Id, "a")
	require.NoError(t, wi.DeclareVariable(ai.Id, "x", model.DataTypeAny, "nested"))

	assert.Equal(t, "nested", wi.VisibleVariables(ai.Id)["x"])
	assert.Equal(t, "root", wi.VisibleVariables(wi.Id)["x"])
}

func TestWorkQueues(t *testing.T) {
	wi := newTestInstance(t)
	a := addActivityInstance(t, wi, 2, wi.Id, "a")
	b := addActivityInstance(t, wi, 3, wi.Id, "b")
	c := addActivityInstance(t, wi, 4, wi.Id, "c")

	wi.PushWork(a.Id, false)
	wi.PushWork(c.Id, true)
	wi.PushWork(b.Id, false)

	first, ok := wi.PopWork()
	assert.True(t, ok)
	assert.Equal(t, a, first)
	second, _ := wi.PopWork()
	assert.Equal(t, b, second)
	_, ok = wi.PopWork()
	assert.False(t, ok)
	assert.True(t, wi.HasAsyncWork())

	wi.PromoteAsyncWork()
	assert.False(t, wi.HasAsyncWork())
	third, _ := wi.PopWork()
	assert.Equal(t, c, third)
}

func TestEndScopeOnlyOnce(t *testing.T) {
	wi := newTestInstance(t)
	ai := addActivityInstance(t, wi, 2, wi.Id, "a")
	end := time.Now()

	assert.True(t, wi.EndScope(ai.Id, end))
	assert.False(t, wi.EndScope(ai.Id, end.Add(time.Second)))
	assert.Equal(t, end, *ai.End)
	d, ok := ai.Duration()
	assert.True(t, ok)
	assert.Equal(t, end.Sub(ai.Start), d)
	assert.False(t, wi.HasOpenActivityInstances())
}

func TestOpenActivityInstancesInTreeOrder(t *testing.T) {
	wi := newTestInstance(t)
	a := addActivityInstance(t, wi, 20, wi.Id, "a")
	nested := addActivityInstance(t, wi, 5, a.Id, "nested")
	b := addActivityInstance(t, wi, 3, wi.Id, "b")

	assert.Equal(t, []*ActivityInstance{a, nested, b}, wi.OpenActivityInstances())
	assert.True(t, wi.HasOpenChildren(a.Id))
	wi.EndScope(nested.Id, time.Now())
	assert.False(t, wi.HasOpenChildren(a.Id))
	assert.Equal(t, b, wi.FindOpenActivityInstance("b"))
}

func TestWorkflowInstanceSurvivesEncoding(t *testing.T) {
	wi := newTestInstance(t)
	ai := addActivityInstance(t, wi, 2, wi.Id, "a")
	wi.SetWorkState(ai, WorkStateWaiting)
	require.NoError(t, wi.DeclareVariable(ai.Id, "x", model.DataTypeString, "v"))
	wi.PushWork(ai.Id, true)
	wi.AddUnlockListener(func(*WorkflowInstance) {})

	data, err := json.Marshal(wi)
	require.NoError(t, err)
	var decoded WorkflowInstance
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.HasChanges())
	assert.Empty(t, decoded.TakeUnlockListeners())
	assert.Equal(t, WorkStateWaiting, decoded.ActivityInstance(2).WorkState)
	assert.Equal(t, []int64{2}, decoded.ScopeInstance.Children)
	assert.Equal(t, []int64{2}, decoded.WorkAsync)
	v, _ := decoded.GetVariable(2, "x")
	assert.Equal(t, "v", v)
}

func TestJobExecutionHistoryIsCapped(t *testing.T) {
	job := Job{}
	for i := range 7 {
		job.AddExecution(JobExecution{Error: string(rune('a' + i))}, 5)
	}
	assert.Len(t, job.Executions, 5)
	assert.Equal(t, "c", job.Executions[0].Error)
	assert.Equal(t, "g", job.Executions[4].Error)
}
