package bpmn

import (
	"os"
	"testing"

	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeployTwiceReturnsSameVersion(t *testing.T) {
	// setup
	te := newTestEngine(t)

	// given
	first := te.deploy(t, "linear.yaml")

	// when
	second := te.deploy(t, "linear.yaml")

	// then
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, 1, second.Version)
	definitions, err := te.FindWorkflowDefinitions(t.Context(), "linear")
	require.NoError(t, err)
	assert.Len(t, definitions, 1)
}

func TestDeployChangedWorkflowCreatesNewVersion(t *testing.T) {
	// setup
	te := newTestEngine(t)
	first := te.deploy(t, "linear.yaml")
	workflow, err := model.LoadFromFile("test-cases/linear.yaml")
	require.NoError(t, err)

	// given
	workflow.Name = "renamed"

	// when
	second, err := te.DeployWorkflow(t.Context(), workflow)

	// then
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, 2, second.Version)

	// when
	wi := te.start(t, "linear", nil)

	// then
	assert.Equal(t, second.Key, wi.WorkflowKey)
	assert.Equal(t, 2, wi.WorkflowVersion)
}

func TestDeployYAML(t *testing.T) {
	// setup
	te := newTestEngine(t)
	data, err := os.ReadFile("test-cases/order.yaml")
	require.NoError(t, err)

	// when
	definition, err := te.DeployWorkflowYAML(t.Context(), data)

	// then
	require.NoError(t, err)
	assert.Equal(t, "order", definition.WorkflowId)
	stored, err := te.FindWorkflowDefinition(t.Context(), definition.Key)
	require.NoError(t, err)
	assert.Equal(t, definition.Checksum, stored.Checksum)
}

func TestDeployRejectsUnknownKind(t *testing.T) {
	// setup
	te := newTestEngine(t)
	workflow, err := model.ParseYAML([]byte(`
id: unknown-kind
activities:
  - id: s
    kind: startEvent
  - id: mystery
    kind: userTask
transitions:
  - id: s-mystery
    from: s
    to: mystery
`))
	require.NoError(t, err)

	// when
	_, err = te.DeployWorkflow(t.Context(), workflow)

	// then
	var validationError *model.ValidationError
	require.ErrorAs(t, err, &validationError)
	assert.Len(t, validationError.Issues, 1)
	assert.Equal(t, "activities[mystery]", validationError.Issues[0].Path)
}

func TestDeployAcceptsCustomActivityType(t *testing.T) {
	// setup
	te := newTestEngine(t, EngineWithActivityType("userTask", func(activity *model.Activity, _ *Engine) (ActivityType, error) {
		return &receiveTask{BaseActivity: NewBaseActivity(activity, Descriptor{Kind: "userTask"})}, nil
	}))
	workflow, err := model.ParseYAML([]byte(`
id: custom-kind
activities:
  - id: s
    kind: startEvent
  - id: review
    kind: userTask
transitions:
  - id: s-review
    from: s
    to: review
`))
	require.NoError(t, err)

	// when
	_, err = te.DeployWorkflow(t.Context(), workflow)
	require.NoError(t, err)
	wi := te.start(t, "custom-kind", nil)

	// then
	assert.False(t, wi.IsEnded())
	review := wi.FindOpenActivityInstance("review")
	require.NotNil(t, review)
}

func TestDeployRejectsConditionalParallelFork(t *testing.T) {
	// setup
	te := newTestEngine(t)
	workflow, err := model.ParseYAML([]byte(`
id: conditional-fork
activities:
  - id: s
    kind: startEvent
  - id: fork
    kind: parallelGateway
  - id: a
    kind: endEvent
transitions:
  - id: s-fork
    from: s
    to: fork
  - id: fork-a
    from: fork
    to: a
    condition:
      value: true
`))
	require.NoError(t, err)

	// when
	_, err = te.DeployWorkflow(t.Context(), workflow)

	// then
	var validationError *model.ValidationError
	require.ErrorAs(t, err, &validationError)
	assert.Equal(t, "activities[fork]", validationError.Issues[0].Path)
}

func TestDeployRejectsMultiInstanceEvent(t *testing.T) {
	// setup
	te := newTestEngine(t)
	workflow, err := model.ParseYAML([]byte(`
id: multi-end
variables:
  - id: items
    type: list
activities:
  - id: s
    kind: startEvent
  - id: e
    kind: endEvent
    multiInstance:
      collection:
        variable: items
      element:
        id: item
transitions:
  - id: s-e
    from: s
    to: e
`))
	require.NoError(t, err)

	// when
	_, err = te.DeployWorkflow(t.Context(), workflow)

	// then
	var validationError *model.ValidationError
	require.ErrorAs(t, err, &validationError)
	assert.Contains(t, validationError.Issues[0].Message, "can not be multi-instance")
}

func TestStartUnknownWorkflow(t *testing.T) {
	// setup
	te := newTestEngine(t)

	// when
	_, err := te.StartWorkflow(t.Context(), StartRequest{WorkflowId: "missing"})

	// then
	var engineError *EngineError
	assert.ErrorAs(t, err, &engineError)
}
