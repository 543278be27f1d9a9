package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(ids ...string) *Workflow {
	w := &Workflow{Id: "sequence"}
	for i, id := range ids {
		w.Activities = append(w.Activities, &Activity{Id: id, Kind: KindNoneTask})
		if i > 0 {
			w.Transitions = append(w.Transitions, &Transition{Id: ids[i-1] + "-" + id, From: ids[i-1], To: id})
		}
	}
	return w
}

func TestValidateLinksTransitions(t *testing.T) {
	w := sequence("s", "t", "e")

	err := w.Validate()

	require.NoError(t, err)
	assert.Empty(t, w.Warnings())
	s := w.FindActivity("s")
	tt := w.FindActivity("t")
	assert.Len(t, s.Outgoing(), 1)
	assert.Equal(t, tt, s.Outgoing()[0].ToActivity())
	assert.Equal(t, s, tt.Incoming()[0].FromActivity())
	assert.Equal(t, []*Activity{s}, w.StartActivities())
	assert.Equal(t, &w.Scope, tt.Scope())
}

func TestValidateIsRepeatable(t *testing.T) {
	w := sequence("s", "e")
	require.NoError(t, w.Validate())
	require.NoError(t, w.Validate())
	assert.Len(t, w.FindActivity("s").Outgoing(), 1)
}

func TestValidateReportsErrors(t *testing.T) {
	w := sequence("s", "e")
	w.Activities = append(w.Activities, &Activity{Id: "s", Kind: KindNoneTask})
	w.Transitions = append(w.Transitions, &Transition{Id: "broken", From: "s", To: "nowhere"})
	w.Activities[1].DefaultTransition = "unknown"

	err := w.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sequence", verr.WorkflowId)
	messages := make([]string, 0)
	for _, issue := range verr.Issues {
		assert.Equal(t, IssueError, issue.Level)
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, `duplicate activity id "s"`)
	assert.Contains(t, messages, `to activity "nowhere" does not exist in this scope`)
	assert.Contains(t, messages, `default transition "unknown" is not an outgoing transition`)
}

func TestValidateRequiresStartActivity(t *testing.T) {
	w := sequence("a", "b")
	w.Transitions = append(w.Transitions, &Transition{Id: "loop", From: "b", To: "a"})

	err := w.Validate()

	assert.ErrorContains(t, err, "no start activity")
}

func TestValidateWarnsAboutUnreachableActivities(t *testing.T) {
	w := sequence("s", "e")
	w.Activities = append(w.Activities,
		&Activity{Id: "x", Kind: KindNoneTask},
		&Activity{Id: "y", Kind: KindNoneTask},
	)
	w.Transitions = append(w.Transitions,
		&Transition{Id: "x-y", From: "x", To: "y"},
		&Transition{Id: "y-x", From: "y", To: "x"},
	)
	// x has an incoming transition from y, so neither is a start activity
	err := w.Validate()

	require.NoError(t, err)
	paths := make([]string, 0)
	for _, warning := range w.Warnings() {
		assert.Equal(t, IssueWarning, warning.Level)
		paths = append(paths, warning.Path)
	}
	assert.ElementsMatch(t, []string{"workflow.activities[x]", "workflow.activities[y]"}, paths)
}

func TestValidateNestedScopes(t *testing.T) {
	w := sequence("s", "sub", "e")
	w.Activities[1].Kind = KindSubProcess
	w.Activities[1].Body = &Scope{
		Activities:  []*Activity{{Id: "inner-s", Kind: KindNoneTask}, {Id: "inner-e", Kind: KindNoneTask}},
		Transitions: []*Transition{{Id: "inner", From: "inner-s", To: "inner-e"}},
	}

	require.NoError(t, w.Validate())

	inner := w.FindActivity("inner-e")
	require.NotNil(t, inner)
	assert.Equal(t, w.FindActivity("sub"), inner.Scope().Parent())
}

func TestValidateMultiInstance(t *testing.T) {
	w := sequence("s", "each")
	w.Activities[1].MultiInstance = &MultiInstance{}

	err := w.Validate()

	assert.ErrorContains(t, err, "collection is required")
	assert.ErrorContains(t, err, "element variable id is required")
}
