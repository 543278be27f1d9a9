// Package model holds the static workflow graph. A Workflow is immutable once Validate succeeded;
// the runtime only reads it.
package model

// Activity kinds understood by the engine's default registry.
const (
	KindStartEvent       = "startEvent"
	KindEndEvent         = "endEvent"
	KindNoneTask         = "noneTask"
	KindServiceTask      = "serviceTask"
	KindScriptTask       = "scriptTask"
	KindReceiveTask      = "receiveTask"
	KindExclusiveGateway = "exclusiveGateway"
	KindParallelGateway  = "parallelGateway"
	KindTimerEvent       = "timerEvent"
	KindCallActivity     = "callActivity"
	KindSubProcess       = "subProcess"
)

type Workflow struct {
	Id          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Scope `yaml:",inline"`

	warnings []Issue
	index    map[string]*Activity
}

// Scope is a container of activities, transitions and variable declarations:
// the workflow itself or the body of an embedded sub-process.
type Scope struct {
	Activities  []*Activity   `json:"activities" yaml:"activities"`
	Transitions []*Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	Variables   []Variable    `json:"variables,omitempty" yaml:"variables,omitempty"`

	activities map[string]*Activity
	parent     *Activity
}

type Activity struct {
	Id    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind  string `json:"kind" yaml:"kind"`
	Async bool   `json:"async,omitempty" yaml:"async,omitempty"`
	// DefaultTransition is taken when no other outgoing transition's condition holds.
	DefaultTransition string         `json:"defaultTransition,omitempty" yaml:"defaultTransition,omitempty"`
	MultiInstance     *MultiInstance `json:"multiInstance,omitempty" yaml:"multiInstance,omitempty"`
	// Variables are declared on every instance of this activity.
	Variables []Variable `json:"variables,omitempty" yaml:"variables,omitempty"`

	// serviceTask
	Handler string `json:"handler,omitempty" yaml:"handler,omitempty"`
	// scriptTask
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
	// timerEvent, ISO-8601 duration
	Timer string `json:"timer,omitempty" yaml:"timer,omitempty"`
	// callActivity, id of the workflow started as sub-workflow
	CalledWorkflow string `json:"calledWorkflow,omitempty" yaml:"calledWorkflow,omitempty"`
	// Inputs are resolved in the activity instance and handed to handlers or called workflows.
	Inputs map[string]Binding[any] `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	// Outputs map result names to the variables they are written to.
	Outputs        map[string]string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	ResultVariable string            `json:"resultVariable,omitempty" yaml:"resultVariable,omitempty"`
	// subProcess
	Body *Scope `json:"body,omitempty" yaml:"body,omitempty"`

	outgoing          []*Transition
	incoming          []*Transition
	defaultTransition *Transition
	scope             *Scope
}

type Transition struct {
	Id   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	// To is empty when taking the transition ends the branch.
	To        string        `json:"to,omitempty" yaml:"to,omitempty"`
	Condition Binding[bool] `json:"condition,omitzero" yaml:"condition,omitempty"`

	from *Activity
	to   *Activity
}

type Variable struct {
	Id      string       `json:"id" yaml:"id"`
	Type    DataType     `json:"type,omitempty" yaml:"type,omitempty"`
	Initial Binding[any] `json:"initial,omitzero" yaml:"initial,omitempty"`
}

// MultiInstance repeats an activity once for every element of Collection.
type MultiInstance struct {
	Collection Binding[[]any] `json:"collection" yaml:"collection"`
	Element    Variable       `json:"element" yaml:"element"`
}

// FindActivity searches the workflow and all nested scopes. Only valid after Validate.
func (w *Workflow) FindActivity(id string) *Activity {
	return w.index[id]
}

// Warnings returns non fatal issues found by the last Validate call.
func (w *Workflow) Warnings() []Issue {
	return w.warnings
}

func (s *Scope) Activity(id string) *Activity {
	return s.activities[id]
}

// StartActivities returns the activities without incoming transitions in declaration order.
func (s *Scope) StartActivities() []*Activity {
	res := make([]*Activity, 0, 1)
	for _, a := range s.Activities {
		if len(a.incoming) == 0 {
			res = append(res, a)
		}
	}
	return res
}

// Parent returns the activity owning this scope, nil for the workflow scope.
func (s *Scope) Parent() *Activity {
	return s.parent
}

func (s *Scope) FindVariable(id string) *Variable {
	for i := range s.Variables {
		if s.Variables[i].Id == id {
			return &s.Variables[i]
		}
	}
	return nil
}

func (a *Activity) Outgoing() []*Transition {
	return a.outgoing
}

func (a *Activity) Incoming() []*Transition {
	return a.incoming
}

func (a *Activity) Default() *Transition {
	return a.defaultTransition
}

// Scope returns the scope the activity is declared in.
func (a *Activity) Scope() *Scope {
	return a.scope
}

func (a *Activity) IsMultiInstance() bool {
	return a.MultiInstance != nil
}

func (a *Activity) FindVariable(id string) *Variable {
	for i := range a.Variables {
		if a.Variables[i].Id == id {
			return &a.Variables[i]
		}
	}
	if a.MultiInstance != nil && a.MultiInstance.Element.Id == id {
		return &a.MultiInstance.Element
	}
	return nil
}

func (t *Transition) FromActivity() *Activity {
	return t.from
}

func (t *Transition) ToActivity() *Activity {
	return t.to
}

// EachActivity calls fn for every activity of the workflow including nested scopes, depth first
// in declaration order.
func (w *Workflow) EachActivity(fn func(a *Activity)) {
	var walk func(s *Scope)
	walk = func(s *Scope) {
		for _, a := range s.Activities {
			if a == nil {
				continue
			}
			fn(a)
			if a.Body != nil {
				walk(a.Body)
			}
		}
	}
	walk(&w.Scope)
}
