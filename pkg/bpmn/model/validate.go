package model

import (
	"fmt"
	"strings"

	"github.com/yourbasic/graph"
)

type IssueLevel string

const (
	IssueError   IssueLevel = "error"
	IssueWarning IssueLevel = "warning"
)

type Issue struct {
	Level   IssueLevel `json:"level"`
	Path    string     `json:"path"`
	Message string     `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ValidationError lists every error level issue of a workflow rejected at deploy time.
type ValidationError struct {
	WorkflowId string
	Issues     []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("workflow %q is invalid: %s", e.WorkflowId, strings.Join(msgs, "; "))
}

type validator struct {
	issues      []Issue
	activities  map[string]*Activity
	transitions map[string]*Transition
}

func (v *validator) errorf(path string, format string, args ...any) {
	v.issues = append(v.issues, Issue{Level: IssueError, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) warnf(path string, format string, args ...any) {
	v.issues = append(v.issues, Issue{Level: IssueWarning, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the graph and links activities and transitions. It must succeed before the
// workflow is executed. Warnings are kept on the workflow, errors are returned as *ValidationError.
func (w *Workflow) Validate() error {
	v := &validator{
		activities:  map[string]*Activity{},
		transitions: map[string]*Transition{},
	}
	if w.Id == "" {
		v.errorf("workflow", "id is required")
	}
	v.validateVariables("workflow", w.Variables)
	v.validateScope("workflow", &w.Scope, nil)

	errs := make([]Issue, 0)
	w.warnings = make([]Issue, 0)
	for _, issue := range v.issues {
		if issue.Level == IssueError {
			errs = append(errs, issue)
		} else {
			w.warnings = append(w.warnings, issue)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{WorkflowId: w.Id, Issues: errs}
	}
	w.index = v.activities
	return nil
}

func (v *validator) validateScope(path string, s *Scope, parent *Activity) {
	s.parent = parent
	s.activities = make(map[string]*Activity, len(s.Activities))
	if len(s.Activities) == 0 {
		v.errorf(path, "scope has no activities")
		return
	}
	for i, a := range s.Activities {
		if a == nil {
			v.errorf(fmt.Sprintf("%s.activities[%d]", path, i), "activity is empty")
			continue
		}
		aPath := fmt.Sprintf("%s.activities[%s]", path, a.Id)
		a.scope = s
		a.outgoing = nil
		a.incoming = nil
		a.defaultTransition = nil
		if a.Id == "" {
			v.errorf(fmt.Sprintf("%s.activities[%d]", path, i), "id is required")
			continue
		}
		if _, ok := v.activities[a.Id]; ok {
			v.errorf(aPath, "duplicate activity id %q", a.Id)
			continue
		}
		v.activities[a.Id] = a
		s.activities[a.Id] = a
		if a.Kind == "" {
			v.errorf(aPath, "kind is required")
		}
		v.validateVariables(aPath, a.Variables)
		for name, in := range a.Inputs {
			if err := in.validate(); err != nil {
				v.errorf(aPath+".inputs."+name, "%s", err)
			}
		}
		if a.MultiInstance != nil {
			if !a.MultiInstance.Collection.IsSet() {
				v.errorf(aPath+".multiInstance", "collection is required")
			} else if err := a.MultiInstance.Collection.validate(); err != nil {
				v.errorf(aPath+".multiInstance.collection", "%s", err)
			}
			if a.MultiInstance.Element.Id == "" {
				v.errorf(aPath+".multiInstance.element", "element variable id is required")
			}
		}
	}

	for i, t := range s.Transitions {
		if t == nil {
			v.errorf(fmt.Sprintf("%s.transitions[%d]", path, i), "transition is empty")
			continue
		}
		tPath := fmt.Sprintf("%s.transitions[%s]", path, t.Id)
		if t.Id == "" {
			v.errorf(fmt.Sprintf("%s.transitions[%d]", path, i), "id is required")
			continue
		}
		if _, ok := v.transitions[t.Id]; ok {
			v.errorf(tPath, "duplicate transition id %q", t.Id)
			continue
		}
		v.transitions[t.Id] = t
		t.from = s.activities[t.From]
		t.to = nil
		if t.from == nil {
			v.errorf(tPath, "from activity %q does not exist in this scope", t.From)
			continue
		}
		if t.To != "" {
			t.to = s.activities[t.To]
			if t.to == nil {
				v.errorf(tPath, "to activity %q does not exist in this scope", t.To)
				continue
			}
			t.to.incoming = append(t.to.incoming, t)
		}
		t.from.outgoing = append(t.from.outgoing, t)
		if err := t.Condition.validate(); err != nil {
			v.errorf(tPath+".condition", "%s", err)
		}
	}

	for _, a := range s.Activities {
		if a == nil || s.activities[a.Id] != a {
			continue
		}
		aPath := fmt.Sprintf("%s.activities[%s]", path, a.Id)
		if a.DefaultTransition != "" {
			for _, t := range a.outgoing {
				if t.Id == a.DefaultTransition {
					a.defaultTransition = t
				}
			}
			if a.defaultTransition == nil {
				v.errorf(aPath, "default transition %q is not an outgoing transition", a.DefaultTransition)
			} else if a.defaultTransition.Condition.IsSet() {
				v.warnf(aPath, "condition of default transition %q is ignored", a.DefaultTransition)
			}
		}
		if a.Body != nil {
			v.validateVariables(aPath+".body", a.Body.Variables)
			v.validateScope(aPath+".body", a.Body, a)
		}
	}

	if len(s.StartActivities()) == 0 {
		v.errorf(path, "scope has no start activity, every activity has an incoming transition")
		return
	}
	v.checkReachability(path, s)
}

func (v *validator) validateVariables(path string, variables []Variable) {
	seen := map[string]struct{}{}
	for i, variable := range variables {
		vPath := fmt.Sprintf("%s.variables[%d]", path, i)
		if variable.Id == "" {
			v.errorf(vPath, "id is required")
			continue
		}
		if _, ok := seen[variable.Id]; ok {
			v.errorf(vPath, "duplicate variable %q", variable.Id)
		}
		seen[variable.Id] = struct{}{}
		if !variable.Type.valid() {
			v.errorf(vPath, "unknown type %q", variable.Type)
		}
		if err := variable.Initial.validate(); err != nil {
			v.errorf(vPath+".initial", "%s", err)
		}
	}
}

// checkReachability warns about activities no start activity of the scope leads to.
func (v *validator) checkReachability(path string, s *Scope) {
	index := make(map[*Activity]int, len(s.Activities))
	for _, a := range s.Activities {
		if a != nil && s.activities[a.Id] == a {
			index[a] = len(index)
		}
	}
	g := graph.New(len(index))
	for _, t := range s.Transitions {
		if t == nil || t.from == nil || t.to == nil {
			continue
		}
		g.Add(index[t.from], index[t.to])
	}
	reached := make([]bool, len(index))
	for _, start := range s.StartActivities() {
		reached[index[start]] = true
		graph.BFS(g, index[start], func(_, w int, _ int64) {
			reached[w] = true
		})
	}
	for a, i := range index {
		if !reached[i] {
			v.warnf(fmt.Sprintf("%s.activities[%s]", path, a.Id), "activity is not reachable from any start activity")
		}
	}
}
