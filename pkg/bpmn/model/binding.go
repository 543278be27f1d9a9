package model

import (
	"errors"
	"fmt"
)

var ErrUninitializedBinding = errors.New("binding is not initialized")

type BindingKind int

const (
	BindingUninitialized BindingKind = iota
	BindingLiteral
	BindingVariable
	BindingExpression
	bindingAmbiguous
)

// Binding is a deferred value: exactly one of a literal value, a variable reference or an expression.
// The zero value is uninitialized and must not be evaluated.
type Binding[T any] struct {
	Value      *T       `json:"value,omitempty" yaml:"value,omitempty"`
	Variable   string   `json:"variable,omitempty" yaml:"variable,omitempty"`
	Expression string   `json:"expression,omitempty" yaml:"expression,omitempty"`
	Type       DataType `json:"type,omitempty" yaml:"type,omitempty"`
}

func Literal[T any](v T) Binding[T] {
	return Binding[T]{Value: &v}
}

func VariableRef[T any](variableId string) Binding[T] {
	return Binding[T]{Variable: variableId}
}

func Expression[T any](expression string) Binding[T] {
	return Binding[T]{Expression: expression}
}

func (b Binding[T]) Kind() BindingKind {
	kind := BindingUninitialized
	set := 0
	if b.Value != nil {
		kind = BindingLiteral
		set++
	}
	if b.Variable != "" {
		kind = BindingVariable
		set++
	}
	if b.Expression != "" {
		kind = BindingExpression
		set++
	}
	if set > 1 {
		return bindingAmbiguous
	}
	return kind
}

func (b Binding[T]) IsSet() bool {
	return b.Kind() != BindingUninitialized
}

func (b Binding[T]) validate() error {
	if b.Kind() == bindingAmbiguous {
		return fmt.Errorf("binding must set only one of value, variable or expression")
	}
	if !b.Type.valid() {
		return fmt.Errorf("unknown binding type %q", b.Type)
	}
	return nil
}

func (b Binding[T]) String() string {
	switch b.Kind() {
	case BindingLiteral:
		return fmt.Sprintf("%v", *b.Value)
	case BindingVariable:
		return "$" + b.Variable
	case BindingExpression:
		return b.Expression
	}
	return "<unset>"
}

// VariableLookup resolves variables visible from one scope instance.
type VariableLookup interface {
	Variable(variableId string) (any, bool)
	Variables() map[string]any
}

// ExpressionEvaluator evaluates an expression against a variable context.
type ExpressionEvaluator interface {
	Evaluate(expression string, variables map[string]any) (any, error)
}

// Resolve evaluates b against the scope. An unknown variable resolves to the zero value.
func Resolve[T any](b Binding[T], scope VariableLookup, evaluator ExpressionEvaluator) (T, error) {
	var zero T
	var raw any
	switch b.Kind() {
	case BindingUninitialized:
		return zero, ErrUninitializedBinding
	case bindingAmbiguous:
		return zero, b.validate()
	case BindingLiteral:
		raw = *b.Value
	case BindingVariable:
		raw, _ = scope.Variable(b.Variable)
	case BindingExpression:
		if evaluator == nil {
			return zero, fmt.Errorf("no expression evaluator configured for %q", b.Expression)
		}
		v, err := evaluator.Evaluate(b.Expression, scope.Variables())
		if err != nil {
			return zero, err
		}
		raw = v
	}
	return convert[T](raw, b.Type)
}

func convert[T any](raw any, declared DataType) (T, error) {
	var zero T
	coerced, err := declared.Coerce(raw)
	if err != nil {
		return zero, err
	}
	if coerced == nil {
		return zero, nil
	}
	if v, ok := coerced.(T); ok {
		return v, nil
	}
	coerced, err = typeOf[T]().Coerce(coerced)
	if err != nil {
		return zero, err
	}
	if v, ok := coerced.(T); ok {
		return v, nil
	}
	return zero, fmt.Errorf("value of type %T cannot be used as %T", raw, zero)
}
