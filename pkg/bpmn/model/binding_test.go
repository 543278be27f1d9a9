package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapScope map[string]any

func (m mapScope) Variable(id string) (any, bool) {
	v, ok := m[id]
	return v, ok
}

func (m mapScope) Variables() map[string]any {
	return m
}

type evaluatorFunc func(expression string, variables map[string]any) (any, error)

func (f evaluatorFunc) Evaluate(expression string, variables map[string]any) (any, error) {
	return f(expression, variables)
}

func TestResolveLiteral(t *testing.T) {
	v, err := Resolve(Literal("hello"), mapScope{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "hello", v)

	b, err := Resolve(Literal(false), mapScope{}, nil)
	assert.NoError(t, err)
	assert.False(t, b)
}

func TestResolveVariable(t *testing.T) {
	scope := mapScope{"amount": 12}

	v, err := Resolve(Binding[float64]{Variable: "amount"}, scope, nil)
	assert.NoError(t, err)
	assert.Equal(t, float64(12), v)

	missing, err := Resolve(VariableRef[any]("missing"), scope, nil)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResolveExpression(t *testing.T) {
	scope := mapScope{"amount": 12}
	evaluator := evaluatorFunc(func(expression string, variables map[string]any) (any, error) {
		assert.Equal(t, "amount > 10", expression)
		return variables["amount"].(int) > 10, nil
	})

	v, err := Resolve(Expression[bool]("amount > 10"), scope, evaluator)
	assert.NoError(t, err)
	assert.True(t, v)
}

func TestResolveExpressionError(t *testing.T) {
	evaluator := evaluatorFunc(func(string, map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := Resolve(Expression[any]("x"), mapScope{}, evaluator)
	assert.ErrorContains(t, err, "boom")

	_, err = Resolve(Expression[any]("x"), mapScope{}, nil)
	assert.ErrorContains(t, err, "no expression evaluator")
}

func TestResolveUninitialized(t *testing.T) {
	_, err := Resolve(Binding[any]{}, mapScope{}, nil)
	assert.ErrorIs(t, err, ErrUninitializedBinding)
}

func TestResolveAmbiguous(t *testing.T) {
	b := Binding[any]{Variable: "a", Expression: "b"}
	_, err := Resolve(b, mapScope{}, nil)
	assert.ErrorContains(t, err, "only one of")
}

func TestResolveCoercesDeclaredType(t *testing.T) {
	b := Binding[any]{Value: ptrTo[any]("42"), Type: DataTypeInteger}
	v, err := Resolve(b, mapScope{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v)

	list, err := Resolve(Binding[[]any]{Variable: "items"}, mapScope{"items": []string{"a", "b"}}, nil)
	assert.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, list)

	_, err = Resolve(Binding[bool]{Variable: "x"}, mapScope{"x": 3}, nil)
	assert.Error(t, err)
}

func TestDataTypeCoerce(t *testing.T) {
	tests := []struct {
		dataType DataType
		in       any
		out      any
		err      bool
	}{
		{DataTypeString, 12, "12", false},
		{DataTypeNumber, "1.5", 1.5, false},
		{DataTypeInteger, 3.0, int64(3), false},
		{DataTypeInteger, 3.5, nil, true},
		{DataTypeBoolean, "true", true, false},
		{DataTypeBoolean, 1, nil, true},
		{DataTypeMap, map[string]int{"a": 1}, map[string]any{"a": 1}, false},
		{DataTypeList, "abc", nil, true},
		{DataTypeAny, 7, 7, false},
	}
	for _, test := range tests {
		t.Run(string(test.dataType), func(t *testing.T) {
			out, err := test.dataType.Coerce(test.in)
			if test.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.out, out)
		})
	}
}

func ptrTo[T any](v T) *T {
	return &v
}
