package js

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScriptBindsVariables(t *testing.T) {
	// setup
	rt := NewJsRuntime(t.Context(), 2, 1)

	// when
	result, err := rt.RunScript(t.Context(), "amount * 2 + items.length", map[string]any{
		"amount": 21,
		"items":  []any{"a", "b"},
	})

	// then
	require.NoError(t, err)
	assert.EqualValues(t, 44, result)
}

func TestVariablesDoNotLeakBetweenRuns(t *testing.T) {
	// setup
	rt := NewJsRuntime(t.Context(), 1, 1)

	// given
	_, err := rt.RunScript(t.Context(), "secret", map[string]any{"secret": "x"})
	require.NoError(t, err)

	// when
	_, err = rt.RunScript(t.Context(), "secret", nil)

	// then
	assert.Error(t, err)
}

func TestEvaluateCondition(t *testing.T) {
	rt := NewJsRuntime(t.Context(), 1, 1)

	result, err := rt.Evaluate("total > 100 && customer === 'gold'", map[string]any{"total": 150, "customer": "gold"})

	require.NoError(t, err)
	assert.Equal(t, true, result)
}

func TestRunScriptReturnsObjects(t *testing.T) {
	rt := NewJsRuntime(t.Context(), 1, 1)

	result, err := rt.RunScript(t.Context(), "({approved: amount < 1000, reviewer: 'bob'})", map[string]any{"amount": 10})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"approved": true, "reviewer": "bob"}, result)
}

func TestRunScriptIsInterruptedByContext(t *testing.T) {
	// setup
	rt := NewJsRuntime(t.Context(), 1, 1)
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	// when
	_, err := rt.RunScript(ctx, "while (true) {}", nil)

	// then
	assert.Error(t, err)

	// the runner is usable again
	result, err := rt.RunScript(t.Context(), "1 + 1", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result)
}
