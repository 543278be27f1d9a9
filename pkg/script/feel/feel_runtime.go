package feel

import (
	"fmt"
	"strconv"

	"github.com/pbinitiative/feel"
	"github.com/pbinitiative/zenflow/pkg/script"
)

// FeelRuntime evaluates FEEL expressions. Results are normalized to plain Go values.
type FeelRuntime struct{}

var _ script.ExpressionRuntime = FeelRuntime{}

func NewFeelRuntime() FeelRuntime {
	return FeelRuntime{}
}

func (FeelRuntime) Evaluate(expression string, variables map[string]any) (any, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	result, err := feel.EvalStringWithScope(expression, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate feel expression %q: %w", expression, err)
	}
	return normalize(result), nil
}

// UnaryTest evaluates an expression that must produce a boolean.
func (r FeelRuntime) UnaryTest(expression string, variables map[string]any) (bool, error) {
	result, err := r.Evaluate(expression, variables)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("feel expression %q returned %T, expected boolean", expression, result)
	}
	return b, nil
}

// normalize turns decimals of the FEEL library into float64 and walks lists and contexts.
func normalize(v any) any {
	switch value := v.(type) {
	case nil, bool, string, int, int64, float64:
		return value
	case []any:
		res := make([]any, len(value))
		for i, item := range value {
			res[i] = normalize(item)
		}
		return res
	case map[string]any:
		res := make(map[string]any, len(value))
		for k, item := range value {
			res[k] = normalize(item)
		}
		return res
	case fmt.Stringer:
		if f, err := strconv.ParseFloat(value.String(), 64); err == nil {
			return f
		}
		return value.String()
	}
	return v
}
