// Package script evaluates expressions and scripts of workflow models.
package script

import (
	"context"
)

// ExpressionRuntime evaluates one expression against the visible variables.
type ExpressionRuntime interface {
	Evaluate(expression string, variables map[string]any) (any, error)
}

// ScriptRuntime runs a script with the variables bound as globals and returns its completion value.
type ScriptRuntime interface {
	RunScript(ctx context.Context, script string, variables map[string]any) (any, error)
}
