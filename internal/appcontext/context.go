// Package appcontext carries the identifiers of the work a goroutine is doing, so log lines can name them.
package appcontext

import (
	"context"
)

type contextKey int

const (
	executionKey contextKey = iota
	jobIdKey
)

// WithExecutionKey marks ctx with the id of the workflow instance being processed.
func WithExecutionKey(ctx context.Context, key int64) context.Context {
	return context.WithValue(ctx, executionKey, key)
}

func GetExecutionKey(ctx context.Context) (int64, bool) {
	key, ok := ctx.Value(executionKey).(int64)
	return key, ok
}

// WithJobId marks ctx with the id of the job being executed.
func WithJobId(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIdKey, id)
}

func GetJobId(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(jobIdKey).(int64)
	return id, ok
}
