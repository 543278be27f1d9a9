// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package bpmn

import (
	"errors"
	"fmt"
	"time"

	"github.com/pbinitiative/zenflow/pkg/storage"
)

var ErrNoWaitingActivity = errors.New("no activity instance is waiting for the message")

type EngineError struct {
	Msg string
}

func (e *EngineError) Error() string {
	return e.Msg
}

// newEngineErrorf uses fmt.Sprintf(format, a...) to format the message
func newEngineErrorf(format string, a ...any) error {
	return &EngineError{
		Msg: fmt.Sprintf(format, a...),
	}
}

type ExpressionEvaluationError struct {
	Msg string
	Err error
}

func (e *ExpressionEvaluationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ExpressionEvaluationError) Unwrap() error {
	return e.Err
}

// LockContentionError is returned when a workflow instance stayed locked by another owner after all lock
// attempts. The caller may retry after RetryAfter.
type LockContentionError struct {
	WorkflowInstanceId int64
	RetryAfter         time.Duration
	Err                error
}

func (e *LockContentionError) Error() string {
	return fmt.Sprintf("workflow instance %d is locked, retry after %s", e.WorkflowInstanceId, e.RetryAfter)
}

func (e *LockContentionError) Unwrap() error {
	if e.Err == nil {
		return storage.ErrInstanceLocked
	}
	return e.Err
}
