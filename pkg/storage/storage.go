// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInstanceLocked = errors.New("resource is locked")
	ErrLockNotOwned   = errors.New("lock is not owned by the caller")
)

type Storage interface {
	WorkflowDefinitionStorageReader
	WorkflowDefinitionStorageWriter

	WorkflowInstanceStorageReader
	WorkflowInstanceStorageWriter

	JobStorageReader
	JobStorageWriter
}

type WorkflowDefinitionStorageReader interface {
	FindLatestWorkflowDefinitionById(ctx context.Context, workflowId string) (runtime.WorkflowDefinition, error)
	FindWorkflowDefinitionByKey(ctx context.Context, key int64) (runtime.WorkflowDefinition, error)
	// FindWorkflowDefinitionsById returns the definitions ordered by version, from 1 (first) and largest version (last)
	FindWorkflowDefinitionsById(ctx context.Context, workflowId string) ([]runtime.WorkflowDefinition, error)
}

type WorkflowDefinitionStorageWriter interface {
	SaveWorkflowDefinition(ctx context.Context, definition runtime.WorkflowDefinition) error
}

type WorkflowInstanceStorageReader interface {
	FindWorkflowInstanceById(ctx context.Context, id int64) (*runtime.WorkflowInstance, error)
	FindWorkflowInstances(ctx context.Context, query WorkflowInstanceQuery) ([]*runtime.WorkflowInstance, error)
}

type WorkflowInstanceStorageWriter interface {
	// InsertWorkflowInstance stores a new instance. New instances are inserted locked by their creator.
	InsertWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error
	// FlushWorkflowInstance writes the instance and its pending jobs if it has changes. The stored lock must match wi.Lock.
	FlushWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error
	// FlushAndUnlockWorkflowInstance writes the instance with its pending jobs and releases its lock in one step.
	FlushAndUnlockWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error
	// UnlockWorkflowInstance releases the lock without writing pending changes.
	UnlockWorkflowInstance(ctx context.Context, id int64, owner string) error
	// LockWorkflowInstance locks and loads the instance. When activityInstanceId is not 0 the instance
	// must contain that activity instance in an open state, otherwise ErrNotFound is returned.
	LockWorkflowInstance(ctx context.Context, id int64, activityInstanceId int64, lock runtime.Lock) (*runtime.WorkflowInstance, error)
}

type JobStorageReader interface {
	FindJobById(ctx context.Context, id int64) (runtime.Job, error)
	FindJobs(ctx context.Context, query JobQuery) ([]runtime.Job, error)
	FindArchivedJobs(ctx context.Context, query JobQuery) ([]runtime.Job, error)
}

type JobStorageWriter interface {
	// SaveJob inserts or updates the job. A new job whose key matches another live job replaces that job.
	SaveJob(ctx context.Context, job runtime.Job) error
	// LockNextDueJob claims the job with the earliest due date that is due at now and not locked.
	// Locks taken before staleBefore are reclaimed, see runtime.Job.IsDue.
	// Returns ErrNotFound when no job is due.
	LockNextDueJob(ctx context.Context, boundToInstance bool, now time.Time, staleBefore time.Time, lock runtime.Lock) (runtime.Job, error)
	// LockJob claims one job regardless of its due date.
	LockJob(ctx context.Context, id int64, lock runtime.Lock) (runtime.Job, error)
	DeleteJob(ctx context.Context, id int64) error
	// ArchiveJob moves a done or dead job out of the live set.
	ArchiveJob(ctx context.Context, job runtime.Job) error
}
