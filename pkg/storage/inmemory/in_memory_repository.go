// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package inmemory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/storage"
)

// Storage keeps workflow information in memory,
// please use NewStorage to create a new object of this type.
// Workflow instances are kept JSON encoded so that every reader works on its own copy.
type Storage struct {
	mu sync.Mutex

	WorkflowDefinitions map[int64]runtime.WorkflowDefinition
	WorkflowInstances   map[int64][]byte
	Jobs                map[int64]runtime.Job
	ArchivedJobs        map[int64]runtime.Job
	jobKeys             map[string]int64
}

func NewStorage() *Storage {
	return &Storage{
		WorkflowDefinitions: make(map[int64]runtime.WorkflowDefinition),
		WorkflowInstances:   make(map[int64][]byte),
		Jobs:                make(map[int64]runtime.Job),
		ArchivedJobs:        make(map[int64]runtime.Job),
		jobKeys:             make(map[string]int64),
	}
}

var _ storage.Storage = &Storage{}

var _ storage.WorkflowDefinitionStorageReader = &Storage{}

func (mem *Storage) FindLatestWorkflowDefinitionById(ctx context.Context, workflowId string) (runtime.WorkflowDefinition, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	var res runtime.WorkflowDefinition
	found := false
	for _, def := range mem.WorkflowDefinitions {
		if def.WorkflowId != workflowId {
			continue
		}
		if found && def.Version < res.Version {
			continue
		}
		found = true
		res = def
	}
	if !found {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) FindWorkflowDefinitionByKey(ctx context.Context, key int64) (runtime.WorkflowDefinition, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	res, ok := mem.WorkflowDefinitions[key]
	if !ok {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) FindWorkflowDefinitionsById(ctx context.Context, workflowId string) ([]runtime.WorkflowDefinition, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	res := make([]runtime.WorkflowDefinition, 0)
	for _, def := range mem.WorkflowDefinitions {
		if def.WorkflowId != workflowId {
			continue
		}
		res = append(res, def)
	}
	slices.SortFunc(res, func(a, b runtime.WorkflowDefinition) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return res, nil
}

var _ storage.WorkflowDefinitionStorageWriter = &Storage{}

func (mem *Storage) SaveWorkflowDefinition(ctx context.Context, definition runtime.WorkflowDefinition) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.WorkflowDefinitions[definition.Key] = definition
	return nil
}

var _ storage.WorkflowInstanceStorageReader = &Storage{}

func (mem *Storage) FindWorkflowInstanceById(ctx context.Context, id int64) (*runtime.WorkflowInstance, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return mem.loadInstance(id)
}

func (mem *Storage) FindWorkflowInstances(ctx context.Context, query storage.WorkflowInstanceQuery) ([]*runtime.WorkflowInstance, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	res := make([]*runtime.WorkflowInstance, 0)
	for _, id := range slices.Sorted(maps.Keys(mem.WorkflowInstances)) {
		wi, err := mem.loadInstance(id)
		if err != nil {
			return nil, err
		}
		if !query.Matches(wi) {
			continue
		}
		res = append(res, wi)
		if query.Limit > 0 && len(res) == query.Limit {
			break
		}
	}
	return res, nil
}

var _ storage.WorkflowInstanceStorageWriter = &Storage{}

func (mem *Storage) InsertWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if _, ok := mem.WorkflowInstances[wi.Id]; ok {
		return fmt.Errorf("workflow instance %d already exists", wi.Id)
	}
	return mem.storeInstance(wi)
}

func (mem *Storage) FlushWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if err := mem.checkOwner(wi.Id, wi.Lock); err != nil {
		return err
	}
	if !wi.HasChanges() {
		return nil
	}
	return mem.storeInstance(wi)
}

func (mem *Storage) FlushAndUnlockWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if err := mem.checkOwner(wi.Id, wi.Lock); err != nil {
		return err
	}
	lock := wi.Lock
	wi.Lock = nil
	if err := mem.storeInstance(wi); err != nil {
		wi.Lock = lock
		return err
	}
	return nil
}

func (mem *Storage) UnlockWorkflowInstance(ctx context.Context, id int64, owner string) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	stored, err := mem.loadInstance(id)
	if err != nil {
		return err
	}
	if stored.Lock == nil {
		return nil
	}
	if stored.Lock.Owner != owner {
		return storage.ErrLockNotOwned
	}
	stored.Lock = nil
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	mem.WorkflowInstances[id] = data
	return nil
}

func (mem *Storage) LockWorkflowInstance(ctx context.Context, id int64, activityInstanceId int64, lock runtime.Lock) (*runtime.WorkflowInstance, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	wi, err := mem.loadInstance(id)
	if err != nil {
		return nil, err
	}
	if wi.IsLocked() {
		return nil, storage.ErrInstanceLocked
	}
	if activityInstanceId != 0 {
		ai := wi.ActivityInstance(activityInstanceId)
		if ai == nil || ai.IsEnded() {
			return nil, storage.ErrNotFound
		}
	}
	wi.Lock = &lock
	data, err := json.Marshal(wi)
	if err != nil {
		return nil, err
	}
	mem.WorkflowInstances[id] = data
	wi.ClearChanges()
	return wi, nil
}

func (mem *Storage) checkOwner(id int64, lock *runtime.Lock) error {
	stored, err := mem.loadInstance(id)
	if err != nil {
		return err
	}
	if stored.Lock == nil || lock == nil || stored.Lock.Owner != lock.Owner {
		return storage.ErrLockNotOwned
	}
	return nil
}

func (mem *Storage) loadInstance(id int64) (*runtime.WorkflowInstance, error) {
	data, ok := mem.WorkflowInstances[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	var wi runtime.WorkflowInstance
	if err := json.Unmarshal(data, &wi); err != nil {
		return nil, fmt.Errorf("failed to decode workflow instance %d: %w", id, err)
	}
	return &wi, nil
}

func (mem *Storage) storeInstance(wi *runtime.WorkflowInstance) error {
	data, err := json.Marshal(wi)
	if err != nil {
		return fmt.Errorf("failed to encode workflow instance %d: %w", wi.Id, err)
	}
	mem.WorkflowInstances[wi.Id] = data
	for _, job := range wi.PendingJobs() {
		mem.saveJob(job)
	}
	wi.ClearChanges()
	return nil
}

var _ storage.JobStorageReader = &Storage{}

func (mem *Storage) FindJobById(ctx context.Context, id int64) (runtime.Job, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	job, ok := mem.Jobs[id]
	if !ok {
		return runtime.Job{}, storage.ErrNotFound
	}
	return copyJob(job), nil
}

func (mem *Storage) FindJobs(ctx context.Context, query storage.JobQuery) ([]runtime.Job, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return findJobs(mem.Jobs, query), nil
}

func (mem *Storage) FindArchivedJobs(ctx context.Context, query storage.JobQuery) ([]runtime.Job, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return findJobs(mem.ArchivedJobs, query), nil
}

func findJobs(jobs map[int64]runtime.Job, query storage.JobQuery) []runtime.Job {
	res := make([]runtime.Job, 0)
	for _, id := range slices.Sorted(maps.Keys(jobs)) {
		job := jobs[id]
		if !query.Matches(job) {
			continue
		}
		res = append(res, copyJob(job))
		if query.Limit > 0 && len(res) == query.Limit {
			break
		}
	}
	return res
}

var _ storage.JobStorageWriter = &Storage{}

func (mem *Storage) SaveJob(ctx context.Context, job runtime.Job) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.saveJob(job)
	return nil
}

func (mem *Storage) saveJob(job runtime.Job) {
	if job.Key != "" {
		if existing, ok := mem.jobKeys[job.Key]; ok && existing != job.Id {
			delete(mem.Jobs, existing)
		}
		mem.jobKeys[job.Key] = job.Id
	}
	mem.Jobs[job.Id] = copyJob(job)
}

func (mem *Storage) LockNextDueJob(ctx context.Context, boundToInstance bool, now time.Time, staleBefore time.Time, lock runtime.Lock) (runtime.Job, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	var next *runtime.Job
	for _, job := range mem.Jobs {
		if job.IsBoundToInstance() != boundToInstance || !job.IsDue(now, staleBefore) {
			continue
		}
		if next == nil || job.Due.Before(next.Due) || (job.Due.Equal(next.Due) && job.Id < next.Id) {
			next = &job
		}
	}
	if next == nil {
		return runtime.Job{}, storage.ErrNotFound
	}
	next.Lock = &lock
	mem.Jobs[next.Id] = *next
	return copyJob(*next), nil
}

func (mem *Storage) LockJob(ctx context.Context, id int64, lock runtime.Lock) (runtime.Job, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	job, ok := mem.Jobs[id]
	if !ok || job.IsDone() {
		return runtime.Job{}, storage.ErrNotFound
	}
	if job.Lock != nil {
		return runtime.Job{}, storage.ErrInstanceLocked
	}
	job.Lock = &lock
	mem.Jobs[id] = job
	return copyJob(job), nil
}

func (mem *Storage) DeleteJob(ctx context.Context, id int64) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	job, ok := mem.Jobs[id]
	if !ok {
		return storage.ErrNotFound
	}
	mem.removeJob(job)
	return nil
}

func (mem *Storage) ArchiveJob(ctx context.Context, job runtime.Job) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if live, ok := mem.Jobs[job.Id]; ok {
		mem.removeJob(live)
	}
	job.Lock = nil
	mem.ArchivedJobs[job.Id] = copyJob(job)
	return nil
}

func (mem *Storage) removeJob(job runtime.Job) {
	delete(mem.Jobs, job.Id)
	if job.Key != "" && mem.jobKeys[job.Key] == job.Id {
		delete(mem.jobKeys, job.Key)
	}
}

func copyJob(job runtime.Job) runtime.Job {
	return deepcopy.Copy(job).(runtime.Job)
}
