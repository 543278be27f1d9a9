// Package boltdb implements storage.Storage on a single bbolt file.
// Every operation runs in its own bbolt transaction, writes are serialized by bbolt.
package boltdb

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketWorkflowDefinitions = []byte("workflow_definitions")
	bucketWorkflowInstances   = []byte("workflow_instances")
	bucketJobs                = []byte("jobs")
	bucketArchivedJobs        = []byte("jobs_archive")
	bucketJobKeys             = []byte("job_keys")
)

type Storage struct {
	db *bolt.DB
}

var _ storage.Storage = &Storage{}

// Open opens or creates the database file at path.
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketWorkflowDefinitions, bucketWorkflowInstances, bucketJobs, bucketArchivedJobs, bucketJobKeys} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func get[T any](b *bolt.Bucket, id int64) (T, error) {
	var res T
	data := b.Get(itob(id))
	if data == nil {
		return res, storage.ErrNotFound
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("failed to decode value %d: %w", id, err)
	}
	return res, nil
}

func put(b *bolt.Bucket, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(itob(id), data)
}

// each decodes every value of the bucket in key order until fn returns false.
func each[T any](b *bolt.Bucket, fn func(T) bool) error {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}
		if !fn(item) {
			return nil
		}
	}
	return nil
}

func (s *Storage) FindLatestWorkflowDefinitionById(ctx context.Context, workflowId string) (runtime.WorkflowDefinition, error) {
	defs, err := s.FindWorkflowDefinitionsById(ctx, workflowId)
	if err != nil {
		return runtime.WorkflowDefinition{}, err
	}
	if len(defs) == 0 {
		return runtime.WorkflowDefinition{}, storage.ErrNotFound
	}
	return defs[len(defs)-1], nil
}

func (s *Storage) FindWorkflowDefinitionByKey(ctx context.Context, key int64) (res runtime.WorkflowDefinition, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		res, err = get[runtime.WorkflowDefinition](tx.Bucket(bucketWorkflowDefinitions), key)
		return err
	})
	return res, err
}

func (s *Storage) FindWorkflowDefinitionsById(ctx context.Context, workflowId string) ([]runtime.WorkflowDefinition, error) {
	res := make([]runtime.WorkflowDefinition, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return each(tx.Bucket(bucketWorkflowDefinitions), func(def runtime.WorkflowDefinition) bool {
			if def.WorkflowId == workflowId {
				res = append(res, def)
			}
			return true
		})
	})
	slices.SortFunc(res, func(a, b runtime.WorkflowDefinition) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return res, err
}

func (s *Storage) SaveWorkflowDefinition(ctx context.Context, definition runtime.WorkflowDefinition) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(bucketWorkflowDefinitions), definition.Key, definition)
	})
}

func (s *Storage) FindWorkflowInstanceById(ctx context.Context, id int64) (wi *runtime.WorkflowInstance, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		wi, err = get[*runtime.WorkflowInstance](tx.Bucket(bucketWorkflowInstances), id)
		return err
	})
	return wi, err
}

func (s *Storage) FindWorkflowInstances(ctx context.Context, query storage.WorkflowInstanceQuery) ([]*runtime.WorkflowInstance, error) {
	res := make([]*runtime.WorkflowInstance, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return each(tx.Bucket(bucketWorkflowInstances), func(wi *runtime.WorkflowInstance) bool {
			if query.Matches(wi) {
				res = append(res, wi)
			}
			return query.Limit <= 0 || len(res) < query.Limit
		})
	})
	return res, err
}

func (s *Storage) InsertWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkflowInstances)
		if b.Get(itob(wi.Id)) != nil {
			return fmt.Errorf("workflow instance %d already exists", wi.Id)
		}
		return storeInstance(tx, wi)
	})
	if err != nil {
		return err
	}
	wi.ClearChanges()
	return nil
}

func (s *Storage) FlushWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := checkOwner(tx, wi.Id, wi.Lock); err != nil {
			return err
		}
		if !wi.HasChanges() {
			return nil
		}
		return storeInstance(tx, wi)
	})
	if err != nil {
		return err
	}
	wi.ClearChanges()
	return nil
}

func (s *Storage) FlushAndUnlockWorkflowInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	lock := wi.Lock
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := checkOwner(tx, wi.Id, lock); err != nil {
			return err
		}
		wi.Lock = nil
		return storeInstance(tx, wi)
	})
	if err != nil {
		wi.Lock = lock
		return err
	}
	wi.ClearChanges()
	return nil
}

func (s *Storage) UnlockWorkflowInstance(ctx context.Context, id int64, owner string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkflowInstances)
		stored, err := get[*runtime.WorkflowInstance](b, id)
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
		return put(b, id, stored)
	})
}

func (s *Storage) LockWorkflowInstance(ctx context.Context, id int64, activityInstanceId int64, lock runtime.Lock) (wi *runtime.WorkflowInstance, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkflowInstances)
		wi, err = get[*runtime.WorkflowInstance](b, id)
		if err != nil {
			return err
		}
		if wi.IsLocked() {
			return storage.ErrInstanceLocked
		}
		if activityInstanceId != 0 {
			ai := wi.ActivityInstance(activityInstanceId)
			if ai == nil || ai.IsEnded() {
				return storage.ErrNotFound
			}
		}
		wi.Lock = &lock
		return put(b, id, wi)
	})
	if err != nil {
		return nil, err
	}
	return wi, nil
}

func checkOwner(tx *bolt.Tx, id int64, lock *runtime.Lock) error {
	stored, err := get[*runtime.WorkflowInstance](tx.Bucket(bucketWorkflowInstances), id)
	if err != nil {
		return err
	}
	if stored.Lock == nil || lock == nil || stored.Lock.Owner != lock.Owner {
		return storage.ErrLockNotOwned
	}
	return nil
}

func storeInstance(tx *bolt.Tx, wi *runtime.WorkflowInstance) error {
	if err := put(tx.Bucket(bucketWorkflowInstances), wi.Id, wi); err != nil {
		return fmt.Errorf("failed to store workflow instance %d: %w", wi.Id, err)
	}
	for _, job := range wi.PendingJobs() {
		if err := saveJob(tx, job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) FindJobById(ctx context.Context, id int64) (job runtime.Job, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		job, err = get[runtime.Job](tx.Bucket(bucketJobs), id)
		return err
	})
	return job, err
}

func (s *Storage) FindJobs(ctx context.Context, query storage.JobQuery) ([]runtime.Job, error) {
	return s.findJobs(bucketJobs, query)
}

func (s *Storage) FindArchivedJobs(ctx context.Context, query storage.JobQuery) ([]runtime.Job, error) {
	return s.findJobs(bucketArchivedJobs, query)
}

func (s *Storage) findJobs(bucket []byte, query storage.JobQuery) ([]runtime.Job, error) {
	res := make([]runtime.Job, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return each(tx.Bucket(bucket), func(job runtime.Job) bool {
			if query.Matches(job) {
				res = append(res, job)
			}
			return query.Limit <= 0 || len(res) < query.Limit
		})
	})
	return res, err
}

func (s *Storage) SaveJob(ctx context.Context, job runtime.Job) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return saveJob(tx, job)
	})
}

func saveJob(tx *bolt.Tx, job runtime.Job) error {
	jobs := tx.Bucket(bucketJobs)
	if job.Key != "" {
		keys := tx.Bucket(bucketJobKeys)
		id := itob(job.Id)
		if existing := keys.Get([]byte(job.Key)); existing != nil && !bytes.Equal(existing, id) {
			if err := jobs.Delete(existing); err != nil {
				return err
			}
		}
		if err := keys.Put([]byte(job.Key), id); err != nil {
			return err
		}
	}
	return put(jobs, job.Id, job)
}

func (s *Storage) LockNextDueJob(ctx context.Context, boundToInstance bool, now time.Time, staleBefore time.Time, lock runtime.Lock) (next runtime.Job, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		found := false
		b := tx.Bucket(bucketJobs)
		err := each(b, func(job runtime.Job) bool {
			if job.IsBoundToInstance() != boundToInstance || !job.IsDue(now, staleBefore) {
				return true
			}
			if !found || job.Due.Before(next.Due) || (job.Due.Equal(next.Due) && job.Id < next.Id) {
				next = job
				found = true
			}
			return true
		})
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		next.Lock = &lock
		return put(b, next.Id, next)
	})
	if err != nil {
		return runtime.Job{}, err
	}
	return next, nil
}

func (s *Storage) LockJob(ctx context.Context, id int64, lock runtime.Lock) (job runtime.Job, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		job, err = get[runtime.Job](b, id)
		if err != nil {
			return err
		}
		if job.IsDone() {
			return storage.ErrNotFound
		}
		if job.Lock != nil {
			return storage.ErrInstanceLocked
		}
		job.Lock = &lock
		return put(b, id, job)
	})
	if err != nil {
		return runtime.Job{}, err
	}
	return job, nil
}

func (s *Storage) DeleteJob(ctx context.Context, id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		job, err := get[runtime.Job](tx.Bucket(bucketJobs), id)
		if err != nil {
			return err
		}
		return removeJob(tx, job)
	})
}

func (s *Storage) ArchiveJob(ctx context.Context, job runtime.Job) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		live, err := get[runtime.Job](tx.Bucket(bucketJobs), job.Id)
		switch {
		case err == nil:
			if err := removeJob(tx, live); err != nil {
				return err
			}
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		job.Lock = nil
		return put(tx.Bucket(bucketArchivedJobs), job.Id, job)
	})
}

func removeJob(tx *bolt.Tx, job runtime.Job) error {
	if err := tx.Bucket(bucketJobs).Delete(itob(job.Id)); err != nil {
		return err
	}
	if job.Key == "" {
		return nil
	}
	keys := tx.Bucket(bucketJobKeys)
	if bytes.Equal(keys.Get([]byte(job.Key)), itob(job.Id)) {
		return keys.Delete([]byte(job.Key))
	}
	return nil
}
