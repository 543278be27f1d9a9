package storagetest

import (
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	stdruntime "runtime"

	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type StorageTestFunc func(s storage.Storage, t *testing.T) func(t *testing.T)

// StorageTester runs the behaviour every storage.Storage implementation has to provide.
type StorageTester struct {
	workflowDefinition runtime.WorkflowDefinition
}

func (st *StorageTester) GetTests() map[string]StorageTestFunc {
	tests := map[string]StorageTestFunc{}

	// all test functions need to be registered here
	functions := []StorageTestFunc{
		st.TestWorkflowDefinitionStorageWriter,
		st.TestWorkflowDefinitionStorageReader,
		st.TestWorkflowInstanceStorageWriter,
		st.TestWorkflowInstanceStorageReader,
		st.TestWorkflowInstanceLockExclusivity,
		st.TestWorkflowInstanceUnlockDiscardsChanges,
		st.TestJobStorageWriter,
		st.TestJobStorageReader,
		st.TestJobKeyReplacesLiveJob,
		st.TestLockNextDueJob,
		st.TestReclaimStaleJobLock,
	}

	for _, function := range functions {
		funcName := getFunctionName(function)
		strippedName := funcName[strings.LastIndex(funcName, ".")+1:]
		strippedName = strings.TrimSuffix(strippedName, "-fm")
		tests[strippedName] = function
	}
	return tests
}

func getFunctionName(i any) string {
	return stdruntime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}

func getWorkflowDefinition(r int64, version int) runtime.WorkflowDefinition {
	return runtime.WorkflowDefinition{
		WorkflowId: fmt.Sprintf("id-%d", r),
		Version:    version,
		Key:        r + int64(version),
		Data:       []byte(fmt.Sprintf(`{"id":"id-%d","activities":[{"id":"start","kind":"startEvent"}]}`, r)),
		Checksum:   [16]byte{1, byte(version)},
		DeployedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// getWorkflowInstance returns a new instance locked by owner with one open activity instance.
func getWorkflowInstance(t *testing.T, def runtime.WorkflowDefinition, owner string) *runtime.WorkflowInstance {
	now := time.Now().UTC().Truncate(time.Millisecond)
	wi := runtime.NewWorkflowInstance(rand.Int63(), def, now)
	wi.BusinessKey = fmt.Sprintf("bk-%d", wi.Id)
	wi.Lock = &runtime.Lock{Time: now, Owner: owner}
	err := wi.AddActivityInstance(&runtime.ActivityInstance{
		ScopeInstance: runtime.ScopeInstance{Id: rand.Int63(), ParentId: wi.Id, Start: now},
		ActivityId:    "task",
		WorkState:     runtime.WorkStateWaiting,
	})
	require.NoError(t, err)
	require.NoError(t, wi.DeclareVariable(wi.Id, "amount", "number", 12.5))
	return wi
}

func getJob(due time.Time) runtime.Job {
	return runtime.Job{
		Id:        rand.Int63(),
		Type:      "test",
		Due:       due,
		CreatedAt: due,
		Data:      map[string]any{"attempt": "1"},
	}
}

// WorkflowDefinition returns the definition saved by PrepareTestData.
func (st *StorageTester) WorkflowDefinition() runtime.WorkflowDefinition {
	return st.workflowDefinition
}

// PrepareTestData will prepare common data for the tests
func (st *StorageTester) PrepareTestData(s storage.Storage, t *testing.T) {
	st.workflowDefinition = getWorkflowDefinition(rand.Int63n(1<<40), 1)
	err := s.SaveWorkflowDefinition(t.Context(), st.workflowDefinition)
	assert.NoError(t, err)
}

func (st *StorageTester) TestWorkflowDefinitionStorageWriter(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		def := getWorkflowDefinition(rand.Int63n(1<<40), 1)

		err := s.SaveWorkflowDefinition(t.Context(), def)
		assert.NoError(t, err)

		stored, err := s.FindWorkflowDefinitionByKey(t.Context(), def.Key)
		assert.NoError(t, err)
		assert.Equal(t, def.WorkflowId, stored.WorkflowId)
		assert.Equal(t, def.Data, stored.Data)
		assert.Equal(t, def.Checksum, stored.Checksum)
	}
}

func (st *StorageTester) TestWorkflowDefinitionStorageReader(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		r := rand.Int63n(1 << 40)
		for _, version := range []int{2, 1, 3} {
			err := s.SaveWorkflowDefinition(t.Context(), getWorkflowDefinition(r, version))
			require.NoError(t, err)
		}

		latest, err := s.FindLatestWorkflowDefinitionById(t.Context(), fmt.Sprintf("id-%d", r))
		assert.NoError(t, err)
		assert.Equal(t, 3, latest.Version)

		all, err := s.FindWorkflowDefinitionsById(t.Context(), fmt.Sprintf("id-%d", r))
		assert.NoError(t, err)
		assert.Len(t, all, 3)
		for i, def := range all {
			assert.Equal(t, i+1, def.Version)
		}

		_, err = s.FindLatestWorkflowDefinitionById(t.Context(), "does-not-exist")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.FindWorkflowDefinitionByKey(t.Context(), -1)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		none, err := s.FindWorkflowDefinitionsById(t.Context(), "does-not-exist")
		assert.NoError(t, err)
		assert.Empty(t, none)
	}
}

func (st *StorageTester) TestWorkflowInstanceStorageWriter(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		wi := getWorkflowInstance(t, st.workflowDefinition, "node-a")
		job := getJob(time.Now().Add(time.Hour))
		job.WorkflowInstanceId = wi.Id
		wi.ScheduleJob(job)

		err := s.InsertWorkflowInstance(t.Context(), wi)
		require.NoError(t, err)
		assert.False(t, wi.HasChanges())

		stored, err := s.FindJobById(t.Context(), job.Id)
		assert.NoError(t, err)
		assert.Equal(t, wi.Id, stored.WorkflowInstanceId)

		// flush by somebody else is rejected
		other := *wi
		other.Lock = &runtime.Lock{Time: time.Now(), Owner: "node-b"}
		other.MarkChanged()
		err = s.FlushWorkflowInstance(t.Context(), &other)
		assert.ErrorIs(t, err, storage.ErrLockNotOwned)

		require.NoError(t, wi.SetVariable(wi.Id, "amount", 20))
		err = s.FlushWorkflowInstance(t.Context(), wi)
		assert.NoError(t, err)

		loaded, err := s.FindWorkflowInstanceById(t.Context(), wi.Id)
		require.NoError(t, err)
		amount, _ := loaded.GetVariable(loaded.Id, "amount")
		assert.Equal(t, float64(20), amount)
		assert.True(t, loaded.IsLocked())

		err = s.FlushAndUnlockWorkflowInstance(t.Context(), wi)
		assert.NoError(t, err)
		assert.Nil(t, wi.Lock)

		loaded, err = s.FindWorkflowInstanceById(t.Context(), wi.Id)
		require.NoError(t, err)
		assert.False(t, loaded.IsLocked())

		err = s.InsertWorkflowInstance(t.Context(), wi)
		assert.Error(t, err)
	}
}

func (st *StorageTester) TestWorkflowInstanceStorageReader(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		wi := getWorkflowInstance(t, st.workflowDefinition, "node-a")
		require.NoError(t, s.InsertWorkflowInstance(t.Context(), wi))

		loaded, err := s.FindWorkflowInstanceById(t.Context(), wi.Id)
		require.NoError(t, err)
		assert.Equal(t, wi.WorkflowId, loaded.WorkflowId)
		assert.Equal(t, wi.ActivityInstanceIds(), loaded.ActivityInstanceIds())
		assert.Equal(t, wi.Children(wi.Id)[0].ActivityId, loaded.Children(loaded.Id)[0].ActivityId)

		found, err := s.FindWorkflowInstances(t.Context(), storage.WorkflowInstanceQuery{BusinessKey: wi.BusinessKey})
		assert.NoError(t, err)
		assert.Len(t, found, 1)

		found, err = s.FindWorkflowInstances(t.Context(), storage.WorkflowInstanceQuery{
			WorkflowInstanceId: wi.Id,
			ActivityId:         "task",
		})
		assert.NoError(t, err)
		assert.Len(t, found, 1)

		ended := true
		found, err = s.FindWorkflowInstances(t.Context(), storage.WorkflowInstanceQuery{WorkflowInstanceId: wi.Id, Ended: &ended})
		assert.NoError(t, err)
		assert.Empty(t, found)

		_, err = s.FindWorkflowInstanceById(t.Context(), -1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}
}

func (st *StorageTester) TestWorkflowInstanceLockExclusivity(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		wi := getWorkflowInstance(t, st.workflowDefinition, "node-a")
		require.NoError(t, s.InsertWorkflowInstance(t.Context(), wi))
		require.NoError(t, s.UnlockWorkflowInstance(t.Context(), wi.Id, "node-a"))
		activityInstanceId := wi.Children(wi.Id)[0].Id

		const contenders = 8
		var wg sync.WaitGroup
		results := make([]error, contenders)
		for i := range contenders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lock := runtime.Lock{Time: time.Now(), Owner: fmt.Sprintf("node-%d", i)}
				_, results[i] = s.LockWorkflowInstance(t.Context(), wi.Id, activityInstanceId, lock)
			}()
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			if err == nil {
				winners++
				continue
			}
			assert.ErrorIs(t, err, storage.ErrInstanceLocked)
		}
		assert.Equal(t, 1, winners)

		_, err := s.LockWorkflowInstance(t.Context(), -1, 0, runtime.Lock{Owner: "node-a"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}
}

func (st *StorageTester) TestWorkflowInstanceUnlockDiscardsChanges(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		wi := getWorkflowInstance(t, st.workflowDefinition, "node-a")
		require.NoError(t, s.InsertWorkflowInstance(t.Context(), wi))

		require.NoError(t, wi.SetVariable(wi.Id, "amount", 99))
		err := s.UnlockWorkflowInstance(t.Context(), wi.Id, "node-b")
		assert.ErrorIs(t, err, storage.ErrLockNotOwned)

		err = s.UnlockWorkflowInstance(t.Context(), wi.Id, "node-a")
		assert.NoError(t, err)

		locked, err := s.LockWorkflowInstance(t.Context(), wi.Id, 0, runtime.Lock{Time: time.Now(), Owner: "node-b"})
		require.NoError(t, err)
		amount, _ := locked.GetVariable(locked.Id, "amount")
		assert.Equal(t, 12.5, amount)
		assert.Equal(t, "node-b", locked.Lock.Owner)

		// the activity instance must be open to be locked for
		require.NoError(t, s.UnlockWorkflowInstance(t.Context(), wi.Id, "node-b"))
		_, err = s.LockWorkflowInstance(t.Context(), wi.Id, -1, runtime.Lock{Time: time.Now(), Owner: "node-b"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}
}

func (st *StorageTester) TestJobStorageWriter(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		job := getJob(time.Now().Add(time.Hour))
		err := s.SaveJob(t.Context(), job)
		require.NoError(t, err)

		locked, err := s.LockJob(t.Context(), job.Id, runtime.Lock{Time: time.Now(), Owner: "node-a"})
		require.NoError(t, err)
		assert.Equal(t, "node-a", locked.Lock.Owner)

		_, err = s.LockJob(t.Context(), job.Id, runtime.Lock{Time: time.Now(), Owner: "node-b"})
		assert.ErrorIs(t, err, storage.ErrInstanceLocked)

		done := time.Now()
		locked.Done = &done
		err = s.ArchiveJob(t.Context(), locked)
		assert.NoError(t, err)

		_, err = s.FindJobById(t.Context(), job.Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		archived, err := s.FindArchivedJobs(t.Context(), storage.JobQuery{JobId: job.Id})
		assert.NoError(t, err)
		require.Len(t, archived, 1)
		assert.Nil(t, archived[0].Lock)
		assert.NotNil(t, archived[0].Done)

		other := getJob(time.Now().Add(time.Hour))
		require.NoError(t, s.SaveJob(t.Context(), other))
		assert.NoError(t, s.DeleteJob(t.Context(), other.Id))
		assert.ErrorIs(t, s.DeleteJob(t.Context(), other.Id), storage.ErrNotFound)
	}
}

func (st *StorageTester) TestJobStorageReader(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		job := getJob(time.Now().Add(time.Hour))
		job.WorkflowInstanceId = rand.Int63()
		retries := 2
		job.Retries = &retries
		job.Executions = []runtime.JobExecution{{Time: time.Now().UTC(), Error: "boom"}}
		require.NoError(t, s.SaveJob(t.Context(), job))

		found, err := s.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: job.WorkflowInstanceId})
		assert.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, 2, *found[0].Retries)
		assert.Equal(t, "boom", found[0].Executions[0].Error)
		assert.Equal(t, "1", found[0].Data["attempt"])

		// returned jobs are copies
		found[0].Data["attempt"] = "2"
		again, err := s.FindJobById(t.Context(), job.Id)
		assert.NoError(t, err)
		assert.Equal(t, "1", again.Data["attempt"])

		none, err := s.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: -1})
		assert.NoError(t, err)
		assert.Empty(t, none)
	}
}

func (st *StorageTester) TestJobKeyReplacesLiveJob(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		key := fmt.Sprintf("timer:%d", rand.Int63())
		first := getJob(time.Now().Add(time.Hour))
		first.Key = key
		second := getJob(time.Now().Add(2 * time.Hour))
		second.Key = key

		require.NoError(t, s.SaveJob(t.Context(), first))
		require.NoError(t, s.SaveJob(t.Context(), second))

		live, err := s.FindJobs(t.Context(), storage.JobQuery{Key: key})
		assert.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, second.Id, live[0].Id)

		// archiving the replaced job must not drop the key of the live one
		require.NoError(t, s.ArchiveJob(t.Context(), first))
		third := getJob(time.Now().Add(3 * time.Hour))
		third.Key = key
		require.NoError(t, s.SaveJob(t.Context(), third))
		live, err = s.FindJobs(t.Context(), storage.JobQuery{Key: key})
		assert.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, third.Id, live[0].Id)
	}
}

func (st *StorageTester) TestLockNextDueJob(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		// far in the past so jobs of other tests are not due
		now := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		lock := runtime.Lock{Time: now, Owner: "node-a"}

		later := getJob(now.Add(-time.Minute))
		earlier := getJob(now.Add(-time.Hour))
		notDue := getJob(now.Add(time.Minute))
		bound := getJob(now.Add(-2 * time.Hour))
		bound.WorkflowInstanceId = rand.Int63()
		for _, job := range []runtime.Job{later, earlier, notDue, bound} {
			require.NoError(t, s.SaveJob(t.Context(), job))
		}

		job, err := s.LockNextDueJob(t.Context(), false, now, time.Time{}, lock)
		require.NoError(t, err)
		assert.Equal(t, earlier.Id, job.Id)
		assert.Equal(t, "node-a", job.Lock.Owner)

		job, err = s.LockNextDueJob(t.Context(), false, now, time.Time{}, lock)
		require.NoError(t, err)
		assert.Equal(t, later.Id, job.Id)

		_, err = s.LockNextDueJob(t.Context(), false, now, time.Time{}, lock)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		job, err = s.LockNextDueJob(t.Context(), true, now, time.Time{}, lock)
		require.NoError(t, err)
		assert.Equal(t, bound.Id, job.Id)

		for _, id := range []int64{later.Id, earlier.Id, notDue.Id, bound.Id} {
			require.NoError(t, s.DeleteJob(t.Context(), id))
		}
	}
}

func (st *StorageTester) TestReclaimStaleJobLock(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		// setup
		now := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		job := getJob(now.Add(-2 * time.Hour))
		job.WorkflowInstanceId = rand.Int63()
		require.NoError(t, s.SaveJob(t.Context(), job))

		// given
		claimed, err := s.LockNextDueJob(t.Context(), true, now.Add(-time.Hour), time.Time{}, runtime.Lock{Time: now.Add(-time.Hour), Owner: "node-a"})
		require.NoError(t, err)
		require.Equal(t, job.Id, claimed.Id)

		// when
		_, err = s.LockNextDueJob(t.Context(), true, now, now.Add(-2*time.Hour), runtime.Lock{Time: now, Owner: "node-b"})

		// then
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// when
		claimed, err = s.LockNextDueJob(t.Context(), true, now, now.Add(-30*time.Minute), runtime.Lock{Time: now, Owner: "node-b"})

		// then
		require.NoError(t, err)
		assert.Equal(t, job.Id, claimed.Id)
		assert.Equal(t, "node-b", claimed.Lock.Owner)
		require.NoError(t, s.DeleteJob(t.Context(), job.Id))
	}
}
