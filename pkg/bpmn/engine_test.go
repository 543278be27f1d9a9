package bpmn

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/pbinitiative/zenflow/pkg/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []exporter.Event
}

func (r *eventRecorder) Export(event exporter.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// path renders activity and transition events of one instance as "start x", "end x" and "take x→y".
func (r *eventRecorder) path(workflowInstanceId int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]string, 0, len(r.events))
	for _, event := range r.events {
		if event.WorkflowInstanceId != workflowInstanceId {
			continue
		}
		switch event.Intent {
		case exporter.ActivityStarted:
			res = append(res, "start "+event.ActivityId)
		case exporter.ActivityEnded:
			res = append(res, "end "+event.ActivityId)
		case exporter.TransitionTaken:
			res = append(res, fmt.Sprintf("take %s→%s", event.From, event.To))
		}
	}
	return res
}

func (r *eventRecorder) count(intent exporter.Intent, activityId string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, event := range r.events {
		if event.Intent == intent && event.ActivityId == activityId {
			n++
		}
	}
	return n
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// callLog records service handler invocations.
type callLog struct {
	mu     sync.Mutex
	inputs map[string][]map[string]any
}

func (l *callLog) handler(name string) ServiceHandler {
	return func(_ context.Context, input map[string]any) (map[string]any, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.inputs == nil {
			l.inputs = map[string][]map[string]any{}
		}
		l.inputs[name] = append(l.inputs[name], input)
		return nil, nil
	}
}

func (l *callLog) calls(name string) []map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inputs[name]
}

type testEngine struct {
	*Engine
	events *eventRecorder
	clock  *testClock
	calls  *callLog
	store  *inmemory.Storage
}

func newTestEngine(t *testing.T, options ...EngineOption) *testEngine {
	t.Helper()
	te := &testEngine{
		events: &eventRecorder{},
		clock:  &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		calls:  &callLog{},
		store:  inmemory.NewStorage(),
	}
	options = append([]EngineOption{
		EngineWithStorage(te.store),
		EngineWithNodeId("test-node"),
		EngineWithExporter(te.events),
		EngineWithClock(te.clock.Now),
		EngineWithLockRetries(1, time.Millisecond),
		EngineWithServiceHandler("record", te.calls.handler("record")),
		EngineWithServiceHandler("after", te.calls.handler("after")),
		EngineWithServiceHandler("inner", te.calls.handler("inner")),
		EngineWithServiceHandler("outer", te.calls.handler("outer")),
	}, options...)
	engine, err := NewEngine(options...)
	require.NoError(t, err)
	t.Cleanup(engine.Stop)
	te.Engine = engine
	return te
}

func (te *testEngine) deploy(t *testing.T, name string) runtime.WorkflowDefinition {
	t.Helper()
	workflow, err := model.LoadFromFile(filepath.Join("test-cases", name))
	require.NoError(t, err)
	definition, err := te.DeployWorkflow(t.Context(), workflow)
	require.NoError(t, err)
	return definition
}

func (te *testEngine) start(t *testing.T, workflowId string, variables map[string]any) *runtime.WorkflowInstance {
	t.Helper()
	wi, err := te.StartWorkflow(t.Context(), StartRequest{WorkflowId: workflowId, Variables: variables})
	require.NoError(t, err)
	return wi
}

func TestLinearFlowEventOrder(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "linear.yaml")

	// when
	wi := te.start(t, "linear", nil)

	// then
	assert.True(t, wi.IsEnded())
	assert.False(t, wi.IsLocked())
	assert.Equal(t, []string{
		"start s", "end s", "take s→t",
		"start t", "end t", "take t→e",
		"start e", "end e",
	}, te.events.path(wi.Id))
}

func TestParallelJoinFiresOnce(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "fork-join.yaml")

	// when
	wi := te.start(t, "fork-join", nil)

	// then
	assert.True(t, wi.IsEnded())
	assert.Len(t, te.calls.calls("record"), 3)
	assert.Len(t, te.calls.calls("after"), 1)
	assert.Equal(t, 2, te.events.count(exporter.ActivityStarted, "join"))
	assert.Equal(t, 1, te.events.count(exporter.TransitionTaken, "join"))
	for _, ai := range wi.ActivityInstances {
		assert.True(t, ai.IsEnded(), "activity instance %s is still open", ai.ActivityId)
		assert.Equal(t, runtime.WorkStateNone, ai.WorkState, "activity instance %s", ai.ActivityId)
	}
}

func TestJoinFiresAfterDeadBranchEnds(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "dead-branch.yaml")

	// when
	wi := te.start(t, "dead-branch", nil)

	// then
	assert.True(t, wi.IsEnded())
	assert.Len(t, te.calls.calls("after"), 1)
	assert.Equal(t, 1, te.events.count(exporter.ActivityStarted, "join"))
	assert.Equal(t, 1, te.events.count(exporter.TransitionTaken, "join"))
	assertNoParkedArrivals(t, wi)
}

func assertNoParkedArrivals(t *testing.T, wi *runtime.WorkflowInstance) {
	t.Helper()
	for _, ai := range wi.ActivityInstances {
		assert.NotEqual(t, runtime.WorkStateJoining, ai.WorkState, "activity instance %s is still parked", ai.ActivityId)
	}
}

func TestJoinOfReceiveTasksInAnyOrder(t *testing.T) {
	orders := [][]string{
		{"r1", "r2", "r3"},
		{"r1", "r3", "r2"},
		{"r2", "r1", "r3"},
		{"r2", "r3", "r1"},
		{"r3", "r1", "r2"},
		{"r3", "r2", "r1"},
	}
	for _, order := range orders {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			// setup
			te := newTestEngine(t)
			te.deploy(t, "join-receive.yaml")
			wi := te.start(t, "join-receive", nil)
			require.False(t, wi.IsEnded())

			// when
			var err error
			for _, activityId := range order {
				wi, err = te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: activityId})
				require.NoError(t, err)
			}

			// then
			assert.True(t, wi.IsEnded())
			assert.Len(t, te.calls.calls("after"), 1)
			assert.Equal(t, 3, te.events.count(exporter.ActivityStarted, "join"))
			assert.Equal(t, 1, te.events.count(exporter.TransitionTaken, "join"))
			assertNoParkedArrivals(t, wi)
		})
	}
}

func TestJoinFiresWhenWaitingBranchEndsElsewhere(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "dead-branch-receive.yaml")
	wi := te.start(t, "dead-branch-receive", nil)
	require.False(t, wi.IsEnded())
	require.Empty(t, te.calls.calls("after"))
	parked := 0
	for _, ai := range wi.ActivityInstances {
		if ai.WorkState == runtime.WorkStateJoining {
			parked++
		}
	}
	require.Equal(t, 1, parked)

	// when
	wi, err := te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: "b"})

	// then
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
	assert.Len(t, te.calls.calls("after"), 1)
	assert.Equal(t, 1, te.events.count(exporter.TransitionTaken, "join"))
	assertNoParkedArrivals(t, wi)
}

func TestJoinFiresWhenNothingElseIsRunning(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "join-escape.yaml")

	// when
	wi := te.start(t, "join-escape", nil)

	// then
	assert.True(t, wi.IsEnded())
	assert.Len(t, te.calls.calls("after"), 1)
	assert.Equal(t, 1, te.events.count(exporter.ActivityStarted, "join"))
}

func TestMultiInstance(t *testing.T) {
	t.Run("empty collection passes through", func(t *testing.T) {
		// setup
		te := newTestEngine(t)
		te.deploy(t, "multi-instance.yaml")

		// when
		wi := te.start(t, "multi-instance", map[string]any{"items": []any{}})

		// then
		assert.True(t, wi.IsEnded())
		assert.Empty(t, te.calls.calls("record"))
		assert.Equal(t, 1, te.events.count(exporter.ActivityStarted, "each"))
		assert.Equal(t, []string{
			"start s", "end s", "take s→each",
			"start each", "end each", "take each→e",
			"start e", "end e",
		}, te.events.path(wi.Id))
	})

	t.Run("one element instance per item", func(t *testing.T) {
		// setup
		te := newTestEngine(t)
		te.deploy(t, "multi-instance.yaml")

		// when
		wi := te.start(t, "multi-instance", map[string]any{"items": []any{"a", "b", "c"}})

		// then
		assert.True(t, wi.IsEnded())
		calls := te.calls.calls("record")
		require.Len(t, calls, 3)
		assert.Equal(t, "a", calls[0]["item"])
		assert.Equal(t, "b", calls[1]["item"])
		assert.Equal(t, "c", calls[2]["item"])
		// container and three elements
		assert.Equal(t, 4, te.events.count(exporter.ActivityStarted, "each"))
		assert.Equal(t, 1, te.events.count(exporter.TransitionTaken, "each"))
	})
}

func TestVariableScoping(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "scoping.yaml")

	// when
	wi := te.start(t, "scoping", nil)

	// then
	assert.True(t, wi.IsEnded())
	inner := te.calls.calls("inner")
	require.Len(t, inner, 1)
	assert.EqualValues(t, 11, inner[0]["x"])
	outer := te.calls.calls("outer")
	require.Len(t, outer, 1)
	assert.EqualValues(t, 1, outer[0]["x"])
	x, ok := wi.GetVariable(wi.Id, "x")
	assert.True(t, ok)
	assert.EqualValues(t, 1, x)
}

func TestExclusiveGateway(t *testing.T) {
	tests := []struct {
		amount   float64
		approved int
	}{
		{amount: 150, approved: 1},
		{amount: 50, approved: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("amount %v", tt.amount), func(t *testing.T) {
			// setup
			te := newTestEngine(t)
			te.RegisterServiceHandler("approve", te.calls.handler("approve"))
			te.deploy(t, "order.yaml")

			// when
			wi := te.start(t, "order", map[string]any{"amount": tt.amount})

			// then
			assert.True(t, wi.IsEnded())
			assert.Len(t, te.calls.calls("approve"), tt.approved)
		})
	}
}

type queueExecutor struct {
	mu    sync.Mutex
	tasks []func()
}

func (e *queueExecutor) Execute(task func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, task)
}

func TestAsyncContinuation(t *testing.T) {
	t.Run("sync executor runs the continuation before returning", func(t *testing.T) {
		// setup
		te := newTestEngine(t)
		te.deploy(t, "async.yaml")

		// when
		wi := te.start(t, "async", nil)

		// then
		assert.True(t, wi.IsEnded())
		assert.False(t, wi.IsAsync)
		assert.Len(t, te.calls.calls("record"), 1)
		archived, err := te.FindArchivedJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id})
		require.NoError(t, err)
		require.Len(t, archived, 1)
		assert.Equal(t, jobTypeAsyncContinuation, archived[0].Type)
		assert.False(t, archived[0].Dead)
	})

	t.Run("continuation is picked up by the scheduler", func(t *testing.T) {
		// setup
		executor := &queueExecutor{}
		te := newTestEngine(t, EngineWithExecutor(executor))
		te.deploy(t, "async.yaml")

		// when
		wi := te.start(t, "async", nil)

		// then
		assert.False(t, wi.IsEnded())
		assert.Equal(t, 1, len(wi.WorkAsync))
		assert.Empty(t, te.calls.calls("record"))
		assert.Len(t, executor.tasks, 1)
		pending, err := te.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, asyncContinuationKey(wi.Id), pending[0].Key)

		// when
		executed, err := te.Scheduler().PollOnce(t.Context(), true)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, executed)
		wi, err = te.FindWorkflowInstance(t.Context(), wi.Id)
		require.NoError(t, err)
		assert.True(t, wi.IsEnded())
		assert.Empty(t, wi.WorkAsync)
		assert.Len(t, te.calls.calls("record"), 1)
	})
}

func TestTimerEvent(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "timer.yaml")
	wi := te.start(t, "timer", nil)
	require.False(t, wi.IsEnded())
	jobs, err := te.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, te.clock.Now().Add(time.Hour).Equal(jobs[0].Due))

	// when
	executed, err := te.Scheduler().PollOnce(t.Context(), true)

	// then
	require.NoError(t, err)
	assert.Equal(t, 0, executed)

	// when
	te.clock.Advance(time.Hour)
	executed, err = te.Scheduler().PollOnce(t.Context(), true)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	wi, err = te.FindWorkflowInstance(t.Context(), wi.Id)
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
}

// failingOnce returns a handler that fails until it is fixed.
type failingOnce struct {
	mu    sync.Mutex
	fixed bool
	calls int
}

func (f *failingOnce) handler(context.Context, map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if !f.fixed {
		return nil, errors.New("handler failed")
	}
	return nil, nil
}

func (f *failingOnce) fix() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixed = true
}

func TestTimerJobRetryContinuesAfterLaterFailure(t *testing.T) {
	// setup
	boom := &failingOnce{}
	te := newTestEngine(t, EngineWithServiceHandler("boom", boom.handler))
	te.deploy(t, "timer-failure.yaml")
	wi := te.start(t, "timer-failure", nil)
	require.False(t, wi.IsEnded())

	// given
	te.clock.Advance(time.Hour)
	executed, err := te.Scheduler().PollOnce(t.Context(), true)
	require.NoError(t, err)
	require.Equal(t, 1, executed)
	jobs, err := te.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id, Type: jobTypeTimer})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].Retries)

	// when
	boom.fix()
	te.clock.Advance(3 * time.Second)
	executed, err = te.Scheduler().PollOnce(t.Context(), true)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	assert.Equal(t, 2, boom.calls)
	wi, err = te.FindWorkflowInstance(t.Context(), wi.Id)
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
	assert.Empty(t, wi.Work)
	live, err := te.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id})
	require.NoError(t, err)
	assert.Empty(t, live)
	archived, err := te.FindArchivedJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id, Type: jobTypeTimer})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.False(t, archived[0].Dead)
	require.Len(t, archived[0].Executions, 2)
	assert.NotEmpty(t, archived[0].Executions[0].Error)
	assert.Empty(t, archived[0].Executions[1].Error)
	assert.Equal(t, 1, te.events.count(exporter.ActivityEnded, "wait"))
}

func TestCallActivity(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "call-child.yaml")
	te.deploy(t, "call-parent.yaml")

	// when
	wi := te.start(t, "call-parent", map[string]any{"amount": 21})

	// then
	assert.True(t, wi.IsEnded())
	res, ok := wi.GetVariable(wi.Id, "res")
	assert.True(t, ok)
	assert.EqualValues(t, 42, res)

	children, err := te.FindWorkflowInstances(t.Context(), storage.WorkflowInstanceQuery{WorkflowId: "call-child"})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.True(t, children[0].IsEnded())
	assert.Equal(t, wi.Id, children[0].CallerWorkflowInstanceId)
	call := wi.FindOpenActivityInstance("call")
	assert.Nil(t, call)
	for _, ai := range wi.ActivityInstances {
		if ai.ActivityId == "call" {
			assert.Equal(t, children[0].Id, ai.CalledWorkflowInstanceId)
		}
	}
}

func TestSendMessage(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "receive.yaml")
	wi := te.start(t, "receive", nil)
	require.False(t, wi.IsEnded())

	// when
	wi, err := te.SendMessage(t.Context(), MessageRequest{
		WorkflowInstanceId: wi.Id,
		ActivityId:         "approval",
		Payload:            map[string]any{"approved": true, "ignored": 1},
	})

	// then
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
	approved, _ := wi.GetVariable(wi.Id, "approved")
	assert.Equal(t, true, approved)
	_, ok := wi.GetVariable(wi.Id, "ignored")
	assert.False(t, ok)

	// when
	_, err = te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: "approval"})

	// then
	assert.Error(t, err)
}

func TestSendMessageWithoutWaitingActivity(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "receive.yaml")
	wi := te.start(t, "receive", nil)

	// when
	_, err := te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: "unknown"})

	// then
	assert.ErrorIs(t, err, ErrNoWaitingActivity)
	stored, err := te.FindWorkflowInstance(t.Context(), wi.Id)
	require.NoError(t, err)
	assert.False(t, stored.IsLocked())
}

func TestSyncFailureIsReturnedAndContinuedLater(t *testing.T) {
	// setup
	boom := &failingOnce{}
	te := newTestEngine(t, EngineWithServiceHandler("boom", boom.handler))
	te.deploy(t, "failing.yaml")

	// when
	_, err := te.StartWorkflow(t.Context(), StartRequest{WorkflowId: "failing"})

	// then
	assert.ErrorContains(t, err, "handler failed")
	instances, err := te.FindWorkflowInstances(t.Context(), storage.WorkflowInstanceQuery{WorkflowId: "failing"})
	require.NoError(t, err)
	require.Len(t, instances, 1)
	wi := instances[0]
	assert.False(t, wi.IsLocked())
	assert.False(t, wi.IsEnded())
	// the failed item is still queued, it was popped after the last flush
	require.Len(t, wi.Work, 1)
	assert.Equal(t, "boom", wi.ActivityInstance(wi.Work[0]).ActivityId)
	assert.Equal(t, 0, te.events.count(exporter.ActivityEnded, "boom"))
	jobs, err := te.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, jobTypeContinueInstance, jobs[0].Type)
	assert.Equal(t, continueKey(wi.Id), jobs[0].Key)
	assert.True(t, te.clock.Now().Add(3*time.Second).Equal(jobs[0].Due))

	// when
	boom.fix()
	te.clock.Advance(3 * time.Second)
	executed, err := te.Scheduler().PollOnce(t.Context(), true)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	wi, err = te.FindWorkflowInstance(t.Context(), wi.Id)
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
	assert.Equal(t, 1, te.events.count(exporter.ActivityEnded, "boom"))
}

func TestFailedMessageIsContinuedLater(t *testing.T) {
	// setup
	boom := &failingOnce{}
	te := newTestEngine(t, EngineWithServiceHandler("boom", boom.handler))
	te.deploy(t, "receive-failing.yaml")
	wi := te.start(t, "receive-failing", nil)

	// when
	_, err := te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: "approval"})

	// then
	require.Error(t, err)
	jobs, err := te.FindJobs(t.Context(), storage.JobQuery{WorkflowInstanceId: wi.Id, Type: jobTypeContinueInstance})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	// when
	boom.fix()
	te.clock.Advance(3 * time.Second)
	_, err = te.Scheduler().PollOnce(t.Context(), true)

	// then
	require.NoError(t, err)
	wi, err = te.FindWorkflowInstance(t.Context(), wi.Id)
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
	assert.Equal(t, 2, boom.calls)
}

func TestLockContention(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "receive.yaml")
	wi := te.start(t, "receive", nil)
	_, err := te.store.LockWorkflowInstance(t.Context(), wi.Id, 0, runtime.Lock{Time: te.clock.Now(), Owner: "other-node"})
	require.NoError(t, err)

	// when
	_, err = te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: "approval"})

	// then
	var contention *LockContentionError
	require.ErrorAs(t, err, &contention)
	assert.Equal(t, wi.Id, contention.WorkflowInstanceId)
	assert.ErrorIs(t, err, storage.ErrInstanceLocked)

	// when
	require.NoError(t, te.store.UnlockWorkflowInstance(t.Context(), wi.Id, "other-node"))
	wi, err = te.SendMessage(t.Context(), MessageRequest{WorkflowInstanceId: wi.Id, ActivityId: "approval"})

	// then
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
}

func TestScheduleStart(t *testing.T) {
	// setup
	te := newTestEngine(t)
	te.deploy(t, "linear.yaml")
	due := te.clock.Now().Add(10 * time.Minute)

	// when
	job, err := te.ScheduleStart(t.Context(), StartRequest{WorkflowId: "linear", BusinessKey: "order-7"}, due)
	require.NoError(t, err)
	executed, err := te.Scheduler().PollOnce(t.Context(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, 0, executed)

	// when
	te.clock.Advance(10 * time.Minute)
	executed, err = te.Scheduler().PollOnce(t.Context(), false)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	id, err := dataInt64(job.Data, dataWorkflowInstanceId)
	require.NoError(t, err)
	wi, err := te.FindWorkflowInstance(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, wi.IsEnded())
	assert.Equal(t, "order-7", wi.BusinessKey)
}
