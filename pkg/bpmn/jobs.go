package bpmn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pbinitiative/zenflow/internal/appcontext"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/jobs"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	jobTypeAsyncContinuation = "async-continuation"
	jobTypeTimer             = "timer"
	jobTypeStartWorkflow     = "start-workflow"
	jobTypeCallEnded         = "call-ended"
	jobTypeContinueInstance  = "continue-instance"
)

// job data keys; ids are stored as decimal strings because job data may pass through JSON
const (
	dataWorkflowKey              = "workflowKey"
	dataWorkflowId               = "workflowId"
	dataWorkflowInstanceId       = "workflowInstanceId"
	dataCallerWorkflowInstanceId = "callerWorkflowInstanceId"
	dataCallerActivityInstanceId = "callerActivityInstanceId"
	dataCalledWorkflowInstanceId = "calledWorkflowInstanceId"
	dataBusinessKey              = "businessKey"
	dataTenantId                 = "tenantId"
	dataVariables                = "variables"
)

func asyncContinuationKey(workflowInstanceId int64) string {
	return fmt.Sprintf("async:%d", workflowInstanceId)
}

func timerKey(activityInstanceId int64) string {
	return fmt.Sprintf("timer:%d", activityInstanceId)
}

func callKey(activityInstanceId int64) string {
	return fmt.Sprintf("call:%d", activityInstanceId)
}

func callEndedKey(activityInstanceId int64) string {
	return fmt.Sprintf("call-ended:%d", activityInstanceId)
}

func continueKey(workflowInstanceId int64) string {
	return fmt.Sprintf("continue:%d", workflowInstanceId)
}

func (engine *Engine) registerJobTypes() {
	engine.scheduler.RegisterJobType(jobs.JobTypeFunc{Name: jobTypeAsyncContinuation, Func: engine.continueAsync})
	engine.scheduler.RegisterJobType(jobs.JobTypeFunc{Name: jobTypeTimer, Func: engine.fireTimer})
	engine.scheduler.RegisterJobType(jobs.JobTypeFunc{Name: jobTypeStartWorkflow, Func: engine.startWorkflowJob})
	engine.scheduler.RegisterJobType(jobs.JobTypeFunc{Name: jobTypeCallEnded, Func: engine.callEnded})
	engine.scheduler.RegisterJobType(jobs.JobTypeFunc{Name: jobTypeContinueInstance, Func: continueInstance})
}

// runJobNow hands a job that was just saved to the executor.
func (engine *Engine) runJobNow(ctx context.Context, jobId int64) {
	ctx = appcontext.WithJobId(ctx, jobId)
	engine.executor.Execute(func() {
		if err := engine.scheduler.ExecuteJobById(ctx, jobId); err != nil {
			engine.logger.Error(fmt.Sprintf("Failed to execute job %d: %s", jobId, err))
		}
	})
}

// continueAsync promotes the asynchronous work; the scheduler then continues the instance.
func (engine *Engine) continueAsync(_ context.Context, c *jobs.Controller) error {
	wi := c.WorkflowInstance()
	wi.IsAsync = true
	wi.MarkChanged()
	wi.PromoteAsyncWork()
	return nil
}

// continueInstance has nothing to prepare, the scheduler continues the queued work of the instance.
func continueInstance(context.Context, *jobs.Controller) error {
	return nil
}

// recoverInstance leaves a continuation job for an instance whose run failed after work was stored.
// Instances that ended, have no queued work or are locked by somebody else are left alone.
func (engine *Engine) recoverInstance(ctx context.Context, workflowInstanceId int64) error {
	wi, err := engine.store.FindWorkflowInstanceById(ctx, workflowInstanceId)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Join(newEngineErrorf("failed to load workflow instance %d for recovery", workflowInstanceId), err)
	}
	if wi.IsEnded() || wi.IsLocked() || !wi.HasWork() {
		return nil
	}
	now := engine.now()
	job := runtime.Job{
		Id:                 engine.generateKey(),
		Key:                continueKey(wi.Id),
		Type:               jobTypeContinueInstance,
		Due:                now.Add(jobs.DefaultRetryPolicy{}.RetryDelay(1)),
		CreatedAt:          now,
		WorkflowInstanceId: wi.Id,
	}
	if err := engine.store.SaveJob(ctx, job); err != nil {
		return errors.Join(newEngineErrorf("failed to save continuation job for workflow instance %d", wi.Id), err)
	}
	engine.metrics.JobsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("type", job.Type)))
	engine.logger.Warn(fmt.Sprintf("Workflow instance %d is continued by job %d at %s", wi.Id, job.Id, job.Due.Format(time.RFC3339)))
	return nil
}

func (engine *Engine) fireTimer(ctx context.Context, c *jobs.Controller) error {
	wi := c.WorkflowInstance()
	job := c.Job()
	exec, err := engine.newExecution(ctx, wi)
	if err != nil {
		return err
	}
	ai := wi.ActivityInstance(job.ActivityInstanceId)
	if ai == nil {
		return nil
	}
	activityType, err := exec.activityType(ai.ActivityId)
	if err != nil {
		return err
	}
	timer, ok := activityType.(*timerEvent)
	if !ok {
		return newEngineErrorf("activity %s of timer job %d is not a timer", ai.ActivityId, job.Id)
	}
	return timer.fire(exec, ai)
}

func (engine *Engine) callEnded(ctx context.Context, c *jobs.Controller) error {
	wi := c.WorkflowInstance()
	job := c.Job()
	calledId, err := dataInt64(job.Data, dataCalledWorkflowInstanceId)
	if err != nil {
		return err
	}
	called, err := engine.store.FindWorkflowInstanceById(ctx, calledId)
	if err != nil {
		return errors.Join(newEngineErrorf("failed to load called workflow instance %d", calledId), err)
	}
	exec, err := engine.newExecution(ctx, wi)
	if err != nil {
		return err
	}
	ai := wi.ActivityInstance(job.ActivityInstanceId)
	if ai == nil {
		return nil
	}
	activityType, err := exec.activityType(ai.ActivityId)
	if err != nil {
		return err
	}
	caller, ok := activityType.(CallActivityType)
	if !ok {
		return newEngineErrorf("activity %s of workflow instance %d does not call workflows", ai.ActivityId, wi.Id)
	}
	return caller.CallEnded(exec, ai, called)
}

// startWorkflowJob starts a scheduled or called workflow instance. The instance id is part of the job,
// so a retry continues an instance that was already inserted instead of starting a second one.
func (engine *Engine) startWorkflowJob(ctx context.Context, c *jobs.Controller) error {
	job := c.Job()
	params, err := startParamsFromJob(job)
	if err != nil {
		return err
	}
	existing, err := engine.store.FindWorkflowInstanceById(ctx, params.id)
	switch {
	case err == nil:
		if existing.IsEnded() || !existing.HasWork() {
			return nil
		}
		wi, err := engine.LockInstance(ctx, params.id, 0)
		if errors.Is(err, storage.ErrInstanceLocked) {
			return nil
		}
		if err != nil {
			return err
		}
		return engine.ContinueInstance(ctx, wi)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	compiled, err := engine.findDefinition(ctx, params.workflowKey, params.workflowId)
	if err != nil {
		return err
	}
	_, err = engine.startWorkflow(ctx, compiled, params)
	return err
}

func startParamsFromJob(job runtime.Job) (startParams, error) {
	params := startParams{
		workflowId:  dataString(job.Data, dataWorkflowId),
		businessKey: dataString(job.Data, dataBusinessKey),
		tenantId:    dataString(job.Data, dataTenantId),
	}
	var err error
	if params.id, err = dataInt64(job.Data, dataWorkflowInstanceId); err != nil {
		return params, err
	}
	if _, ok := job.Data[dataWorkflowKey]; ok {
		if params.workflowKey, err = dataInt64(job.Data, dataWorkflowKey); err != nil {
			return params, err
		}
	}
	if _, ok := job.Data[dataCallerWorkflowInstanceId]; ok {
		if params.callerWorkflowInstanceId, err = dataInt64(job.Data, dataCallerWorkflowInstanceId); err != nil {
			return params, err
		}
		if params.callerActivityInstanceId, err = dataInt64(job.Data, dataCallerActivityInstanceId); err != nil {
			return params, err
		}
	}
	if variables, ok := job.Data[dataVariables].(map[string]any); ok {
		params.variables = variables
	}
	if params.workflowKey == 0 && params.workflowId == "" {
		return params, newEngineErrorf("start job %d names no workflow", job.Id)
	}
	return params, nil
}

func dataString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func dataInt64(data map[string]any, key string) (int64, error) {
	s, ok := data[key].(string)
	if !ok {
		return 0, newEngineErrorf("job data %s is missing", key)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("job data %s is not an id: %w", key, err)
	}
	return v, nil
}

var _ jobs.InstanceRunner = &Engine{}

// LockInstance locks the workflow instance, retrying with exponential backoff while it is locked by
// somebody else. With activityInstanceId the activity instance must still be open, unless the instance
// still has queued work: a job that already continued the instance and failed later in the same run
// is retried against that work.
func (engine *Engine) LockInstance(ctx context.Context, workflowInstanceId int64, activityInstanceId int64) (*runtime.WorkflowInstance, error) {
	wi, err := engine.lockInstance(ctx, workflowInstanceId, activityInstanceId)
	if activityInstanceId == 0 || !errors.Is(err, storage.ErrNotFound) {
		return wi, err
	}
	stored, findErr := engine.store.FindWorkflowInstanceById(ctx, workflowInstanceId)
	if findErr != nil || stored.IsEnded() || !stored.HasWork() {
		return nil, err
	}
	return engine.lockInstance(ctx, workflowInstanceId, 0)
}

func (engine *Engine) lockInstance(ctx context.Context, workflowInstanceId int64, activityInstanceId int64) (*runtime.WorkflowInstance, error) {
	base := engine.lockBackoff
	if base <= 0 {
		base = time.Millisecond
	}
	backoff := retry.WithMaxRetries(engine.lockRetries, retry.WithCappedDuration(time.Second, retry.NewExponential(base)))
	var wi *runtime.WorkflowInstance
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		wi, err = engine.store.LockWorkflowInstance(ctx, workflowInstanceId, activityInstanceId, runtime.Lock{Time: engine.now(), Owner: engine.nodeId})
		if errors.Is(err, storage.ErrInstanceLocked) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return wi, nil
}

// ContinueInstance runs the pending work of a locked instance, see jobs.InstanceRunner.
func (engine *Engine) ContinueInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	exec, err := engine.newExecution(ctx, wi)
	if err != nil {
		return errors.Join(err, engine.ReleaseInstance(ctx, wi))
	}
	return engine.runInstance(exec)
}

// ReleaseInstance unlocks the instance and drops everything that was not flushed, including unlock listeners.
func (engine *Engine) ReleaseInstance(ctx context.Context, wi *runtime.WorkflowInstance) error {
	wi.TakeUnlockListeners()
	if err := engine.store.UnlockWorkflowInstance(ctx, wi.Id, engine.nodeId); err != nil {
		return errors.Join(newEngineErrorf("failed to unlock workflow instance %d", wi.Id), err)
	}
	return nil
}
