package bpmn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pbinitiative/zenflow/internal/appcontext"
	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	otelPkg "github.com/pbinitiative/zenflow/pkg/otel"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// StartRequest names the workflow by key, or by id for its latest version.
type StartRequest struct {
	WorkflowId  string         `json:"workflowId,omitempty"`
	WorkflowKey int64          `json:"workflowKey,omitempty"`
	BusinessKey string         `json:"businessKey,omitempty"`
	TenantId    string         `json:"tenantId,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
}

// MessageRequest addresses a waiting activity instance directly, or the first waiting instance of an activity.
type MessageRequest struct {
	WorkflowInstanceId int64          `json:"workflowInstanceId"`
	ActivityInstanceId int64          `json:"activityInstanceId,omitempty"`
	ActivityId         string         `json:"activityId,omitempty"`
	Payload            map[string]any `json:"payload,omitempty"`
}

type startParams struct {
	id                       int64
	workflowKey              int64
	workflowId               string
	businessKey              string
	tenantId                 string
	variables                map[string]any
	callerWorkflowInstanceId int64
	callerActivityInstanceId int64
}

// StartWorkflow creates a workflow instance and runs it until it waits or ends.
// The returned instance reflects the stored state after the run.
func (engine *Engine) StartWorkflow(ctx context.Context, req StartRequest) (*runtime.WorkflowInstance, error) {
	ctx, span := engine.tracer.Start(ctx, fmt.Sprintf("start:%s", req.WorkflowId), trace.WithAttributes(
		attribute.String(otelPkg.AttributeWorkflowId, req.WorkflowId),
		attribute.Int64(otelPkg.AttributeWorkflowKey, req.WorkflowKey),
	))
	defer span.End()

	compiled, err := engine.findDefinition(ctx, req.WorkflowKey, req.WorkflowId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	id := engine.generateKey()
	wi, err := engine.startWorkflow(ctx, compiled, startParams{
		id:          id,
		businessKey: req.BusinessKey,
		tenantId:    req.TenantId,
		variables:   req.Variables,
	})
	if err != nil {
		err = errors.Join(err, engine.recoverInstance(ctx, id))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64(otelPkg.AttributeWorkflowInstanceId, wi.Id))
	return engine.store.FindWorkflowInstanceById(ctx, wi.Id)
}

func (engine *Engine) startWorkflow(ctx context.Context, compiled *compiledWorkflow, params startParams) (*runtime.WorkflowInstance, error) {
	id := params.id
	if id == 0 {
		id = engine.generateKey()
	}
	ctx = appcontext.WithExecutionKey(ctx, id)
	now := engine.now()
	wi := runtime.NewWorkflowInstance(id, compiled.definition, now)
	wi.BusinessKey = params.businessKey
	wi.TenantId = params.tenantId
	wi.CallerWorkflowInstanceId = params.callerWorkflowInstanceId
	wi.CallerActivityInstanceId = params.callerActivityInstanceId
	wi.Lock = &runtime.Lock{Time: now, Owner: engine.nodeId}

	exec := &Execution{ctx: ctx, engine: engine, instance: wi, workflow: compiled}
	if err := exec.declareWorkflowVariables(params.variables); err != nil {
		return nil, err
	}
	engine.export(exec.event(exporter.WorkflowStarted))
	if err := exec.StartScope(wi.Id, &compiled.model.Scope); err != nil {
		return nil, err
	}
	if err := engine.store.InsertWorkflowInstance(ctx, wi); err != nil {
		return nil, errors.Join(newEngineErrorf("failed to insert workflow instance %d", wi.Id), err)
	}
	attrs := metric.WithAttributes(attribute.String("workflowId", wi.WorkflowId))
	engine.metrics.WorkflowsStarted.Add(ctx, 1, attrs)
	engine.metrics.WorkflowsRunning.Add(ctx, 1, attrs)
	engine.logger.Debug("Workflow instance started", "workflowInstanceId", wi.Id, "workflowId", wi.WorkflowId, "version", wi.WorkflowVersion)

	if err := engine.runInstance(exec); err != nil {
		return nil, errors.Join(newEngineErrorf("failed to run workflow instance %d", wi.Id), err)
	}
	return wi, nil
}

// declareWorkflowVariables declares the workflow variables; start variables replace initial values and
// undeclared start variables are added untyped.
func (e *Execution) declareWorkflowVariables(variables map[string]any) error {
	wi := e.instance
	for _, variable := range e.workflow.model.Variables {
		if value, ok := variables[variable.Id]; ok {
			if err := wi.DeclareVariable(wi.Id, variable.Id, variable.Type, value); err != nil {
				return err
			}
			continue
		}
		var value any
		if variable.Initial.IsSet() {
			v, err := resolve(e, wi.Id, variable.Initial)
			if err != nil {
				return fmt.Errorf("failed to initialize variable %s: %w", variable.Id, err)
			}
			value = v
		}
		if err := wi.DeclareVariable(wi.Id, variable.Id, variable.Type, value); err != nil {
			return err
		}
	}
	for name, value := range variables {
		if wi.FindVariable(wi.Id, name) != nil {
			continue
		}
		if err := wi.SetVariable(wi.Id, name, value); err != nil {
			return err
		}
	}
	return nil
}

// SendMessage delivers a message to a waiting activity instance and runs the instance.
func (engine *Engine) SendMessage(ctx context.Context, req MessageRequest) (*runtime.WorkflowInstance, error) {
	ctx, span := engine.tracer.Start(ctx, fmt.Sprintf("message:%s", req.ActivityId), trace.WithAttributes(
		attribute.Int64(otelPkg.AttributeWorkflowInstanceId, req.WorkflowInstanceId),
		attribute.Int64(otelPkg.AttributeActivityInstanceId, req.ActivityInstanceId),
		attribute.String(otelPkg.AttributeActivityId, req.ActivityId),
	))
	defer span.End()
	ctx = appcontext.WithExecutionKey(ctx, req.WorkflowInstanceId)

	err := engine.sendMessage(ctx, req)
	if err != nil {
		err = errors.Join(err, engine.recoverInstance(ctx, req.WorkflowInstanceId))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return engine.store.FindWorkflowInstanceById(ctx, req.WorkflowInstanceId)
}

func (engine *Engine) sendMessage(ctx context.Context, req MessageRequest) error {
	wi, err := engine.lockForUpdate(ctx, req.WorkflowInstanceId)
	if err != nil {
		return err
	}
	exec, err := engine.newExecution(ctx, wi)
	if err != nil {
		return errors.Join(err, engine.ReleaseInstance(ctx, wi))
	}
	ai := findWaitingActivityInstance(wi, req)
	if ai == nil {
		return errors.Join(ErrNoWaitingActivity, engine.ReleaseInstance(ctx, wi))
	}
	activityType, err := exec.activityType(ai.ActivityId)
	if err != nil {
		return errors.Join(err, engine.ReleaseInstance(ctx, wi))
	}
	if err := activityType.Message(exec, ai, Message{ActivityId: ai.ActivityId, Payload: req.Payload}); err != nil {
		return errors.Join(err, engine.ReleaseInstance(ctx, wi))
	}
	return engine.runInstance(exec)
}

func findWaitingActivityInstance(wi *runtime.WorkflowInstance, req MessageRequest) *runtime.ActivityInstance {
	if req.ActivityInstanceId != 0 {
		ai := wi.ActivityInstance(req.ActivityInstanceId)
		if ai == nil || ai.IsEnded() || ai.WorkState != runtime.WorkStateWaiting {
			return nil
		}
		return ai
	}
	for _, ai := range wi.OpenActivityInstances() {
		if ai.ActivityId == req.ActivityId && ai.WorkState == runtime.WorkStateWaiting {
			return ai
		}
	}
	return nil
}

// lockForUpdate locks an instance for an API call. Contention is reported as *LockContentionError.
func (engine *Engine) lockForUpdate(ctx context.Context, workflowInstanceId int64) (*runtime.WorkflowInstance, error) {
	wi, err := engine.LockInstance(ctx, workflowInstanceId, 0)
	switch {
	case errors.Is(err, storage.ErrInstanceLocked):
		return nil, &LockContentionError{WorkflowInstanceId: workflowInstanceId, RetryAfter: time.Second, Err: err}
	case err != nil:
		return nil, errors.Join(newEngineErrorf("failed to lock workflow instance %d", workflowInstanceId), err)
	}
	if wi.IsEnded() {
		return nil, errors.Join(newEngineErrorf("workflow instance %d has ended", workflowInstanceId), engine.ReleaseInstance(ctx, wi))
	}
	return wi, nil
}

// ScheduleStart saves a job that starts the workflow at due. The id of the future instance is
// reserved now and returned in the job data.
func (engine *Engine) ScheduleStart(ctx context.Context, req StartRequest, due time.Time) (runtime.Job, error) {
	compiled, err := engine.findDefinition(ctx, req.WorkflowKey, req.WorkflowId)
	if err != nil {
		return runtime.Job{}, err
	}
	now := engine.now()
	job := runtime.Job{
		Id:        engine.generateKey(),
		Type:      jobTypeStartWorkflow,
		Due:       due,
		CreatedAt: now,
		Data: map[string]any{
			dataWorkflowKey:        strconv.FormatInt(compiled.definition.Key, 10),
			dataWorkflowId:         compiled.definition.WorkflowId,
			dataWorkflowInstanceId: strconv.FormatInt(engine.generateKey(), 10),
			dataBusinessKey:        req.BusinessKey,
			dataTenantId:           req.TenantId,
		},
	}
	if req.Variables != nil {
		job.Data[dataVariables] = req.Variables
	}
	if err := engine.store.SaveJob(ctx, job); err != nil {
		return runtime.Job{}, errors.Join(newEngineErrorf("failed to save start job for workflow %s", compiled.definition.WorkflowId), err)
	}
	engine.metrics.JobsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("type", job.Type)))
	return job, nil
}

func (engine *Engine) FindWorkflowInstance(ctx context.Context, id int64) (*runtime.WorkflowInstance, error) {
	return engine.store.FindWorkflowInstanceById(ctx, id)
}

func (engine *Engine) FindWorkflowInstances(ctx context.Context, query storage.WorkflowInstanceQuery) ([]*runtime.WorkflowInstance, error) {
	return engine.store.FindWorkflowInstances(ctx, query)
}

// FindWorkflowDefinitions returns all versions of the workflow ordered by version.
func (engine *Engine) FindWorkflowDefinitions(ctx context.Context, workflowId string) ([]runtime.WorkflowDefinition, error) {
	return engine.store.FindWorkflowDefinitionsById(ctx, workflowId)
}

func (engine *Engine) FindWorkflowDefinition(ctx context.Context, key int64) (runtime.WorkflowDefinition, error) {
	return engine.store.FindWorkflowDefinitionByKey(ctx, key)
}

func (engine *Engine) FindJobs(ctx context.Context, query storage.JobQuery) ([]runtime.Job, error) {
	return engine.store.FindJobs(ctx, query)
}

func (engine *Engine) FindArchivedJobs(ctx context.Context, query storage.JobQuery) ([]runtime.Job, error) {
	return engine.store.FindArchivedJobs(ctx, query)
}
