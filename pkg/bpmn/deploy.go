package bpmn

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/storage"
)

// compiledWorkflow is a deployed workflow with the behaviour of every activity resolved.
type compiledWorkflow struct {
	definition runtime.WorkflowDefinition
	model      *model.Workflow
	types      map[string]ActivityType
}

// DeployWorkflow validates the workflow and stores it as the next version of its id.
// Deploying a workflow identical to its latest version returns that version.
func (engine *Engine) DeployWorkflow(ctx context.Context, workflow *model.Workflow) (runtime.WorkflowDefinition, error) {
	if err := workflow.Validate(); err != nil {
		return runtime.WorkflowDefinition{}, err
	}
	types, err := engine.compile(workflow)
	if err != nil {
		return runtime.WorkflowDefinition{}, err
	}
	data, err := json.Marshal(workflow)
	if err != nil {
		return runtime.WorkflowDefinition{}, errors.Join(newEngineErrorf("failed to encode workflow %s", workflow.Id), err)
	}
	checksum := md5.Sum(data)

	version := 1
	latest, err := engine.store.FindLatestWorkflowDefinitionById(ctx, workflow.Id)
	switch {
	case err == nil && latest.Checksum == checksum:
		return latest, nil
	case err == nil:
		version = latest.Version + 1
	case !errors.Is(err, storage.ErrNotFound):
		return runtime.WorkflowDefinition{}, errors.Join(newEngineErrorf("failed to load latest version of workflow %s", workflow.Id), err)
	}

	definition := runtime.WorkflowDefinition{
		WorkflowId: workflow.Id,
		Version:    version,
		Key:        engine.generateKey(),
		Data:       data,
		Checksum:   checksum,
		DeployedAt: engine.now(),
	}
	if err := engine.store.SaveWorkflowDefinition(ctx, definition); err != nil {
		return runtime.WorkflowDefinition{}, errors.Join(newEngineErrorf("failed to save workflow %s version %d", workflow.Id, version), err)
	}
	engine.workflows.Add(definition.Key, &compiledWorkflow{definition: definition, model: workflow, types: types})

	for _, warning := range workflow.Warnings() {
		engine.logger.Warn(fmt.Sprintf("Workflow %s: %s", workflow.Id, warning))
	}
	engine.logger.Info("Workflow deployed", "workflowId", workflow.Id, "version", version, "key", definition.Key)
	engine.export(exporter.Event{
		Intent:      exporter.WorkflowDeployed,
		Time:        definition.DeployedAt,
		WorkflowId:  workflow.Id,
		WorkflowKey: definition.Key,
	})
	return definition, nil
}

// DeployWorkflowYAML parses and deploys a YAML workflow definition.
func (engine *Engine) DeployWorkflowYAML(ctx context.Context, data []byte) (runtime.WorkflowDefinition, error) {
	workflow, err := model.ParseYAML(data)
	if err != nil {
		return runtime.WorkflowDefinition{}, err
	}
	return engine.DeployWorkflow(ctx, workflow)
}

// compile resolves the activity type of every activity. All problems are reported together.
func (engine *Engine) compile(workflow *model.Workflow) (map[string]ActivityType, error) {
	types := map[string]ActivityType{}
	issues := make([]model.Issue, 0)
	workflow.EachActivity(func(activity *model.Activity) {
		path := fmt.Sprintf("activities[%s]", activity.Id)
		factory, ok := engine.activityTypes[activity.Kind]
		if !ok {
			issues = append(issues, model.Issue{Level: model.IssueError, Path: path, Message: fmt.Sprintf("unknown activity kind %q", activity.Kind)})
			return
		}
		activityType, err := factory(activity, engine)
		if err != nil {
			issues = append(issues, model.Issue{Level: model.IssueError, Path: path, Message: err.Error()})
			return
		}
		if activity.IsMultiInstance() && !activityType.Descriptor().MultiInstance {
			issues = append(issues, model.Issue{Level: model.IssueError, Path: path, Message: fmt.Sprintf("activity kind %s can not be multi-instance", activity.Kind)})
			return
		}
		types[activity.Id] = activityType
	})
	if len(issues) > 0 {
		return nil, &model.ValidationError{WorkflowId: workflow.Id, Issues: issues}
	}
	return types, nil
}

// loadWorkflow returns the compiled workflow of a deployed definition, compiling it on a cache miss.
func (engine *Engine) loadWorkflow(ctx context.Context, key int64) (*compiledWorkflow, error) {
	if compiled, ok := engine.workflows.Get(key); ok {
		return compiled, nil
	}
	definition, err := engine.store.FindWorkflowDefinitionByKey(ctx, key)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to load workflow definition %d", key), err)
	}
	workflow, err := model.ParseJSON(definition.Data)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to decode workflow definition %d", key), err)
	}
	if err := workflow.Validate(); err != nil {
		return nil, errors.Join(newEngineErrorf("stored workflow definition %d is invalid", key), err)
	}
	types, err := engine.compile(workflow)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to compile workflow definition %d", key), err)
	}
	compiled := &compiledWorkflow{definition: definition, model: workflow, types: types}
	engine.workflows.Add(key, compiled)
	return compiled, nil
}

// findDefinition returns the definition with the key, or the latest version of the workflow id.
func (engine *Engine) findDefinition(ctx context.Context, key int64, workflowId string) (*compiledWorkflow, error) {
	if key == 0 {
		latest, err := engine.store.FindLatestWorkflowDefinitionById(ctx, workflowId)
		if err != nil {
			return nil, errors.Join(newEngineErrorf("no workflow with id=%s was deployed", workflowId), err)
		}
		key = latest.Key
	}
	return engine.loadWorkflow(ctx, key)
}

func (engine *Engine) newExecution(ctx context.Context, wi *runtime.WorkflowInstance) (*Execution, error) {
	compiled, err := engine.loadWorkflow(ctx, wi.WorkflowKey)
	if err != nil {
		return nil, err
	}
	return &Execution{ctx: ctx, engine: engine, instance: wi, workflow: compiled}, nil
}
