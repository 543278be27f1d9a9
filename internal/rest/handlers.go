package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/pbinitiative/zenflow/internal/rest/public"
	"github.com/pbinitiative/zenflow/pkg/bpmn"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/ptr"
	"github.com/pbinitiative/zenflow/pkg/storage"
)

const (
	PaginationDefaultLimit = 100
	PaginationMaxLimit     = 1000
)

var _ public.StrictServerInterface = (*Server)(nil)

// DeployWorkflow accepts YAML, JSON parses the same way.
func (s *Server) DeployWorkflow(ctx context.Context, request public.DeployWorkflowRequestObject) (public.DeployWorkflowResponseObject, error) {
	data, err := io.ReadAll(request.Body)
	if err != nil {
		return public.DeployWorkflow400JSONResponse{BadRequestJSONResponse: badRequest(err.Error())}, nil
	}
	workflow, err := model.ParseYAML(data)
	if err != nil {
		return public.DeployWorkflow400JSONResponse{BadRequestJSONResponse: badRequest(err.Error())}, nil
	}
	definition, err := s.engine.DeployWorkflow(ctx, workflow)
	if err != nil {
		return nil, err
	}
	return public.DeployWorkflow201JSONResponse{
		WorkflowDefinitionSimple: toWorkflowDefinitionSimple(definition),
		Warnings:                 toIssues(workflow.Warnings()),
	}, nil
}

func (s *Server) GetWorkflowVersions(ctx context.Context, request public.GetWorkflowVersionsRequestObject) (public.GetWorkflowVersionsResponseObject, error) {
	definitions, err := s.engine.FindWorkflowDefinitions(ctx, request.WorkflowId)
	if err != nil {
		return nil, err
	}
	if len(definitions) == 0 {
		return public.GetWorkflowVersions404JSONResponse{NotFoundJSONResponse: public.NotFoundJSONResponse{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("workflow %s was not deployed", request.WorkflowId),
		}}, nil
	}
	items := make(public.GetWorkflowVersions200JSONResponse, 0, len(definitions))
	for _, definition := range definitions {
		items = append(items, toWorkflowDefinitionSimple(definition))
	}
	return items, nil
}

func (s *Server) GetWorkflowDefinition(ctx context.Context, request public.GetWorkflowDefinitionRequestObject) (public.GetWorkflowDefinitionResponseObject, error) {
	definition, err := s.engine.FindWorkflowDefinition(ctx, request.WorkflowKey)
	if err != nil {
		return nil, err
	}
	var workflow map[string]any
	if err := json.Unmarshal(definition.Data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow definition %d: %w", definition.Key, err)
	}
	return public.GetWorkflowDefinition200JSONResponse{
		WorkflowDefinitionSimple: toWorkflowDefinitionSimple(definition),
		Workflow:                 workflow,
	}, nil
}

func (s *Server) StartWorkflow(ctx context.Context, request public.StartWorkflowRequestObject) (public.StartWorkflowResponseObject, error) {
	req := bpmn.StartRequest{
		WorkflowId:  ptr.Deref(request.Body.WorkflowId, ""),
		WorkflowKey: ptr.Deref(request.Body.WorkflowKey, 0),
		BusinessKey: ptr.Deref(request.Body.BusinessKey, ""),
		TenantId:    ptr.Deref(request.Body.TenantId, ""),
		Variables:   ptr.Deref(request.Body.Variables, nil),
	}
	if req.WorkflowId == "" && req.WorkflowKey == 0 {
		return public.StartWorkflow400JSONResponse{BadRequestJSONResponse: badRequest("workflowId or workflowKey is required")}, nil
	}
	wi, err := s.engine.StartWorkflow(ctx, req)
	if err != nil {
		return nil, err
	}
	return public.StartWorkflow201JSONResponse(toWorkflowInstance(wi)), nil
}

func (s *Server) GetWorkflowInstance(ctx context.Context, request public.GetWorkflowInstanceRequestObject) (public.GetWorkflowInstanceResponseObject, error) {
	wi, err := s.engine.FindWorkflowInstance(ctx, request.WorkflowInstanceId)
	if err != nil {
		return nil, err
	}
	return public.GetWorkflowInstance200JSONResponse(toWorkflowInstance(wi)), nil
}

func (s *Server) GetWorkflowInstances(ctx context.Context, request public.GetWorkflowInstancesRequestObject) (public.GetWorkflowInstancesResponseObject, error) {
	limit, ok := pageLimit(request.Params.Limit)
	if !ok {
		return public.GetWorkflowInstances400JSONResponse{BadRequestJSONResponse: badRequest("limit must be positive")}, nil
	}
	instances, err := s.engine.FindWorkflowInstances(ctx, storage.WorkflowInstanceQuery{
		WorkflowId:  ptr.Deref(request.Params.WorkflowId, ""),
		BusinessKey: ptr.Deref(request.Params.BusinessKey, ""),
		ActivityId:  ptr.Deref(request.Params.ActivityId, ""),
		Ended:       request.Params.Ended,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]public.WorkflowInstance, 0, len(instances))
	for _, wi := range instances {
		items = append(items, toWorkflowInstance(wi))
	}
	return public.GetWorkflowInstances200JSONResponse{Items: items, Count: len(items)}, nil
}

func (s *Server) SendMessage(ctx context.Context, request public.SendMessageRequestObject) (public.SendMessageResponseObject, error) {
	req := bpmn.MessageRequest{
		WorkflowInstanceId: request.WorkflowInstanceId,
		ActivityInstanceId: ptr.Deref(request.Body.ActivityInstanceId, 0),
		ActivityId:         ptr.Deref(request.Body.ActivityId, ""),
		Payload:            ptr.Deref(request.Body.Payload, nil),
	}
	if req.ActivityId == "" && req.ActivityInstanceId == 0 {
		return public.SendMessage400JSONResponse{BadRequestJSONResponse: badRequest("activityId or activityInstanceId is required")}, nil
	}
	wi, err := s.engine.SendMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	return public.SendMessage200JSONResponse(toWorkflowInstance(wi)), nil
}

func (s *Server) ScheduleStart(ctx context.Context, request public.ScheduleStartRequestObject) (public.ScheduleStartResponseObject, error) {
	if request.Body.Due.IsZero() {
		return public.ScheduleStart400JSONResponse{BadRequestJSONResponse: badRequest("due is required")}, nil
	}
	job, err := s.engine.ScheduleStart(ctx, bpmn.StartRequest{
		WorkflowId:  ptr.Deref(request.Body.WorkflowId, ""),
		WorkflowKey: ptr.Deref(request.Body.WorkflowKey, 0),
		BusinessKey: ptr.Deref(request.Body.BusinessKey, ""),
		TenantId:    ptr.Deref(request.Body.TenantId, ""),
		Variables:   ptr.Deref(request.Body.Variables, nil),
	}, request.Body.Due)
	if err != nil {
		return nil, err
	}
	instanceId, _ := job.Data["workflowInstanceId"].(string)
	id, err := strconv.ParseInt(instanceId, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("scheduled start %d has no workflow instance id: %w", job.Id, err)
	}
	return public.ScheduleStart201JSONResponse{JobId: job.Id, WorkflowInstanceId: id, Due: job.Due}, nil
}

func (s *Server) GetJobs(ctx context.Context, request public.GetJobsRequestObject) (public.GetJobsResponseObject, error) {
	query, ok := jobQuery(request.Params.Type, request.Params.Key, request.Params.WorkflowInstanceId, request.Params.Dead, request.Params.Limit)
	if !ok {
		return public.GetJobs400JSONResponse{BadRequestJSONResponse: badRequest("limit must be positive")}, nil
	}
	jobs, err := s.engine.FindJobs(ctx, query)
	if err != nil {
		return nil, err
	}
	return public.GetJobs200JSONResponse(toJobsPage(jobs)), nil
}

func (s *Server) GetArchivedJobs(ctx context.Context, request public.GetArchivedJobsRequestObject) (public.GetArchivedJobsResponseObject, error) {
	query, ok := jobQuery(request.Params.Type, request.Params.Key, request.Params.WorkflowInstanceId, request.Params.Dead, request.Params.Limit)
	if !ok {
		return public.GetArchivedJobs400JSONResponse{BadRequestJSONResponse: badRequest("limit must be positive")}, nil
	}
	jobs, err := s.engine.FindArchivedJobs(ctx, query)
	if err != nil {
		return nil, err
	}
	return public.GetArchivedJobs200JSONResponse(toJobsPage(jobs)), nil
}

func jobQuery(jobType *string, key *string, workflowInstanceId *int64, dead *bool, limit *int) (storage.JobQuery, bool) {
	pageSize, ok := pageLimit(limit)
	return storage.JobQuery{
		Type:               ptr.Deref(jobType, ""),
		Key:                ptr.Deref(key, ""),
		WorkflowInstanceId: ptr.Deref(workflowInstanceId, 0),
		Dead:               dead,
		Limit:              pageSize,
	}, ok
}

func pageLimit(limit *int) (int, bool) {
	if limit == nil {
		return PaginationDefaultLimit, true
	}
	if *limit < 1 {
		return 0, false
	}
	return min(*limit, PaginationMaxLimit), true
}

func badRequest(message string) public.BadRequestJSONResponse {
	return public.BadRequestJSONResponse{Code: "BAD_REQUEST", Message: message}
}

// writeEngineError maps engine and storage errors to status codes. Lock contention tells the client when to retry.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var contention *bpmn.LockContentionError
	var validation *model.ValidationError
	var expression *bpmn.ExpressionEvaluationError
	switch {
	case errors.As(err, &contention):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(contention.RetryAfter.Seconds()))))
		writeError(w, http.StatusConflict, public.Error{Code: "LOCKED", Message: err.Error()})
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, public.Error{Code: "INVALID_WORKFLOW", Message: err.Error(), Issues: toIssues(validation.Issues)})
	case errors.Is(err, bpmn.ErrNoWaitingActivity):
		writeError(w, http.StatusConflict, public.Error{Code: "NOT_WAITING", Message: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, public.Error{Code: "NOT_FOUND", Message: err.Error()})
	case errors.As(err, &expression):
		writeError(w, http.StatusUnprocessableEntity, public.Error{Code: "EXPRESSION", Message: err.Error()})
	default:
		s.logger.Error(fmt.Sprintf("Request %s %s failed: %s", r.Method, r.URL.Path, err))
		writeError(w, http.StatusInternalServerError, public.Error{Code: "ERROR", Message: err.Error()})
	}
}
