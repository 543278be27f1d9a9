package rest

import (
	"github.com/pbinitiative/zenflow/internal/rest/public"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/ptr"
)

type Status struct {
	NodeId string `json:"nodeId"`
	Uptime string `json:"uptime"`
	Status string `json:"status"`
}

func toWorkflowDefinitionSimple(definition runtime.WorkflowDefinition) public.WorkflowDefinitionSimple {
	return public.WorkflowDefinitionSimple{
		Key:        definition.Key,
		WorkflowId: definition.WorkflowId,
		Version:    definition.Version,
		DeployedAt: definition.DeployedAt,
	}
}

func toWorkflowInstance(wi *runtime.WorkflowInstance) public.WorkflowInstance {
	res := public.WorkflowInstance{
		Id:                       wi.Id,
		WorkflowId:               wi.WorkflowId,
		WorkflowKey:              wi.WorkflowKey,
		WorkflowVersion:          wi.WorkflowVersion,
		BusinessKey:              wi.BusinessKey,
		TenantId:                 wi.TenantId,
		State:                    public.InstanceStateActive,
		Locked:                   wi.IsLocked(),
		CreatedAt:                wi.Start,
		EndedAt:                  wi.End,
		CallerWorkflowInstanceId: ptr.NonZero(wi.CallerWorkflowInstanceId),
		Variables:                wi.VisibleVariables(wi.Id),
		ActivityInstances:        []public.ActivityInstance{},
	}
	if wi.IsEnded() {
		res.State = public.InstanceStateEnded
	}
	for _, id := range wi.ActivityInstanceIds() {
		ai := wi.ActivityInstance(id)
		res.ActivityInstances = append(res.ActivityInstances, public.ActivityInstance{
			Id:                       ai.Id,
			ActivityId:               ai.ActivityId,
			ParentId:                 ai.ParentId,
			State:                    activityInstanceState(ai),
			StartedAt:                ai.Start,
			EndedAt:                  ai.End,
			CalledWorkflowInstanceId: ptr.NonZero(ai.CalledWorkflowInstanceId),
		})
	}
	return res
}

func activityInstanceState(ai *runtime.ActivityInstance) string {
	switch {
	case ai.IsEnded():
		return "ended"
	case ai.WorkState == runtime.WorkStateWaiting:
		return "waiting"
	case ai.WorkState == runtime.WorkStateNone:
		return "active"
	}
	return string(ai.WorkState)
}

func toJobsPage(jobs []runtime.Job) public.JobsPage {
	items := make([]public.Job, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, toJob(job))
	}
	return public.JobsPage{Items: items, Count: len(items)}
}

func toJob(job runtime.Job) public.Job {
	res := public.Job{
		Id:                 job.Id,
		Key:                ptr.NonZero(job.Key),
		Type:               job.Type,
		Due:                job.Due,
		CreatedAt:          job.CreatedAt,
		Retries:            job.Retries,
		Done:               job.Done,
		Dead:               job.Dead,
		WorkflowInstanceId: ptr.NonZero(job.WorkflowInstanceId),
		ActivityInstanceId: ptr.NonZero(job.ActivityInstanceId),
		Executions:         make([]public.JobExecution, 0, len(job.Executions)),
	}
	if job.Lock != nil {
		res.Lock = &public.JobLock{Owner: job.Lock.Owner, Time: job.Lock.Time}
	}
	if len(job.Data) > 0 {
		res.Data = &job.Data
	}
	for _, execution := range job.Executions {
		res.Executions = append(res.Executions, public.JobExecution{
			Time:       execution.Time,
			DurationMs: execution.Duration.Milliseconds(),
			Owner:      execution.Owner,
			Error:      ptr.NonZero(execution.Error),
		})
	}
	return res
}

func toIssues(issues []model.Issue) *[]public.Issue {
	if len(issues) == 0 {
		return nil
	}
	res := make([]public.Issue, 0, len(issues))
	for _, issue := range issues {
		res = append(res, public.Issue{
			Level:   public.IssueLevel(issue.Level),
			Path:    issue.Path,
			Message: issue.Message,
		})
	}
	return &res
}
