package otel

const (
	Prefix                      = "zenflow-"
	AttributeWorkflowInstanceId = Prefix + "instance-id"
	AttributeWorkflowId         = Prefix + "workflow-id"
	AttributeWorkflowKey        = Prefix + "workflow-key"
	AttributeActivityId         = Prefix + "activity-id"
	AttributeActivityInstanceId = Prefix + "activity-instance-id"
	AttributeActivityKind       = Prefix + "activity-kind"
	AttributeJobId              = Prefix + "job-id"
	AttributeJobType            = Prefix + "job-type"

	SpanStatusWorkState = Prefix + "work-state"
)
