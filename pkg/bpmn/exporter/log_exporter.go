package exporter

import (
	"github.com/hashicorp/go-hclog"
)

// LogExporter writes every event to an hclog logger at debug level.
type LogExporter struct {
	logger hclog.Logger
}

func NewLogExporter(logger hclog.Logger) *LogExporter {
	return &LogExporter{logger: logger.Named("events")}
}

func (e *LogExporter) Export(event Event) {
	args := []any{
		"workflowId", event.WorkflowId,
		"workflowInstanceId", event.WorkflowInstanceId,
	}
	switch event.Intent {
	case ActivityStarted, ActivityEnded:
		args = append(args, "activityId", event.ActivityId, "activityInstanceId", event.ActivityInstanceId, "kind", event.ActivityKind)
	case TransitionTaken:
		args = append(args, "transitionId", event.TransitionId, "from", event.From, "to", event.To)
	case WorkflowDeployed:
		args = append(args, "workflowKey", event.WorkflowKey)
	}
	e.logger.Debug(string(event.Intent), args...)
}
