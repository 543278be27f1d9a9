// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package exporter

import (
	"time"
)

// EventExporter receives execution events synchronously while the workflow instance is locked.
// Implementations must not block and must not call back into the engine.
type EventExporter interface {
	Export(event Event)
}

type ExporterFunc func(event Event)

func (f ExporterFunc) Export(event Event) {
	f(event)
}

type Intent string

const (
	WorkflowDeployed Intent = "WORKFLOW_DEPLOYED"
	WorkflowStarted  Intent = "WORKFLOW_STARTED"
	WorkflowEnded    Intent = "WORKFLOW_ENDED"
	ActivityStarted  Intent = "ACTIVITY_STARTED"
	ActivityEnded    Intent = "ACTIVITY_ENDED"
	TransitionTaken  Intent = "TRANSITION_TAKEN"
)

type Event struct {
	Intent             Intent
	Time               time.Time
	WorkflowId         string
	WorkflowKey        int64
	WorkflowInstanceId int64
	ActivityId         string
	ActivityInstanceId int64
	ActivityKind       string
	// TransitionId, From and To are set for TransitionTaken.
	TransitionId string
	From         string
	To           string
}
