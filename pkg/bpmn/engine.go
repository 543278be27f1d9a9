// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package bpmn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/jobs"
	otelPkg "github.com/pbinitiative/zenflow/pkg/otel"
	"github.com/pbinitiative/zenflow/pkg/script"
	"github.com/pbinitiative/zenflow/pkg/script/feel"
	"github.com/pbinitiative/zenflow/pkg/script/js"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/pbinitiative/zenflow/pkg/storage/inmemory"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Engine executes workflow instances kept in a storage.Storage. Several engines with distinct node ids
// may share one store; the instance lock keeps them from working on the same instance at once.
type Engine struct {
	nodeId      string
	store       storage.Storage
	keys        *snowflake.Node
	expressions script.ExpressionRuntime
	scripts     script.ScriptRuntime
	executor    Executor
	exporters   []exporter.EventExporter

	activityTypes map[string]ActivityTypeFactory
	handlersMu    sync.RWMutex
	handlers      map[string]ServiceHandler

	scheduler        *jobs.Scheduler
	schedulerOptions []jobs.SchedulerOption

	workflows *expirable.LRU[int64, *compiledWorkflow]
	cacheSize int
	cacheTTL  time.Duration

	lockRetries uint64
	lockBackoff time.Duration

	now     func() time.Time
	logger  hclog.Logger
	tracer  trace.Tracer
	metrics *otelPkg.EngineMetrics

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates a stopped engine. Without options it works on an in-memory store, evaluates
// expressions with FEEL and runs asynchronous continuations on the calling goroutine.
func NewEngine(options ...EngineOption) (*Engine, error) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := &Engine{
		executor:      SyncExecutor{},
		activityTypes: defaultActivityTypes(),
		handlers:      map[string]ServiceHandler{},
		cacheSize:     256,
		cacheTTL:      time.Hour,
		lockRetries:   5,
		lockBackoff:   10 * time.Millisecond,
		now:           time.Now,
		logger:        hclog.Default().Named("engine"),
		tracer:        otel.Tracer("zenflow-engine"),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, option := range options {
		option(engine)
	}

	if engine.nodeId == "" {
		engine.nodeId = uuid.NewString()
	}
	if engine.store == nil {
		engine.store = inmemory.NewStorage()
	}
	keys, err := newKeyGenerator(engine.nodeId)
	if err != nil {
		cancel()
		return nil, errors.Join(newEngineErrorf("failed to create key generator for node %s", engine.nodeId), err)
	}
	engine.keys = keys
	if engine.expressions == nil {
		engine.expressions = feel.NewFeelRuntime()
	}
	if engine.scripts == nil {
		engine.scripts = js.NewJsRuntime(ctx, 8, 1)
	}
	if engine.metrics == nil {
		metrics, err := otelPkg.NewMetrics(otel.Meter("zenflow-engine"))
		if err != nil {
			cancel()
			return nil, errors.Join(newEngineErrorf("failed to create engine metrics"), err)
		}
		engine.metrics = metrics
	}
	engine.workflows = expirable.NewLRU[int64, *compiledWorkflow](engine.cacheSize, nil, engine.cacheTTL)

	schedulerOptions := append([]jobs.SchedulerOption{
		jobs.SchedulerWithOwner(engine.nodeId),
		jobs.SchedulerWithClock(engine.now),
		jobs.SchedulerWithLogger(engine.logger.Named("job-scheduler")),
		jobs.SchedulerWithMetrics(engine.metrics),
	}, engine.schedulerOptions...)
	engine.scheduler = jobs.NewScheduler(engine.store, engine, schedulerOptions...)
	engine.registerJobTypes()
	return engine, nil
}

// Start starts polling for due jobs.
func (engine *Engine) Start(ctx context.Context) {
	engine.scheduler.Start(ctx)
	engine.logger.Info("Engine started", "nodeId", engine.nodeId)
}

// Stop stops the job scheduler and waits for running jobs. The engine can not be started again.
func (engine *Engine) Stop() {
	engine.scheduler.Stop()
	engine.cancel()
	engine.logger.Info("Engine stopped", "nodeId", engine.nodeId)
}

func (engine *Engine) NodeId() string {
	return engine.nodeId
}

func (engine *Engine) Store() storage.Storage {
	return engine.store
}

func (engine *Engine) Scheduler() *jobs.Scheduler {
	return engine.scheduler
}

// RegisterServiceHandler makes handler available to service tasks naming it. Handlers are looked up
// when a service task executes, so they can be registered after deployment.
func (engine *Engine) RegisterServiceHandler(name string, handler ServiceHandler) {
	engine.handlersMu.Lock()
	defer engine.handlersMu.Unlock()
	engine.handlers[name] = handler
}

func (engine *Engine) serviceHandler(name string) (ServiceHandler, bool) {
	engine.handlersMu.RLock()
	defer engine.handlersMu.RUnlock()
	handler, ok := engine.handlers[name]
	return handler, ok
}

func (engine *Engine) export(event exporter.Event) {
	for _, e := range engine.exporters {
		e.Export(event)
	}
}
