package bpmn

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/jobs"
	otelPkg "github.com/pbinitiative/zenflow/pkg/otel"
	"github.com/pbinitiative/zenflow/pkg/script"
	"github.com/pbinitiative/zenflow/pkg/storage"
)

type EngineOption = func(*Engine)

func EngineWithStorage(store storage.Storage) EngineOption {
	return func(engine *Engine) {
		engine.store = store
	}
}

// EngineWithNodeId sets the owner written into instance and job locks. It also seeds the key generator.
func EngineWithNodeId(nodeId string) EngineOption {
	return func(engine *Engine) {
		engine.nodeId = nodeId
	}
}

func EngineWithExporter(exporter exporter.EventExporter) EngineOption {
	return func(engine *Engine) {
		engine.exporters = append(engine.exporters, exporter)
	}
}

func EngineWithExpressionRuntime(runtime script.ExpressionRuntime) EngineOption {
	return func(engine *Engine) {
		engine.expressions = runtime
	}
}

func EngineWithScriptRuntime(runtime script.ScriptRuntime) EngineOption {
	return func(engine *Engine) {
		engine.scripts = runtime
	}
}

func EngineWithExecutor(executor Executor) EngineOption {
	return func(engine *Engine) {
		engine.executor = executor
	}
}

func EngineWithClock(now func() time.Time) EngineOption {
	return func(engine *Engine) {
		engine.now = now
	}
}

func EngineWithLogger(logger hclog.Logger) EngineOption {
	return func(engine *Engine) {
		engine.logger = logger
	}
}

func EngineWithMetrics(metrics *otelPkg.EngineMetrics) EngineOption {
	return func(engine *Engine) {
		engine.metrics = metrics
	}
}

// EngineWithWorkflowCache sizes the cache of compiled workflow definitions.
func EngineWithWorkflowCache(size int, ttl time.Duration) EngineOption {
	return func(engine *Engine) {
		engine.cacheSize = size
		engine.cacheTTL = ttl
	}
}

// EngineWithLockRetries sets how often a locked workflow instance is retried and the initial backoff.
func EngineWithLockRetries(retries uint64, backoff time.Duration) EngineOption {
	return func(engine *Engine) {
		engine.lockRetries = retries
		engine.lockBackoff = backoff
	}
}

func EngineWithSchedulerOptions(options ...jobs.SchedulerOption) EngineOption {
	return func(engine *Engine) {
		engine.schedulerOptions = append(engine.schedulerOptions, options...)
	}
}

func EngineWithDeadJobListener(listener jobs.DeadJobListener) EngineOption {
	return func(engine *Engine) {
		engine.schedulerOptions = append(engine.schedulerOptions, jobs.SchedulerWithDeadJobListener(listener))
	}
}

// EngineWithActivityType registers or replaces the behaviour of an activity kind.
func EngineWithActivityType(kind string, factory ActivityTypeFactory) EngineOption {
	return func(engine *Engine) {
		engine.activityTypes[kind] = factory
	}
}

func EngineWithServiceHandler(name string, handler ServiceHandler) EngineOption {
	return func(engine *Engine) {
		engine.handlers[name] = handler
	}
}
