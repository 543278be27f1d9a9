package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pbinitiative/zenflow/internal/config"
	"github.com/pbinitiative/zenflow/internal/log"
	"github.com/pbinitiative/zenflow/internal/otel"
	"github.com/pbinitiative/zenflow/internal/profile"
	"github.com/pbinitiative/zenflow/internal/rest"
	"github.com/pbinitiative/zenflow/pkg/bpmn"
	"github.com/pbinitiative/zenflow/pkg/bpmn/exporter"
	"github.com/pbinitiative/zenflow/pkg/bpmn/runtime"
	"github.com/pbinitiative/zenflow/pkg/jobs"
	"github.com/pbinitiative/zenflow/pkg/script/feel"
	"github.com/pbinitiative/zenflow/pkg/script/js"
	"github.com/pbinitiative/zenflow/pkg/storage"
	"github.com/pbinitiative/zenflow/pkg/storage/boltdb"
	"github.com/pbinitiative/zenflow/pkg/storage/inmemory"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "-> Start the engine and the REST API.",
		Long:  `The serve command runs the engine, its job scheduler and the REST API until it receives SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	profile.InitProfile()
	log.Init()

	conf := config.InitConfig()
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appContext, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()

	openTelemetry, err := otel.SetupOtel(conf.Tracing)
	if err != nil {
		return fmt.Errorf("failed to set up OTEL: %w", err)
	}

	store, closeStore, err := openStore(conf.Persistence)
	if err != nil {
		return err
	}

	executor := bpmn.NewPoolExecutor(conf.Engine.AsyncWorkers)
	engine, err := bpmn.NewEngine(engineOptions(appContext, conf, store, executor)...)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create engine: %w", err), closeStore())
	}
	engine.Start(appContext)

	svr := rest.NewServer(engine, conf, log.Logger())
	if _, err := svr.Start(); err != nil {
		engine.Stop()
		return errors.Join(err, closeStore())
	}

	appStop := make(chan os.Signal, 2)
	signal.Notify(appStop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-appStop:
		log.Infof(appContext, "Received %s. Shutting down", sig.String())
	case <-appContext.Done():
	}

	ctxCancel()
	// cleanup
	svr.Stop(context.Background())
	engine.Stop()
	executor.Wait()
	var errJoin error
	if err := closeStore(); err != nil {
		errJoin = errors.Join(errJoin, fmt.Errorf("failed to close store: %w", err))
	}
	if err := openTelemetry.Stop(context.Background()); err != nil {
		errJoin = errors.Join(errJoin, fmt.Errorf("failed to stop OTEL: %w", err))
	}
	return errJoin
}

func openStore(conf config.Persistence) (storage.Storage, func() error, error) {
	switch conf.Type {
	case config.PersistenceBolt:
		store, err := boltdb.Open(conf.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using bolt persistence at %s", conf.BoltPath)
		return store, store.Close, nil
	default:
		log.Info("Using in-memory persistence, state is lost on shutdown")
		return inmemory.NewStorage(), func() error { return nil }, nil
	}
}

func engineOptions(ctx context.Context, conf config.Config, store storage.Storage, executor bpmn.Executor) []bpmn.EngineOption {
	logger := log.Logger()
	jsRuntime := js.NewJsRuntime(ctx, conf.Script.MaxVmPoolSize, conf.Script.MinVmPoolSize)
	options := []bpmn.EngineOption{
		bpmn.EngineWithStorage(store),
		bpmn.EngineWithNodeId(conf.Engine.NodeId),
		bpmn.EngineWithLogger(logger.Named("engine")),
		bpmn.EngineWithExecutor(executor),
		bpmn.EngineWithScriptRuntime(jsRuntime),
		bpmn.EngineWithWorkflowCache(conf.Engine.WorkflowCacheSize, conf.Engine.WorkflowCacheTTL),
		bpmn.EngineWithLockRetries(conf.Engine.LockRetries, 10*time.Millisecond),
		bpmn.EngineWithSchedulerOptions(
			jobs.SchedulerWithPollInterval(conf.Jobs.PollInterval),
			jobs.SchedulerWithWorkers(conf.Jobs.InstanceWorkers, conf.Jobs.FreeWorkers),
			jobs.SchedulerWithBatchSize(conf.Jobs.BatchSize),
			jobs.SchedulerWithMaxJobExecutions(conf.Jobs.MaxJobExecutions),
			jobs.SchedulerWithLockLease(conf.Jobs.LockLease),
		),
		bpmn.EngineWithDeadJobListener(jobs.DeadJobListenerFunc(func(ctx context.Context, job runtime.Job, cause error) {
			log.Errorf(ctx, "Job %d of type %s is dead: %s", job.Id, job.Type, cause)
		})),
	}
	switch conf.Engine.ExpressionLanguage {
	case config.ExpressionLanguageJs:
		options = append(options, bpmn.EngineWithExpressionRuntime(jsRuntime))
	default:
		options = append(options, bpmn.EngineWithExpressionRuntime(feel.NewFeelRuntime()))
	}
	if profile.Current != profile.PROD {
		options = append(options, bpmn.EngineWithExporter(exporter.NewLogExporter(logger.Named("events"))))
	}
	return options
}
