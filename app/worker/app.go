package worker

import (
	"context"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/civicdata/rollcall/app/votes"
	"github.com/civicdata/rollcall/pkg/config"
	"github.com/civicdata/rollcall/pkg/logging"
	"github.com/civicdata/rollcall/pkg/temporal"
	"github.com/civicdata/rollcall/pkg/votesync/activity"
	"github.com/civicdata/rollcall/pkg/votesync/types"
	"github.com/civicdata/rollcall/pkg/votesync/workflow"
)

type App struct {
	Worker         worker.Worker
	TemporalClient *temporal.Client
	Deps           *votes.Deps
	Logger         *zap.Logger
}

// Start starts the worker and blocks until the context is canceled.
func (a *App) Start(ctx context.Context) {
	err := a.Worker.Start()
	if err != nil {
		a.Logger.Fatal("Unable to start worker", zap.Error(err))
	}
	<-ctx.Done()
	a.Stop()
}

// Stop stops the worker.
func (a *App) Stop() {
	a.Worker.Stop()
	time.Sleep(200 * time.Millisecond)
	a.TemporalClient.Close()
	if err := a.Deps.Close(); err != nil {
		a.Logger.Warn("Failed to close dependencies", zap.Error(err))
	}
	a.Logger.Info("さようなら!")
}

// Initialize initializes the application.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	deps, err := votes.NewDeps(ctx, logger, cfg, "worker")
	if err != nil {
		logger.Fatal("Unable to initialize dependencies", zap.Error(err))
	}

	temporalClient, err := temporal.NewClient(ctx, logger, cfg.TemporalHostPort, cfg.TemporalNS, cfg.TaskQueue)
	if err != nil {
		logger.Fatal("Unable to establish temporal connection", zap.Error(err))
	}

	activityContext := activity.NewContext(logger.Named("activity"), deps.Runner)
	workflowContext := workflow.Context{
		TemporalClient:  temporalClient,
		ActivityContext: activityContext,
	}

	// Rolls of a run are synced one at a time; a single poller keeps upstream
	// requests paced by the client throttle.
	wkr := worker.New(
		temporalClient.TClient,
		temporalClient.TaskQueue,
		worker.Options{MaxConcurrentActivityExecutionSize: 1},
	)

	// Register the workflow
	wkr.RegisterWorkflow(workflowContext.SyncVotesWorkflow)
	// Register all the activities
	wkr.RegisterActivity(activityContext.PlanRolls)
	wkr.RegisterActivity(activityContext.SyncRoll)
	wkr.RegisterActivity(activityContext.ReportRun)

	err = temporalClient.EnsureSchedule(ctx, temporal.ScheduleIncrementalSync, temporal.GetScheduleSpec(cfg.ScheduleEvery), &client.ScheduleWorkflowAction{
		ID:        temporal.SyncWorkflowID("incremental"),
		Workflow:  workflowContext.SyncVotesWorkflow,
		Args:      []interface{}{types.SyncInput{Limit: cfg.Limit, Force: cfg.Force, Debug: cfg.Debug}},
		TaskQueue: temporalClient.TaskQueue,
	})
	if err != nil {
		logger.Fatal("Unable to ensure incremental sync schedule", zap.Error(err))
	}

	return &App{
		Worker:         wkr,
		TemporalClient: temporalClient,
		Deps:           deps,
		Logger:         logger,
	}
}
