package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/votesync/types"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// SyncVotesWorkflow plans a run, syncs its rolls one at a time in plan order
// and reports once. Rolls that still fail to persist after retries are
// reported and fail the workflow after the summary is emitted.
func (wc *Context) SyncVotesWorkflow(ctx workflow.Context, in types.SyncInput) (types.SyncOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
		TaskQueue: workflow.GetInfo(ctx).TaskQueueName,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	var planned types.PlanOutput
	if err := workflow.ExecuteActivity(ctx, wc.ActivityContext.PlanRolls, in).Get(ctx, &planned); err != nil {
		return types.SyncOutput{}, err
	}

	outcome := &report.Outcome{RunID: planned.RunID, StartedAt: planned.StartedAt, Congress: planned.Congress}
	for _, note := range planned.Notes {
		outcome.AddDiscoveryNote(note)
	}

	var cancelled error
	for _, rollID := range planned.RollIDs {
		input := types.SyncRollInput{
			RunID:     planned.RunID,
			StartedAt: planned.StartedAt,
			RollID:    rollID,
			Force:     in.Force,
			Debug:     in.Debug,
		}
		var out types.SyncRollOutput
		err := workflow.ExecuteActivity(ctx, wc.ActivityContext.SyncRoll, input).Get(ctx, &out)
		if err != nil {
			if temporal.IsCanceledError(err) {
				cancelled = err
				break
			}
			logger.Error("Roll call vote not saved", "roll_id", rollID, "error", err)
			outcome.AddPersistenceFailure(report.Failure{RollID: rollID, Message: failureMessage(err)})
			continue
		}
		outcome.Merge(out.Outcome)
	}

	// The summary goes out even when the run is being cancelled.
	reportCtx, _ := workflow.NewDisconnectedContext(ctx)
	var result types.SyncOutput
	if err := workflow.ExecuteActivity(reportCtx, wc.ActivityContext.ReportRun, types.ReportInput{
		Mode:    planned.Mode,
		Outcome: outcome,
	}).Get(reportCtx, &result); err != nil {
		return types.SyncOutput{}, err
	}

	if cancelled != nil {
		return result, cancelled
	}
	if result.PersistenceFailures > 0 {
		return result, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("%d roll call votes failed to persist", result.PersistenceFailures),
			"persistence_failed", nil)
	}
	return result, nil
}

// failureMessage unwraps the activity error down to the message the activity
// returned.
func failureMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
