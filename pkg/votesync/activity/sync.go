package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	"github.com/civicdata/rollcall/pkg/pipeline"
	"github.com/civicdata/rollcall/pkg/plan"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/votesync/types"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"
)

// PlanRolls resolves the roll ids of a run. Invalid options are not retried;
// an unusable cache is.
func (c *Context) PlanRolls(ctx context.Context, in types.SyncInput) (types.PlanOutput, error) {
	started := time.Now()
	p, err := c.Runner.Plan(ctx, plan.Options{
		RollID:   in.RollID,
		Congress: in.Congress,
		Session:  in.Session,
		Limit:    in.Limit,
		Now:      started,
	})
	if errors.Is(err, pipeline.ErrCacheUnavailable) {
		return types.PlanOutput{}, temporal.NewApplicationErrorWithCause(err.Error(), "cache_unavailable", err)
	}
	if err != nil {
		return types.PlanOutput{}, temporal.NewNonRetryableApplicationError(fmt.Sprintf("plan: %v", err), "invalid_options", err)
	}

	outcome := report.NewOutcome(p.Congress, started)
	out := types.PlanOutput{
		RunID:     outcome.RunID,
		StartedAt: outcome.StartedAt,
		Mode:      string(p.Mode),
		Congress:  p.Congress,
		RollIDs:   make([]string, 0, len(p.IDs)),
		Notes:     p.Notes,
	}
	for _, id := range p.IDs {
		out.RollIDs = append(out.RollIDs, id.String())
	}

	activity.GetLogger(ctx).Info("Planned vote sync",
		"run_id", out.RunID,
		"mode", out.Mode,
		"congress", out.Congress,
		"rolls", len(out.RollIDs))
	return out, nil
}

// SyncRoll syncs one roll and returns what it added to the run's outcome.
// Store failures are returned so Temporal retries them; everything else is
// recorded on the outcome.
func (c *Context) SyncRoll(ctx context.Context, in types.SyncRollInput) (types.SyncRollOutput, error) {
	start := time.Now()
	id, err := congress.ParseRollID(in.RollID)
	if err != nil {
		return types.SyncRollOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), "invalid_roll_id", err)
	}

	outcome := &report.Outcome{RunID: in.RunID, StartedAt: in.StartedAt, Congress: id.Congress}
	err = c.Session(in.RunID, in.Debug).SyncRoll(ctx, id, in.Force, outcome)
	if err != nil {
		var perr *pipeline.PersistenceError
		if errors.As(err, &perr) {
			c.Logger.Warn("Roll call vote not saved, will retry",
				zap.String("run_id", in.RunID),
				zap.String("roll_id", in.RollID),
				zap.Int32("attempt", activity.GetInfo(ctx).Attempt),
				zap.Error(perr.Err))
		}
		return types.SyncRollOutput{}, err
	}

	return types.SyncRollOutput{
		Outcome:    outcome,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// ReportRun summarizes and emits the merged outcome of a run and releases
// its session.
func (c *Context) ReportRun(ctx context.Context, in types.ReportInput) (types.SyncOutput, error) {
	if in.Outcome == nil {
		return types.SyncOutput{}, temporal.NewNonRetryableApplicationError("missing outcome", "invalid_input", nil)
	}
	defer c.Sessions.Delete(in.Outcome.RunID)

	summary := c.Runner.Summarize(ctx, in.Outcome, in.Mode)
	return types.SyncOutput{
		RunID:               summary.RunID,
		Level:               summary.Level.String(),
		Message:             summary.Message,
		Congress:            summary.Congress,
		Synced:              summary.Synced,
		NotPublished:        summary.NotPublished,
		PersistenceFailures: len(in.Outcome.PersistenceFailures),
	}, nil
}
