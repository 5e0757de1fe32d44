package votes

import (
	"context"
	"errors"

	"github.com/civicdata/rollcall/pkg/pipeline"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SetupScheduler schedules a sync on every tick of spec (with seconds).
// Ticks that arrive while a sync is still running are skipped.
func (a *App) SetupScheduler(ctx context.Context, spec string) error {
	logger := CronLogger{Logger: a.Logger.Named("cron")}
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	_, err := a.Cron.AddFunc(spec, func() { a.tick(ctx) })
	return err
}

func (a *App) tick(ctx context.Context) {
	summary, err := a.RunOnce(ctx)
	if err == nil {
		return
	}
	var perr *pipeline.PersistenceError
	if errors.As(err, &perr) {
		a.Logger.Error("Scheduled sync could not save every vote", zap.String("run_id", summary.RunID), zap.Error(err))
		return
	}
	a.Logger.Warn("Scheduled sync failed", zap.Error(err))
}

// CronLogger adapts zap to cron.Logger.
type CronLogger struct {
	Logger *zap.Logger
}

func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
