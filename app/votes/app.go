package votes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/civicdata/rollcall/pkg/config"
	"github.com/civicdata/rollcall/pkg/logging"
	"github.com/civicdata/rollcall/pkg/pipeline"
	"github.com/civicdata/rollcall/pkg/plan"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App runs vote syncs, once or on a cron schedule.
type App struct {
	Config config.Config
	Deps   *Deps

	// Cron is nil for one-shot runs.
	Cron *cron.Cron

	// Server serves health and metrics while the daemon runs.
	Server *http.Server

	Logger *zap.Logger

	running atomic.Bool
}

// Initialize reads the environment and connects everything a run needs.
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

	deps, err := NewDeps(ctx, logger, cfg, "votes")
	if err != nil {
		logger.Fatal("Unable to initialize dependencies", zap.Error(err))
	}

	app := &App{Config: cfg, Deps: deps, Logger: logger}
	if cfg.Cron != "" {
		if err := app.SetupScheduler(ctx, cfg.Cron); err != nil {
			logger.Fatal("Invalid cron schedule", zap.String("cron", cfg.Cron), zap.Error(err))
		}
		app.SetupServer()
	}
	return app
}

// Start runs once, or serves the schedule until ctx is done. The returned
// error is non-nil when a one-shot run could not persist every vote or was
// started with invalid options.
func (a *App) Start(ctx context.Context) error {
	defer a.Stop()

	if a.Cron == nil {
		_, err := a.RunOnce(ctx)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("Starting server", zap.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.Cron.Start()
		a.Logger.Info("Cron started", zap.String("cron", a.Config.Cron))
		<-gctx.Done()
		<-a.Cron.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Stop releases connections.
func (a *App) Stop() {
	if err := a.Deps.Close(); err != nil {
		a.Logger.Warn("Failed to close dependencies", zap.Error(err))
	}
	a.Logger.Info("さようなら!")
	_ = a.Logger.Sync()
}

// RunOnce performs one sync with the configured options. Overlapping calls
// are refused.
func (a *App) RunOnce(ctx context.Context) (report.Summary, error) {
	if !a.running.CompareAndSwap(false, true) {
		return report.Summary{}, errors.New("a sync is already running")
	}
	defer a.running.Store(false)

	return a.Deps.Runner.Run(ctx, a.options())
}

func (a *App) options() pipeline.Options {
	return pipeline.Options{
		Plan: plan.Options{
			RollID:   a.Config.RollID,
			Congress: a.Config.Congress,
			Session:  a.Config.Session,
			Limit:    a.Config.Limit,
		},
		Force: a.Config.Force,
		Debug: a.Config.Debug,
	}
}

// Ready reports whether the stores answer.
func (a *App) Ready(ctx context.Context) bool {
	if err := a.Deps.Ready(ctx); err != nil {
		a.Logger.Warn("Not ready", zap.Error(err))
		return false
	}
	return true
}
