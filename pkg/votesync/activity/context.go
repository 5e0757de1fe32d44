package activity

import (
	"go.uber.org/zap"

	"github.com/civicdata/rollcall/pkg/pipeline"
	"github.com/puzpuzpuz/xsync/v4"
)

type Context struct {
	Logger *zap.Logger
	Runner *pipeline.Runner
	// Sessions keeps one resolver cache per run across SyncRoll activities.
	Sessions *xsync.Map[string, *pipeline.Session]
}

// NewContext returns an activity context over runner.
func NewContext(logger *zap.Logger, runner *pipeline.Runner) *Context {
	return &Context{
		Logger:   logger,
		Runner:   runner,
		Sessions: xsync.NewMap[string, *pipeline.Session](),
	}
}

// Session returns the session of a run, starting one on first use.
func (c *Context) Session(runID string, debug bool) *pipeline.Session {
	if session, ok := c.Sessions.Load(runID); ok {
		return session
	}
	session := c.Runner.NewSession(debug)
	c.Sessions.Store(runID, session)
	return session
}
