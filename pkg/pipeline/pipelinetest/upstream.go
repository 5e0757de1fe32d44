package pipelinetest

import (
	"strings"
	"testing"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	"github.com/civicdata/rollcall/pkg/pipeline"
	"github.com/civicdata/rollcall/pkg/plan"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/retry"
	"github.com/civicdata/rollcall/pkg/senate"
	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Upstream is a fake Senate host and a client pointed at it.
type Upstream struct {
	*senatetest.Server
	Client *senate.HTTPClient
}

func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	srv := senatetest.NewServer(t)
	return &Upstream{Server: srv, Client: senate.NewHTTPWithOpts(senate.Opts{BaseURL: srv.URL})}
}

func (u *Upstream) path(url string) string {
	return strings.TrimPrefix(url, u.Client.Paths().BaseURL)
}

// ServeVote publishes v and returns its request path.
func (u *Upstream) ServeVote(t *testing.T, v senatetest.Vote) string {
	t.Helper()
	id, err := congress.NewRollID(v.Number, v.Congress, v.Session)
	require.NoError(t, err)
	p := u.path(u.Client.Paths().Vote(id))
	u.HandleXML(p, v.XML())
	return p
}

// ServeMenu publishes a session menu listing latest..1.
func (u *Upstream) ServeMenu(congressNum, session, latest int) {
	u.HandleXML(u.path(u.Client.Paths().VoteMenu(congressNum, session)), senatetest.MenuXML(congressNum, session, latest))
}

// NewRunner wires a Runner over the fakes with a fast menu retry.
func NewRunner(t *testing.T, up *Upstream, store *MemStore, corpus *Corpus, sinks ...report.Sink) *pipeline.Runner {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reporter := report.New(logger, report.WithSinks(sinks...))
	t.Cleanup(reporter.Close)
	planner := plan.New(up.Client, logger).WithRetry(retry.Config{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1})
	return pipeline.New(logger, up.Client, t.TempDir(), corpus.Lookups(), store, reporter, pipeline.WithPlanner(planner))
}
