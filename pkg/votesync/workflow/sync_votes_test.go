package workflow

import (
	"testing"

	"github.com/civicdata/rollcall/pkg/pipeline/pipelinetest"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/civicdata/rollcall/pkg/votesync/activity"
	"github.com/civicdata/rollcall/pkg/votesync/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap/zaptest"
)

type wfFixture struct {
	upstream *pipelinetest.Upstream
	store    *pipelinetest.MemStore
	sink     *pipelinetest.RecordingSink
	wfCtx    Context
	env      *testsuite.TestWorkflowEnvironment
}

func newWfFixture(t *testing.T) *wfFixture {
	t.Helper()
	f := &wfFixture{
		upstream: pipelinetest.NewUpstream(t),
		store:    pipelinetest.NewMemStore(),
		sink:     &pipelinetest.RecordingSink{},
	}
	corpus := pipelinetest.CorpusFor(senatetest.Senators(100))
	runner := pipelinetest.NewRunner(t, f.upstream, f.store, corpus, f.sink)
	activityCtx := activity.NewContext(zaptest.NewLogger(t), runner)
	f.wfCtx = Context{ActivityContext: activityCtx}

	suite := testsuite.WorkflowTestSuite{}
	f.env = suite.NewTestWorkflowEnvironment()
	f.env.RegisterWorkflow(f.wfCtx.SyncVotesWorkflow)
	f.env.RegisterActivity(activityCtx.PlanRolls)
	f.env.RegisterActivity(activityCtx.SyncRoll)
	f.env.RegisterActivity(activityCtx.ReportRun)
	return f
}

func (f *wfFixture) serveSession(t *testing.T, latest int) {
	t.Helper()
	f.upstream.ServeMenu(111, 1, latest)
	for n := 1; n <= latest; n++ {
		v := senatetest.PassageVote(100)
		v.Number = n
		f.upstream.ServeVote(t, v)
	}
}

func TestSyncVotesWorkflowArchive(t *testing.T) {
	f := newWfFixture(t)
	f.serveSession(t, 3)

	f.env.ExecuteWorkflow(f.wfCtx.SyncVotesWorkflow, types.SyncInput{Congress: 111, Session: 1})

	require.True(t, f.env.IsWorkflowCompleted())
	require.NoError(t, f.env.GetWorkflowError())
	var out types.SyncOutput
	require.NoError(t, f.env.GetWorkflowResult(&out))

	assert.Equal(t, 3, out.Synced)
	assert.Equal(t, "success", out.Level)
	assert.Equal(t, "Synced 3 Senate roll call votes from the 111th Congress", out.Message)
	assert.Equal(t, []string{"s3-2009", "s2-2009", "s1-2009"}, f.store.Order())

	summaries := f.sink.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, out.RunID, summaries[0].RunID)
}

func TestSyncVotesWorkflowRetriesStoreFailure(t *testing.T) {
	f := newWfFixture(t)
	f.serveSession(t, 2)
	f.store.FailFor("s2-2009", 1)

	f.env.ExecuteWorkflow(f.wfCtx.SyncVotesWorkflow, types.SyncInput{Congress: 111, Session: 1})

	require.NoError(t, f.env.GetWorkflowError())
	var out types.SyncOutput
	require.NoError(t, f.env.GetWorkflowResult(&out))
	assert.Equal(t, 2, out.Synced)
	assert.Equal(t, 0, out.PersistenceFailures)
	assert.Equal(t, []string{"s2-2009", "s1-2009"}, f.store.Order())
}

func TestSyncVotesWorkflowReportsPersistentStoreFailure(t *testing.T) {
	f := newWfFixture(t)
	f.serveSession(t, 3)
	f.store.FailFor("s2-2009", -1)

	f.env.ExecuteWorkflow(f.wfCtx.SyncVotesWorkflow, types.SyncInput{Congress: 111, Session: 1})

	err := f.env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 roll call votes failed to persist")
	assert.Equal(t, []string{"s3-2009", "s1-2009"}, f.store.Order())

	summaries := f.sink.Summaries()
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].HasErrors())
	assert.Equal(t, 2, summaries[0].Synced)
	var persist report.Group
	for _, g := range summaries[0].Groups {
		if g.Kind == report.GroupPersistenceFailures {
			persist = g
		}
	}
	require.Equal(t, 1, persist.Count)
	failures := persist.Items.([]report.Failure)
	assert.Equal(t, "s2-2009", failures[0].RollID)
	assert.Contains(t, failures[0].Message, "persist s2-2009")
}

func TestSyncVotesWorkflowRecordsUnavailableMenu(t *testing.T) {
	f := newWfFixture(t)

	f.env.ExecuteWorkflow(f.wfCtx.SyncVotesWorkflow, types.SyncInput{Congress: 111, Session: 2})

	require.NoError(t, f.env.GetWorkflowError())
	var out types.SyncOutput
	require.NoError(t, f.env.GetWorkflowResult(&out))
	assert.Equal(t, "note", out.Level)
	assert.Equal(t, 0, out.Synced)
}

func TestSyncVotesWorkflowRejectsInvalidOptions(t *testing.T) {
	f := newWfFixture(t)

	f.env.ExecuteWorkflow(f.wfCtx.SyncVotesWorkflow, types.SyncInput{RollID: "h5-2009"})

	require.Error(t, f.env.GetWorkflowError())
	assert.Empty(t, f.sink.Summaries())
}
