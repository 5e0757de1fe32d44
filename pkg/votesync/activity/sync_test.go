package activity

import (
	"testing"
	"time"

	"github.com/civicdata/rollcall/pkg/pipeline/pipelinetest"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/civicdata/rollcall/pkg/votesync/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	upstream *pipelinetest.Upstream
	store    *pipelinetest.MemStore
	corpus   *pipelinetest.Corpus
	sink     *pipelinetest.RecordingSink
	ctx      *Context
	env      *testsuite.TestActivityEnvironment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		upstream: pipelinetest.NewUpstream(t),
		store:    pipelinetest.NewMemStore(),
		corpus:   pipelinetest.CorpusFor(senatetest.Senators(100)),
		sink:     &pipelinetest.RecordingSink{},
	}
	runner := pipelinetest.NewRunner(t, f.upstream, f.store, f.corpus, f.sink)
	f.ctx = NewContext(zaptest.NewLogger(t), runner)

	suite := testsuite.WorkflowTestSuite{}
	f.env = suite.NewTestActivityEnvironment()
	f.env.RegisterActivity(f.ctx.PlanRolls)
	f.env.RegisterActivity(f.ctx.SyncRoll)
	f.env.RegisterActivity(f.ctx.ReportRun)
	return f
}

func (f *fixture) syncRoll(t *testing.T, in types.SyncRollInput) (types.SyncRollOutput, error) {
	t.Helper()
	val, err := f.env.ExecuteActivity(f.ctx.SyncRoll, in)
	if err != nil {
		return types.SyncRollOutput{}, err
	}
	var out types.SyncRollOutput
	require.NoError(t, val.Get(&out))
	return out, nil
}

func TestPlanRollsSingleRoll(t *testing.T) {
	f := newFixture(t)

	val, err := f.env.ExecuteActivity(f.ctx.PlanRolls, types.SyncInput{RollID: "s5-2009"})
	require.NoError(t, err)
	var out types.PlanOutput
	require.NoError(t, val.Get(&out))

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "single", out.Mode)
	assert.Equal(t, 111, out.Congress)
	assert.Equal(t, []string{"s5-2009"}, out.RollIDs)
}

func TestPlanRollsArchiveMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	f.upstream.ServeMenu(111, 1, 3)

	val, err := f.env.ExecuteActivity(f.ctx.PlanRolls, types.SyncInput{Congress: 111, Session: 1})
	require.NoError(t, err)
	var out types.PlanOutput
	require.NoError(t, val.Get(&out))

	assert.Equal(t, "archive", out.Mode)
	assert.Equal(t, []string{"s3-2009", "s2-2009", "s1-2009"}, out.RollIDs)
	assert.Empty(t, out.Notes)
}

func TestPlanRollsRejectsHouseRoll(t *testing.T) {
	f := newFixture(t)

	_, err := f.env.ExecuteActivity(f.ctx.PlanRolls, types.SyncInput{RollID: "h5-2009"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Senate vote")
}

func TestSyncRollStoresVote(t *testing.T) {
	f := newFixture(t)
	f.upstream.ServeVote(t, senatetest.PassageVote(100))

	out, err := f.syncRoll(t, types.SyncRollInput{RunID: "run-1", StartedAt: time.Now(), RollID: "s5-2009"})
	require.NoError(t, err)

	require.NotNil(t, out.Outcome)
	assert.Equal(t, 1, out.Outcome.Synced)
	assert.Equal(t, "run-1", out.Outcome.RunID)
	assert.Equal(t, []string{"s5-2009"}, f.store.Order())
}

func TestSyncRollNotPublished(t *testing.T) {
	f := newFixture(t)

	out, err := f.syncRoll(t, types.SyncRollInput{RunID: "run-1", StartedAt: time.Now(), RollID: "s6-2009"})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Outcome.NotPublished)
	assert.Empty(t, f.store.Order())
}

func TestSyncRollSharesSessionWithinRun(t *testing.T) {
	f := newFixture(t)
	for n := 1; n <= 2; n++ {
		v := senatetest.PassageVote(100)
		v.Number = n
		f.upstream.ServeVote(t, v)
	}

	_, err := f.syncRoll(t, types.SyncRollInput{RunID: "run-1", StartedAt: time.Now(), RollID: "s1-2009"})
	require.NoError(t, err)
	f.corpus.Forget("S001")

	out, err := f.syncRoll(t, types.SyncRollInput{RunID: "run-1", StartedAt: time.Now(), RollID: "s2-2009"})
	require.NoError(t, err)
	assert.Empty(t, out.Outcome.MissingLegislators, "S001 was cached by the first roll")

	out, err = f.syncRoll(t, types.SyncRollInput{RunID: "run-2", StartedAt: time.Now(), RollID: "s2-2009"})
	require.NoError(t, err)
	require.Len(t, out.Outcome.MissingLegislators, 1)
	assert.Equal(t, "S001", out.Outcome.MissingLegislators[0].LisID)
}

func TestSyncRollReturnsStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.upstream.ServeVote(t, senatetest.PassageVote(100))
	f.store.FailFor("s5-2009", -1)

	_, err := f.syncRoll(t, types.SyncRollInput{RunID: "run-1", StartedAt: time.Now(), RollID: "s5-2009"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist s5-2009")
}

func TestSyncRollRejectsMalformedRollID(t *testing.T) {
	f := newFixture(t)

	_, err := f.syncRoll(t, types.SyncRollInput{RunID: "run-1", RollID: "vote-5"})
	require.Error(t, err)
}

func TestReportRunEmitsSummaryAndReleasesSession(t *testing.T) {
	f := newFixture(t)
	f.ctx.Session("run-1", false)

	outcome := report.NewOutcome(111, time.Now())
	outcome.RunID = "run-1"
	outcome.MarkSynced()
	outcome.AddPersistenceFailure(report.Failure{RollID: "s2-2009", Message: "persist s2-2009: connection reset"})

	val, err := f.env.ExecuteActivity(f.ctx.ReportRun, types.ReportInput{Mode: "archive", Outcome: outcome})
	require.NoError(t, err)
	var out types.SyncOutput
	require.NoError(t, val.Get(&out))

	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, "error", out.Level)
	assert.Equal(t, 1, out.Synced)
	assert.Equal(t, 1, out.PersistenceFailures)

	summaries := f.sink.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "run-1", summaries[0].RunID)

	_, ok := f.ctx.Sessions.Load("run-1")
	assert.False(t, ok)
}
